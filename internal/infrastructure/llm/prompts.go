package llm

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"RegulatorScanner/internal/domain"
)

func summaryPrompt(article *domain.Article, maxChars int) string {
	return fmt.Sprintf(
		"Summarise the following media release from %s in 2-3 plain sentences "+
			"for a financial-services compliance audience. Reply with the summary only.\n\n"+
			"Title: %s\n\nText: %s",
		article.Source, article.Title, clip(article.FullText, maxChars))
}

func impactPrompt(article *domain.Article, maxChars int) string {
	return fmt.Sprintf(
		"Assess the industry impact of this media release from %s.\n"+
			"Reply in exactly this format:\n"+
			"RATING: one of Minimal, Low, Moderate, High, Critical\n"+
			"RATIONALE: one sentence explaining the rating\n"+
			"CONFIDENCE: one of High, Medium, Low\n\n"+
			"Title: %s\n\nText: %s",
		article.Source, article.Title, clip(article.FullText, maxChars))
}

func industryPrompt(article *domain.Article, maxChars int) string {
	return fmt.Sprintf(
		"Classify which industries this media release from %s affects.\n"+
			"Valid industries: %s. Use All when every industry is affected and "+
			"Other when none fits.\n"+
			"Reply in exactly this format:\n"+
			"INDUSTRIES: comma-separated list of industries\n"+
			"RATIONALE: one sentence explaining the classification\n"+
			"CONFIDENCE: one of High, Medium, Low\n\n"+
			"Title: %s\n\nText: %s",
		article.Source, strings.Join(domain.IndustryTaxonomy, ", "),
		article.Title, clip(article.FullText, maxChars))
}

// clip caps the prompt text at max bytes, backing off to a rune boundary so
// the cut never leaves a broken UTF-8 sequence in the request.
func clip(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
