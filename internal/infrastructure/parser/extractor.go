package parser

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"RegulatorScanner/internal/dates"
	"RegulatorScanner/internal/ports"
)

const (
	// Content roots shorter than this are treated as navigation debris.
	minContentBlock = 200
	// Individual lines shorter than this are dropped when flattening.
	minLineLength = 15
	// Stored full text is capped; regulator releases rarely come close.
	maxFullText = 50_000
)

// contentSelectors is the prioritized cascade for locating the article body.
var contentSelectors = []string{
	"article",
	".content",
	".article-content",
	"main",
	".main-content",
}

// strippedTags never contain article prose.
const strippedTags = "script, style, nav, header, footer, aside"

// chromeHints flags class/id values that indicate page chrome rather than
// content when hunting for the largest text block.
var chromeHints = []string{"nav", "menu", "header", "footer", "sidebar", "breadcrumb", "cookie", "share", "social"}

// Extractor fetches an article page and reduces it to flattened plain text.
// It never fails: exhausting retries yields a placeholder embedding the
// error so every article still carries usable (if degraded) content.
type Extractor struct {
	client *fetchClient
}

var _ ports.ContentExtractor = (*Extractor)(nil)

// NewExtractor wires the retry policy for article-page fetches.
func NewExtractor(client *http.Client, userAgent string, attempts int, backoff time.Duration) *Extractor {
	return &Extractor{client: newFetchClient(client, userAgent, attempts, backoff)}
}

// Extract returns the article body as single-line plain text plus any
// publication date string found on the page.
func (e *Extractor) Extract(ctx context.Context, url string) (string, string) {
	raw, err := e.client.get(ctx, url)
	if err != nil {
		return fmt.Sprintf("Error fetching content: %v", err), ""
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return fmt.Sprintf("Error fetching content: %v", err), ""
	}

	doc.Find(strippedTags).Remove()

	root := findContentRoot(doc)
	text := flattenNode(root)
	if text == "" {
		text = "Content not available"
	}
	text = truncate(text, maxFullText)

	return text, findPageDate(doc)
}

// findContentRoot applies the cascade: known content selectors, then the
// largest qualifying text block, then the whole body.
func findContentRoot(doc *goquery.Document) *goquery.Selection {
	for _, sel := range contentSelectors {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if len(strings.TrimSpace(node.Text())) >= minContentBlock {
				return node
			}
		}
	}

	if node := largestTextBlock(doc); node != nil {
		return node
	}

	return doc.Find("body").First()
}

// largestTextBlock picks the div/section/p with the most text, skipping
// nodes whose class or id hints at navigation chrome.
func largestTextBlock(doc *goquery.Document) *goquery.Selection {
	var best *goquery.Selection
	bestLen := minContentBlock

	doc.Find("div, section, p").Each(func(i int, node *goquery.Selection) {
		if looksLikeChrome(node) {
			return
		}
		length := len(strings.TrimSpace(node.Text()))
		if length > bestLen {
			best = node
			bestLen = length
		}
	})

	return best
}

func looksLikeChrome(node *goquery.Selection) bool {
	class, _ := node.Attr("class")
	id, _ := node.Attr("id")
	hint := strings.ToLower(class + " " + id)
	for _, marker := range chromeHints {
		if strings.Contains(hint, marker) {
			return true
		}
	}
	return false
}

// flattenNode renders the node's text as one line, discarding short lines
// that are almost always link lists and button labels.
func flattenNode(node *goquery.Selection) string {
	if node == nil || node.Length() == 0 {
		return ""
	}

	var lines []string
	for _, line := range strings.Split(node.Text(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if len(line) < minLineLength {
			continue
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, " ")
}

// truncate caps s at max bytes without cutting through a UTF-8 rune; the cut
// point walks back to the nearest rune start.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// findPageDate looks for a structured <time> element first, then scans the
// page text for the first date-like substring.
func findPageDate(doc *goquery.Document) string {
	timeNode := doc.Find("time").First()
	if timeNode.Length() > 0 {
		if dt, ok := timeNode.Attr("datetime"); ok && dates.Known(dates.Parse(dt)) {
			return dt
		}
		if text := strings.TrimSpace(timeNode.Text()); dates.Known(dates.Parse(text)) {
			return text
		}
	}

	if found, ok := dates.ExtractFirst(doc.Text()); ok {
		return found
	}
	return ""
}
