package render

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"RegulatorScanner/internal/corpus"
	"RegulatorScanner/internal/domain"
)

type feedXML struct {
	XMLName xml.Name   `xml:"feed"`
	Version string     `xml:"version,attr"`
	Updated string     `xml:"updated,attr"`
	Entries []entryXML `xml:"entry"`
}

type entryXML struct {
	Source             string `xml:"source"`
	Title              string `xml:"title"`
	Link               string `xml:"link"`
	Published          string `xml:"published"`
	Summary            string `xml:"summary"`
	Industries         string `xml:"industries"`
	Industry           string `xml:"industry"`
	IndustryRationale  string `xml:"industry_rationale"`
	IndustryConfidence string `xml:"industry_confidence"`
	RiskRating         string `xml:"risk_rating"`
	RiskRationale      string `xml:"risk_rationale"`
	RiskConfidence     string `xml:"risk_confidence"`
	FullText           string `xml:"full_text"`
}

// XML renders the corpus as the flat export feed: one entry per article,
// every field a text node, pretty-indented UTF-8.
func (r *Renderer) XML(c corpus.Corpus) ([]byte, error) {
	feed := feedXML{
		Version: "1.0",
		Updated: r.now().Format(time.RFC3339),
		Entries: make([]entryXML, 0, len(c.Articles)),
	}

	for i := range c.Articles {
		feed.Entries = append(feed.Entries, toEntry(&c.Articles[i]))
	}

	payload, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal feed xml: %w", err)
	}

	return append([]byte(xml.Header), payload...), nil
}

func toEntry(a *domain.Article) entryXML {
	summary := a.AISummary
	if summary == "" {
		summary = a.Summary
	}

	return entryXML{
		Source:             a.Source,
		Title:              a.Title,
		Link:               a.Link,
		Published:          a.Published,
		Summary:            summary,
		Industries:         strings.Join(a.Industries, " | "),
		Industry:           a.PrimaryIndustry(),
		IndustryRationale:  a.IndustryRationale,
		IndustryConfidence: a.IndustryConfidence,
		RiskRating:         a.Impact.Rating,
		RiskRationale:      a.Impact.Rationale,
		RiskConfidence:     a.Impact.Confidence,
		FullText:           a.FullText,
	}
}
