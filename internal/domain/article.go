package domain

import "time"

// Article is the unit of record: one regulator media release. Link is the
// identity key; two stubs with the same link are the same article.
type Article struct {
	Link      string `json:"link"`
	Title     string `json:"title"`
	Source    string `json:"source"`
	Published string `json:"published"`
	Summary   string `json:"summary,omitempty"`
	FullText  string `json:"full_text"`

	AISummary string `json:"ai_summary,omitempty"`
	Impact    Impact `json:"impact"`

	Industries         []string `json:"industries,omitempty"`
	IndustryRationale  string   `json:"industry_rationale,omitempty"`
	IndustryConfidence string   `json:"industry_confidence,omitempty"`

	// PublishedAt is derived from Published at load/merge time and drives
	// display ordering. The zero value means the date could not be parsed.
	PublishedAt time.Time `json:"-"`
}

// Enriched reports whether the enrichment pass already ran for this article.
// Enrichment fields are write-once; a non-empty AISummary means done.
func (a *Article) Enriched() bool {
	return a.AISummary != ""
}

// PrimaryIndustry returns the first classified industry group, or Other.
func (a *Article) PrimaryIndustry() string {
	if len(a.Industries) == 0 {
		return IndustryOther
	}
	return a.Industries[0]
}

// Impact captures the AI risk assessment of a release.
type Impact struct {
	Rating     string `json:"rating"`
	Rationale  string `json:"rationale,omitempty"`
	Confidence string `json:"confidence,omitempty"`
}

// Impact ratings on a five-point scale, plus sentinels for articles the
// assessment never ran on or failed for.
const (
	RatingMinimal  = "Minimal"
	RatingLow      = "Low"
	RatingModerate = "Moderate"
	RatingHigh     = "High"
	RatingCritical = "Critical"
	RatingNotRated = "Not Rated"
	RatingFailed   = "Assessment Failed"
)

// Confidence levels reported alongside AI assessments.
const (
	ConfidenceHigh         = "High"
	ConfidenceMedium       = "Medium"
	ConfidenceLow          = "Low"
	ConfidenceNotAvailable = "Not Available"
)

// Industry sentinels outside the GICS-like taxonomy.
const (
	IndustryAll   = "All"
	IndustryOther = "Other"
)

// IndustryTaxonomy lists the GICS-like sector groups a release can be
// classified under, in canonical order.
var IndustryTaxonomy = []string{
	"Energy",
	"Materials",
	"Industrials",
	"Consumer Discretionary",
	"Consumer Staples",
	"Health Care",
	"Financials",
	"Information Technology",
	"Communication Services",
	"Utilities",
	"Real Estate",
}

// ValidRating reports whether s is one of the known impact ratings.
func ValidRating(s string) bool {
	switch s {
	case RatingMinimal, RatingLow, RatingModerate, RatingHigh, RatingCritical,
		RatingNotRated, RatingFailed:
		return true
	}
	return false
}

// ValidIndustry reports whether s is a taxonomy group or sentinel.
func ValidIndustry(s string) bool {
	if s == IndustryAll || s == IndustryOther {
		return true
	}
	for _, g := range IndustryTaxonomy {
		if g == s {
			return true
		}
	}
	return false
}

// Stub is a minimally populated article from a source listing, before
// full-text extraction and enrichment.
type Stub struct {
	Title     string
	Link      string
	Published string
	Summary   string
}
