package llm

import (
	"testing"
	"unicode/utf8"

	"RegulatorScanner/internal/domain"
)

func TestParseImpact(t *testing.T) {
	t.Parallel()

	reply := "RATING: High\nRATIONALE: New licensing obligations apply sector-wide.\nCONFIDENCE: Medium"

	impact := parseImpact(reply)
	if impact.Rating != domain.RatingHigh {
		t.Fatalf("unexpected rating: %q", impact.Rating)
	}
	if impact.Rationale != "New licensing obligations apply sector-wide." {
		t.Fatalf("unexpected rationale: %q", impact.Rationale)
	}
	if impact.Confidence != domain.ConfidenceMedium {
		t.Fatalf("unexpected confidence: %q", impact.Confidence)
	}
}

func TestParseImpactFallbackOnMiss(t *testing.T) {
	t.Parallel()

	impact := parseImpact("The release seems quite significant overall.")
	if impact.Rating != domain.RatingNotRated {
		t.Fatalf("missing rating should default to Not Rated, got %q", impact.Rating)
	}
	if impact.Rationale != "Assessment unavailable" {
		t.Fatalf("unexpected default rationale: %q", impact.Rationale)
	}
	if impact.Confidence != domain.ConfidenceNotAvailable {
		t.Fatalf("unexpected default confidence: %q", impact.Confidence)
	}
}

func TestParseImpactRejectsUnknownRating(t *testing.T) {
	t.Parallel()

	impact := parseImpact("RATING: Catastrophic\nRATIONALE: Made up scale.\nCONFIDENCE: High")
	if impact.Rating != domain.RatingNotRated {
		t.Fatalf("out-of-scale rating should default, got %q", impact.Rating)
	}
	if impact.Rationale != "Made up scale." {
		t.Fatalf("valid rationale should still be kept: %q", impact.Rationale)
	}
}

func TestParseImpactTolerantFormatting(t *testing.T) {
	t.Parallel()

	// Lower-case prefixes wrapped in markdown emphasis still parse.
	impact := parseImpact("**rating: critical**\n_rationale: Systemic risk to payments._\nconfidence: low")
	if impact.Rating != domain.RatingCritical {
		t.Fatalf("unexpected rating: %q", impact.Rating)
	}
	if impact.Confidence != domain.ConfidenceLow {
		t.Fatalf("unexpected confidence: %q", impact.Confidence)
	}
}

func TestParseIndustries(t *testing.T) {
	t.Parallel()

	reply := "INDUSTRIES: Financials, Information Technology, Financials\n" +
		"RATIONALE: Affects banks and their technology vendors.\n" +
		"CONFIDENCE: High"

	industries, rationale, confidence := parseIndustries(reply)
	if len(industries) != 2 || industries[0] != "Financials" || industries[1] != "Information Technology" {
		t.Fatalf("unexpected industries: %v", industries)
	}
	if rationale != "Affects banks and their technology vendors." {
		t.Fatalf("unexpected rationale: %q", rationale)
	}
	if confidence != domain.ConfidenceHigh {
		t.Fatalf("unexpected confidence: %q", confidence)
	}
}

func TestParseIndustriesDropsUnknownTags(t *testing.T) {
	t.Parallel()

	industries, _, _ := parseIndustries("INDUSTRIES: Cryptocurrency, Fintech\nRATIONALE: x\nCONFIDENCE: High")
	if len(industries) != 1 || industries[0] != domain.IndustryOther {
		t.Fatalf("unknown tags should degrade to Other, got %v", industries)
	}
}

func TestParseIndustriesAllSentinel(t *testing.T) {
	t.Parallel()

	industries, _, _ := parseIndustries("INDUSTRIES: all\nRATIONALE: Economy-wide rate decision.\nCONFIDENCE: High")
	if len(industries) != 1 || industries[0] != domain.IndustryAll {
		t.Fatalf("expected All sentinel, got %v", industries)
	}
}

func TestParseFieldsFirstOccurrenceWins(t *testing.T) {
	t.Parallel()

	fields := parseFields("RATING: Low\nRATING: High", "RATING")
	if fields["RATING"] != "Low" {
		t.Fatalf("expected first occurrence, got %q", fields["RATING"])
	}
}

func TestClipKeepsRuneBoundaries(t *testing.T) {
	t.Parallel()

	// A cap landing mid-rune must back off rather than send broken UTF-8
	// in the prompt.
	if got := clip("caféteria", 4); got != "caf" {
		t.Fatalf("clip landed mid-rune: %q", got)
	}
	if got := clip("caféteria", 5); got != "café" {
		t.Fatalf("clip lost a whole rune: %q", got)
	}
	if got := clip("short", 100); got != "short" {
		t.Fatalf("clip changed text under the cap: %q", got)
	}
	if !utf8.ValidString(clip("décision économique", 9)) {
		t.Fatal("clip produced invalid UTF-8")
	}
}
