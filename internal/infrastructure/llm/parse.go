package llm

import (
	"strings"

	"RegulatorScanner/internal/domain"
)

// parseFields scans a free-text reply line by line for the given prefixes
// (case-insensitive, colon-terminated) and returns the trimmed values. A
// prefix that never appears is simply absent from the map; callers fall back
// to defaults on miss.
func parseFields(reply string, prefixes ...string) map[string]string {
	fields := map[string]string{}
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		// Models sometimes wrap the requested format in markdown emphasis.
		line = strings.Trim(line, "*_` ")
		for _, prefix := range prefixes {
			if _, ok := fields[prefix]; ok {
				continue
			}
			if len(line) <= len(prefix)+1 {
				continue
			}
			if !strings.EqualFold(line[:len(prefix)], prefix) || line[len(prefix)] != ':' {
				continue
			}
			value := strings.TrimSpace(line[len(prefix)+1:])
			if value != "" {
				fields[prefix] = value
			}
		}
	}
	return fields
}

// parseImpact maps a RATING/RATIONALE/CONFIDENCE reply onto an Impact,
// substituting defaults for any field the reply omits or mangles.
func parseImpact(reply string) domain.Impact {
	fields := parseFields(reply, "RATING", "RATIONALE", "CONFIDENCE")

	impact := domain.Impact{
		Rating:     domain.RatingNotRated,
		Rationale:  "Assessment unavailable",
		Confidence: domain.ConfidenceNotAvailable,
	}

	if rating := normalizeRating(fields["RATING"]); rating != "" {
		impact.Rating = rating
	}
	if rationale := fields["RATIONALE"]; rationale != "" {
		impact.Rationale = rationale
	}
	if confidence := normalizeConfidence(fields["CONFIDENCE"]); confidence != "" {
		impact.Confidence = confidence
	}

	return impact
}

// parseIndustries maps an INDUSTRIES/RATIONALE/CONFIDENCE reply onto the
// taxonomy; tags outside the taxonomy are dropped, and an empty result
// degrades to Other.
func parseIndustries(reply string) ([]string, string, string) {
	fields := parseFields(reply, "INDUSTRIES", "RATIONALE", "CONFIDENCE")

	var industries []string
	seen := map[string]bool{}
	for _, tag := range strings.Split(fields["INDUSTRIES"], ",") {
		tag = canonicalIndustry(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		industries = append(industries, tag)
	}
	if len(industries) == 0 {
		industries = []string{domain.IndustryOther}
	}

	rationale := fields["RATIONALE"]
	if rationale == "" {
		rationale = "Classification unavailable"
	}

	confidence := normalizeConfidence(fields["CONFIDENCE"])
	if confidence == "" {
		confidence = domain.ConfidenceNotAvailable
	}

	return industries, rationale, confidence
}

func normalizeRating(s string) string {
	s = strings.TrimSpace(s)
	for _, rating := range []string{
		domain.RatingMinimal, domain.RatingLow, domain.RatingModerate,
		domain.RatingHigh, domain.RatingCritical,
	} {
		if strings.EqualFold(s, rating) {
			return rating
		}
	}
	return ""
}

func normalizeConfidence(s string) string {
	s = strings.TrimSpace(s)
	for _, level := range []string{
		domain.ConfidenceHigh, domain.ConfidenceMedium, domain.ConfidenceLow,
	} {
		if strings.EqualFold(s, level) {
			return level
		}
	}
	return ""
}

func canonicalIndustry(s string) string {
	if strings.EqualFold(s, domain.IndustryAll) {
		return domain.IndustryAll
	}
	if strings.EqualFold(s, domain.IndustryOther) {
		return domain.IndustryOther
	}
	for _, group := range domain.IndustryTaxonomy {
		if strings.EqualFold(s, group) {
			return group
		}
	}
	return ""
}
