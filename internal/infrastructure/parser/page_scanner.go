package parser

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"RegulatorScanner/internal/dates"
	"RegulatorScanner/internal/domain"
	"RegulatorScanner/internal/scanner"
)

// genericItemSelectors is the container cascade used when a source has no
// selectors of its own. Each entry is tried until one yields plausible items.
var genericItemSelectors = []string{
	".view-content .views-row",
	"article, .node, .item, .news-item",
	`.views-row, [class*="news"], [class*="media-release"], [class*="publication"]`,
	"ul.list-articles li, ol li",
}

const (
	titleLinkSelectors = `h3 a, h2 a, .title a, a[href*="/news"], a[href*="/media"], a[href*="/publication"]`
	dateSelectors      = `.date, time, .views-field-created, .field--name-created, .views-field-field-date, [class*="date"]`
	summarySelectors   = ".summary, .views-field-body, .field--name-body, p"

	maxListingSummary = 300
)

// PageScanner scrapes a static HTML listing page with cascading selector
// strategies. It shares its extraction logic with the rendered-mode scanner.
type PageScanner struct {
	client *fetchClient
}

var _ scanner.Scanner = (*PageScanner)(nil)

// NewPageScanner wires the shared retry policy.
func NewPageScanner(client *http.Client, userAgent string, attempts int, backoff time.Duration) *PageScanner {
	return &PageScanner{client: newFetchClient(client, userAgent, attempts, backoff)}
}

// Mode identifies the strategy inside the registry.
func (p *PageScanner) Mode() string {
	return "page"
}

// Scan retrieves the listing once and extracts stubs from it.
func (p *PageScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Stub, error) {
	raw, err := p.client.get(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch page %s: %w", req.SourceName, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", req.SourceName, err)
	}

	return extractListing(doc, req)
}

// extractListing walks the container cascade and pulls one stub per item.
// A cascade step counts only when it produced at least one stub with a link;
// otherwise the next, more permissive selector is tried.
func extractListing(doc *goquery.Document, req scanner.Request) ([]domain.Stub, error) {
	base, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid source url %s: %w", req.URL, err)
	}

	cascade := req.ItemSelectors
	if len(cascade) == 0 {
		cascade = genericItemSelectors
	}

	for _, sel := range cascade {
		stubs := extractItems(doc.Find(sel), base, req.Limit)
		if len(stubs) > 0 {
			return stubs, nil
		}
	}

	return nil, fmt.Errorf("no listing items matched on %s", req.SourceName)
}

func extractItems(items *goquery.Selection, base *url.URL, limit int) []domain.Stub {
	var stubs []domain.Stub
	seen := map[string]bool{}

	items.EachWithBreak(func(i int, item *goquery.Selection) bool {
		if limit > 0 && len(stubs) >= limit {
			return false
		}

		stub, ok := parseItem(item, base)
		if !ok || seen[stub.Link] {
			return true
		}
		seen[stub.Link] = true
		stubs = append(stubs, stub)
		return true
	})

	return stubs
}

// parseItem applies the per-item cascades: preferred title/link selectors
// then any anchor; structured date elements then a date-like substring of
// the item's own text.
func parseItem(item *goquery.Selection, base *url.URL) (domain.Stub, bool) {
	link := item.Find(titleLinkSelectors).First()
	if link.Length() == 0 {
		link = item.Find("a").First()
	}
	if link.Length() == 0 {
		return domain.Stub{}, false
	}

	href, _ := link.Attr("href")
	resolved := resolveLink(base, href)
	if resolved == "" {
		return domain.Stub{}, false
	}

	title := strings.TrimSpace(link.Text())
	if title == "" {
		return domain.Stub{}, false
	}

	published := strings.TrimSpace(item.Find(dateSelectors).First().Text())
	if published == "" {
		if found, ok := dates.ExtractFirst(item.Text()); ok {
			published = found
		}
	}

	summary := truncate(strings.TrimSpace(item.Find(summarySelectors).First().Text()), maxListingSummary)

	return domain.Stub{
		Title:     title,
		Link:      resolved,
		Published: published,
		Summary:   summary,
	}, true
}

// resolveLink absolutizes href against the listing URL and rejects anything
// that is not an http(s) article link.
func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	return abs.String()
}
