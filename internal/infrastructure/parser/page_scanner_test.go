package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"RegulatorScanner/internal/scanner"
)

const listingHTML = `
<html><body>
<div class="view-content">
  <div class="views-row">
    <h3><a href="/news/first-release">First release</a></h3>
    <span class="date">22 Oct 2025</span>
    <p>APRA publishes its first release of the quarter.</p>
  </div>
  <div class="views-row">
    <h3><a href="/news/second-release">Second release</a></h3>
    <p>Issued on 21 October 2025 covering capital requirements.</p>
  </div>
  <div class="views-row">
    <h3><a href="/news/first-release">First release duplicate</a></h3>
  </div>
</div>
</body></html>`

func TestExtractListing(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingHTML))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	req := scanner.Request{
		SourceName:    "APRA News",
		URL:           "https://www.apra.gov.au/news-and-publications",
		Limit:         10,
		ItemSelectors: []string{".view-content .views-row"},
	}

	stubs, err := extractListing(doc, req)
	if err != nil {
		t.Fatalf("extractListing: %v", err)
	}

	if len(stubs) != 2 {
		t.Fatalf("expected 2 stubs (duplicate link dropped), got %d", len(stubs))
	}

	first := stubs[0]
	if first.Title != "First release" {
		t.Fatalf("unexpected title: %q", first.Title)
	}
	if first.Link != "https://www.apra.gov.au/news/first-release" {
		t.Fatalf("relative link not resolved: %q", first.Link)
	}
	if first.Published != "22 Oct 2025" {
		t.Fatalf("structured date not picked up: %q", first.Published)
	}

	// No date element on the second item; the date-like substring of the
	// item text is the fallback.
	if stubs[1].Published != "21 October 2025" {
		t.Fatalf("text date fallback failed: %q", stubs[1].Published)
	}
}

func TestExtractListingCascade(t *testing.T) {
	t.Parallel()

	html := `<html><body>
	<article><h2><a href="https://www.apra.gov.au/news/x">Via generic cascade</a></h2></article>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	// First selector matches nothing; the cascade must fall through.
	req := scanner.Request{
		SourceName:    "APRA News",
		URL:           "https://www.apra.gov.au/news-and-publications",
		Limit:         10,
		ItemSelectors: []string{".view-content .views-row", "article"},
	}

	stubs, err := extractListing(doc, req)
	if err != nil {
		t.Fatalf("extractListing: %v", err)
	}
	if len(stubs) != 1 || stubs[0].Title != "Via generic cascade" {
		t.Fatalf("cascade fallback failed: %+v", stubs)
	}
}

func TestExtractListingNoItems(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body><p>maintenance page</p></body></html>"))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	req := scanner.Request{SourceName: "APRA News", URL: "https://www.apra.gov.au/x", Limit: 10}
	if _, err := extractListing(doc, req); err == nil {
		t.Fatal("expected error when no cascade step yields items")
	}
}

func TestPageScannerScan(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listingHTML))
	}))
	defer server.Close()

	sc := NewPageScanner(server.Client(), "test-agent", 1, 0)
	stubs, err := sc.Scan(context.Background(), scanner.Request{
		SourceName:    "APRA News",
		URL:           server.URL,
		Limit:         1,
		ItemSelectors: []string{".view-content .views-row"},
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(stubs) != 1 {
		t.Fatalf("limit not applied: got %d stubs", len(stubs))
	}
}

func TestPageScannerIsolatesFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	sc := NewPageScanner(server.Client(), "test-agent", 2, time.Millisecond)
	if _, err := sc.Scan(context.Background(), scanner.Request{SourceName: "APRA News", URL: server.URL, Limit: 5}); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
}

func TestResolveLink(t *testing.T) {
	t.Parallel()

	base, _ := url.Parse("https://www.apra.gov.au/news-and-publications")

	cases := []struct{ href, want string }{
		{"/news/item", "https://www.apra.gov.au/news/item"},
		{"https://other.gov.au/x", "https://other.gov.au/x"},
		{"#top", ""},
		{"javascript:void(0)", ""},
		{"mailto:info@apra.gov.au", ""},
	}
	for _, tc := range cases {
		if got := resolveLink(base, tc.href); got != tc.want {
			t.Fatalf("resolveLink(%q) = %q, want %q", tc.href, got, tc.want)
		}
	}
}
