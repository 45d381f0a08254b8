package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"RegulatorScanner/internal/scanner"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>ACCC News</title>
  <link>https://www.accc.gov.au</link>
  <item>
    <title>Court action against retailer</title>
    <link>https://www.accc.gov.au/media-release/court-action</link>
    <pubDate>Wed, 22 Oct 2025 09:30:00 +1100</pubDate>
    <description>The ACCC has instituted proceedings.</description>
  </item>
  <item>
    <title>Merger decision published</title>
    <link>https://www.accc.gov.au/media-release/merger-decision</link>
    <pubDate>Tue, 21 Oct 2025 14:00:00 +1100</pubDate>
    <description>Decision on the proposed acquisition.</description>
  </item>
  <item>
    <title>Third item past the cap</title>
    <link>https://www.accc.gov.au/media-release/third</link>
    <pubDate>Mon, 20 Oct 2025 10:00:00 +1100</pubDate>
  </item>
</channel>
</rss>`

func TestFeedScannerScan(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssFixture))
	}))
	defer server.Close()

	sc := NewFeedScanner(server.Client(), "test-agent", 1, 0)
	stubs, err := sc.Scan(context.Background(), scanner.Request{
		SourceName: "ACCC News",
		URL:        server.URL,
		Limit:      2,
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(stubs) != 2 {
		t.Fatalf("limit not applied: got %d stubs", len(stubs))
	}
	if stubs[0].Title != "Court action against retailer" {
		t.Fatalf("unexpected title: %q", stubs[0].Title)
	}
	if stubs[0].Link != "https://www.accc.gov.au/media-release/court-action" {
		t.Fatalf("unexpected link: %q", stubs[0].Link)
	}
	if stubs[0].Published != "Wed, 22 Oct 2025 09:30:00 +1100" {
		t.Fatalf("published string not preserved: %q", stubs[0].Published)
	}
	if stubs[0].Summary != "The ACCC has instituted proceedings." {
		t.Fatalf("unexpected summary: %q", stubs[0].Summary)
	}
}

func TestFeedScannerRetriesWithBackoff(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(rssFixture))
	}))
	defer server.Close()

	sc := NewFeedScanner(server.Client(), "test-agent", 3, time.Millisecond)
	stubs, err := sc.Scan(context.Background(), scanner.Request{SourceName: "ACCC News", URL: server.URL, Limit: 10})
	if err != nil {
		t.Fatalf("Scan after retries: %v", err)
	}
	if len(stubs) != 3 {
		t.Fatalf("expected 3 stubs, got %d", len(stubs))
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestFeedScannerExhaustsRetries(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	sc := NewFeedScanner(server.Client(), "test-agent", 3, time.Millisecond)
	if _, err := sc.Scan(context.Background(), scanner.Request{SourceName: "ACCC News", URL: server.URL, Limit: 10}); err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
}
