package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"
)

func TestExtractorPrefersContentSelectors(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("The regulator announced new obligations for reporting entities. ", 6)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
		<nav><a href="/">Home</a><a href="/about">About</a></nav>
		<article><p>` + body + `</p></article>
		<footer>Contact us</footer>
		</body></html>`))
	}))
	defer server.Close()

	ex := NewExtractor(server.Client(), "test-agent", 1, 0)
	text, _ := ex.Extract(context.Background(), server.URL)

	if !strings.Contains(text, "new obligations for reporting entities") {
		t.Fatalf("article body missing from %q", text)
	}
	if strings.Contains(text, "Home") || strings.Contains(text, "Contact us") {
		t.Fatalf("chrome leaked into extracted text: %q", text)
	}
	if strings.ContainsAny(text, "<>\n") {
		t.Fatalf("extracted text not flattened: %q", text)
	}
}

func TestExtractorLargestBlockFallback(t *testing.T) {
	t.Parallel()

	// No article/main/content containers; a nav plus one long paragraph.
	paragraph := strings.Repeat("Market integrity update covering licensing outcomes. ", 5)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
		<nav>Home About Media Contact Subscribe Feedback Accessibility</nav>
		<p>` + paragraph + `</p>
		</body></html>`))
	}))
	defer server.Close()

	ex := NewExtractor(server.Client(), "test-agent", 1, 0)
	text, _ := ex.Extract(context.Background(), server.URL)

	if !strings.Contains(text, "Market integrity update") {
		t.Fatalf("paragraph missing from %q", text)
	}
	if strings.Contains(text, "Accessibility") {
		t.Fatalf("nav content leaked: %q", text)
	}
}

func TestExtractorFindsPageDate(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("Enforcement outcome details for the period. ", 8)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
		<article>
		<time datetime="2025-10-22">22 October 2025</time>
		<p>` + long + `</p>
		</article>
		</body></html>`))
	}))
	defer server.Close()

	ex := NewExtractor(server.Client(), "test-agent", 1, 0)
	_, date := ex.Extract(context.Background(), server.URL)

	if date != "2025-10-22" {
		t.Fatalf("expected datetime attribute, got %q", date)
	}
}

func TestExtractorRetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	long := strings.Repeat("Reserve Bank statement on monetary policy settings. ", 6)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "flaky", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`<html><body><article><p>` + long + `</p></article></body></html>`))
	}))
	defer server.Close()

	ex := NewExtractor(server.Client(), "test-agent", 3, time.Millisecond)
	text, _ := ex.Extract(context.Background(), server.URL)

	if strings.HasPrefix(text, "Error fetching content") {
		t.Fatalf("retry did not recover: %q", text)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	t.Parallel()

	// The cap would land inside the two-byte é; the cut must back off to
	// the previous rune start instead of emitting a broken sequence.
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"abcé", 4, "abc"},
		{"abcé", 5, "abcé"},
		{"statement — held", 11, "statement "},
		{"short", 100, "short"},
		{"anything", 0, "anything"},
	}
	for _, tc := range cases {
		got := truncate(tc.in, tc.max)
		if got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
		if !utf8.ValidString(got) {
			t.Fatalf("truncate(%q, %d) produced invalid UTF-8: %q", tc.in, tc.max, got)
		}
	}
}

func TestExtractorDegradesToPlaceholder(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	ex := NewExtractor(server.Client(), "test-agent", 2, time.Millisecond)
	text, date := ex.Extract(context.Background(), server.URL)

	if !strings.HasPrefix(text, "Error fetching content:") {
		t.Fatalf("expected placeholder, got %q", text)
	}
	if date != "" {
		t.Fatalf("expected empty date on failure, got %q", date)
	}
}
