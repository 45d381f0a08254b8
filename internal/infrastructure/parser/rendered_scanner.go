package parser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"RegulatorScanner/internal/domain"
	"RegulatorScanner/internal/scanner"
)

// RenderedScanner drives headless Chrome for listings that only exist after
// JavaScript runs. It waits for a marker element, snapshots the DOM, and
// hands the snapshot to the same extraction logic the static scanner uses.
type RenderedScanner struct {
	loadTimeout time.Duration
	userAgent   string
}

var _ scanner.Scanner = (*RenderedScanner)(nil)

// NewRenderedScanner configures the per-page-load timeout.
func NewRenderedScanner(loadTimeout time.Duration, userAgent string) *RenderedScanner {
	if loadTimeout <= 0 {
		loadTimeout = 45 * time.Second
	}
	return &RenderedScanner{loadTimeout: loadTimeout, userAgent: userAgent}
}

// Mode identifies the strategy inside the registry.
func (r *RenderedScanner) Mode() string {
	return "rendered"
}

// Scan loads the page in a browser, waits for the marker selector to become
// visible, then extracts stubs from the rendered DOM snapshot.
func (r *RenderedScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Stub, error) {
	html, err := r.snapshot(ctx, req.URL, req.WaitSelector)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", req.SourceName, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse rendered page %s: %w", req.SourceName, err)
	}

	return extractListing(doc, req)
}

func (r *RenderedScanner) snapshot(ctx context.Context, pageURL, waitSelector string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	if r.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(r.userAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, r.loadTimeout)
	defer cancelTimeout()

	if waitSelector == "" {
		waitSelector = "body"
	}

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible(waitSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", pageURL, err)
	}

	if strings.TrimSpace(html) == "" {
		return "", fmt.Errorf("empty rendered document for %s", pageURL)
	}

	return html, nil
}
