package parser

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"RegulatorScanner/internal/domain"
	"RegulatorScanner/internal/scanner"
)

// FeedScanner retrieves an RSS/Atom document and maps its entries to stubs.
type FeedScanner struct {
	client *fetchClient
	parser *gofeed.Parser
}

var _ scanner.Scanner = (*FeedScanner)(nil)

// NewFeedScanner wires the shared retry policy; a nil http.Client gets a
// sensible default timeout.
func NewFeedScanner(client *http.Client, userAgent string, attempts int, backoff time.Duration) *FeedScanner {
	return &FeedScanner{
		client: newFetchClient(client, userAgent, attempts, backoff),
		parser: gofeed.NewParser(),
	}
}

// Mode identifies the strategy inside the registry.
func (f *FeedScanner) Mode() string {
	return "feed"
}

// Scan downloads and parses the feed, returning at most req.Limit stubs.
func (f *FeedScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Stub, error) {
	raw, err := f.client.get(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", req.SourceName, err)
	}

	feed, err := f.parser.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", req.SourceName, err)
	}

	stubs := make([]domain.Stub, 0, req.Limit)
	for _, item := range feed.Items {
		if req.Limit > 0 && len(stubs) >= req.Limit {
			break
		}
		if item.Link == "" {
			continue
		}

		published := item.Published
		if published == "" {
			published = item.Updated
		}

		stubs = append(stubs, domain.Stub{
			Title:     item.Title,
			Link:      item.Link,
			Published: published,
			Summary:   item.Description,
		})
	}

	return stubs, nil
}
