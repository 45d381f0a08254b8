package scanner

import (
	"context"
	"fmt"

	"RegulatorScanner/internal/domain"
)

// Request carries everything a strategy needs to scan one source.
type Request struct {
	SourceName string
	URL        string
	Limit      int
	// ItemSelectors overrides the page-mode container cascade for sources
	// whose markup is known; empty means use the generic cascade.
	ItemSelectors []string
	// WaitSelector is the element rendered-mode waits for before
	// snapshotting the DOM.
	WaitSelector string
}

// Scanner is one retrieval strategy (feed, page, rendered). Implementations
// return stubs only; full text is extracted later.
type Scanner interface {
	Mode() string
	Scan(ctx context.Context, req Request) ([]domain.Stub, error)
}

// Registry maps retrieval modes to their strategy implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a strategy.
func (r *Registry) Register(s Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[s.Mode()] = s
}

// Resolve returns the strategy for a mode or an error if it is absent.
func (r *Registry) Resolve(mode string) (Scanner, error) {
	if s, ok := r.scanners[mode]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("scanner mode %q is not registered", mode)
}
