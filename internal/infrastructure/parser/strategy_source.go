package parser

import (
	"context"
	"fmt"
	"log/slog"

	"RegulatorScanner/internal/config"
	"RegulatorScanner/internal/domain"
	"RegulatorScanner/internal/ports"
	"RegulatorScanner/internal/scanner"
)

// StrategySource implements ArticleSource over the registered scanner
// strategies. A failing source is logged and contributes zero stubs; it can
// never abort the run.
type StrategySource struct {
	registry *scanner.Registry
	sources  []config.SourceConfig
	logger   *slog.Logger
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with config-defined sources.
func NewStrategySource(reg *scanner.Registry, sources []config.SourceConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sources:  sources,
		logger:   log,
	}
}

// FetchAll iterates over the configured regulators and executes their
// retrieval strategies, stamping each stub with its source name.
func (s *StrategySource) FetchAll(ctx context.Context) ([]domain.Article, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.info("fetch all sources", "sources", len(s.sources))

	var aggregated []domain.Article
	for _, src := range s.sources {
		stubs := s.fetchOne(ctx, src)
		for _, stub := range stubs {
			aggregated = append(aggregated, domain.Article{
				Link:      stub.Link,
				Title:     stub.Title,
				Source:    src.Name,
				Published: stub.Published,
				Summary:   stub.Summary,
			})
		}
		s.info("source done", "source", src.Name, "stubs", len(stubs))
	}

	s.info("fetch all done", "total_stubs", len(aggregated))
	return aggregated, nil
}

func (s *StrategySource) fetchOne(ctx context.Context, src config.SourceConfig) []domain.Stub {
	strategy, err := s.registry.Resolve(src.Mode)
	if err != nil {
		s.warn("source skipped", "source", src.Name, "error", err)
		return nil
	}

	req := scanner.Request{
		SourceName:    src.Name,
		URL:           src.URL,
		Limit:         src.Limit,
		ItemSelectors: src.ItemSelectors,
		WaitSelector:  src.WaitSelector,
	}

	stubs, err := strategy.Scan(ctx, req)
	if err != nil {
		s.warn("source failed", "source", src.Name, "mode", src.Mode, "error", err)
		return nil
	}
	return stubs
}

func (s *StrategySource) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
