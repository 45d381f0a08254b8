package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"RegulatorScanner/internal/corpus"
	"RegulatorScanner/internal/domain"
	"RegulatorScanner/internal/ports"
)

// PipelineDeps wires all driven adapters into the run orchestration.
// Optional adapters (repository, notifier) may be nil.
type PipelineDeps struct {
	Source          ports.ArticleSource
	Extractor       ports.ContentExtractor
	Enricher        ports.Enricher
	Store           ports.CorpusStore
	Repository      ports.ProcessedRepository
	Notifier        ports.Notifier
	Renderer        ports.Renderer
	HTMLPath        string
	XMLPath         string
	PolitenessDelay time.Duration
	Logger          *slog.Logger
}

// Pipeline implements one batch run:
// Load -> Fetch -> Extract -> Merge -> Enrich(new only) -> Save -> Render.
// Save happens once, after enrichment, so a crash mid-run loses only that
// run's work and never corrupts prior history.
type Pipeline struct {
	deps PipelineDeps
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{deps: deps}
}

// Run executes one full ingestion cycle. Per-source and per-article failures
// degrade; the only errors returned are the ones that prevent producing any
// output at all (persisting the corpus, writing the artifacts).
func (p *Pipeline) Run(ctx context.Context) error {
	if p.deps.Source == nil || p.deps.Store == nil || p.deps.Renderer == nil {
		return fmt.Errorf("pipeline misconfigured: source, store, and renderer are required")
	}

	existing, err := p.deps.Store.Load(ctx)
	if err != nil {
		// Store implementations degrade to empty on bad files; an error
		// here is unexpected but still not worth losing the run over.
		p.warn("corpus load failed, starting empty", "error", err)
		existing = corpus.Corpus{}
	}
	p.info("corpus loaded", "articles", existing.Len())

	incoming, err := p.deps.Source.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("fetch sources: %w", err)
	}

	p.extractAll(ctx, incoming, existing.Links())

	merged, added := corpus.Merge(existing, incoming)
	p.info("merge complete", "incoming", len(incoming), "new", len(added), "total", merged.Len())

	p.enrichNew(ctx, &merged, added)

	if err := p.deps.Store.Save(ctx, merged); err != nil {
		return fmt.Errorf("save corpus: %w", err)
	}

	if err := p.render(merged); err != nil {
		return err
	}

	p.notify(ctx, &merged, added)
	return nil
}

// extractAll fills full text for stubs whose link is not already in the
// corpus; known links are skipped because their first-seen copy wins anyway.
// A politeness delay separates consecutive page fetches.
func (p *Pipeline) extractAll(ctx context.Context, incoming []domain.Article, known map[string]bool) {
	if p.deps.Extractor == nil {
		return
	}

	fetched := 0
	for i := range incoming {
		if known[incoming[i].Link] {
			continue
		}

		if fetched > 0 {
			p.sleep(ctx, p.deps.PolitenessDelay)
		}
		fetched++

		text, pageDate := p.deps.Extractor.Extract(ctx, incoming[i].Link)
		incoming[i].FullText = text
		if incoming[i].Published == "" && pageDate != "" {
			incoming[i].Published = pageDate
		}
	}
}

// enrichNew runs the enrichment engine over exactly the links this run
// added. The audit repository, when present, acts as a secondary guard so a
// link that slipped back in is still never re-enriched.
func (p *Pipeline) enrichNew(ctx context.Context, merged *corpus.Corpus, added []string) {
	if p.deps.Enricher == nil || len(added) == 0 {
		return
	}

	processed := map[string]bool{}
	if p.deps.Repository != nil {
		var err error
		processed, err = p.deps.Repository.AlreadyProcessed(ctx, added)
		if err != nil {
			p.warn("audit lookup failed", "error", err)
			processed = map[string]bool{}
		}
	}

	for _, link := range added {
		article := merged.Get(link)
		if article == nil || article.Enriched() || processed[link] {
			continue
		}

		p.deps.Enricher.Enrich(ctx, article)

		if p.deps.Repository != nil {
			if err := p.deps.Repository.SaveProcessed(ctx, *article); err != nil {
				p.warn("audit save failed", "link", link, "error", err)
			}
		}
	}
}

func (p *Pipeline) render(merged corpus.Corpus) error {
	html, err := p.deps.Renderer.HTML(merged)
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	if err := os.WriteFile(p.deps.HTMLPath, html, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", p.deps.HTMLPath, err)
	}

	xml, err := p.deps.Renderer.XML(merged)
	if err != nil {
		return fmt.Errorf("render xml: %w", err)
	}
	if err := os.WriteFile(p.deps.XMLPath, xml, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", p.deps.XMLPath, err)
	}

	p.info("outputs written", "html", p.deps.HTMLPath, "xml", p.deps.XMLPath)
	return nil
}

func (p *Pipeline) notify(ctx context.Context, merged *corpus.Corpus, added []string) {
	if p.deps.Notifier == nil || len(added) == 0 {
		return
	}

	digest := buildDigest(merged, added)
	if err := p.deps.Notifier.PublishDigest(ctx, digest); err != nil {
		p.warn("digest delivery failed", "error", err)
	}
}

func buildDigest(merged *corpus.Corpus, added []string) string {
	var b []byte
	b = append(b, fmt.Sprintf("%d new regulatory updates:\n\n", len(added))...)
	for _, link := range added {
		article := merged.Get(link)
		if article == nil {
			continue
		}
		b = append(b, fmt.Sprintf("- [%s] %s\n  Risk: %s\n  %s\n\n",
			article.Source, article.Title, article.Impact.Rating, article.Link)...)
	}
	return string(b)
}

func (p *Pipeline) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.deps.Logger != nil {
		p.deps.Logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.deps.Logger != nil {
		p.deps.Logger.Warn(msg, args...)
	}
}
