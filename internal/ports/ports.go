package ports

import (
	"context"

	"RegulatorScanner/internal/corpus"
	"RegulatorScanner/internal/domain"
)

// ArticleSource pulls fresh article stubs from every configured regulator.
type ArticleSource interface {
	FetchAll(ctx context.Context) ([]domain.Article, error)
}

// ContentExtractor turns an article URL into flattened body text, plus any
// publication date found on the page. Implementations degrade to a
// placeholder text instead of returning an error.
type ContentExtractor interface {
	Extract(ctx context.Context, url string) (text string, date string)
}

// Enricher assigns the AI summary, impact rating, and industry tags to an
// article in place. It is called at most once per article.
type Enricher interface {
	Enrich(ctx context.Context, article *domain.Article)
}

// CorpusStore persists the full corpus between runs.
type CorpusStore interface {
	Load(ctx context.Context) (corpus.Corpus, error)
	Save(ctx context.Context, c corpus.Corpus) error
}

// ProcessedRepository records which links already went through enrichment,
// as a secondary guard and audit trail alongside the corpus file.
type ProcessedRepository interface {
	AlreadyProcessed(ctx context.Context, links []string) (map[string]bool, error)
	SaveProcessed(ctx context.Context, article domain.Article) error
}

// Notifier delivers a digest of newly added articles after a run.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Renderer projects the corpus into the static output documents.
type Renderer interface {
	HTML(c corpus.Corpus) ([]byte, error)
	XML(c corpus.Corpus) ([]byte, error)
}
