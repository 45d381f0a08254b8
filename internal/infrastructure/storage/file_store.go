package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"RegulatorScanner/internal/corpus"
	"RegulatorScanner/internal/domain"
	"RegulatorScanner/internal/ports"
)

// FileStore persists the corpus as an indented UTF-8 JSON array, rewritten
// in full on every run. It is the sole source of truth between runs; a
// missing or corrupt file degrades to an empty corpus.
type FileStore struct {
	path   string
	logger *slog.Logger
}

var _ ports.CorpusStore = (*FileStore)(nil)

// NewFileStore points the store at the corpus file path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// record is the on-disk article shape. It carries fields older revisions of
// the corpus file used (a single industry string, flat risk_* fields) so
// those files still load and migrate forward.
type record struct {
	domain.Article

	LegacyIndustry       string `json:"industry,omitempty"`
	LegacyRiskRating     string `json:"risk_rating,omitempty"`
	LegacyRiskRationale  string `json:"risk_rationale,omitempty"`
	LegacyRiskConfidence string `json:"risk_confidence,omitempty"`
}

// Load reads and sanitizes the persisted corpus. Any read or parse failure
// is logged and yields an empty corpus, never an error that aborts the run.
func (s *FileStore) Load(ctx context.Context) (corpus.Corpus, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.warn("corpus file unreadable, starting empty", "path", s.path, "error", err)
		}
		return corpus.Corpus{}, nil
	}

	var records []record
	if err := json.Unmarshal(raw, &records); err != nil {
		s.warn("corpus file corrupt, starting empty", "path", s.path, "error", err)
		return corpus.Corpus{}, nil
	}

	c := corpus.Corpus{Articles: make([]domain.Article, 0, len(records))}
	for _, rec := range records {
		c.Articles = append(c.Articles, migrate(rec))
	}
	c.Sanitize()

	return c, nil
}

// migrate folds legacy single-industry and flat risk fields into the
// current schema. Current-schema fields win when both are present.
func migrate(rec record) domain.Article {
	art := rec.Article

	if len(art.Industries) == 0 && rec.LegacyIndustry != "" {
		art.Industries = []string{rec.LegacyIndustry}
	}
	if art.Impact.Rating == "" && rec.LegacyRiskRating != "" {
		art.Impact = domain.Impact{
			Rating:     rec.LegacyRiskRating,
			Rationale:  rec.LegacyRiskRationale,
			Confidence: rec.LegacyRiskConfidence,
		}
	}

	return art
}

// Save rewrites the corpus file atomically: marshal to a temp file in the
// same directory, then rename over the old one.
func (s *FileStore) Save(ctx context.Context, c corpus.Corpus) error {
	payload, err := json.MarshalIndent(c.Articles, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal corpus: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".corpus-*.json")
	if err != nil {
		return fmt.Errorf("create temp corpus file: %w", err)
	}

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write corpus: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close corpus file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace corpus file: %w", err)
	}

	return nil
}

func (s *FileStore) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
