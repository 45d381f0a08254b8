package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"RegulatorScanner/internal/domain"
	"RegulatorScanner/internal/ports"
)

// SQLiteRepository keeps an audit trail of processed articles and doubles as
// a secondary dedupe guard before enrichment. It is optional; when no path
// is configured the pipeline runs without it.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.ProcessedRepository = (*SQLiteRepository)(nil)

const schema = `CREATE TABLE IF NOT EXISTS processed_articles (
	link        TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	source      TEXT NOT NULL,
	risk_rating TEXT NOT NULL DEFAULT '',
	processed_at TIMESTAMP NOT NULL
)`

// OpenSQLiteRepository opens (and if necessary initializes) the audit DB.
func OpenSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init audit schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// AlreadyProcessed returns the subset of links that were recorded before.
func (r *SQLiteRepository) AlreadyProcessed(ctx context.Context, links []string) (map[string]bool, error) {
	result := map[string]bool{}
	if r == nil || r.db == nil || len(links) == 0 {
		return result, nil
	}

	query, args, err := sq.Select("link").
		From("processed_articles").
		Where(sq.Eq{"link": links}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build processed query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query processed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		result[link] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// SaveProcessed upserts the processed-article snapshot.
func (r *SQLiteRepository) SaveProcessed(ctx context.Context, article domain.Article) error {
	if r == nil || r.db == nil {
		return nil
	}

	query, args, err := sq.Insert("processed_articles").
		Columns("link", "title", "source", "risk_rating", "processed_at").
		Values(article.Link, article.Title, article.Source, article.Impact.Rating, time.Now().UTC()).
		Suffix("ON CONFLICT(link) DO UPDATE SET risk_rating = excluded.risk_rating, processed_at = excluded.processed_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert processed %s: %w", strings.TrimSpace(article.Link), err)
	}

	return nil
}
