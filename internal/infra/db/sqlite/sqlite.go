package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"seo-article-agent/internal/domain"
	"seo-article-agent/internal/infra/db/jobstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
  id                TEXT PRIMARY KEY,
  status            TEXT NOT NULL,
  topic             TEXT NOT NULL,
  target_word_count INTEGER NOT NULL,
  language          TEXT NOT NULL,
  source_data       TEXT,
  article           TEXT,
  error_message     TEXT,
  created_at        TEXT NOT NULL,
  updated_at        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs (created_at);`

var _ jobstore.Backend = (*Backend)(nil)

// Backend stores job rows in a single SQLite file.
type Backend struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

// Open creates the database file (and its directory) if needed and applies the schema.
func Open(ctx context.Context, path string) (*Backend, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: sqlite path is required", domain.ErrInvalidArgument)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Backend{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Question)}, nil
}

func (b *Backend) Close() error {
	return b.db.Close()
}

func (b *Backend) Upsert(ctx context.Context, row jobstore.Row) error {
	sets := make([]string, 0, len(jobstore.Columns)-1)
	for _, c := range jobstore.Columns[1:] {
		if c == "created_at" {
			continue
		}
		sets = append(sets, c+" = excluded."+c)
	}
	_, err := b.sb.Insert("jobs").
		Columns(jobstore.Columns...).
		Values(row.Values()...).
		Suffix("ON CONFLICT(id) DO UPDATE SET " + strings.Join(sets, ", ")).
		RunWith(b.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("upsert job %s: %w", row.ID, err)
	}
	return nil
}

func (b *Backend) Load(ctx context.Context, id string) (jobstore.Row, error) {
	var row jobstore.Row
	err := b.sb.Select(jobstore.Columns...).
		From("jobs").
		Where(sq.Eq{"id": id}).
		RunWith(b.db).
		QueryRowContext(ctx).
		Scan(row.ScanTargets()...)
	if errors.Is(err, sql.ErrNoRows) {
		return jobstore.Row{}, fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return jobstore.Row{}, fmt.Errorf("load job %s: %w", id, err)
	}
	return row, nil
}

func (b *Backend) Recent(ctx context.Context, limit int) ([]jobstore.Row, error) {
	rows, err := b.sb.Select(jobstore.Columns...).
		From("jobs").
		OrderBy("created_at DESC", "rowid DESC").
		Limit(uint64(limit)).
		RunWith(b.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query recent jobs: %w", err)
	}
	defer rows.Close()

	var out []jobstore.Row
	for rows.Next() {
		var row jobstore.Row
		if err := rows.Scan(row.ScanTargets()...); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}
