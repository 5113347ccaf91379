package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"seo-article-agent/internal/domain"
	"seo-article-agent/internal/infra/db/jobstore"
)

// Schema mirrors deploy/postgres/init.sql. seq records insertion order.
const Schema = `
CREATE TABLE IF NOT EXISTS jobs (
  seq               BIGSERIAL,
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
CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs (created_at DESC, seq DESC);`

var _ jobstore.Backend = (*JobBackend)(nil)

type JobBackend struct {
	pool *pgxpool.Pool
}

func NewJobBackend(pool *pgxpool.Pool) *JobBackend {
	return &JobBackend{pool: pool}
}

// EnsureSchema creates the jobs table when missing.
func (r *JobBackend) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", wrapPgErr(err))
	}
	return nil
}

func (r *JobBackend) Upsert(ctx context.Context, row jobstore.Row) error {
	const q = `
INSERT INTO jobs (id, status, topic, target_word_count, language, source_data, article, error_message, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
  status=EXCLUDED.status,
  topic=EXCLUDED.topic,
  target_word_count=EXCLUDED.target_word_count,
  language=EXCLUDED.language,
  source_data=EXCLUDED.source_data,
  article=EXCLUDED.article,
  error_message=EXCLUDED.error_message,
  updated_at=EXCLUDED.updated_at;`

	if _, err := r.pool.Exec(ctx, q, row.Values()...); err != nil {
		return fmt.Errorf("upsert job %s: %w", row.ID, wrapPgErr(err))
	}
	return nil
}

func (r *JobBackend) Load(ctx context.Context, id string) (jobstore.Row, error) {
	q := `SELECT ` + strings.Join(jobstore.Columns, ", ") + ` FROM jobs WHERE id=$1;`

	var row jobstore.Row
	err := r.pool.QueryRow(ctx, q, id).Scan(row.ScanTargets()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return jobstore.Row{}, fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return jobstore.Row{}, fmt.Errorf("load job %s: %w", id, wrapPgErr(err))
	}
	return row, nil
}

func (r *JobBackend) Recent(ctx context.Context, limit int) ([]jobstore.Row, error) {
	q := `SELECT ` + strings.Join(jobstore.Columns, ", ") + `
  FROM jobs
 ORDER BY created_at DESC, seq DESC
 LIMIT $1;`

	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent jobs: %w", wrapPgErr(err))
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
	return out, rows.Err()
}

// wrapPgErr adds the SQLSTATE code to server errors.
func wrapPgErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s (SQLSTATE %s): %w", pgErr.Message, pgErr.Code, err)
	}
	return err
}
