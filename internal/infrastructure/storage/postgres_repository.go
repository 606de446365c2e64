package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// PostgresRepository persists digest run summaries.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.RunRepository = (*PostgresRepository)(nil)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Migrate creates the digest_runs table if it does not exist.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS digest_runs (
			id         TEXT PRIMARY KEY,
			mode       TEXT        NOT NULL,
			subject    TEXT        NOT NULL,
			themes     TEXT[]      NOT NULL DEFAULT '{}',
			item_count INT         NOT NULL,
			sent_to    TEXT        NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("migrate digest_runs: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SaveRun(ctx context.Context, run domain.DigestRun) error {
	query, args, err := r.builder.
		Insert("digest_runs").
		Columns("id", "mode", "subject", "themes", "item_count", "sent_to").
		Values(run.ID, string(run.Mode), run.Subject, pq.Array(run.Themes), run.ItemCount, run.SentTo).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build save run query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save digest run %s: %w", run.ID, err)
	}
	return nil
}
