package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"InvestingIdeas/internal/domain"
	"InvestingIdeas/internal/ports"
)

const (
	ideasTable     = "investing_ideas"
	companiesTable = "investing_idea_companies"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS investing_ideas (
    title      TEXT        NOT NULL,
    link       TEXT        NOT NULL,
    position   INTEGER     NOT NULL,
    run_id     UUID        NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (title, link)
);
CREATE TABLE IF NOT EXISTS investing_idea_companies (
    title    TEXT    NOT NULL,
    link     TEXT    NOT NULL,
    position INTEGER NOT NULL,
    name     TEXT    NOT NULL,
    PRIMARY KEY (title, link, name),
    FOREIGN KEY (title, link) REFERENCES investing_ideas (title, link) ON DELETE CASCADE
);`

// PostgresRepository mirrors each run's output document into Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ ports.RecordRepository = (*PostgresRepository)(nil)

// Connect opens a pool, verifies it and ensures the tables exist.
func Connect(ctx context.Context, dsn string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &PostgresRepository{pool: pool}, nil
}

// Close releases the pool.
func (r *PostgresRepository) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// ReplaceAll swaps the stored snapshot for records inside one transaction.
func (r *PostgresRepository) ReplaceAll(ctx context.Context, runID string, records []domain.IdeaRecord) error {
	if r.pool == nil {
		return nil
	}

	statements := buildReplaceStatements(runID, records)

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, st := range statements {
		query, args, err := st.ToSql()
		if err != nil {
			return fmt.Errorf("build query: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("exec %q: %w", query, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func buildReplaceStatements(runID string, records []domain.IdeaRecord) []sq.Sqlizer {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	statements := []sq.Sqlizer{
		psql.Delete(companiesTable),
		psql.Delete(ideasTable),
	}
	if len(records) == 0 {
		return statements
	}

	ideas := psql.Insert(ideasTable).Columns("title", "link", "position", "run_id")
	companies := psql.Insert(companiesTable).Columns("title", "link", "position", "name")
	hasCompanies := false

	for i, rec := range records {
		ideas = ideas.Values(rec.Title, rec.Link, i, runID)
		for j, name := range rec.Companies {
			companies = companies.Values(rec.Title, rec.Link, j, name)
			hasCompanies = true
		}
	}

	statements = append(statements, ideas)
	if hasCompanies {
		statements = append(statements, companies)
	}
	return statements
}
