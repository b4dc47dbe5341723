package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/resume-editor/internal/types"
)

// schemaSQL creates the positional entry table. position is dense per kind
// (0..n-1); it is maintained by Append and Delete rather than a constraint so
// Delete can shift rows in one statement.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS resume_entries (
	kind     TEXT    NOT NULL,
	position INTEGER NOT NULL,
	data     JSONB   NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS resume_entries_kind_position ON resume_entries (kind, position);
`

// PostgresStore persists collections in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgres opens a pool, verifies it, and ensures the schema exists.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the connection pool
func (p *PostgresStore) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// List returns the stored records of kind in position order.
func (p *PostgresStore) List(ctx context.Context, kind types.Kind) ([]types.Record, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT data FROM resume_entries WHERE kind = $1 ORDER BY position`,
		string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	defer rows.Close()

	records := []types.Record{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", kind, err)
		}
		rec := types.Record{}
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode %s row: %w", kind, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", kind, err)
	}
	return records, nil
}

// Get returns the record at position.
func (p *PostgresStore) Get(ctx context.Context, kind types.Kind, position int) (types.Record, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx,
		`SELECT data FROM resume_entries WHERE kind = $1 AND position = $2`,
		string(kind), position,
	).Scan(&raw)
	if err == pgx.ErrNoRows {
		return nil, p.outOfRange(ctx, kind, position)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s[%d]: %w", kind, position, err)
	}

	rec := types.Record{}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode %s[%d]: %w", kind, position, err)
	}
	return rec, nil
}

// Append inserts rec after the last stored record and returns its position.
func (p *PostgresStore) Append(ctx context.Context, kind types.Kind, rec types.Record) (int, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("failed to encode record: %w", err)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Serialize writers per kind so concurrent appends cannot claim the same position.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, string(kind)); err != nil {
		return 0, fmt.Errorf("failed to lock %s: %w", kind, err)
	}

	var position int
	err = tx.QueryRow(ctx,
		`INSERT INTO resume_entries (kind, position, data)
		 SELECT $1, COUNT(*), $2 FROM resume_entries WHERE kind = $1
		 RETURNING position`,
		string(kind), data,
	).Scan(&position)
	if err != nil {
		return 0, fmt.Errorf("failed to append %s: %w", kind, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit append: %w", err)
	}
	return position, nil
}

// Replace overwrites the record at position.
func (p *PostgresStore) Replace(ctx context.Context, kind types.Kind, position int, rec types.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	tag, err := p.pool.Exec(ctx,
		`UPDATE resume_entries SET data = $3, updated_at = NOW() WHERE kind = $1 AND position = $2`,
		string(kind), position, data,
	)
	if err != nil {
		return fmt.Errorf("failed to replace %s[%d]: %w", kind, position, err)
	}
	if tag.RowsAffected() == 0 {
		return p.outOfRange(ctx, kind, position)
	}
	return nil
}

// Delete removes the record at position and shifts later records down.
func (p *PostgresStore) Delete(ctx context.Context, kind types.Kind, position int) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, string(kind)); err != nil {
		return fmt.Errorf("failed to lock %s: %w", kind, err)
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM resume_entries WHERE kind = $1 AND position = $2`,
		string(kind), position,
	)
	if err != nil {
		return fmt.Errorf("failed to delete %s[%d]: %w", kind, position, err)
	}
	if tag.RowsAffected() == 0 {
		return p.outOfRange(ctx, kind, position)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE resume_entries SET position = position - 1 WHERE kind = $1 AND position > $2`,
		string(kind), position,
	); err != nil {
		return fmt.Errorf("failed to shift %s positions: %w", kind, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

func (p *PostgresStore) outOfRange(ctx context.Context, kind types.Kind, position int) error {
	var length int
	if err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM resume_entries WHERE kind = $1`, string(kind),
	).Scan(&length); err != nil {
		length = -1
	}
	return &ErrPositionOutOfRange{Kind: kind, Position: position, Length: length}
}
