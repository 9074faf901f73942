package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

const postgresSchema = `
CREATE TABLE IF NOT EXISTS analysis_history (
	seq           BIGSERIAL PRIMARY KEY,
	id            TEXT NOT NULL UNIQUE,
	query         TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	top_condition TEXT NOT NULL DEFAULT '',
	score         INTEGER NOT NULL DEFAULT 0,
	payload       JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS analysis_bookmarks (
	seq           BIGSERIAL PRIMARY KEY,
	id            TEXT NOT NULL UNIQUE,
	query         TEXT NOT NULL UNIQUE,
	created_at    TIMESTAMPTZ NOT NULL,
	top_condition TEXT NOT NULL DEFAULT '',
	score         INTEGER NOT NULL DEFAULT 0,
	payload       JSONB NOT NULL
);
`

// PostgresStore persists entries through a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgres opens a pool, verifies it, and creates the schema.
func ConnectPostgres(ctx context.Context, url string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) AddHistory(ctx context.Context, e Entry) error {
	payload, err := json.Marshal(e.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO analysis_history (id, query, created_at, top_condition, score, payload)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			e.ID, e.Query, e.Timestamp, e.TopCondition, e.Score, payload); err != nil {
			if isPgUnique(err) {
				return ErrDuplicateID
			}
			return fmt.Errorf("insert history: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			DELETE FROM analysis_history WHERE seq NOT IN (
				SELECT seq FROM analysis_history ORDER BY seq DESC LIMIT $1
			)`, MaxHistory); err != nil {
			return fmt.Errorf("trim history: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) History(ctx context.Context) ([]Entry, error) {
	return s.list(ctx, "analysis_history")
}

func (s *PostgresStore) DeleteHistory(ctx context.Context, id string) error {
	return s.delete(ctx, "analysis_history", id)
}

func (s *PostgresStore) ClearHistory(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM analysis_history`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddBookmark(ctx context.Context, e Entry) error {
	payload, err := json.Marshal(e.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO analysis_bookmarks (id, query, created_at, top_condition, score, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (query) DO NOTHING`,
		e.ID, e.Query, e.Timestamp, e.TopCondition, e.Score, payload)
	if err != nil {
		if isPgUnique(err) {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert bookmark: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicateBookmark
	}
	return nil
}

func (s *PostgresStore) Bookmarks(ctx context.Context) ([]Entry, error) {
	return s.list(ctx, "analysis_bookmarks")
}

func (s *PostgresStore) DeleteBookmark(ctx context.Context, id string) error {
	return s.delete(ctx, "analysis_bookmarks", id)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) list(ctx context.Context, table string) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, query, created_at, top_condition, score, payload
		FROM `+table+` ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var (
			e       Entry
			payload []byte
		)
		if err := row.Scan(&e.ID, &e.Query, &e.Timestamp, &e.TopCondition, &e.Score, &payload); err != nil {
			return Entry{}, err
		}
		if err := json.Unmarshal(payload, &e.Result); err != nil {
			return Entry{}, fmt.Errorf("entry %s: decode result: %w", e.ID, err)
		}
		return e, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	return entries, nil
}

func (s *PostgresStore) delete(ctx context.Context, table, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isPgUnique(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
