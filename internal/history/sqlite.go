package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS history (
	seq           INTEGER PRIMARY KEY AUTOINCREMENT,
	id            TEXT NOT NULL UNIQUE,
	query         TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	top_condition TEXT NOT NULL DEFAULT '',
	score         INTEGER NOT NULL DEFAULT 0,
	payload       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS bookmarks (
	seq           INTEGER PRIMARY KEY AUTOINCREMENT,
	id            TEXT NOT NULL UNIQUE,
	query         TEXT NOT NULL UNIQUE,
	created_at    TEXT NOT NULL,
	top_condition TEXT NOT NULL DEFAULT '',
	score         INTEGER NOT NULL DEFAULT 0,
	payload       TEXT NOT NULL
);
`

// SQLiteStore persists entries to a pure-Go SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

type sqliteRow struct {
	ID           string `db:"id"`
	Query        string `db:"query"`
	CreatedAt    string `db:"created_at"`
	TopCondition string `db:"top_condition"`
	Score        int    `db:"score"`
	Payload      string `db:"payload"`
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) AddHistory(ctx context.Context, e Entry) error {
	row, err := toSQLiteRow(e)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO history (id, query, created_at, top_condition, score, payload)
		VALUES (:id, :query, :created_at, :top_condition, :score, :payload)`, row); err != nil {
		if isSQLiteUnique(err) {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert history: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM history WHERE seq NOT IN (
			SELECT seq FROM history ORDER BY seq DESC LIMIT ?
		)`, MaxHistory); err != nil {
		return fmt.Errorf("trim history: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) History(ctx context.Context) ([]Entry, error) {
	return s.list(ctx, "history")
}

func (s *SQLiteStore) DeleteHistory(ctx context.Context, id string) error {
	return s.delete(ctx, "history", id)
}

func (s *SQLiteStore) ClearHistory(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AddBookmark(ctx context.Context, e Entry) error {
	row, err := toSQLiteRow(e)
	if err != nil {
		return err
	}
	res, err := s.db.NamedExecContext(ctx, `
		INSERT INTO bookmarks (id, query, created_at, top_condition, score, payload)
		VALUES (:id, :query, :created_at, :top_condition, :score, :payload)
		ON CONFLICT(query) DO NOTHING`, row)
	if err != nil {
		// The query conflict is absorbed above, so a remaining unique
		// violation is on id.
		if isSQLiteUnique(err) {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert bookmark: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDuplicateBookmark
	}
	return nil
}

func (s *SQLiteStore) Bookmarks(ctx context.Context) ([]Entry, error) {
	return s.list(ctx, "bookmarks")
}

func (s *SQLiteStore) DeleteBookmark(ctx context.Context, id string) error {
	return s.delete(ctx, "bookmarks", id)
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// table is a fixed table name, never caller input.
func (s *SQLiteStore) list(ctx context.Context, table string) ([]Entry, error) {
	var rows []sqliteRow
	q := `SELECT id, query, created_at, top_condition, score, payload FROM ` + table + ` ORDER BY seq DESC`
	if err := s.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		e, err := r.entry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *SQLiteStore) delete(ctx context.Context, table, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func toSQLiteRow(e Entry) (sqliteRow, error) {
	payload, err := json.Marshal(e.Result)
	if err != nil {
		return sqliteRow{}, fmt.Errorf("encode result: %w", err)
	}
	return sqliteRow{
		ID:           e.ID,
		Query:        e.Query,
		CreatedAt:    e.Timestamp.UTC().Format(time.RFC3339Nano),
		TopCondition: e.TopCondition,
		Score:        e.Score,
		Payload:      string(payload),
	}, nil
}

func (r sqliteRow) entry() (Entry, error) {
	ts, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("entry %s: parse timestamp: %w", r.ID, err)
	}
	e := Entry{
		ID:           r.ID,
		Query:        r.Query,
		Timestamp:    ts,
		TopCondition: r.TopCondition,
		Score:        r.Score,
	}
	if err := json.Unmarshal([]byte(r.Payload), &e.Result); err != nil {
		return Entry{}, fmt.Errorf("entry %s: decode result: %w", r.ID, err)
	}
	return e, nil
}

func isSQLiteUnique(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
