// Package history keeps recent analyses and user bookmarks for the API layer.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Skufu/MedIntel/internal/analysis"
)

// MaxHistory is how many recent analyses are retained.
const MaxHistory = 20

var (
	ErrNotFound          = errors.New("entry not found")
	ErrDuplicateBookmark = errors.New("this analysis is already saved")
	ErrDuplicateID       = errors.New("an entry with this id already exists")
)

type Entry struct {
	ID           string          `json:"id"`
	Query        string          `json:"query"`
	Timestamp    time.Time       `json:"timestamp"`
	TopCondition string          `json:"topCondition"`
	Score        int             `json:"score"`
	Result       analysis.Result `json:"data"`
}

// NewEntry summarizes res under id. An empty id gets a random UUID.
func NewEntry(id, query string, res analysis.Result) Entry {
	if id == "" {
		id = uuid.NewString()
	}
	e := Entry{
		ID:           id,
		Query:        query,
		Timestamp:    res.Timestamp,
		TopCondition: "Unknown",
		Result:       res,
	}
	if top, ok := res.Top(); ok {
		e.TopCondition = top.ConditionName
		e.Score = top.Score
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	return e
}

// Store persists history (newest first, capped at MaxHistory) and bookmarks
// (newest first, unique by query text). Ids are unique within each list;
// adding a used one fails with ErrDuplicateID.
type Store interface {
	AddHistory(ctx context.Context, e Entry) error
	History(ctx context.Context) ([]Entry, error)
	DeleteHistory(ctx context.Context, id string) error
	ClearHistory(ctx context.Context) error

	AddBookmark(ctx context.Context, e Entry) error
	Bookmarks(ctx context.Context) ([]Entry, error)
	DeleteBookmark(ctx context.Context, id string) error

	Ping(ctx context.Context) error
	Close() error
}
