package history

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps everything in process memory.
type MemoryStore struct {
	mu        sync.Mutex
	history   []Entry
	bookmarks []Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) AddHistory(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if hasID(s.history, e.ID) {
		return ErrDuplicateID
	}
	s.history = slices.Insert(s.history, 0, e)
	if len(s.history) > MaxHistory {
		s.history = s.history[:MaxHistory]
	}
	return nil
}

func (s *MemoryStore) History(_ context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.history), nil
}

func (s *MemoryStore) DeleteHistory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(&s.history, id)
}

func (s *MemoryStore) ClearHistory(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	return nil
}

func (s *MemoryStore) AddBookmark(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.ContainsFunc(s.bookmarks, func(b Entry) bool { return b.Query == e.Query }) {
		return ErrDuplicateBookmark
	}
	if hasID(s.bookmarks, e.ID) {
		return ErrDuplicateID
	}
	s.bookmarks = slices.Insert(s.bookmarks, 0, e)
	return nil
}

func (s *MemoryStore) Bookmarks(_ context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.bookmarks), nil
}

func (s *MemoryStore) DeleteBookmark(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(&s.bookmarks, id)
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func hasID(entries []Entry, id string) bool {
	return slices.ContainsFunc(entries, func(e Entry) bool { return e.ID == id })
}

func remove(entries *[]Entry, id string) error {
	i := slices.IndexFunc(*entries, func(e Entry) bool { return e.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	*entries = slices.Delete(*entries, i, i+1)
	return nil
}
