package activity

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// DefaultCapacity bounds a MemoryStore created with capacity <= 0.
const DefaultCapacity = 10000

// MemoryStore implements Store using an in-memory slice. When full, the
// oldest entries are discarded.
type MemoryStore struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
}

// NewMemoryStore creates a new empty MemoryStore.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{capacity: capacity}
}

func (s *MemoryStore) WriteEntries(_ context.Context, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
	if over := len(s.entries) - s.capacity; over > 0 {
		s.entries = append([]Entry(nil), s.entries[over:]...)
	}
	return nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) QueryByIndex(_ context.Context, indexType, key string, opts QueryOptions) ([]Entry, string, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cur, hasCursor := parseCursor(opts.Cursor)

	var matched []Entry
	for _, e := range s.entries {
		if e.IndexType != indexType || !strings.EqualFold(e.IndexKey, key) {
			continue
		}
		if opts.Since != nil && e.OccurredAt.Before(*opts.Since) {
			continue
		}
		if opts.Until != nil && e.OccurredAt.After(*opts.Until) {
			continue
		}
		if hasCursor && !cur.after(e) {
			continue
		}
		matched = append(matched, e)
	}
	newestFirst(matched)

	totalCount := len(matched)
	var nextCursor string
	if limit := opts.limit(); len(matched) > limit {
		matched = matched[:limit]
		nextCursor = CursorFor(matched[len(matched)-1])
	}
	return matched, nextCursor, totalCount, nil
}

func (s *MemoryStore) Search(_ context.Context, query string, opts SearchOptions) ([]Entry, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	indexType := opts.IndexType
	if indexType == "" {
		indexType = IndexQuestion
	}
	q := strings.ToLower(strings.TrimSpace(query))
	var matched []Entry
	for _, e := range s.entries {
		if e.IndexType != indexType {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(e.Summary), q) {
			continue
		}
		if opts.Since != nil && e.OccurredAt.Before(*opts.Since) {
			continue
		}
		matched = append(matched, e)
	}
	newestFirst(matched)

	totalCount := len(matched)
	if limit := opts.limit(); len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, totalCount, nil
}

func newestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return sortsBefore(entries[i], entries[j])
	})
}
