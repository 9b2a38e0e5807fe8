package question

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/matthewbaird/signatures/internal/types"
)

// MemoryStore implements Store using an in-memory map.
type MemoryStore struct {
	mu        sync.RWMutex
	questions map[string]types.Question
}

// NewMemoryStore creates a store holding the given questions. Later
// duplicates replace earlier ones.
func NewMemoryStore(questions ...types.Question) (*MemoryStore, error) {
	s := &MemoryStore{questions: make(map[string]types.Question, len(questions))}
	for _, q := range questions {
		if err := s.Put(context.Background(), q); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewDefaultMemoryStore creates a store seeded with the embedded bank.
func NewDefaultMemoryStore() (*MemoryStore, error) {
	bank, err := DefaultBank()
	if err != nil {
		return nil, err
	}
	return NewMemoryStore(bank...)
}

func (s *MemoryStore) Get(_ context.Context, id string) (types.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[lookupKey(id)]
	if !ok {
		return types.Question{}, fmt.Errorf("%w: %q", ErrNotFound, strings.TrimSpace(id))
	}
	return q, nil
}

func (s *MemoryStore) List(_ context.Context, category string) ([]types.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	category = normalizeCategory(category)
	out := make([]types.Question, 0, len(s.questions))
	for _, q := range s.questions {
		if category != "" && q.Category != category {
			continue
		}
		out = append(out, q)
	}
	sortByID(out)
	return out, nil
}

func (s *MemoryStore) Search(ctx context.Context, query, category string, limit int) ([]types.Question, error) {
	words := keywords(query)
	if len(words) == 0 {
		return []types.Question{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	all, err := s.List(ctx, category)
	if err != nil {
		return nil, err
	}
	out := make([]types.Question, 0, len(all))
	for _, q := range all {
		if matches(q, words) {
			out = append(out, q)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) Categories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, q := range s.questions {
		if !seen[q.Category] {
			seen[q.Category] = true
			out = append(out, q.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) Put(_ context.Context, q types.Question) error {
	q, err := normalize(q)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[lookupKey(q.ID)] = q
	return nil
}
