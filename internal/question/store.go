// Package question holds the question bank: records with per-persona base
// answers, an in-memory store seeded from YAML and a SQLite-backed store.
package question

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/matthewbaird/signatures/internal/types"
)

// DefaultCategory is assigned to questions saved without a category.
const DefaultCategory = "GENERAL"

// DefaultSearchLimit caps search results when no limit is given.
const DefaultSearchLimit = 50

var (
	// ErrNotFound is returned when no question has the requested id.
	ErrNotFound = errors.New("question not found")
	// ErrInvalidQuestion is returned by Put for records that cannot be stored.
	ErrInvalidQuestion = errors.New("invalid question")
)

// Store is the interface for reading and writing the question bank. IDs are
// matched case-insensitively after trimming. List and Search return
// questions ordered by id.
type Store interface {
	Get(ctx context.Context, id string) (types.Question, error)
	List(ctx context.Context, category string) ([]types.Question, error)
	// Search matches every whitespace-separated keyword in query against
	// the question text, id and category, case-insensitively.
	Search(ctx context.Context, query, category string, limit int) ([]types.Question, error)
	Categories(ctx context.Context) ([]string, error)
	Put(ctx context.Context, q types.Question) error
}

// lookupKey is the case-insensitive identity of a question id.
func lookupKey(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

func normalizeCategory(category string) string {
	return strings.ToUpper(strings.TrimSpace(category))
}

// normalize prepares q for storage.
func normalize(q types.Question) (types.Question, error) {
	q.ID = strings.TrimSpace(q.ID)
	if q.ID == "" {
		return q, fmt.Errorf("%w: missing id", ErrInvalidQuestion)
	}
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return q, fmt.Errorf("%w: %s has no question text", ErrInvalidQuestion, q.ID)
	}
	q.Category = normalizeCategory(q.Category)
	if q.Category == "" {
		q.Category = DefaultCategory
	}
	return q, nil
}

func keywords(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

func matches(q types.Question, words []string) bool {
	haystack := strings.ToLower(q.Text + " " + q.ID + " " + q.Category)
	for _, w := range words {
		if !strings.Contains(haystack, w) {
			return false
		}
	}
	return true
}

func sortByID(items []types.Question) {
	sort.Slice(items, func(i, j int) bool {
		return lookupKey(items[i].ID) < lookupKey(items[j].ID)
	})
}

// Summaries converts questions to their list view.
func Summaries(items []types.Question) []types.QuestionSummary {
	out := make([]types.QuestionSummary, len(items))
	for i, q := range items {
		out[i] = q.Summary()
	}
	return out
}
