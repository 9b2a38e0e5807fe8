// Package activity indexes composition events into a queryable history:
// every composition is recorded under its question, persona, active
// conditions and fired rules.
package activity

import (
	"context"
	"time"
)

// Index types.
const (
	IndexQuestion  = "question"
	IndexPersona   = "persona"
	IndexCondition = "condition"
	IndexRule      = "rule"
)

// IndexTypes lists the index types in the order entries are generated.
var IndexTypes = []string{IndexQuestion, IndexPersona, IndexCondition, IndexRule}

// Entry is one composition as seen from one indexed key.
type Entry struct {
	EventID       string    `json:"event_id"`
	CompositionID string    `json:"composition_id"`
	OccurredAt    time.Time `json:"occurred_at"`
	IndexType     string    `json:"index_type"`
	IndexKey      string    `json:"index_key"`
	QuestionID    string    `json:"question_id,omitempty"`
	Persona       string    `json:"persona"`
	Conditions    []string  `json:"conditions,omitempty"`
	FiredRules    []string  `json:"fired_rules,omitempty"`
	AddonCount    int       `json:"addon_count"`
	Summary       string    `json:"summary"`
}

// Store is the interface for reading and writing activity entries.
type Store interface {
	// WriteEntries writes the entries produced from one event.
	WriteEntries(ctx context.Context, entries []Entry) error

	// QueryByIndex returns entries for one indexed key, newest first.
	QueryByIndex(ctx context.Context, indexType, key string, opts QueryOptions) (entries []Entry, nextCursor string, totalCount int, err error)

	// Search matches summaries case-insensitively, newest first.
	Search(ctx context.Context, query string, opts SearchOptions) (entries []Entry, totalCount int, err error)
}
