package activity

import (
	"context"
	"fmt"

	"github.com/matthewbaird/signatures/internal/event"
)

// customKey indexes custom questions, which have no question id.
const customKey = "CUSTOM"

// Indexer consumes composition events and writes one activity entry per
// indexed key. It implements eventbus.Handler.
type Indexer struct {
	store Store
}

// NewIndexer creates a new activity indexer.
func NewIndexer(store Store) *Indexer {
	return &Indexer{store: store}
}

// HandleEvent indexes CompositionCreated events and ignores the rest.
func (idx *Indexer) HandleEvent(ctx context.Context, evt event.DomainEvent) error {
	if evt.EventType != event.CompositionCreated {
		return nil
	}
	p, err := event.DecodeCompositionCreated(evt)
	if err != nil {
		return fmt.Errorf("indexing %s: %w", evt.ID, err)
	}
	return idx.store.WriteEntries(ctx, Entries(evt, p))
}

// Entries builds the activity entries for one composition: its question
// (or CUSTOM), its persona, each active condition and each fired rule.
func Entries(evt event.DomainEvent, p event.CompositionCreatedPayload) []Entry {
	questionKey := p.QuestionID
	if p.Custom || questionKey == "" {
		questionKey = customKey
	}

	base := Entry{
		EventID:       evt.ID,
		CompositionID: p.CompositionID,
		OccurredAt:    evt.OccurredAt,
		QuestionID:    p.QuestionID,
		Persona:       p.Persona,
		Conditions:    p.ActiveConditions,
		FiredRules:    p.FiredRules,
		AddonCount:    p.AddonCount,
		Summary:       evt.Summary,
	}

	entries := make([]Entry, 0, 2+len(p.ActiveConditions)+len(p.FiredRules))
	add := func(indexType, key string) {
		e := base
		e.IndexType = indexType
		e.IndexKey = key
		entries = append(entries, e)
	}
	add(IndexQuestion, questionKey)
	add(IndexPersona, p.Persona)
	for _, c := range p.ActiveConditions {
		add(IndexCondition, c)
	}
	for _, r := range p.FiredRules {
		add(IndexRule, r)
	}
	return entries
}
