// Package event defines the domain events emitted by the composition
// service. Events are published to the in-process event bus after a
// composition is returned; consumers must not affect the response.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	CompositionCreated = "composition.created"
)

// DomainEvent carries the canonical shape of every domain event.
type DomainEvent struct {
	ID         string
	EventType  string
	OccurredAt time.Time
	Subject    string // composition id
	Summary    string
	Payload    json.RawMessage
}

// Publisher sends domain events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, evt DomainEvent)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, evt DomainEvent)

func (f PublisherFunc) Publish(ctx context.Context, evt DomainEvent) { f(ctx, evt) }

func newID() string { return uuid.New().String() }

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

// CompositionCreatedPayload carries event-specific data for CompositionCreated.
type CompositionCreatedPayload struct {
	CompositionID    string   `json:"composition_id"`
	QuestionID       string   `json:"question_id,omitempty"`
	Custom           bool     `json:"custom"`
	Persona          string   `json:"persona"`
	FallbackAnswer   bool     `json:"fallback_answer"`
	ActiveConditions []string `json:"active_conditions"`
	ActiveDrivers    []string `json:"active_drivers"`
	FiredRules       []string `json:"fired_rules"`
	AddonCount       int      `json:"addon_count"`
}

func NewCompositionCreated(p CompositionCreatedPayload) DomainEvent {
	subject := p.QuestionID
	if p.Custom {
		subject = "custom question"
	}
	return DomainEvent{
		ID:         newID(),
		EventType:  CompositionCreated,
		OccurredAt: time.Now(),
		Subject:    p.CompositionID,
		Summary:    fmt.Sprintf("Composed %s answer for %s with %d add-ons", p.Persona, subject, p.AddonCount),
		Payload:    mustJSON(p),
	}
}

// DecodeCompositionCreated extracts the payload of a CompositionCreated event.
func DecodeCompositionCreated(evt DomainEvent) (CompositionCreatedPayload, error) {
	var p CompositionCreatedPayload
	if evt.EventType != CompositionCreated {
		return p, fmt.Errorf("event %s is %q, not %q", evt.ID, evt.EventType, CompositionCreated)
	}
	if err := json.Unmarshal(evt.Payload, &p); err != nil {
		return p, fmt.Errorf("decoding %s payload: %w", evt.EventType, err)
	}
	return p, nil
}
