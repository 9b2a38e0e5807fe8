package eventbus

import (
	"context"
	"sync"

	"github.com/matthewbaird/signatures/internal/event"
)

// Stats is a point-in-time copy of the composition counters.
type Stats struct {
	Compositions    int            `json:"compositions"`
	Custom          int            `json:"custom_questions"`
	FallbackAnswers int            `json:"fallback_answers"`
	ByPersona       map[string]int `json:"by_persona"`
	ByQuestion      map[string]int `json:"by_question"`
	RuleFirings     map[string]int `json:"rule_firings"`
	Conditions      map[string]int `json:"conditions"`
	Drivers         map[string]int `json:"drivers"`
	Addons          int            `json:"addons"`
}

// StatsConsumer counts composition events.
type StatsConsumer struct {
	mu    sync.Mutex
	stats Stats
}

// NewStatsConsumer creates a StatsConsumer with zeroed counters.
func NewStatsConsumer() *StatsConsumer {
	return &StatsConsumer{stats: emptyStats()}
}

func emptyStats() Stats {
	return Stats{
		ByPersona:   map[string]int{},
		ByQuestion:  map[string]int{},
		RuleFirings: map[string]int{},
		Conditions:  map[string]int{},
		Drivers:     map[string]int{},
	}
}

// HandleEvent updates the counters. Events other than CompositionCreated
// are ignored.
func (c *StatsConsumer) HandleEvent(_ context.Context, evt event.DomainEvent) error {
	if evt.EventType != event.CompositionCreated {
		return nil
	}
	p, err := event.DecodeCompositionCreated(evt)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	s := &c.stats
	s.Compositions++
	s.Addons += p.AddonCount
	s.ByPersona[p.Persona]++
	if p.Custom {
		s.Custom++
	} else {
		s.ByQuestion[p.QuestionID]++
	}
	if p.FallbackAnswer {
		s.FallbackAnswers++
	}
	for _, id := range p.FiredRules {
		s.RuleFirings[id]++
	}
	for _, code := range p.ActiveConditions {
		s.Conditions[code]++
	}
	for _, code := range p.ActiveDrivers {
		s.Drivers[code]++
	}
	return nil
}

// Snapshot returns a copy of the current counters.
func (c *StatsConsumer) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.stats
	out.ByPersona = copyCounts(c.stats.ByPersona)
	out.ByQuestion = copyCounts(c.stats.ByQuestion)
	out.RuleFirings = copyCounts(c.stats.RuleFirings)
	out.Conditions = copyCounts(c.stats.Conditions)
	out.Drivers = copyCounts(c.stats.Drivers)
	return out
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
