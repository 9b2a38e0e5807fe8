package eventbus

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/matthewbaird/signatures/internal/event"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func composed(persona, questionID string, rules ...string) event.DomainEvent {
	return event.NewCompositionCreated(event.CompositionCreatedPayload{
		CompositionID:    "c-" + questionID,
		QuestionID:       questionID,
		Persona:          persona,
		ActiveConditions: []string{"AF", "ST"},
		ActiveDrivers:    []string{"trust"},
		FiredRules:       rules,
		AddonCount:       4,
	})
}

func TestBus_DeliversInOrder(t *testing.T) {
	bus := New(8, nil)
	var (
		mu  sync.Mutex
		got []string
	)
	bus.Subscribe("order", HandlerFunc(func(_ context.Context, evt event.DomainEvent) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, evt.Subject)
		return nil
	}))
	bus.Start(context.Background())

	for _, id := range []string{"A", "B", "C"} {
		bus.Publish(context.Background(), composed("Listener", id))
	}
	bus.Stop()

	assert.Equal(t, []string{"c-A", "c-B", "c-C"}, got)
}

func TestBus_DropsWhenFull(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	bus := New(1, zap.New(core))

	bus.Publish(context.Background(), composed("Listener", "A"))
	bus.Publish(context.Background(), composed("Listener", "B"))
	assert.Equal(t, 1, bus.Dropped())
	assert.Equal(t, 1, logs.FilterMessage("buffer full, dropping event").Len())

	bus.Start(context.Background())
	bus.Stop()
	bus.Publish(context.Background(), composed("Listener", "C"))
	assert.Equal(t, 2, bus.Dropped())
	bus.Stop()
}

func TestBus_DrainsOnCancel(t *testing.T) {
	stats := NewStatsConsumer()
	bus := New(8, nil)
	bus.Subscribe("stats", stats)

	bus.Publish(context.Background(), composed("Expert", "A"))
	bus.Publish(context.Background(), composed("Expert", "B"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Start(ctx)
	bus.Stop()

	assert.Equal(t, 2, stats.Snapshot().Compositions)
}

func TestBus_HandlerErrorsAreLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	bus := New(4, zap.New(core))
	calls := 0
	bus.Subscribe("failing", HandlerFunc(func(context.Context, event.DomainEvent) error {
		return errors.New("boom")
	}))
	bus.Subscribe("counting", HandlerFunc(func(context.Context, event.DomainEvent) error {
		calls++
		return nil
	}))
	bus.Start(context.Background())
	bus.Publish(context.Background(), composed("Director", "A"))
	bus.Stop()

	assert.Equal(t, 1, calls, "later subscribers still run")
	require.Equal(t, 1, logs.FilterMessage("handler failed").Len())
	assert.Equal(t, "failing", logs.All()[0].ContextMap()["handler"])
}

func TestStatsConsumer(t *testing.T) {
	c := NewStatsConsumer()
	ctx := context.Background()

	require.NoError(t, c.HandleEvent(ctx, composed("Listener", "CKM-01", "af_st")))
	require.NoError(t, c.HandleEvent(ctx, composed("Expert", "CKM-01")))
	require.NoError(t, c.HandleEvent(ctx, event.NewCompositionCreated(event.CompositionCreatedPayload{
		CompositionID:  "x",
		Custom:         true,
		Persona:        "Expert",
		FallbackAnswer: true,
	})))
	require.NoError(t, c.HandleEvent(ctx, event.DomainEvent{EventType: "other"}))

	s := c.Snapshot()
	assert.Equal(t, 3, s.Compositions)
	assert.Equal(t, 1, s.Custom)
	assert.Equal(t, 1, s.FallbackAnswers)
	assert.Equal(t, 8, s.Addons)
	assert.Equal(t, map[string]int{"Listener": 1, "Expert": 2}, s.ByPersona)
	assert.Equal(t, map[string]int{"CKM-01": 2}, s.ByQuestion)
	assert.Equal(t, map[string]int{"af_st": 1}, s.RuleFirings)
	assert.Equal(t, map[string]int{"AF": 2, "ST": 2}, s.Conditions)
	assert.Equal(t, map[string]int{"trust": 2}, s.Drivers)

	s.ByPersona["Listener"] = 99
	assert.Equal(t, 1, c.Snapshot().ByPersona["Listener"], "snapshot is a copy")

	err := c.HandleEvent(ctx, event.DomainEvent{EventType: event.CompositionCreated, Payload: []byte("{")})
	assert.Error(t, err)
}

func TestLogConsumer(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	c := NewLogConsumer(zap.New(core))
	evt := composed("Motivator", "HF-01")
	require.NoError(t, c.HandleEvent(context.Background(), evt))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, evt.Summary, entry.Message)
	assert.Equal(t, event.CompositionCreated, entry.ContextMap()["event_type"])
	assert.Equal(t, "c-HF-01", entry.ContextMap()["subject"])
}
