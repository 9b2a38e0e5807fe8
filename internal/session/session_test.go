package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/signatures/internal/question"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestManager(maxAge, idle time.Duration) (*Manager, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	m := NewManager(maxAge, idle)
	m.now = clock.now
	return m, clock
}

func TestManager_CreateGet(t *testing.T) {
	m, _ := newTestManager(time.Hour, 10*time.Minute)
	s := m.Create(question.Expert)
	require.NotEmpty(t, s.ID)

	got := m.Get(s.ID)
	require.NotNil(t, got)
	assert.Equal(t, question.Expert, got.Persona())
	assert.Nil(t, m.Get("missing"))
	assert.Equal(t, 1, m.Len())

	m.Remove(s.ID)
	assert.Nil(t, m.Get(s.ID))
}

func TestManager_IdleExpiry(t *testing.T) {
	m, clock := newTestManager(time.Hour, 10*time.Minute)
	s := m.Create(question.Listener)

	clock.advance(9 * time.Minute)
	require.NotNil(t, m.Get(s.ID))
	s.Touch()

	clock.advance(9 * time.Minute)
	require.NotNil(t, m.Get(s.ID), "touch resets the idle timer")

	clock.advance(11 * time.Minute)
	assert.Nil(t, m.Get(s.ID))
	assert.Equal(t, 0, m.Len(), "expired session removed on lookup")
}

func TestManager_MaxAge(t *testing.T) {
	m, clock := newTestManager(30*time.Minute, 20*time.Minute)
	s := m.Create(question.Listener)
	for range 4 {
		clock.advance(10 * time.Minute)
		s.Touch()
	}
	assert.Nil(t, m.Get(s.ID))
}

func TestManager_Cleanup(t *testing.T) {
	m, clock := newTestManager(time.Hour, 10*time.Minute)
	stale := m.Create(question.Listener)
	clock.advance(11 * time.Minute)
	fresh := m.Create(question.Director)

	assert.Equal(t, 1, m.Cleanup())
	assert.Nil(t, m.Get(stale.ID))
	assert.NotNil(t, m.Get(fresh.ID))
}

func TestSession_History(t *testing.T) {
	m, _ := newTestManager(time.Hour, time.Hour)
	s := m.Create(question.Listener)
	for i := range maxHistory + 5 {
		s.AddHistory(fmt.Sprintf("c-%d", i))
	}
	info := s.Info()
	require.Len(t, info.History, maxHistory)
	assert.Equal(t, "c-5", info.History[0])
	assert.Equal(t, fmt.Sprintf("c-%d", maxHistory+4), info.History[maxHistory-1])

	info.History[0] = "mutated"
	assert.Equal(t, "c-5", s.Info().History[0], "Info returns a copy")
}

func TestSession_SetPersona(t *testing.T) {
	m, _ := newTestManager(time.Hour, time.Hour)
	s := m.Create(question.Listener)
	s.SetPersona(question.Motivator)
	assert.Equal(t, question.Motivator, s.Info().Persona)
}
