// Package session tracks interactive composition sessions.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matthewbaird/signatures/internal/question"
)

// maxHistory bounds the composition ids kept per session.
const maxHistory = 100

// Session holds per-connection state. It is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	ID           string
	persona      question.Persona
	history      []string
	createdAt    time.Time
	lastActiveAt time.Time
	now          func() time.Time
}

// Info is a point-in-time view of a Session.
type Info struct {
	ID           string           `json:"id"`
	Persona      question.Persona `json:"persona"`
	History      []string         `json:"history"`
	CreatedAt    time.Time        `json:"created_at"`
	LastActiveAt time.Time        `json:"last_active_at"`
}

func newSession(persona question.Persona, now func() time.Time) *Session {
	t := now()
	return &Session{
		ID:           uuid.New().String(),
		persona:      persona,
		createdAt:    t,
		lastActiveAt: t,
		now:          now,
	}
}

// Persona returns the session's default persona.
func (s *Session) Persona() question.Persona {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persona
}

// SetPersona changes the session's default persona.
func (s *Session) SetPersona(p question.Persona) {
	s.mu.Lock()
	s.persona = p
	s.lastActiveAt = s.now()
	s.mu.Unlock()
}

// Touch updates the last activity timestamp.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActiveAt = s.now()
	s.mu.Unlock()
}

// AddHistory records a composition id. Only the most recent maxHistory ids
// are kept.
func (s *Session) AddHistory(compositionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, compositionID)
	if len(s.history) > maxHistory {
		s.history = append([]string(nil), s.history[len(s.history)-maxHistory:]...)
	}
	s.lastActiveAt = s.now()
}

// Info returns a copy of the session state.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		ID:           s.ID,
		Persona:      s.persona,
		History:      append([]string{}, s.history...),
		CreatedAt:    s.createdAt,
		LastActiveAt: s.lastActiveAt,
	}
}

func (s *Session) expired(maxAge, idle time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	return now.Sub(s.createdAt) > maxAge || now.Sub(s.lastActiveAt) > idle
}

// Manager handles session creation, lookup, and cleanup.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxAge      time.Duration
	idleTimeout time.Duration
	now         func() time.Time
}

// NewManager creates a session manager with the given timeouts.
func NewManager(maxAge, idleTimeout time.Duration) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		maxAge:      maxAge,
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// Create creates a new session with the given default persona.
func (m *Manager) Create(persona question.Persona) *Session {
	s := newSession(persona, m.now)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get retrieves a session by ID. Returns nil if not found or expired.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	if s.expired(m.maxAge, m.idleTimeout) {
		m.Remove(id)
		return nil
	}
	return s
}

// Remove deletes a session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of tracked sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Cleanup removes all expired and idle sessions and reports how many were
// removed.
func (m *Manager) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.expired(m.maxAge, m.idleTimeout) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// RunJanitor calls Cleanup every interval until done is closed.
func (m *Manager) RunJanitor(done <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			m.Cleanup()
		}
	}
}
