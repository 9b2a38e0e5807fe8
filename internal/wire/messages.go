// Package wire defines the WebSocket protocol for interactive composition.
package wire

import (
	"encoding/json"

	"github.com/matthewbaird/signatures/internal/question"
)

// Client message types.
const (
	TypeCompose    = "compose"
	TypeSetPersona = "set_persona"
	TypePing       = "ping"
)

// Server message types.
const (
	TypeSession = "session"
	TypePayload = "payload"
	TypePersona = "persona"
	TypePong    = "pong"
	TypeError   = "error"
)

// ── Client → Server messages ────────────────────────────────────────────────

// ClientMessage is the envelope for all client-to-server WebSocket messages.
type ClientMessage struct {
	Type string          `json:"type"` // "compose", "set_persona", "ping"
	ID   string          `json:"id"`   // Client-assigned request ID
	Data json.RawMessage `json:"data,omitempty"`
}

// ComposeData is the payload for "compose" messages. An empty persona uses
// the session's persona.
type ComposeData struct {
	QuestionID     string `json:"question_id,omitempty"`
	CustomQuestion string `json:"custom_question,omitempty"`
	Persona        string `json:"persona,omitempty"`
	Context        any    `json:"context,omitempty"`
}

// SetPersonaData is the payload for "set_persona" messages.
type SetPersonaData struct {
	Persona string `json:"persona"`
}

// ── Server → Client messages ────────────────────────────────────────────────

// ServerMessage is the envelope for all server-to-client WebSocket messages.
type ServerMessage struct {
	Type      string `json:"type"`                 // "session", "payload", "persona", "pong", "error"
	RequestID string `json:"request_id,omitempty"` // Echoes client ID
	Data      any    `json:"data,omitempty"`
}

// SessionData is sent once after the connection is accepted.
type SessionData struct {
	SessionID string           `json:"session_id"`
	Persona   question.Persona `json:"persona"`
}

// PersonaData confirms a persona change.
type PersonaData struct {
	Persona question.Persona `json:"persona"`
}

// ErrorData carries an error message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
