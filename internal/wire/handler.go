package wire

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/matthewbaird/signatures/internal/compose"
	"github.com/matthewbaird/signatures/internal/handler"
	"github.com/matthewbaird/signatures/internal/question"
	"github.com/matthewbaird/signatures/internal/session"
)

// Handler manages WebSocket connections for interactive composition.
type Handler struct {
	sessions *session.Manager
	service  *compose.Service
	logger   *zap.Logger
}

// NewHandler creates a WebSocket handler.
func NewHandler(sessions *session.Manager, service *compose.Service, logger *zap.Logger) *Handler {
	return &Handler{sessions: sessions, service: service, logger: logger}
}

// ServeHTTP upgrades to WebSocket and runs the message loop. The optional
// persona query parameter sets the session's default persona.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	persona, err := question.ParsePersona(r.URL.Query().Get("persona"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Warn("websocket accept", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	sess := h.sessions.Create(persona)
	defer h.sessions.Remove(sess.ID)
	ctx := r.Context()
	logger := h.logger.With(zap.String("session_id", sess.ID))

	h.send(ctx, conn, ServerMessage{
		Type: TypeSession,
		Data: SessionData{SessionID: sess.ID, Persona: persona},
	})

	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				logger.Debug("connection closed", zap.Int("status", int(status)))
			} else if ctx.Err() == nil {
				logger.Debug("read failed", zap.Error(err))
			}
			return
		}
		// Get drops sessions that expired or were removed by the janitor.
		if h.sessions.Get(sess.ID) == nil {
			logger.Debug("session expired")
			conn.Close(websocket.StatusPolicyViolation, "session expired")
			return
		}
		sess.Touch()

		switch msg.Type {
		case TypeCompose:
			h.handleCompose(ctx, conn, sess, msg)
		case TypeSetPersona:
			h.handleSetPersona(ctx, conn, sess, msg)
		case TypePing:
			h.send(ctx, conn, ServerMessage{Type: TypePong, RequestID: msg.ID})
		default:
			h.sendError(ctx, conn, msg.ID, "unknown_type", fmt.Sprintf("unknown message type: %s", msg.Type))
		}
	}
}

func (h *Handler) handleCompose(ctx context.Context, conn *websocket.Conn, sess *session.Session, msg ClientMessage) {
	var data ComposeData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid compose data")
		return
	}
	persona := data.Persona
	if strings.TrimSpace(persona) == "" {
		persona = sess.Persona().String()
	}

	resp, err := h.service.Compose(ctx, compose.Request{
		QuestionID:     data.QuestionID,
		CustomQuestion: data.CustomQuestion,
		Persona:        persona,
		Context:        data.Context,
	})
	if err != nil {
		_, code := handler.ClassifyError(err)
		h.sendError(ctx, conn, msg.ID, strings.ToLower(code), err.Error())
		return
	}
	sess.AddHistory(resp.ID)
	h.send(ctx, conn, ServerMessage{Type: TypePayload, RequestID: msg.ID, Data: resp})
}

func (h *Handler) handleSetPersona(ctx context.Context, conn *websocket.Conn, sess *session.Session, msg ClientMessage) {
	var data SetPersonaData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid set_persona data")
		return
	}
	p, err := question.ParsePersona(data.Persona)
	if err != nil {
		h.sendError(ctx, conn, msg.ID, "unknown_persona", err.Error())
		return
	}
	sess.SetPersona(p)
	h.send(ctx, conn, ServerMessage{Type: TypePersona, RequestID: msg.ID, Data: PersonaData{Persona: p}})
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn, msg ServerMessage) {
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		h.logger.Debug("websocket write", zap.String("type", msg.Type), zap.Error(err))
	}
}

func (h *Handler) sendError(ctx context.Context, conn *websocket.Conn, requestID, code, message string) {
	h.send(ctx, conn, ServerMessage{
		Type:      TypeError,
		RequestID: requestID,
		Data:      ErrorData{Code: code, Message: message},
	})
}
