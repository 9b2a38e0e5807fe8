package wire

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/matthewbaird/signatures/internal/catalog"
	"github.com/matthewbaird/signatures/internal/compose"
	"github.com/matthewbaird/signatures/internal/layering"
	"github.com/matthewbaird/signatures/internal/question"
	"github.com/matthewbaird/signatures/internal/session"
)

type received struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
}

func dial(t *testing.T, query string) (*websocket.Conn, *session.Manager, context.Context) {
	t.Helper()
	store, err := question.NewDefaultMemoryStore()
	require.NoError(t, err)
	svc := compose.NewService(layering.NewEngine(catalog.MustDefault(), layering.EngineConfig{}), store)
	sessions := session.NewManager(time.Hour, time.Hour)

	srv := httptest.NewServer(NewHandler(sessions, svc, zap.NewNop()))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+query, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn, sessions, ctx
}

func read(t *testing.T, ctx context.Context, conn *websocket.Conn) received {
	t.Helper()
	var msg received
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	return msg
}

func write(t *testing.T, ctx context.Context, conn *websocket.Conn, msgType, id string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, wsjson.Write(ctx, conn, ClientMessage{Type: msgType, ID: id, Data: raw}))
}

func TestHandler_SessionAndPing(t *testing.T) {
	conn, sessions, ctx := dial(t, "?persona=2")

	msg := read(t, ctx, conn)
	require.Equal(t, TypeSession, msg.Type)
	var sd SessionData
	require.NoError(t, json.Unmarshal(msg.Data, &sd))
	assert.Equal(t, question.Motivator, sd.Persona)
	assert.NotNil(t, sessions.Get(sd.SessionID))

	write(t, ctx, conn, TypePing, "p1", nil)
	pong := read(t, ctx, conn)
	assert.Equal(t, TypePong, pong.Type)
	assert.Equal(t, "p1", pong.RequestID)
}

func TestHandler_Compose(t *testing.T) {
	conn, sessions, ctx := dial(t, "")
	var sd SessionData
	require.NoError(t, json.Unmarshal(read(t, ctx, conn).Data, &sd))
	assert.Equal(t, question.Listener, sd.Persona)

	write(t, ctx, conn, TypeCompose, "c1", ComposeData{
		QuestionID: "CKM-01",
		Context: map[string]any{
			"condition_modifiers": map[string]any{"AF": "Yes", "ST": "Yes"},
		},
	})
	msg := read(t, ctx, conn)
	require.Equal(t, TypePayload, msg.Type, string(msg.Data))
	assert.Equal(t, "c1", msg.RequestID)

	var resp compose.Response
	require.NoError(t, json.Unmarshal(msg.Data, &resp))
	assert.Equal(t, question.Listener, resp.Persona, "session persona is the default")
	assert.Equal(t, []string{"af_st"}, resp.FiredRules)

	require.Eventually(t, func() bool {
		s := sessions.Get(sd.SessionID)
		return s != nil && len(s.Info().History) == 1 && s.Info().History[0] == resp.ID
	}, time.Second, 10*time.Millisecond)
}

func TestHandler_SetPersona(t *testing.T) {
	conn, _, ctx := dial(t, "")
	read(t, ctx, conn)

	write(t, ctx, conn, TypeSetPersona, "s1", SetPersonaData{Persona: "director"})
	msg := read(t, ctx, conn)
	require.Equal(t, TypePersona, msg.Type)
	var pd PersonaData
	require.NoError(t, json.Unmarshal(msg.Data, &pd))
	assert.Equal(t, question.Director, pd.Persona)

	write(t, ctx, conn, TypeCompose, "c2", ComposeData{CustomQuestion: "Is coffee okay?"})
	var resp compose.Response
	require.NoError(t, json.Unmarshal(read(t, ctx, conn).Data, &resp))
	assert.Equal(t, question.Director, resp.Persona)
	assert.Equal(t, question.Director.Fallback(), resp.Payload.Final)
}

func TestHandler_ClosesExpiredSession(t *testing.T) {
	conn, sessions, ctx := dial(t, "")
	var sd SessionData
	require.NoError(t, json.Unmarshal(read(t, ctx, conn).Data, &sd))

	sessions.Remove(sd.SessionID)
	write(t, ctx, conn, TypePing, "p1", nil)

	var msg received
	err := wsjson.Read(ctx, conn, &msg)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusPolicyViolation, websocket.CloseStatus(err))
}

func TestHandler_Errors(t *testing.T) {
	conn, _, ctx := dial(t, "")
	read(t, ctx, conn)

	tests := []struct {
		msgType string
		data    any
		code    string
	}{
		{TypeCompose, ComposeData{}, "empty_request"},
		{TypeCompose, ComposeData{QuestionID: "NOPE"}, "not_found"},
		{TypeCompose, ComposeData{QuestionID: "CKM-01", Persona: "Coach"}, "unknown_persona"},
		{TypeCompose, "not an object", "invalid_data"},
		{TypeSetPersona, SetPersonaData{Persona: "9"}, "unknown_persona"},
		{"shout", nil, "unknown_type"},
	}
	for i, tt := range tests {
		id := string(rune('a' + i))
		write(t, ctx, conn, tt.msgType, id, tt.data)
		msg := read(t, ctx, conn)
		require.Equal(t, TypeError, msg.Type, tt.code)
		assert.Equal(t, id, msg.RequestID)
		var ed ErrorData
		require.NoError(t, json.Unmarshal(msg.Data, &ed))
		assert.Equal(t, tt.code, ed.Code)
	}
}

func TestHandler_BadPersonaRejectsUpgrade(t *testing.T) {
	store, err := question.NewDefaultMemoryStore()
	require.NoError(t, err)
	svc := compose.NewService(layering.NewEngine(catalog.MustDefault(), layering.EngineConfig{}), store)
	srv := httptest.NewServer(NewHandler(session.NewManager(time.Hour, time.Hour), svc, zap.NewNop()))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, resp, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"?persona=coach", nil)
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, 400, resp.StatusCode)
	}
}
