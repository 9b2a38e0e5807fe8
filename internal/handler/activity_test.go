package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/matthewbaird/signatures/internal/activity"
	"github.com/matthewbaird/signatures/internal/event"
)

func newActivityRouter(t *testing.T) http.Handler {
	t.Helper()
	store := activity.NewMemoryStore(0)
	idx := activity.NewIndexer(store)
	for i, qid := range []string{"CKM-01", "CKM-01", "HF-01"} {
		require.NoError(t, idx.HandleEvent(context.Background(), event.NewCompositionCreated(event.CompositionCreatedPayload{
			CompositionID:    string(rune('a' + i)),
			QuestionID:       qid,
			Persona:          "Expert",
			ActiveConditions: []string{"HF"},
		})))
	}

	h := NewActivityHandler(store, zap.NewNop())
	r := chi.NewRouter()
	r.Get("/v1/activity", h.Search)
	r.Get("/v1/activity/{index_type}/{key}", h.GetIndex)
	return r
}

func TestActivity_GetIndex(t *testing.T) {
	h := newActivityRouter(t)

	rec := do(t, h, http.MethodGet, "/v1/activity/question/CKM-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[activityResponse](t, rec)
	assert.Equal(t, 2, resp.TotalCount)
	assert.Len(t, resp.Entries, 2)

	resp = decode[activityResponse](t, do(t, h, http.MethodGet, "/v1/activity/condition/HF?limit=1", ""))
	assert.Equal(t, 3, resp.TotalCount)
	assert.Len(t, resp.Entries, 1)
	assert.NotEmpty(t, resp.NextCursor)

	resp = decode[activityResponse](t, do(t, h, http.MethodGet, "/v1/activity/rule/af_st", ""))
	assert.Equal(t, 0, resp.TotalCount)
	assert.NotNil(t, resp.Entries)
}

func TestActivity_BadParams(t *testing.T) {
	h := newActivityRouter(t)
	for path, code := range map[string]string{
		"/v1/activity/bogus/x":                    "INVALID_INDEX",
		"/v1/activity/question/x?limit=abc":       "INVALID_LIMIT",
		"/v1/activity/question/x?since=yesterday": "INVALID_TIME",
		"/v1/activity?index_type=bogus":           "INVALID_INDEX",
	} {
		rec := do(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Equal(t, code, decode[map[string]string](t, rec)["code"], path)
	}
}

func TestActivity_Search(t *testing.T) {
	h := newActivityRouter(t)
	resp := decode[activityResponse](t, do(t, h, http.MethodGet, "/v1/activity?q=hf-01", ""))
	assert.Equal(t, 1, resp.TotalCount)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "HF-01", resp.Entries[0].QuestionID)
}
