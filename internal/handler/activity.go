package handler

import (
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/matthewbaird/signatures/internal/activity"
)

// ActivityHandler serves the composition history.
type ActivityHandler struct {
	store  activity.Store
	logger *zap.Logger
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(store activity.Store, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{store: store, logger: logger}
}

type activityResponse struct {
	Entries    []activity.Entry `json:"entries"`
	TotalCount int              `json:"total_count"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// GetIndex handles GET /v1/activity/{index_type}/{key}.
func (h *ActivityHandler) GetIndex(w http.ResponseWriter, r *http.Request) {
	indexType := chi.URLParam(r, "index_type")
	if !slices.Contains(activity.IndexTypes, indexType) {
		writeError(w, http.StatusBadRequest, "INVALID_INDEX", "unknown index type: "+indexType)
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_LIMIT", err.Error())
		return
	}
	since, ok := parseTimeParam(w, r, "since")
	if !ok {
		return
	}
	until, ok := parseTimeParam(w, r, "until")
	if !ok {
		return
	}

	entries, next, total, err := h.store.QueryByIndex(r.Context(), indexType, chi.URLParam(r, "key"), activity.QueryOptions{
		Since:  since,
		Until:  until,
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	})
	if err != nil {
		serviceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if entries == nil {
		entries = []activity.Entry{}
	}
	writeJSON(w, http.StatusOK, activityResponse{Entries: entries, TotalCount: total, NextCursor: next})
}

// Search handles GET /v1/activity?q=.
func (h *ActivityHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_LIMIT", err.Error())
		return
	}
	since, ok := parseTimeParam(w, r, "since")
	if !ok {
		return
	}
	indexType := r.URL.Query().Get("index_type")
	if indexType != "" && !slices.Contains(activity.IndexTypes, indexType) {
		writeError(w, http.StatusBadRequest, "INVALID_INDEX", "unknown index type: "+indexType)
		return
	}

	entries, total, err := h.store.Search(r.Context(), r.URL.Query().Get("q"), activity.SearchOptions{
		IndexType: indexType,
		Since:     since,
		Limit:     limit,
	})
	if err != nil {
		serviceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if entries == nil {
		entries = []activity.Entry{}
	}
	writeJSON(w, http.StatusOK, activityResponse{Entries: entries, TotalCount: total})
}

// parseTimeParam reads an RFC 3339 query parameter. It writes a 400 and
// returns false when the value is malformed.
func parseTimeParam(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_TIME", "invalid "+name+": "+raw)
		return nil, false
	}
	return &t, true
}
