package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/matthewbaird/signatures/internal/compose"
)

// ComposeHandler implements the composition endpoint.
type ComposeHandler struct {
	service *compose.Service
	logger  *zap.Logger
}

// NewComposeHandler creates a new ComposeHandler.
func NewComposeHandler(service *compose.Service, logger *zap.Logger) *ComposeHandler {
	return &ComposeHandler{service: service, logger: logger}
}

// Compose handles POST /v1/compose.
func (h *ComposeHandler) Compose(w http.ResponseWriter, r *http.Request) {
	var req compose.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	resp, err := h.service.Compose(r.Context(), req)
	if err != nil {
		serviceErrorToHTTP(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
