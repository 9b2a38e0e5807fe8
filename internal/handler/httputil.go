// Package handler implements the HTTP API over the composition service,
// the question bank and the catalog.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/matthewbaird/signatures/internal/compose"
	"github.com/matthewbaird/signatures/internal/layering"
	"github.com/matthewbaird/signatures/internal/question"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// writeJSON marshals v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("writeJSON encode error", zap.Error(err))
	}
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}

// decodeJSON decodes the request body into v. Trailing data is an error.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

// parseLimit reads the limit query parameter, returning 0 when absent.
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	return n, nil
}

// ClassifyError maps a service error to an HTTP status and an error code.
func ClassifyError(err error) (status int, code string) {
	switch {
	case errors.Is(err, compose.ErrEmptyRequest):
		return http.StatusBadRequest, "EMPTY_REQUEST"
	case errors.Is(err, compose.ErrUnknownPersona), errors.Is(err, question.ErrUnknownPersona):
		return http.StatusBadRequest, "UNKNOWN_PERSONA"
	case errors.Is(err, compose.ErrQuestionNotFound), errors.Is(err, question.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, layering.ErrInvalidContext):
		return http.StatusUnprocessableEntity, "INVALID_CONTEXT"
	case errors.Is(err, question.ErrInvalidQuestion):
		return http.StatusBadRequest, "INVALID_QUESTION"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "CANCELLED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// serviceErrorToHTTP writes err as a JSON error. Internal errors are logged
// and their message is not exposed.
func serviceErrorToHTTP(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status, code := ClassifyError(err)
	if status == http.StatusInternalServerError {
		logger.Error("internal error",
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.Error(err))
		writeError(w, status, code, "internal server error")
		return
	}
	writeError(w, status, code, err.Error())
}
