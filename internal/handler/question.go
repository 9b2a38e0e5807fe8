package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/matthewbaird/signatures/internal/question"
	"github.com/matthewbaird/signatures/internal/types"
)

// QuestionHandler implements read endpoints over the question bank.
type QuestionHandler struct {
	store  question.Store
	logger *zap.Logger
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(store question.Store, logger *zap.Logger) *QuestionHandler {
	return &QuestionHandler{store: store, logger: logger}
}

type listQuestionsResponse struct {
	Questions []types.QuestionSummary `json:"questions"`
	Count     int                     `json:"count"`
}

// ListQuestions handles GET /v1/questions. With q set it searches, otherwise
// it lists; category filters either way.
func (h *QuestionHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_LIMIT", err.Error())
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	category := r.URL.Query().Get("category")

	var items []types.Question
	if query != "" {
		items, err = h.store.Search(r.Context(), query, category, limit)
	} else {
		items, err = h.store.List(r.Context(), category)
		if err == nil && limit > 0 && len(items) > limit {
			items = items[:limit]
		}
	}
	if err != nil {
		serviceErrorToHTTP(w, r, h.logger, err)
		return
	}
	summaries := question.Summaries(items)
	writeJSON(w, http.StatusOK, listQuestionsResponse{Questions: summaries, Count: len(summaries)})
}

// GetQuestion handles GET /v1/questions/{id}.
func (h *QuestionHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		serviceErrorToHTTP(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// ListCategories handles GET /v1/categories.
func (h *QuestionHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.store.Categories(r.Context())
	if err != nil {
		serviceErrorToHTTP(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"categories": cats})
}

type personaView struct {
	Name     question.Persona `json:"name"`
	Number   int              `json:"number"`
	Fallback string           `json:"fallback"`
}

// ListPersonas handles GET /v1/personas.
func (h *QuestionHandler) ListPersonas(w http.ResponseWriter, _ *http.Request) {
	out := make([]personaView, 0, len(question.Personas))
	for i, p := range question.Personas {
		out = append(out, personaView{Name: p, Number: i + 1, Fallback: p.Fallback()})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"personas": out,
		"default":  question.DefaultPersona,
	})
}
