// Package compose turns a composition request into a layered answer: it
// resolves the question and persona, picks the base text and runs the
// layering engine.
package compose

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matthewbaird/signatures/internal/event"
	"github.com/matthewbaird/signatures/internal/layering"
	"github.com/matthewbaird/signatures/internal/question"
	"github.com/matthewbaird/signatures/internal/types"
)

var (
	// ErrEmptyRequest is returned when a request names neither a question
	// nor a custom question.
	ErrEmptyRequest = errors.New("request needs question_id or custom_question")
	// ErrQuestionNotFound is returned when question_id is not in the bank.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrUnknownPersona is returned for unrecognized persona names.
	ErrUnknownPersona = errors.New("unknown persona")
)

// Request asks for one layered answer. QuestionID takes precedence over
// CustomQuestion. Context is the decoded calculator context.
type Request struct {
	QuestionID     string `json:"question_id,omitempty"`
	CustomQuestion string `json:"custom_question,omitempty"`
	Persona        string `json:"persona,omitempty"`
	Context        any    `json:"context,omitempty"`
}

// Response is a composed answer.
type Response struct {
	ID             string           `json:"id"`
	Persona        question.Persona `json:"persona"`
	QuestionID     string           `json:"question_id,omitempty"`
	Category       string           `json:"category,omitempty"`
	Question       string           `json:"question"`
	ActionStep     string           `json:"action_step,omitempty"`
	WhyItMatters   string           `json:"why_it_matters,omitempty"`
	Links          []types.Link     `json:"links,omitempty"`
	FallbackAnswer bool             `json:"fallback_answer"`
	Payload        types.Payload    `json:"payload"`
	Debug          types.Debug      `json:"debug"`
	FiredRules     []string         `json:"fired_rules,omitempty"`
}

// Service composes answers from a question store and a layering engine.
type Service struct {
	engine    *layering.Engine
	store     question.Store
	publisher event.Publisher
	logger    *zap.Logger
	newID     func() string
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher publishes a CompositionCreated event for every response.
func WithPublisher(p event.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a composition service.
func NewService(engine *layering.Engine, store question.Store, opts ...Option) *Service {
	s := &Service{
		engine: engine,
		store:  store,
		logger: zap.NewNop(),
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compose builds the layered answer for req.
func (s *Service) Compose(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	persona, err := question.ParsePersona(req.Persona)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPersona, strings.TrimSpace(req.Persona))
	}

	q, custom, err := s.resolveQuestion(ctx, req)
	if err != nil {
		return nil, err
	}

	answer, fallback := question.AnswerFor(q, persona)
	result, err := s.engine.LayerRaw(q, answer.Text, req.Context)
	if err != nil {
		return nil, fmt.Errorf("layering %s: %w", describe(q, custom), err)
	}

	resp := &Response{
		ID:             s.newID(),
		Persona:        persona,
		Category:       q.Category,
		Question:       q.Text,
		ActionStep:     answer.ActionStep,
		WhyItMatters:   answer.WhyItMatters,
		Links:          q.Links,
		FallbackAnswer: fallback,
		Payload:        result.Payload,
		Debug:          result.Debug,
		FiredRules:     result.FiredRules,
	}
	if !custom {
		resp.QuestionID = q.ID
	}

	s.logger.Debug("composed answer",
		zap.String("composition_id", resp.ID),
		zap.String("question_id", resp.QuestionID),
		zap.String("persona", persona.String()),
		zap.Int("addons", len(resp.Payload.Addons)),
		zap.Strings("fired_rules", resp.FiredRules))
	s.publish(ctx, resp, custom)
	return resp, nil
}

func (s *Service) resolveQuestion(ctx context.Context, req Request) (types.Question, bool, error) {
	if id := strings.TrimSpace(req.QuestionID); id != "" {
		q, err := s.store.Get(ctx, id)
		if errors.Is(err, question.ErrNotFound) {
			return types.Question{}, false, fmt.Errorf("%w: %q", ErrQuestionNotFound, id)
		}
		if err != nil {
			return types.Question{}, false, fmt.Errorf("loading question %q: %w", id, err)
		}
		return q, false, nil
	}
	if text := strings.TrimSpace(req.CustomQuestion); text != "" {
		return types.Question{Text: text, Category: question.DefaultCategory}, true, nil
	}
	return types.Question{}, false, ErrEmptyRequest
}

func (s *Service) publish(ctx context.Context, resp *Response, custom bool) {
	if s.publisher == nil {
		return
	}
	drivers := make([]string, 0, len(resp.Debug.ActiveDrivers))
	for _, d := range resp.Debug.ActiveDrivers {
		drivers = append(drivers, d.Code)
	}
	s.publisher.Publish(ctx, event.NewCompositionCreated(event.CompositionCreatedPayload{
		CompositionID:    resp.ID,
		QuestionID:       resp.QuestionID,
		Custom:           custom,
		Persona:          resp.Persona.String(),
		FallbackAnswer:   resp.FallbackAnswer,
		ActiveConditions: resp.Debug.ActiveConditions,
		ActiveDrivers:    drivers,
		FiredRules:       resp.FiredRules,
		AddonCount:       len(resp.Payload.Addons),
	}))
}

func describe(q types.Question, custom bool) string {
	if custom {
		return "custom question"
	}
	return "question " + q.ID
}
