package layering

import (
	"errors"

	"go.uber.org/zap"

	"github.com/matthewbaird/signatures/internal/catalog"
	"github.com/matthewbaird/signatures/internal/types"
)

// EngineConfig configures an Engine.
type EngineConfig struct {
	Options
	// StrictContext makes LayerRaw fail on a non-mapping context instead of
	// layering an empty one.
	StrictContext bool
	Logger        *zap.Logger
}

// Result is a layered answer with its diagnostics.
type Result struct {
	Payload    types.Payload `json:"payload"`
	Debug      types.Debug   `json:"debug"`
	FiredRules []string      `json:"fired_rules,omitempty"`
}

// Engine runs the collector, resolver and assembler in sequence. It holds
// no per-request state and is safe for concurrent use.
type Engine struct {
	catalog   *catalog.Catalog
	collector *Collector
	resolver  *Resolver
	strict    bool
	logger    *zap.Logger
}

// NewEngine builds an engine over c.
func NewEngine(c *catalog.Catalog, cfg EngineConfig) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		catalog:   c,
		collector: NewCollector(c, cfg.Options),
		resolver:  NewResolver(c.Rules()),
		strict:    cfg.StrictContext,
		logger:    logger,
	}
}

// Catalog returns the catalog the engine was built with.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Layer produces the layered answer for q with the given base text.
func (e *Engine) Layer(q types.Question, base string, cc types.CalcContext) Result {
	col := e.collector.Collect(q, cc)
	res := e.resolver.Resolve(col.Lines, col.Reasons, col.ActiveConditions, cc.Prevent)
	return Result{
		Payload:    Assemble(base, res.Lines, res.WhyAdded),
		Debug:      col.Debug,
		FiredRules: res.Fired,
	}
}

// LayerRaw parses raw as a calculator context and layers it. A non-mapping
// context is an ErrInvalidContext error in strict mode; otherwise it is
// logged and treated as empty.
func (e *Engine) LayerRaw(q types.Question, base string, raw any) (Result, error) {
	cc, err := ParseContext(raw)
	if err != nil {
		if e.strict || !errors.Is(err, ErrInvalidContext) {
			return Result{}, err
		}
		e.logger.Warn("treating invalid calculator context as empty",
			zap.String("question_id", q.ID), zap.Error(err))
		cc = types.CalcContext{}
	}
	return e.Layer(q, base, cc), nil
}
