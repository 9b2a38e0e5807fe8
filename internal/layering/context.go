// Package layering turns a question and a calculator context into a layered
// answer: it collects add-on lines from the catalog, resolves cross-condition
// conflicts and assembles the final payload. Everything here is synchronous
// and deterministic for a given catalog and input.
package layering

import (
	"errors"
	"fmt"

	"github.com/matthewbaird/signatures/internal/types"
)

// ErrInvalidContext is returned when the calculator context is not a mapping.
var ErrInvalidContext = errors.New("invalid calculator context")

// ParseContext converts a decoded calculator context into a CalcContext.
// nil is an empty context. A top-level value that is not a mapping yields
// ErrInvalidContext; nested blocks that are not mappings are treated as
// empty.
func ParseContext(raw any) (types.CalcContext, error) {
	switch v := raw.(type) {
	case nil:
		return types.CalcContext{}, nil
	case types.CalcContext:
		return v, nil
	case *types.CalcContext:
		if v == nil {
			return types.CalcContext{}, nil
		}
		return *v, nil
	case map[string]any:
		prevent := block(v, "prevent")
		if prevent == nil {
			prevent = block(v, "risk")
		}
		return types.CalcContext{
			ConditionModifiers: block(v, "condition_modifiers"),
			EngagementDrivers:  block(v, "engagement_drivers"),
			Prevent:            prevent,
			Scores:             block(v, "scores"),
		}, nil
	}
	return types.CalcContext{}, fmt.Errorf("%w: got %T", ErrInvalidContext, raw)
}

func block(m map[string]any, key string) map[string]any {
	switch b := m[key].(type) {
	case map[string]any:
		return b
	case map[string]int:
		out := make(map[string]any, len(b))
		for k, n := range b {
			out[k] = n
		}
		return out
	case map[string]float64:
		out := make(map[string]any, len(b))
		for k, f := range b {
			out[k] = f
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(b))
		for k, s := range b {
			out[k] = s
		}
		return out
	case map[string]bool:
		out := make(map[string]any, len(b))
		for k, f := range b {
			out[k] = f
		}
		return out
	}
	return nil
}
