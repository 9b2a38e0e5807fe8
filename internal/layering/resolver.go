package layering

import (
	"strings"

	"github.com/matthewbaird/signatures/internal/catalog"
	"github.com/matthewbaird/signatures/internal/signals"
	"github.com/matthewbaird/signatures/internal/types"
)

// Resolution is the resolver output.
type Resolution struct {
	Lines    []types.CandidateLine
	WhyAdded []string
	// Fired lists the IDs of the rules that fired, in application order.
	Fired []string
}

// Resolver applies the catalog conflict rules to a candidate list.
type Resolver struct {
	rules []catalog.Rule
}

// NewResolver creates a resolver for the given rules. Rules are applied in
// the order given.
func NewResolver(rules []catalog.Rule) *Resolver {
	return &Resolver{rules: rules}
}

// Resolve deduplicates lines, then applies every rule whose trigger matches
// in order: lines containing a forbidden substring are removed and the
// rule's lines are inserted at the front (or appended, for end placement).
// Later rules see the removals and insertions of earlier ones. reasons are
// the collector's provenance entries; rule labels are appended to them.
func (r *Resolver) Resolve(lines []types.CandidateLine, reasons []string, active []string, risk map[string]any) Resolution {
	out := dedupeLines(lines)
	why := append([]string(nil), reasons...)
	var fired []string

	activeSet := make(map[string]bool, len(active))
	for _, code := range active {
		activeSet[signals.ConditionCode(code)] = true
	}

	for _, rule := range r.rules {
		if !ruleMatches(rule, activeSet, risk) {
			continue
		}
		out = removeForbidden(out, rule.Forbidden)

		inserted := make([]types.CandidateLine, 0, len(rule.Lines))
		for _, text := range rule.Lines {
			inserted = append(inserted, types.CandidateLine{Text: text, Kind: types.SourceRule, Source: rule.ID})
		}
		if rule.Placement == catalog.PlaceEnd {
			out = append(out, inserted...)
		} else {
			out = append(inserted, out...)
		}

		why = append(why, rule.Label)
		fired = append(fired, rule.ID)
	}

	return Resolution{
		Lines:    dedupeLines(out),
		WhyAdded: dedupeStrings(why),
		Fired:    fired,
	}
}

func ruleMatches(rule catalog.Rule, active map[string]bool, risk map[string]any) bool {
	switch rule.Trigger {
	case catalog.TriggerConditionOverlap:
		if len(rule.Requires) == 0 {
			return false
		}
		for _, code := range rule.Requires {
			if !active[code] {
				return false
			}
		}
		return true
	case catalog.TriggerRiskTier:
		v, ok := signals.NormalizeRisk(risk[rule.RiskKey])
		return ok && v > rule.RiskAbove
	default:
		return false
	}
}

// removeForbidden drops every line whose lower-cased text contains one of
// the (lower-case) substrings.
func removeForbidden(lines []types.CandidateLine, forbidden []string) []types.CandidateLine {
	if len(forbidden) == 0 {
		return lines
	}
	kept := lines[:0:0]
	for _, l := range lines {
		text := strings.ToLower(l.Text)
		hit := false
		for _, sub := range forbidden {
			if strings.Contains(text, sub) {
				hit = true
				break
			}
		}
		if !hit {
			kept = append(kept, l)
		}
	}
	return kept
}
