package layering

import (
	"fmt"
	"slices"
	"sort"

	"github.com/matthewbaird/signatures/internal/catalog"
	"github.com/matthewbaird/signatures/internal/signals"
	"github.com/matthewbaird/signatures/internal/types"
)

// Options tunes how the collector reads the context.
type Options struct {
	// RequireQuestionRelevance limits condition lines to conditions the
	// question is tagged with. Questions without tags are not filtered.
	RequireQuestionRelevance bool
	// FlagPolicy decides how unrecognized condition flag strings are read.
	FlagPolicy signals.FlagPolicy
}

// Collection is the collector output: deduplicated candidate lines with
// their provenance reasons and the diagnostics block.
type Collection struct {
	Lines            []types.CandidateLine
	Reasons          []string
	ActiveConditions []string
	Debug            types.Debug
}

// Collector pulls candidate lines from the catalog for the active signals.
type Collector struct {
	catalog *catalog.Catalog
	opts    Options
}

// NewCollector creates a collector over the given catalog.
func NewCollector(c *catalog.Catalog, opts Options) *Collector {
	return &Collector{catalog: c, opts: opts}
}

// Collect gathers the condition and driver lines for cc. Traversal follows
// catalog declaration order, never map iteration order.
func (c *Collector) Collect(q types.Question, cc types.CalcContext) Collection {
	active := c.activeConditions(cc.ConditionModifiers)
	tags := questionTags(q)

	var (
		lines   []types.CandidateLine
		reasons []string
	)

	tagged := make(map[string]bool, len(tags))
	for _, t := range tags {
		tagged[t] = true
	}
	for _, code := range active {
		if !c.catalog.HasCondition(code) {
			continue
		}
		if c.opts.RequireQuestionRelevance && len(tags) > 0 && !tagged[code] {
			continue
		}
		for _, text := range c.catalog.LinesForCondition(code) {
			lines = append(lines, types.CandidateLine{Text: text, Kind: types.SourceCondition, Source: code})
		}
		reasons = append(reasons, code+" active")
	}

	drivers := normalizeDrivers(cc.EngagementDrivers)
	var activeDrivers []types.DriverSignal
	for _, code := range c.catalog.DriverCodes() {
		value, present := drivers[code]
		if !present || value == 0 {
			continue
		}
		source := fmt.Sprintf("%s %d", code, value)
		for _, text := range c.catalog.LinesForDriver(code, value) {
			lines = append(lines, types.CandidateLine{Text: text, Kind: types.SourceDriver, Source: source})
		}
		reasons = append(reasons, source)
		activeDrivers = append(activeDrivers, types.DriverSignal{Code: code, Value: value})
	}

	var extra, unknown []string
	for code, value := range drivers {
		switch {
		case value == 0:
			unknown = append(unknown, code)
		case !c.catalog.HasDriver(code):
			extra = append(extra, code)
		}
	}
	sort.Strings(extra)
	sort.Strings(unknown)
	for _, code := range extra {
		activeDrivers = append(activeDrivers, types.DriverSignal{Code: code, Value: drivers[code]})
	}

	return Collection{
		Lines:            dedupeLines(lines),
		Reasons:          dedupeStrings(reasons),
		ActiveConditions: active,
		Debug: types.Debug{
			ActiveConditions:      slices.Clone(active),
			ActiveDrivers:         activeDrivers,
			UnknownDrivers:        unknown,
			QuestionConditionTags: tags,
			PreventKeys:           sortedKeys(cc.Prevent),
		},
	}
}

// activeConditions returns the active condition codes: catalog codes in
// declaration order, then codes unknown to the catalog in lexical order.
func (c *Collector) activeConditions(flags map[string]any) []string {
	set := make(map[string]bool, len(flags))
	for raw, flag := range flags {
		code := signals.ConditionCode(raw)
		if code == "" {
			continue
		}
		if signals.NormalizeFlagWith(flag, c.opts.FlagPolicy) {
			set[code] = true
		}
	}

	active := make([]string, 0, len(set))
	for _, code := range c.catalog.ConditionCodes() {
		if set[code] {
			active = append(active, code)
			delete(set, code)
		}
	}
	rest := make([]string, 0, len(set))
	for code := range set {
		rest = append(rest, code)
	}
	sort.Strings(rest)
	return append(active, rest...)
}

// normalizeDrivers canonicalizes driver codes and values. When two raw keys
// collapse to the same code, the first nonzero value in key order wins.
func normalizeDrivers(raw map[string]any) map[string]int {
	keys := sortedKeys(raw)
	out := make(map[string]int, len(keys))
	for _, k := range keys {
		code := signals.DriverCode(k)
		if code == "" {
			continue
		}
		value := signals.NormalizeDriver(raw[k])
		if prev, ok := out[code]; ok && prev != 0 {
			continue
		}
		out[code] = value
	}
	return out
}

func questionTags(q types.Question) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, t := range q.Signatures.ConditionModifiers {
		code := signals.ConditionCode(t)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		tags = append(tags, code)
	}
	sort.Strings(tags)
	return tags
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
