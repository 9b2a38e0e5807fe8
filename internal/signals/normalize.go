// Package signals normalizes the heterogeneous flag, driver and risk values
// produced by the calculators into the canonical forms the layering engine
// works with. Every function here is pure and never panics: malformed input
// degrades to the inactive or unknown state.
package signals

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// FlagPolicy controls how unrecognized, non-empty flag strings are read.
type FlagPolicy int

const (
	// PolicyPermissive treats any unrecognized non-empty string as selected.
	PolicyPermissive FlagPolicy = iota
	// PolicyStrict treats unrecognized strings as not selected.
	PolicyStrict
)

// String returns the config spelling of the policy.
func (p FlagPolicy) String() string {
	if p == PolicyStrict {
		return "strict"
	}
	return "permissive"
}

var falseFlags = map[string]bool{
	"":            true,
	"none":        true,
	"null":        true,
	"na":          true,
	"n/a":         true,
	"unknown":     true,
	"no":          true,
	"n":           true,
	"false":       true,
	"0":           true,
	"absent":      true,
	"negative":    true,
	"not present": true,
}

var trueFlags = map[string]bool{
	"yes":      true,
	"y":        true,
	"true":     true,
	"1":        true,
	"selected": true,
	"present":  true,
	"positive": true,
}

// NormalizeFlag reports whether a raw condition flag marks the condition as
// active, using the permissive policy.
func NormalizeFlag(raw any) bool {
	return NormalizeFlagWith(raw, PolicyPermissive)
}

// NormalizeFlagWith reports whether a raw condition flag marks the condition
// as active under the given policy.
func NormalizeFlagWith(raw any, policy FlagPolicy) bool {
	switch v := raw.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return stringFlag(v, policy)
	case *string:
		if v == nil {
			return false
		}
		return stringFlag(*v, policy)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return stringFlag(v.String(), policy)
		}
		return f != 0 && !math.IsNaN(f)
	}
	if f, ok := toFloat(raw); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return false
}

func stringFlag(s string, policy FlagPolicy) bool {
	key := strings.ToLower(strings.TrimSpace(s))
	if falseFlags[key] {
		return false
	}
	if trueFlags[key] {
		return true
	}
	return policy == PolicyPermissive
}

// NormalizeDriver coerces a raw engagement driver value to -1, 0 or 1.
// Values that cannot be read as an integer are unknown (0); out-of-range
// integers clamp to the nearest end.
func NormalizeDriver(raw any) int {
	var n int64
	switch v := raw.(type) {
	case nil:
		return 0
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0
		}
		n = parsed
	case json.Number:
		if parsed, err := v.Int64(); err == nil {
			n = parsed
		} else if f, err := v.Float64(); err == nil && !math.IsNaN(f) {
			n = truncate(f)
		} else {
			return 0
		}
	default:
		f, ok := toFloat(raw)
		if !ok || math.IsNaN(f) {
			return 0
		}
		n = truncate(f)
	}
	return clamp(n)
}

func truncate(f float64) int64 {
	switch {
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

func clamp(n int64) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

// NormalizeRisk reads a risk probability. Numeric strings and percent strings
// ("7.5%") are accepted. ok is false for missing, non-numeric or non-finite
// values.
func NormalizeRisk(raw any) (value float64, ok bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case bool:
		return 0, false
	case string:
		return parseRiskString(v)
	case json.Number:
		return parseRiskString(v.String())
	}
	f, ok := toFloat(raw)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseRiskString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	scale := 1.0
	if strings.HasSuffix(s, "%") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
		scale = 100
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f / scale, true
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// ConditionCode canonicalizes a condition code (trimmed, upper case).
func ConditionCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// DriverCode canonicalizes an engagement driver code (trimmed, lower case).
func DriverCode(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
