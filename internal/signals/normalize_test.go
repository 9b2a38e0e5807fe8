package signals

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFlag(t *testing.T) {
	empty := ""
	yes := "Yes"
	tests := []struct {
		name string
		raw  any
		want bool
	}{
		{"nil", nil, false},
		{"true", true, true},
		{"false", false, false},
		{"int one", 1, true},
		{"int zero", 0, false},
		{"float nonzero", 0.5, true},
		{"float zero", 0.0, false},
		{"nan", math.NaN(), false},
		{"uint", uint8(3), true},
		{"json number", json.Number("1"), true},
		{"json number zero", json.Number("0"), false},
		{"Yes", "Yes", true},
		{"YES padded", "  YES ", true},
		{"y", "y", true},
		{"selected", "Selected", true},
		{"present", "present", true},
		{"positive", "POSITIVE", true},
		{"string one", "1", true},
		{"No", "No", false},
		{"n", "n", false},
		{"false string", "False", false},
		{"string zero", "0", false},
		{"absent", "absent", false},
		{"negative", "Negative", false},
		{"unknown", "unknown", false},
		{"n/a", "N/A", false},
		{"not present", "not present", false},
		{"empty", "", false},
		{"whitespace", "   ", false},
		{"free text", "on lisinopril", true},
		{"string pointer", &yes, true},
		{"empty pointer", &empty, false},
		{"nil pointer", (*string)(nil), false},
		{"slice", []string{"yes"}, false},
		{"map", map[string]any{"a": 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeFlag(tt.raw))
		})
	}
}

func TestNormalizeFlagWith_Strict(t *testing.T) {
	assert.False(t, NormalizeFlagWith("on lisinopril", PolicyStrict))
	assert.True(t, NormalizeFlagWith("yes", PolicyStrict))
	assert.True(t, NormalizeFlagWith(1, PolicyStrict))
	assert.False(t, NormalizeFlagWith("no", PolicyStrict))
	assert.Equal(t, "strict", PolicyStrict.String())
	assert.Equal(t, "permissive", PolicyPermissive.String())
}

func TestNormalizeDriver(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want int
	}{
		{"nil", nil, 0},
		{"minus one", -1, -1},
		{"zero", 0, 0},
		{"one", 1, 1},
		{"clamp high", 5, 1},
		{"clamp low", int64(-7), -1},
		{"float truncates", 0.9, 0},
		{"float one", 1.0, 1},
		{"float negative", -1.5, -1},
		{"string", "-1", -1},
		{"string padded", " 1 ", 1},
		{"string plus", "+1", 1},
		{"string float rejected", "1.0", 0},
		{"garbage", "high", 0},
		{"empty", "", 0},
		{"bool true", true, 1},
		{"bool false", false, 0},
		{"json int", json.Number("-1"), -1},
		{"json float", json.Number("2.5"), 1},
		{"nan", math.NaN(), 0},
		{"huge", math.Inf(1), 1},
		{"slice", []int{1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDriver(tt.raw))
		})
	}
}

func TestNormalizeRisk(t *testing.T) {
	tests := []struct {
		name   string
		raw    any
		want   float64
		wantOK bool
	}{
		{"nil", nil, 0, false},
		{"float", 0.08, 0.08, true},
		{"int", 1, 1, true},
		{"string", "0.1", 0.1, true},
		{"percent", "7.5%", 0.075, true},
		{"percent padded", " 10 % ", 0.1, true},
		{"json number", json.Number("0.0751"), 0.0751, true},
		{"empty", "", 0, false},
		{"garbage", "high", 0, false},
		{"bool", true, 0, false},
		{"nan", math.NaN(), 0, false},
		{"inf", math.Inf(1), 0, false},
		{"nan string", "NaN", 0, false},
		{"map", map[string]any{}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeRisk(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestCodes(t *testing.T) {
	assert.Equal(t, "CKMH", ConditionCode(" ckmh "))
	assert.Equal(t, "readiness_for_change", DriverCode(" Readiness_For_Change"))
}
