package layering

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matthewbaird/signatures/internal/types"
)

func lines(texts ...string) []types.CandidateLine {
	out := make([]types.CandidateLine, len(texts))
	for i, s := range texts {
		out[i] = types.CandidateLine{Text: s, Kind: types.SourceCondition}
	}
	return out
}

func TestAssemble(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		lines  []types.CandidateLine
		why    []string
		final  string
		addons []string
	}{
		{
			name:   "no addons keeps base",
			base:   "Walk daily.",
			final:  "Walk daily.",
			addons: []string{},
		},
		{
			name:   "base is trimmed",
			base:   "  Walk daily.\n",
			final:  "Walk daily.",
			addons: []string{},
		},
		{
			name:   "bullets after blank line",
			base:   "Walk daily.",
			lines:  lines("First.", "Second."),
			final:  "Walk daily.\n\n- First.\n- Second.",
			addons: []string{"First.", "Second."},
		},
		{
			name:   "empty base",
			lines:  lines("Only."),
			final:  "- Only.",
			addons: []string{"Only."},
		},
		{
			name:   "multi-line addon collapsed",
			base:   "B",
			lines:  lines("one\n  two", "   "),
			final:  "B\n\n- one two",
			addons: []string{"one two"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Assemble(tt.base, tt.lines, tt.why)
			assert.Equal(t, tt.final, p.Final)
			assert.Equal(t, tt.addons, p.Addons)
		})
	}
}

func TestAssemble_WhyAddedDeduplicated(t *testing.T) {
	p := Assemble("b", nil, []string{"CAD active", "CAD active", " ", "trust 1"})
	assert.Equal(t, []string{"CAD active", "trust 1"}, p.WhyAdded)
	assert.Equal(t, "b", p.Base)
}

func TestBullets(t *testing.T) {
	assert.Equal(t, "", Bullets(nil))
	assert.Equal(t, "- a\n- b c", Bullets([]string{"a", "b\tc"}))
}
