package layering

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/signatures/internal/catalog"
	"github.com/matthewbaird/signatures/internal/types"
)

func defaultCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return c
}

func ruleByID(t *testing.T, c *catalog.Catalog, id string) catalog.Rule {
	t.Helper()
	for _, r := range c.Rules() {
		if r.ID == id {
			return r
		}
	}
	t.Fatalf("rule %q not in catalog", id)
	return catalog.Rule{}
}

func conditionLine(t *testing.T, c *catalog.Catalog, code string, i int) string {
	t.Helper()
	lines := c.LinesForCondition(code)
	require.Greater(t, len(lines), i, "condition %s line %d", code, i)
	return lines[i]
}

func driverLine(t *testing.T, c *catalog.Catalog, code string, value, i int) string {
	t.Helper()
	lines := c.LinesForDriver(code, value)
	require.Greater(t, len(lines), i, "driver %s %d line %d", code, value, i)
	return lines[i]
}

func texts(lines []types.CandidateLine) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

func calc(conds, drivers, prevent map[string]any) types.CalcContext {
	return types.CalcContext{
		ConditionModifiers: conds,
		EngagementDrivers:  drivers,
		Prevent:            prevent,
	}
}

func flags(codes ...string) map[string]any {
	m := make(map[string]any, len(codes))
	for _, c := range codes {
		m[c] = "Yes"
	}
	return m
}
