// Package catalog holds the static add-on catalog: condition lines, engagement
// driver lines and the ordered conflict-rule table. A Catalog is immutable once
// loaded; every accessor returns a copy so concurrent requests can share it.
package catalog

import (
	"slices"
)

// TriggerType identifies how a rule decides whether it fires.
type TriggerType string

const (
	// TriggerConditionOverlap fires when every required condition is active.
	TriggerConditionOverlap TriggerType = "condition_overlap"
	// TriggerRiskTier fires when a risk value is strictly above a threshold.
	TriggerRiskTier TriggerType = "risk_tier"
)

// Placement says where a rule inserts its lines.
type Placement string

const (
	PlaceFront Placement = "front"
	PlaceEnd   Placement = "end"
)

// Condition is the catalog entry for a condition modifier.
type Condition struct {
	Code  string   `json:"code"`
	Name  string   `json:"name"`
	Lines []string `json:"lines"`
}

// Driver is the catalog entry for an engagement driver. Negative lines apply
// to a -1 value, positive lines to +1.
type Driver struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Negative []string `json:"negative"`
	Positive []string `json:"positive"`
}

// Rule is a conflict rule. Requires is used by condition_overlap triggers;
// RiskKey and RiskAbove by risk_tier triggers. Forbidden substrings are
// stored lower case.
type Rule struct {
	ID        string      `json:"id"`
	Label     string      `json:"label"`
	Trigger   TriggerType `json:"trigger"`
	Requires  []string    `json:"requires,omitempty"`
	RiskKey   string      `json:"risk_key,omitempty"`
	RiskAbove float64     `json:"risk_above,omitempty"`
	Forbidden []string    `json:"forbidden"`
	Lines     []string    `json:"lines"`
	Placement Placement   `json:"placement"`
}

func (r Rule) clone() Rule {
	r.Requires = slices.Clone(r.Requires)
	r.Forbidden = slices.Clone(r.Forbidden)
	r.Lines = slices.Clone(r.Lines)
	return r
}

// Catalog is the loaded, immutable add-on catalog.
type Catalog struct {
	version    string
	conditions []Condition
	drivers    []Driver
	rules      []Rule

	conditionIndex map[string]int
	driverIndex    map[string]int
}

// Snapshot is a copy of the whole catalog, used for display.
type Snapshot struct {
	Version    string      `json:"version"`
	Conditions []Condition `json:"conditions"`
	Drivers    []Driver    `json:"drivers"`
	Rules      []Rule      `json:"rules"`
}

// Version returns the catalog version string.
func (c *Catalog) Version() string { return c.version }

// LinesForCondition returns the add-on lines for a condition code in catalog
// order, or nil if the code is unknown.
func (c *Catalog) LinesForCondition(code string) []string {
	i, ok := c.conditionIndex[code]
	if !ok {
		return nil
	}
	return slices.Clone(c.conditions[i].Lines)
}

// LinesForDriver returns the add-on lines for a driver value. Value 0 and
// unknown codes yield nil.
func (c *Catalog) LinesForDriver(code string, value int) []string {
	i, ok := c.driverIndex[code]
	if !ok {
		return nil
	}
	switch value {
	case -1:
		return slices.Clone(c.drivers[i].Negative)
	case 1:
		return slices.Clone(c.drivers[i].Positive)
	}
	return nil
}

// HasCondition reports whether code has a catalog entry.
func (c *Catalog) HasCondition(code string) bool {
	_, ok := c.conditionIndex[code]
	return ok
}

// HasDriver reports whether code has a catalog entry.
func (c *Catalog) HasDriver(code string) bool {
	_, ok := c.driverIndex[code]
	return ok
}

// ConditionCodes returns the condition codes in declaration order.
func (c *Catalog) ConditionCodes() []string {
	codes := make([]string, len(c.conditions))
	for i, cond := range c.conditions {
		codes[i] = cond.Code
	}
	return codes
}

// DriverCodes returns the driver codes in declaration order.
func (c *Catalog) DriverCodes() []string {
	codes := make([]string, len(c.drivers))
	for i, d := range c.drivers {
		codes[i] = d.Code
	}
	return codes
}

// Rules returns the conflict rules in application order.
func (c *Catalog) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.clone()
	}
	return out
}

// Snapshot returns a deep copy of the catalog contents.
func (c *Catalog) Snapshot() Snapshot {
	s := Snapshot{
		Version:    c.version,
		Conditions: make([]Condition, len(c.conditions)),
		Drivers:    make([]Driver, len(c.drivers)),
		Rules:      c.Rules(),
	}
	for i, cond := range c.conditions {
		cond.Lines = slices.Clone(cond.Lines)
		s.Conditions[i] = cond
	}
	for i, d := range c.drivers {
		d.Negative = slices.Clone(d.Negative)
		d.Positive = slices.Clone(d.Positive)
		s.Drivers[i] = d
	}
	return s
}
