// Package types provides the Go structs shared by the layering engine, the
// question bank and the service shell. The JSON tags are the wire contract
// consumed by presentation code and must stay stable.
package types

// CalcContext is the calculator output consumed by the layering engine.
// Values are kept raw; the signals package decides what they mean.
type CalcContext struct {
	ConditionModifiers map[string]any `json:"condition_modifiers,omitempty"`
	EngagementDrivers  map[string]any `json:"engagement_drivers,omitempty"`
	Prevent            map[string]any `json:"prevent,omitempty"`
	Scores             map[string]any `json:"scores,omitempty"`
}

// IsEmpty reports whether the context carries no signals at all.
func (c CalcContext) IsEmpty() bool {
	return len(c.ConditionModifiers) == 0 && len(c.EngagementDrivers) == 0 && len(c.Prevent) == 0
}

// PersonaAnswer is the persona-specific base content for a question.
type PersonaAnswer struct {
	Text         string `json:"text" yaml:"text"`
	ActionStep   string `json:"action_step,omitempty" yaml:"action_step,omitempty"`
	WhyItMatters string `json:"why_it_matters,omitempty" yaml:"why_it_matters,omitempty"`
}

// Signatures holds the tags attached to a question.
type Signatures struct {
	BehavioralCore     string         `json:"behavioral_core,omitempty" yaml:"behavioral_core,omitempty"`
	ConditionModifiers []string       `json:"condition_modifiers,omitempty" yaml:"condition_modifiers,omitempty"`
	EngagementDrivers  map[string]int `json:"engagement_drivers,omitempty" yaml:"engagement_drivers,omitempty"`
}

// Link is a reference shown alongside an answer.
type Link struct {
	Org   string `json:"org,omitempty" yaml:"org,omitempty"`
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

// Question is a question bank record.
type Question struct {
	ID         string                   `json:"id" yaml:"id"`
	Category   string                   `json:"category" yaml:"category"`
	Text       string                   `json:"question" yaml:"question"`
	Responses  map[string]PersonaAnswer `json:"responses,omitempty" yaml:"responses,omitempty"`
	Signatures Signatures               `json:"signatures" yaml:"signatures"`
	Links      []Link                   `json:"links,omitempty" yaml:"links,omitempty"`
}

// QuestionSummary is the list view of a question.
type QuestionSummary struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Text     string `json:"question"`
}

// Summary returns the list view of q.
func (q Question) Summary() QuestionSummary {
	return QuestionSummary{ID: q.ID, Category: q.Category, Text: q.Text}
}

// SourceKind identifies which kind of rule produced a candidate line.
type SourceKind string

const (
	SourceCondition SourceKind = "condition"
	SourceDriver    SourceKind = "driver"
	SourceRule      SourceKind = "rule"
)

// CandidateLine is an add-on line with its provenance.
type CandidateLine struct {
	Text   string     `json:"text"`
	Kind   SourceKind `json:"kind"`
	Source string     `json:"source"` // condition code, "driver value" pair or rule id
}

// DriverSignal is a nonzero engagement driver value.
type DriverSignal struct {
	Code  string `json:"code"`
	Value int    `json:"value"`
}

// Debug is the diagnostic block produced by the collector.
type Debug struct {
	ActiveConditions      []string       `json:"active_conditions"`
	ActiveDrivers         []DriverSignal `json:"active_drivers"`
	UnknownDrivers        []string       `json:"unknown_drivers,omitempty"`
	QuestionConditionTags []string       `json:"question_condition_tags,omitempty"`
	PreventKeys           []string       `json:"prevent_keys,omitempty"`
}

// Payload is the layered answer. Field names are a stable contract.
type Payload struct {
	Base     string   `json:"base"`
	Addons   []string `json:"addons"`
	WhyAdded []string `json:"why_added"`
	Final    string   `json:"final"`
}
