package question

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matthewbaird/signatures/internal/catalog"
	"github.com/matthewbaird/signatures/internal/signals"
	"github.com/matthewbaird/signatures/internal/types"
)

// Validate reports problems in a question bank. Issues are not fatal: a
// bank with issues still loads. When c is non-nil, signature tags are
// checked against the catalog.
func Validate(questions []types.Question, c *catalog.Catalog) []string {
	var issues []string
	seen := make(map[string]int, len(questions))

	for i, q := range questions {
		id := strings.TrimSpace(q.ID)
		label := id
		if id == "" {
			label = fmt.Sprintf("question #%d", i+1)
			issues = append(issues, label+": missing id")
		} else if first, dup := seen[lookupKey(id)]; dup {
			issues = append(issues, fmt.Sprintf("%s: duplicate id (first at #%d)", label, first+1))
		} else {
			seen[lookupKey(id)] = i
		}

		if strings.TrimSpace(q.Text) == "" {
			issues = append(issues, label+": empty question text")
		}

		for _, p := range Personas {
			if _, fallback := AnswerFor(q, p); fallback {
				issues = append(issues, fmt.Sprintf("%s: missing %s answer", label, p))
			}
		}
		for _, name := range sortedNames(q.Responses) {
			if _, err := ParsePersona(name); err != nil || strings.TrimSpace(name) == "" {
				issues = append(issues, fmt.Sprintf("%s: response for unknown persona %q", label, name))
			}
		}

		for _, l := range q.Links {
			if strings.TrimSpace(l.URL) == "" {
				issues = append(issues, fmt.Sprintf("%s: link %q has no url", label, l.Title))
			}
		}

		if c == nil {
			continue
		}
		for _, tag := range q.Signatures.ConditionModifiers {
			if !c.HasCondition(signals.ConditionCode(tag)) {
				issues = append(issues, fmt.Sprintf("%s: unknown condition tag %q", label, tag))
			}
		}
		for _, code := range driverTags(q.Signatures.EngagementDrivers) {
			if !c.HasDriver(signals.DriverCode(code)) {
				issues = append(issues, fmt.Sprintf("%s: unknown engagement driver %q", label, code))
			}
		}
	}
	return issues
}

func driverTags(m map[string]int) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
