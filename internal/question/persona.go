package question

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/matthewbaird/signatures/internal/types"
)

// Persona is a communication style for answers.
type Persona string

const (
	Listener  Persona = "Listener"
	Motivator Persona = "Motivator"
	Director  Persona = "Director"
	Expert    Persona = "Expert"
)

// DefaultPersona is used when a request names no persona.
const DefaultPersona = Listener

// Personas lists every persona in menu order.
var Personas = []Persona{Listener, Motivator, Director, Expert}

// ErrUnknownPersona is returned by ParsePersona for unrecognized names.
var ErrUnknownPersona = errors.New("unknown persona")

var fallbacks = map[Persona]string{
	Listener:  "I hear you. What part of this feels most urgent or confusing right now?",
	Motivator: "You’re taking a strong step by asking. Let’s pick one small action you can start this week.",
	Director:  "Here’s a simple next step: write down 1 goal, 1 barrier, and 1 action you can do today.",
	Expert:    "In general, evidence-based steps combine healthy habits, monitoring, and clinician guidance tailored to your risk.",
}

// ParsePersona resolves a persona name case-insensitively. A 1-based menu
// number is accepted too. The empty string is DefaultPersona.
func ParsePersona(s string) (Persona, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultPersona, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= len(Personas) {
			return Personas[n-1], nil
		}
		return "", fmt.Errorf("%w: %q", ErrUnknownPersona, s)
	}
	for _, p := range Personas {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPersona, s)
}

// Fallback is the generic response for a custom question or a missing answer.
func (p Persona) Fallback() string {
	if text, ok := fallbacks[p]; ok {
		return text
	}
	return fallbacks[Expert]
}

func (p Persona) String() string { return string(p) }

// AnswerFor returns q's answer for persona p. The answer is looked up
// case-insensitively; when it is missing or has no text, the persona
// fallback text is used and fallback is true.
func AnswerFor(q types.Question, p Persona) (answer types.PersonaAnswer, fallback bool) {
	if a, ok := q.Responses[string(p)]; ok {
		answer = a
	} else {
		for _, name := range sortedNames(q.Responses) {
			if strings.EqualFold(strings.TrimSpace(name), string(p)) {
				answer = q.Responses[name]
				break
			}
		}
	}
	answer.Text = strings.TrimSpace(answer.Text)
	if answer.Text == "" {
		answer.Text = p.Fallback()
		fallback = true
	}
	return answer, fallback
}

func sortedNames(m map[string]types.PersonaAnswer) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
