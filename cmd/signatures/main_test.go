package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/signatures/internal/compose"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SIGNATURES_CONFIG", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CATALOG_PATH", "")
	t.Setenv("QUESTION_BANK_PATH", "")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCompose_Text(t *testing.T) {
	out, err := run(t, "", "compose", "CKM-01", "--persona", "expert",
		"--context", `{"condition_modifiers":{"AF":"Yes","ST":"Yes"}}`, "--debug")
	require.NoError(t, err)
	assert.Contains(t, out, "SIGNATURES OUTPUT\n")
	assert.Contains(t, out, "Persona: Expert")
	assert.Contains(t, out, "Question: [CKM-01] What does my diagnosis mean for my future?")
	assert.Contains(t, out, "Action Step:\nAsk for your PREVENT score.")
	assert.Contains(t, out, "- fired rules: af_st")
	assert.Contains(t, out, "- active conditions: AF, ST")
}

func TestCompose_JSONFromStdin(t *testing.T) {
	out, err := run(t, `{"prevent":{"cvd_10yr":0.2}}`,
		"compose", "--custom", "Is coffee okay?", "--persona", "4", "--context-file", "-", "--json")
	require.NoError(t, err)

	var resp compose.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Empty(t, resp.QuestionID)
	assert.True(t, resp.FallbackAnswer)
	assert.Equal(t, "Expert", resp.Persona.String())
	assert.Len(t, resp.Payload.Addons, 1)
}

func TestCompose_ContextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctx.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"condition_modifiers":{"HTN":true}}`), 0o644))
	out, err := run(t, "", "compose", "HTN-01", "--context-file", path, "--json")
	require.NoError(t, err)
	var resp compose.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, []string{"HTN"}, resp.Debug.ActiveConditions)
	assert.NotEmpty(t, resp.Payload.Addons)
}

func TestCompose_Errors(t *testing.T) {
	_, err := run(t, "", "compose")
	assert.ErrorIs(t, err, compose.ErrEmptyRequest)

	_, err = run(t, "", "compose", "CKM-01", "--context", "{nope")
	assert.ErrorContains(t, err, "context is not valid JSON")

	_, err = run(t, "", "compose", "NOPE-1")
	assert.ErrorIs(t, err, compose.ErrQuestionNotFound)
}

func TestQuestions(t *testing.T) {
	out, err := run(t, "", "questions", "list", "--category", "ckm")
	require.NoError(t, err)
	assert.Contains(t, out, " 1. [CKM] CKM-01 - ")
	assert.Contains(t, out, " 2. [CKM] CKM-02 - ")
	assert.NotContains(t, out, "HTN-01")

	out, err = run(t, "", "questions", "search", "blood", "thinner")
	require.NoError(t, err)
	assert.Contains(t, out, "AF-01")
	assert.NotContains(t, out, "HTN-01")

	out, err = run(t, "", "questions", "show", "dm-01")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "DM-01"`)

	out, err = run(t, "", "questions", "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "- CKM\n")
}

func TestCatalog(t *testing.T) {
	out, err := run(t, "", "catalog", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "no issues")

	out, err = run(t, "", "catalog", "show")
	require.NoError(t, err)
	assert.Contains(t, out, `"rules"`)
}

func TestCatalog_ValidateReportsIssues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
questions:
  - id: X-1
    category: general
    question: "Is this a test?"
`), 0o644))
	t.Setenv("QUESTION_BANK_PATH", path)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"catalog", "validate"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, out.String(), "X-1: missing Listener answer")
}
