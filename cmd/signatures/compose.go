package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matthewbaird/signatures/internal/compose"
)

const rule = "========================================================================"

type composeFlags struct {
	persona     string
	custom      string
	contextJSON string
	contextFile string
	asJSON      bool
	debug       bool
}

func newComposeCmd(c *cli) *cobra.Command {
	f := &composeFlags{}
	cmd := &cobra.Command{
		Use:   "compose [question-id]",
		Short: "Compose a layered answer for a preloaded or custom question",
		Long: `Compose picks the persona answer for a preloaded question (or the
persona's generic reply for a custom question) and layers catalog add-ons
onto it from the calculator context.

Examples:
  signatures compose CKM-01 --persona Expert \
    --context '{"condition_modifiers":{"AF":"Yes","ST":"Yes"}}'
  signatures compose --custom "Is coffee okay?" --persona 2 --context-file ctx.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompose(cmd, c, f, args)
		},
	}
	cmd.Flags().StringVarP(&f.persona, "persona", "p", "", "Listener, Motivator, Director, Expert or 1-4 (default Listener)")
	cmd.Flags().StringVar(&f.custom, "custom", "", "custom question text instead of a question id")
	cmd.Flags().StringVar(&f.contextJSON, "context", "", "calculator context as inline JSON")
	cmd.Flags().StringVar(&f.contextFile, "context-file", "", "read the calculator context from a JSON file (- for stdin)")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the full response as JSON")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "include the diagnostics block in text output")
	cmd.MarkFlagsMutuallyExclusive("context", "context-file")
	return cmd
}

func runCompose(cmd *cobra.Command, c *cli, f *composeFlags, args []string) error {
	req := compose.Request{Persona: f.persona, CustomQuestion: f.custom}
	if len(args) == 1 {
		req.QuestionID = args[0]
	}
	ctxValue, err := readContext(cmd.InOrStdin(), f)
	if err != nil {
		return err
	}
	req.Context = ctxValue

	a, err := c.build(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.Service.Compose(cmd.Context(), req)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if f.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	renderResponse(out, resp, f.debug)
	return nil
}

func readContext(stdin io.Reader, f *composeFlags) (any, error) {
	var data []byte
	switch {
	case f.contextJSON != "":
		data = []byte(f.contextJSON)
	case f.contextFile == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading context from stdin: %w", err)
		}
		data = b
	case f.contextFile != "":
		b, err := os.ReadFile(f.contextFile)
		if err != nil {
			return nil, fmt.Errorf("reading context file: %w", err)
		}
		data = b
	default:
		return nil, nil
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errors.Join(errors.New("context is not valid JSON"), err)
	}
	return v, nil
}

func renderResponse(w io.Writer, resp *compose.Response, debug bool) {
	title := "SIGNATURES OUTPUT"
	if resp.QuestionID == "" {
		title += " (CUSTOM QUESTION)"
	}
	fmt.Fprintf(w, "\n%s\n%s\n%s\n", rule, title, rule)
	fmt.Fprintf(w, "Persona: %s\n", resp.Persona)
	if resp.QuestionID != "" {
		fmt.Fprintf(w, "Question: [%s] %s\n\n", resp.QuestionID, resp.Question)
	} else {
		fmt.Fprintf(w, "Question: %s\n\n", resp.Question)
	}

	fmt.Fprintln(w, "Response:")
	fmt.Fprintln(w, resp.Payload.Final)

	if resp.ActionStep != "" {
		fmt.Fprintf(w, "\nAction Step:\n%s\n", resp.ActionStep)
	}
	if resp.WhyItMatters != "" {
		fmt.Fprintf(w, "\nWhy it matters:\n%s\n", resp.WhyItMatters)
	}
	if len(resp.Links) > 0 {
		fmt.Fprintln(w, "\nSources:")
		for _, l := range resp.Links {
			fmt.Fprintf(w, "- %s: %s\n", l.Title, l.URL)
		}
	}
	if len(resp.Payload.WhyAdded) > 0 {
		fmt.Fprintln(w, "\nWhy these add-ons:")
		for _, r := range resp.Payload.WhyAdded {
			fmt.Fprintf(w, "- %s\n", r)
		}
	}
	if debug {
		d := resp.Debug
		fmt.Fprintln(w, "\nDebug:")
		fmt.Fprintf(w, "- active conditions: %s\n", strings.Join(d.ActiveConditions, ", "))
		for _, ds := range d.ActiveDrivers {
			fmt.Fprintf(w, "- driver %s: %d\n", ds.Code, ds.Value)
		}
		if len(d.UnknownDrivers) > 0 {
			fmt.Fprintf(w, "- unknown drivers: %s\n", strings.Join(d.UnknownDrivers, ", "))
		}
		if len(resp.FiredRules) > 0 {
			fmt.Fprintf(w, "- fired rules: %s\n", strings.Join(resp.FiredRules, ", "))
		}
	}
	fmt.Fprintf(w, "%s\n\n", rule)
}
