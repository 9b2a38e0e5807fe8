package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matthewbaird/signatures/internal/question"
	"github.com/matthewbaird/signatures/internal/types"
)

// maxListed bounds text listings.
const maxListed = 70

func newQuestionsCmd(c *cli) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:     "questions",
		Aliases: []string{"q"},
		Short:   "Browse the question bank",
	}
	cmd.PersistentFlags().StringVar(&category, "category", "", "filter by category")

	list := &cobra.Command{
		Use:   "list",
		Short: "List preloaded questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			items, err := a.Store.List(cmd.Context(), category)
			if err != nil {
				return err
			}
			printQuestions(cmd.OutOrStdout(), "Preloaded Questions:", items, maxListed)
			return nil
		},
	}

	var limit int
	search := &cobra.Command{
		Use:   "search <keyword>...",
		Short: "Search questions by keyword; every keyword must match",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			items, err := a.Store.Search(cmd.Context(), strings.Join(args, " "), category, limit)
			if err != nil {
				return err
			}
			printQuestions(cmd.OutOrStdout(), "Matches:", items, limit)
			return nil
		},
	}
	search.Flags().IntVar(&limit, "limit", question.DefaultSearchLimit, "maximum number of matches")

	show := &cobra.Command{
		Use:   "show <question-id>",
		Short: "Print one question with every persona answer as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			q, err := a.Store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(q)
		},
	}

	categories := &cobra.Command{
		Use:   "categories",
		Short: "List question categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			cats, err := a.Store.Categories(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Categories:")
			for _, cat := range cats {
				fmt.Fprintf(out, "- %s\n", cat)
			}
			return nil
		},
	}

	cmd.AddCommand(list, search, show, categories)
	return cmd
}

func printQuestions(w io.Writer, heading string, items []types.Question, max int) {
	fmt.Fprintln(w, heading)
	if len(items) == 0 {
		fmt.Fprintln(w, "No questions found.")
		return
	}
	shown := items
	if max > 0 && len(shown) > max {
		shown = shown[:max]
	}
	for i, q := range shown {
		fmt.Fprintf(w, "%2d. [%s] %s - %s\n", i+1, q.Category, q.ID, q.Text)
	}
	if rest := len(items) - len(shown); rest > 0 {
		fmt.Fprintf(w, "... (%d more not shown)\n", rest)
	}
}
