package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matthewbaird/signatures/internal/app"
	"github.com/matthewbaird/signatures/internal/question"
)

func newCatalogCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and validate the add-on catalog",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the loaded catalog as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := app.LoadCatalog(c.cfg.Catalog.Path)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(cat.Snapshot())
		},
	}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check the catalog schema and the question bank against it",
		Long: `Validate loads the catalog (which checks it against the CUE schema) and
then checks every bank question: persona answers present, link urls set and
condition and driver tags known to the catalog.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			cat, err := app.LoadCatalog(c.cfg.Catalog.Path)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "catalog %s: %d conditions, %d drivers, %d rules\n",
				cat.Version(), len(cat.ConditionCodes()), len(cat.DriverCodes()), len(cat.Rules()))

			bank, err := app.LoadBank(c.cfg.Questions.BankPath)
			if err != nil {
				return err
			}
			issues := question.Validate(bank, cat)
			if len(issues) == 0 {
				fmt.Fprintf(out, "question bank: %d questions, no issues\n", len(bank))
				return nil
			}
			fmt.Fprintf(out, "question bank: %d questions, %d issues\n", len(bank), len(issues))
			for _, issue := range issues {
				fmt.Fprintf(out, "- %s\n", issue)
			}
			return fmt.Errorf("question bank has %d issues", len(issues))
		},
	}

	cmd.AddCommand(show, validate)
	return cmd
}
