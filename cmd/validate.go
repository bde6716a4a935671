package cmd

import (
	"fmt"

	"github.com/arcanaland/spellbook/internal/validator"
	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate a card document",
		Long: `Validate checks that a card document can be loaded, and warns about
entries written in older shapes that are rewritten on the next save.
Without a path the configured card document is checked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.StorePath
			if len(args) == 1 {
				path = args[0]
			}

			v := validator.NewValidator(path)
			results, err := v.Validate()
			if err != nil {
				return fmt.Errorf("validation error: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Validation Results:")
			fmt.Fprintln(out, "-------------------")

			if results.Valid() {
				fmt.Fprintf(out, "✅ Document '%s' is valid (%d cards).\n", path, results.Cards)
			} else {
				fmt.Fprintf(out, "❌ Document '%s' has %d validation errors:\n", path, len(results.Errors))
				for i, e := range results.Errors {
					fmt.Fprintf(out, "%d. %s\n", i+1, e)
				}
			}

			if len(results.Warnings) > 0 {
				fmt.Fprintln(out, "\nWarnings:")
				for i, warn := range results.Warnings {
					fmt.Fprintf(out, "%d. %s\n", i+1, warn)
				}
			}

			if !results.Valid() {
				return fmt.Errorf("validation failed")
			}
			return nil
		},
	}
}
