package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ochairo/filedrecipes/internal/external-adapters/textfile"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check that a recipe file parses, without changing it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.repo.Path()
			if len(args) == 1 {
				path = args[0]
			}

			recipes, err := textfile.NewRecipeParser(a.logger).ParseFile(path)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d recipes OK\n", path, len(recipes))
			return nil
		},
	}
}
