package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ochairo/filedrecipes/internal/domain/entities"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recipe names with their positions",
		Example: `  filedrecipes list
  filedrecipes list --file ~/recipes.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.book.Open(cmd.Context()); err != nil {
				return err
			}
			printRecipeList(cmd.OutOrStdout(), a.repo.Path(), a.book.List())
			return nil
		},
	}
}

// printRecipeList prints 1-based positions, the same numbers show and delete accept
func printRecipeList(out io.Writer, path string, recipes []*entities.Recipe) {
	fmt.Fprintf(out, "Recipes in %s (%d total):\n\n", path, len(recipes))
	for i, recipe := range recipes {
		fmt.Fprintf(out, "%3d. %s\n", i+1, recipe.Name)
	}
}
