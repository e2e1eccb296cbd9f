package main

import (
	"github.com/spf13/cobra"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [position|name]",
		Short: "Show one recipe, or every recipe when no argument is given",
		Example: `  filedrecipes show
  filedrecipes show 2
  filedrecipes show Pancakes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.book.Open(cmd.Context()); err != nil {
				return err
			}

			if len(args) == 0 {
				return a.book.ShowAll()
			}

			index, err := a.book.Find(args[0])
			if err != nil {
				return err
			}
			return a.book.Show(index)
		},
	}
}
