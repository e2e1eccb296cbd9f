package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <position|name>",
		Aliases: []string{"rm"},
		Short:   "Delete a recipe and save the file",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.book.Open(cmd.Context()); err != nil {
				return err
			}

			index, err := a.book.Find(args[0])
			if err != nil {
				return err
			}

			deleted, err := a.book.Delete(cmd.Context(), index)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", deleted.Name)
			return nil
		},
	}
}
