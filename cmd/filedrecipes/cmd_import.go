package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yml|->",
		Short: "Merge recipes from a YAML export, replacing same-named recipes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				//nolint:gosec // G304: import path is given by the user
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				//nolint:errcheck // Defer close on read-only file
				defer f.Close()
				r = f
			}

			if err := a.book.Open(cmd.Context()); err != nil {
				return err
			}

			n, err := a.book.Import(cmd.Context(), r)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d recipes (%d total)\n", n, a.repo.Len())
			return nil
		},
	}
}
