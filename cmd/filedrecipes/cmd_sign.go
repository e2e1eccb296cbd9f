package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSignCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sign",
		Short: "Write a detached OpenPGP signature for the recipe file",
		Long: `Write an armored detached signature next to the recipe file.

Requires signing.private_key in the configuration. The file is parsed first so
a malformed recipe file is never signed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.repo.Load(cmd.Context()); err != nil {
				return err
			}
			if err := a.book.Sign(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed %s -> %s\n", a.repo.Path(), a.book.SignaturePath())
			return nil
		},
	}
}
