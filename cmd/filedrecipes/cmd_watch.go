package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ochairo/filedrecipes/internal/domain/interfaces"
	"github.com/ochairo/filedrecipes/internal/domain/interfaces/repositories"
	"github.com/ochairo/filedrecipes/internal/external-adapters/filewatch"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload and list the recipes whenever the file changes",
		Long: `Watch the recipe file and print the recipe list after every change.

Edits are debounced by watch.debounce. When a signature is configured it is
verified on every reload. Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if err := a.book.Open(ctx); err != nil {
				return err
			}
			printRecipeList(out, a.repo.Path(), a.book.List())

			a.repo.OnRecipesChanged(func(repositories.RecipesChangedEvent) error {
				a.logger.Info("Recipes reloaded", interfaces.F("count", a.repo.Len()))
				return nil
			})

			watcher, err := filewatch.NewWatcher(a.repo.Path(),
				filewatch.WithDebounce(a.cfg.Watch.Debounce),
				filewatch.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer watcher.Stop()

			if err := watcher.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nWatching %s (Ctrl+C to stop)\n", a.repo.Path())

			for event := range watcher.Events() {
				if event.Digest == "" {
					a.logger.Warn("Recipe file removed, keeping last loaded recipes",
						interfaces.F("path", event.Path))
					continue
				}
				if err := a.book.Open(ctx); err != nil {
					a.logger.Error("Reload failed, keeping last loaded recipes",
						interfaces.F("error", err))
					continue
				}
				fmt.Fprintln(out)
				printRecipeList(out, a.repo.Path(), a.book.List())
			}
			return nil
		},
	}
}
