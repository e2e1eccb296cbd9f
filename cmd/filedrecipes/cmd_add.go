package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ochairo/filedrecipes/internal/domain/entities"
	"github.com/ochairo/filedrecipes/internal/external-adapters/textfile"
)

func newAddCmd(a *app) *cobra.Command {
	var (
		name         string
		ingredients  []string
		instructions []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a recipe, replacing any recipe with the same name",
		Example: `  filedrecipes add --name Pancakes \
    --ingredient "2;dl;flour" --ingredient "3;dl;milk" \
    --instruction "Whisk everything." --instruction "Fry thin pancakes."`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			recipe, err := buildRecipe(name, ingredients, instructions)
			if err != nil {
				return err
			}

			if err := a.book.Open(cmd.Context()); err != nil {
				return err
			}
			if err := a.book.Add(cmd.Context(), recipe); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d recipes)\n", recipe.Name, a.repo.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Recipe name (required)")
	cmd.Flags().StringArrayVar(&ingredients, "ingredient", nil, "Ingredient as amount;measure;name (repeatable)")
	cmd.Flags().StringArrayVar(&instructions, "instruction", nil, "Instruction line (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func buildRecipe(name string, ingredients, instructions []string) (*entities.Recipe, error) {
	recipe, err := entities.NewRecipe(name)
	if err != nil {
		return nil, err
	}

	for _, raw := range ingredients {
		fields := strings.Split(raw, textfile.IngredientSeparator)
		if len(fields) != 3 {
			return nil, &entities.FormatError{
				Text:   raw,
				Reason: fmt.Sprintf("ingredient %q must be amount;measure;name", raw),
			}
		}
		recipe.AddIngredient(entities.Ingredient{Amount: fields[0], Measure: fields[1], Name: fields[2]})
	}
	for _, instruction := range instructions {
		recipe.AddInstruction(instruction)
	}

	if err := textfile.ValidateRecipe(recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}
