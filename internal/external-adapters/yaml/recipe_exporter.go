// Package yaml provides YAML export and import of recipe collections.
package yaml

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ochairo/filedrecipes/internal/domain/entities"
	"gopkg.in/yaml.v3"
)

// yamlRecipeBook represents the raw YAML document
type yamlRecipeBook struct {
	Recipes []yamlRecipe `yaml:"recipes"`
}

type yamlRecipe struct {
	Name         string           `yaml:"name"`
	Ingredients  []yamlIngredient `yaml:"ingredients,omitempty"`
	Instructions []string         `yaml:"instructions,omitempty"`
}

type yamlIngredient struct {
	Amount  string `yaml:"amount"`
	Measure string `yaml:"measure"`
	Name    string `yaml:"name"`
}

// RecipeExporter converts recipe collections to and from YAML
type RecipeExporter struct{}

// NewRecipeExporter creates a new YAML exporter
func NewRecipeExporter() *RecipeExporter {
	return &RecipeExporter{}
}

// Export writes the recipes as a YAML document
func (e *RecipeExporter) Export(w io.Writer, recipes []*entities.Recipe) error {
	book := yamlRecipeBook{Recipes: make([]yamlRecipe, 0, len(recipes))}
	for _, recipe := range recipes {
		book.Recipes = append(book.Recipes, convertToYAML(recipe))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(book); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush YAML: %w", err)
	}
	return nil
}

// Import parses a YAML document into recipes, in document order
func (e *RecipeExporter) Import(r io.Reader) ([]*entities.Recipe, error) {
	var book yamlRecipeBook
	if err := yaml.NewDecoder(r).Decode(&book); err != nil {
		if errors.Is(err, io.EOF) {
			return []*entities.Recipe{}, nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	recipes := make([]*entities.Recipe, 0, len(book.Recipes))
	for i, yr := range book.Recipes {
		// Validate required fields
		if strings.TrimSpace(yr.Name) == "" {
			return nil, &entities.FormatError{Reason: fmt.Sprintf("recipe %d must have a name", i+1)}
		}
		recipes = append(recipes, convertFromYAML(yr))
	}

	return recipes, nil
}

func convertToYAML(recipe *entities.Recipe) yamlRecipe {
	yr := yamlRecipe{
		Name:         recipe.Name,
		Instructions: recipe.Instructions,
	}
	for _, ing := range recipe.Ingredients {
		yr.Ingredients = append(yr.Ingredients, yamlIngredient{
			Amount:  ing.Amount,
			Measure: ing.Measure,
			Name:    ing.Name,
		})
	}
	return yr
}

func convertFromYAML(yr yamlRecipe) *entities.Recipe {
	recipe := &entities.Recipe{Name: yr.Name}
	for _, yi := range yr.Ingredients {
		recipe.AddIngredient(entities.Ingredient{
			Amount:  yi.Amount,
			Measure: yi.Measure,
			Name:    yi.Name,
		})
	}
	for _, instruction := range yr.Instructions {
		recipe.AddInstruction(instruction)
	}
	return recipe
}
