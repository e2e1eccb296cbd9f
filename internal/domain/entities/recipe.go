// Package entities holds the recipe domain model.
package entities

import (
	"strings"
)

// Ingredient represents one ingredient line of a recipe
type Ingredient struct {
	Amount  string
	Measure string
	Name    string
}

// String renders the ingredient in its file form (amount;measure;name)
func (i Ingredient) String() string {
	return i.Amount + ";" + i.Measure + ";" + i.Name
}

// Recipe represents a named recipe with its ingredients and instructions.
// Two recipes are equal when their names are equal.
type Recipe struct {
	Name         string
	Ingredients  []Ingredient
	Instructions []string
}

// NewRecipe creates an empty recipe with the given name
func NewRecipe(name string) (*Recipe, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &FormatError{Reason: "recipe must have a name"}
	}
	return &Recipe{Name: name}, nil
}

// AddIngredient appends an ingredient
func (r *Recipe) AddIngredient(ingredient Ingredient) {
	r.Ingredients = append(r.Ingredients, ingredient)
}

// AddInstruction appends an instruction line
func (r *Recipe) AddInstruction(instruction string) {
	r.Instructions = append(r.Instructions, instruction)
}

// Clone returns a deep copy that shares no backing storage with r
func (r *Recipe) Clone() *Recipe {
	if r == nil {
		return nil
	}

	clone := &Recipe{Name: r.Name}
	if r.Ingredients != nil {
		clone.Ingredients = make([]Ingredient, len(r.Ingredients))
		copy(clone.Ingredients, r.Ingredients)
	}
	if r.Instructions != nil {
		clone.Instructions = make([]string, len(r.Instructions))
		copy(clone.Instructions, r.Instructions)
	}
	return clone
}

// Compare orders recipes by name using ordinal comparison
func (r *Recipe) Compare(other *Recipe) int {
	return strings.Compare(r.Name, other.Name)
}

// Equal reports whether both recipes have the same name
func (r *Recipe) Equal(other *Recipe) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Name == other.Name
}

// CompareRecipes is Compare in function form, for slices.SortStableFunc
func CompareRecipes(a, b *Recipe) int {
	return a.Compare(b)
}
