// Package views defines the presentation contracts the domain calls into.
package views

import "github.com/ochairo/filedrecipes/internal/domain/entities"

// RecipeView renders recipes to the user
type RecipeView interface {
	// Show renders one recipe and waits for acknowledgment
	Show(recipe *entities.Recipe) error

	// ShowAll renders every recipe in order and waits once at the end
	ShowAll(recipes []*entities.Recipe) error
}
