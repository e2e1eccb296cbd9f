// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"
	"io"
	"iter"

	"github.com/ochairo/filedrecipes/internal/domain/entities"
)

// RecipesChangedEvent is the payload-free marker passed to change handlers
type RecipesChangedEvent struct{}

// RecipesChangedHandler is invoked after every operation that changes or
// persists the recipe collection. A returned error is propagated to the
// caller of that operation.
type RecipesChangedHandler func(RecipesChangedEvent) error

// RecipeRepository defines the interface for accessing the recipe collection.
// Every recipe it hands out is a deep copy.
type RecipeRepository interface {
	// Load replaces the collection with the contents of the backing file
	Load(ctx context.Context) error

	// LoadFrom replaces the collection with recipes read from src, which
	// holds content of the backing file already read by the caller
	LoadFrom(ctx context.Context, src io.Reader) error

	// Save writes the whole collection to the backing file
	Save(ctx context.Context) error

	// GetAll yields copies of every recipe in name order
	GetAll() iter.Seq[*entities.Recipe]

	// GetAt returns a copy of the recipe at index
	GetAt(index int) (*entities.Recipe, error)

	// Len returns the number of recipes held
	Len() int

	// Delete removes the recipe with the same name, if any
	Delete(recipe *entities.Recipe) error

	// DeleteAt removes the recipe at index
	DeleteAt(index int) error

	// Put adds the recipe or replaces the one with the same name
	Put(recipe *entities.Recipe) error

	// IsModified reports unsaved changes since the last load or save
	IsModified() bool

	// OnRecipesChanged registers a change handler
	OnRecipesChanged(handler RecipesChangedHandler)

	// Path returns the absolute path of the backing file
	Path() string
}
