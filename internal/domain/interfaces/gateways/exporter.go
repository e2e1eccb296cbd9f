// Package gateways defines interfaces for external integrations.
package gateways

import (
	"io"

	"github.com/ochairo/filedrecipes/internal/domain/entities"
)

// RecipeExporter converts recipe collections to and from an interchange format
type RecipeExporter interface {
	// Export writes the recipes to w
	Export(w io.Writer, recipes []*entities.Recipe) error

	// Import reads recipes from r
	Import(r io.Reader) ([]*entities.Recipe, error)
}
