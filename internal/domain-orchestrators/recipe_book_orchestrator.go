// Package orchestrators coordinates workflows across the recipe repository,
// the signature gateway, the exporter and the view.
package orchestrators

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/ochairo/filedrecipes/internal/domain/entities"
	"github.com/ochairo/filedrecipes/internal/domain/interfaces"
	"github.com/ochairo/filedrecipes/internal/domain/interfaces/gateways"
	"github.com/ochairo/filedrecipes/internal/domain/interfaces/repositories"
	"github.com/ochairo/filedrecipes/internal/domain/interfaces/views"
)

var (
	// ErrSignature marks a missing or invalid recipe file signature
	ErrSignature = errors.New("signature check failed")
	// ErrNotFound is returned when a recipe reference matches nothing
	ErrNotFound = errors.New("recipe not found")
)

// RecipeBookOrchestrator coordinates the recipe book workflows
type RecipeBookOrchestrator struct {
	repo             repositories.RecipeRepository
	signatures       gateways.SignatureGateway
	view             views.RecipeView
	exporter         gateways.RecipeExporter
	logger           interfaces.Logger
	requireSignature bool
	signaturePath    string
}

// RecipeBookConfig holds configuration for the orchestrator
type RecipeBookConfig struct {
	// RequireSignature refuses to open an unsigned or unverifiable file
	RequireSignature bool
	// SignaturePath defaults to the recipe file path plus ".asc"
	SignaturePath string
}

// NewRecipeBookOrchestrator creates a new recipe book orchestrator.
// signatures, view and exporter may be nil when the caller does not need them.
func NewRecipeBookOrchestrator(
	repo repositories.RecipeRepository,
	signatures gateways.SignatureGateway,
	view views.RecipeView,
	exporter gateways.RecipeExporter,
	config RecipeBookConfig,
	logger interfaces.Logger,
) *RecipeBookOrchestrator {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	sigPath := config.SignaturePath
	if sigPath == "" {
		sigPath = repo.Path() + ".asc"
	}

	return &RecipeBookOrchestrator{
		repo:             repo,
		signatures:       signatures,
		view:             view,
		exporter:         exporter,
		logger:           logger,
		requireSignature: config.RequireSignature,
		signaturePath:    sigPath,
	}
}

// SignaturePath returns the detached signature location
func (o *RecipeBookOrchestrator) SignaturePath() string {
	return o.signaturePath
}

// Open reads the recipe file once, verifies the signature against those
// bytes when possible and loads the same bytes. A missing recipe file opens
// an empty book unless signatures are required.
func (o *RecipeBookOrchestrator) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := o.repo.Path()
	//nolint:gosec // G304: path is the configured recipe file
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if o.requireSignature {
			return fmt.Errorf("%w: recipe file %s does not exist", ErrSignature, path)
		}
		o.logger.Info("Recipe file not found, starting empty", interfaces.F("path", path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load recipes: %w", &entities.IOError{Op: "read", Path: path, Err: err})
	}

	if err := o.checkSignature(ctx, data); err != nil {
		return err
	}

	if err := o.repo.LoadFrom(ctx, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to load recipes: %w", err)
	}

	o.logger.Debug("Recipes loaded",
		interfaces.F("path", path),
		interfaces.F("count", o.repo.Len()))
	return nil
}

func (o *RecipeBookOrchestrator) checkSignature(ctx context.Context, data []byte) error {
	canVerify := o.signatures != nil && o.signatures.CanVerify()
	_, statErr := os.Stat(o.signaturePath)
	hasSignature := statErr == nil

	switch {
	case canVerify && hasSignature:
		if err := o.signatures.VerifyData(ctx, data, o.signaturePath); err != nil {
			return fmt.Errorf("%w: %w", ErrSignature, err)
		}
		return nil
	case o.requireSignature && !canVerify:
		return fmt.Errorf("%w: no verification key configured", ErrSignature)
	case o.requireSignature:
		return fmt.Errorf("%w: signature %s not found", ErrSignature, o.signaturePath)
	case hasSignature:
		o.logger.Warn("Signature present but no verification key configured, skipping check",
			interfaces.F("signature", o.signaturePath))
	}
	return nil
}

// Persist saves the recipes and signs the file when a signing key is available
func (o *RecipeBookOrchestrator) Persist(ctx context.Context) error {
	if err := o.repo.Save(ctx); err != nil {
		return fmt.Errorf("failed to save recipes: %w", err)
	}

	if o.signatures != nil && o.signatures.CanSign() {
		return o.Sign(ctx)
	}

	if _, err := os.Stat(o.signaturePath); err == nil {
		o.logger.Warn("Recipe file changed but no signing key is configured, signature is stale",
			interfaces.F("signature", o.signaturePath))
	}
	return nil
}

// Sign writes a detached signature for the current recipe file
func (o *RecipeBookOrchestrator) Sign(ctx context.Context) error {
	if o.signatures == nil || !o.signatures.CanSign() {
		return fmt.Errorf("%w: no signing key configured", ErrSignature)
	}
	if err := o.signatures.SignFile(ctx, o.repo.Path(), o.signaturePath); err != nil {
		return fmt.Errorf("%w: %w", ErrSignature, err)
	}
	return nil
}

// Verify checks the detached signature of the recipe file
func (o *RecipeBookOrchestrator) Verify(ctx context.Context) error {
	if o.signatures == nil || !o.signatures.CanVerify() {
		return fmt.Errorf("%w: no verification key configured", ErrSignature)
	}
	if err := o.signatures.VerifyFile(ctx, o.repo.Path(), o.signaturePath); err != nil {
		return fmt.Errorf("%w: %w", ErrSignature, err)
	}
	return nil
}

// List returns copies of every recipe in name order
func (o *RecipeBookOrchestrator) List() []*entities.Recipe {
	return slices.Collect(o.repo.GetAll())
}

// Find resolves a reference to an index. A number is a 1-based position as
// printed by list; anything else is a recipe name, matched exactly first and
// then case-insensitively.
func (o *RecipeBookOrchestrator) Find(ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		index := n - 1
		if index < 0 || index >= o.repo.Len() {
			return -1, &entities.OutOfRangeError{Index: index, Len: o.repo.Len()}
		}
		return index, nil
	}

	recipes := o.List()
	if i := slices.IndexFunc(recipes, func(r *entities.Recipe) bool { return r.Name == ref }); i >= 0 {
		return i, nil
	}
	if i := slices.IndexFunc(recipes, func(r *entities.Recipe) bool { return strings.EqualFold(r.Name, ref) }); i >= 0 {
		return i, nil
	}
	return -1, fmt.Errorf("%w: %q", ErrNotFound, ref)
}

// Show renders the recipe at index
func (o *RecipeBookOrchestrator) Show(index int) error {
	if o.view == nil {
		return fmt.Errorf("no view configured")
	}
	recipe, err := o.repo.GetAt(index)
	if err != nil {
		return err
	}
	return o.view.Show(recipe)
}

// ShowAll renders every recipe
func (o *RecipeBookOrchestrator) ShowAll() error {
	if o.view == nil {
		return fmt.Errorf("no view configured")
	}
	return o.view.ShowAll(o.List())
}

// Delete removes the recipe at index and persists the change
func (o *RecipeBookOrchestrator) Delete(ctx context.Context, index int) (*entities.Recipe, error) {
	recipe, err := o.repo.GetAt(index)
	if err != nil {
		return nil, err
	}
	if err := o.repo.DeleteAt(index); err != nil {
		return nil, err
	}
	if err := o.Persist(ctx); err != nil {
		return nil, err
	}

	o.logger.Info("Recipe deleted", interfaces.F("name", recipe.Name))
	return recipe, nil
}

// Add stores the recipe, replacing one with the same name, and persists
func (o *RecipeBookOrchestrator) Add(ctx context.Context, recipe *entities.Recipe) error {
	if err := o.repo.Put(recipe); err != nil {
		return fmt.Errorf("failed to add recipe: %w", err)
	}
	if err := o.Persist(ctx); err != nil {
		return err
	}

	o.logger.Info("Recipe saved", interfaces.F("name", recipe.Name))
	return nil
}

// Export writes every recipe with the configured exporter
func (o *RecipeBookOrchestrator) Export(w io.Writer) error {
	if o.exporter == nil {
		return fmt.Errorf("no exporter configured")
	}
	if err := o.exporter.Export(w, o.List()); err != nil {
		return fmt.Errorf("failed to export recipes: %w", err)
	}
	return nil
}

// Import merges recipes read by the exporter, replacing same-named ones,
// and persists once at the end. Nothing is persisted if any recipe is rejected.
func (o *RecipeBookOrchestrator) Import(ctx context.Context, r io.Reader) (int, error) {
	if o.exporter == nil {
		return 0, fmt.Errorf("no exporter configured")
	}

	recipes, err := o.exporter.Import(r)
	if err != nil {
		return 0, fmt.Errorf("failed to import recipes: %w", err)
	}

	for i, recipe := range recipes {
		if err := o.repo.Put(recipe); err != nil {
			return i, fmt.Errorf("failed to import recipe %d: %w", i+1, err)
		}
	}

	if len(recipes) > 0 {
		if err := o.Persist(ctx); err != nil {
			return 0, err
		}
	}

	o.logger.Info("Recipes imported", interfaces.F("count", len(recipes)))
	return len(recipes), nil
}
