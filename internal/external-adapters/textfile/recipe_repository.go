package textfile

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"iter"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/ochairo/filedrecipes/internal/domain/entities"
	"github.com/ochairo/filedrecipes/internal/domain/interfaces"
	"github.com/ochairo/filedrecipes/internal/domain/interfaces/repositories"
)

// RecipeRepository implements repositories.RecipeRepository on a single
// recipe file. It owns every recipe it holds and hands out copies only.
// It is not safe for concurrent use.
type RecipeRepository struct {
	path       string
	parser     *RecipeParser
	serializer *RecipeSerializer
	logger     interfaces.Logger
	notifier   changeNotifier

	recipes  []*entities.Recipe
	modified bool
}

var _ repositories.RecipeRepository = (*RecipeRepository)(nil)

// Option configures a RecipeRepository
type Option func(*RecipeRepository)

// WithLogger sets the logger used by the repository and its parser
func WithLogger(logger interfaces.Logger) Option {
	return func(r *RecipeRepository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRecipeRepository creates an empty repository backed by path.
// The path is resolved to an absolute path immediately.
func NewRecipeRepository(path string, opts ...Option) (*RecipeRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &entities.InvalidPathError{Path: path}
	}
	if strings.ContainsRune(path, 0) {
		return nil, &entities.InvalidPathError{Path: path, Err: errors.New("path contains NUL byte")}
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, &entities.InvalidPathError{Path: path, Err: err}
	}

	r := &RecipeRepository{
		path:       absPath,
		serializer: NewRecipeSerializer(),
		logger:     &interfaces.NoOpLogger{},
		recipes:    make([]*entities.Recipe, 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.parser = NewRecipeParser(r.logger)

	return r, nil
}

// Path returns the absolute path of the backing file
func (r *RecipeRepository) Path() string {
	return r.path
}

// Load replaces the collection with the parsed file contents. On failure
// the previous collection is kept and no notification fires.
func (r *RecipeRepository) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	recipes, err := r.parser.ParseFile(r.path)
	return r.replace(recipes, err)
}

// LoadFrom behaves like Load but parses src instead of opening the backing
// file, so content that was checked once is exactly what gets loaded.
func (r *RecipeRepository) LoadFrom(ctx context.Context, src io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	recipes, err := r.parser.Parse(src)
	if err != nil {
		var ioErr *entities.IOError
		if errors.As(err, &ioErr) && ioErr.Path == "" {
			ioErr.Path = r.path
		}
	}
	return r.replace(recipes, err)
}

func (r *RecipeRepository) replace(recipes []*entities.Recipe, err error) error {
	if err != nil {
		r.logger.Error("failed to load recipes",
			interfaces.F("path", r.path),
			interfaces.F("error", err),
		)
		return err
	}

	r.recipes = recipes
	r.modified = false
	r.logger.Debug("recipes loaded",
		interfaces.F("path", r.path),
		interfaces.F("count", len(recipes)),
	)

	return r.notifier.notify()
}

// Save writes the collection to the backing file. The file is replaced
// atomically through a temporary file in the same directory.
func (r *RecipeRepository) Save(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.writeFile(); err != nil {
		r.logger.Error("failed to save recipes",
			interfaces.F("path", r.path),
			interfaces.F("error", err),
		)
		return err
	}

	r.modified = false
	r.logger.Debug("recipes saved",
		interfaces.F("path", r.path),
		interfaces.F("count", len(r.recipes)),
	)

	return r.notifier.notify()
}

func (r *RecipeRepository) writeFile() (err error) {
	// An existing file keeps its mode. A new one gets 0666 less the umask.
	var keepMode fs.FileMode
	info, statErr := os.Stat(r.path)
	existing := statErr == nil
	if existing {
		keepMode = info.Mode().Perm()
	}

	tmp, err := createTempFile(filepath.Dir(r.path), filepath.Base(r.path))
	if err != nil {
		return &entities.IOError{Op: "create", Path: r.path, Err: err}
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err = r.serializer.Write(tmp, r.recipes); err != nil {
		var ioErr *entities.IOError
		if errors.As(err, &ioErr) {
			ioErr.Path = r.path
		}
		return err
	}
	if err = tmp.Sync(); err != nil {
		return &entities.IOError{Op: "sync", Path: r.path, Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &entities.IOError{Op: "close", Path: r.path, Err: err}
	}

	if existing {
		if err = os.Chmod(tmpPath, keepMode); err != nil {
			return &entities.IOError{Op: "chmod", Path: r.path, Err: err}
		}
	}
	if err = os.Rename(tmpPath, r.path); err != nil {
		return &entities.IOError{Op: "replace", Path: r.path, Err: err}
	}
	return nil
}

// createTempFile creates a uniquely named hidden file next to the target.
// It is opened with 0666 so the process umask decides the final mode.
func createTempFile(dir, base string) (*os.File, error) {
	for range 10000 {
		name := filepath.Join(dir, "."+base+"."+strconv.FormatUint(rand.Uint64(), 36)+".tmp")
		//nolint:gosec // G304: name is derived from the repository's backing file
		f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o666)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		return f, err
	}
	return nil, &fs.PathError{Op: "createtemp", Path: filepath.Join(dir, "."+base+".*.tmp"), Err: fs.ErrExist}
}

// GetAll yields a copy of every recipe in name order
func (r *RecipeRepository) GetAll() iter.Seq[*entities.Recipe] {
	return func(yield func(*entities.Recipe) bool) {
		for _, recipe := range r.recipes {
			if !yield(recipe.Clone()) {
				return
			}
		}
	}
}

// GetAt returns a copy of the recipe at index
func (r *RecipeRepository) GetAt(index int) (*entities.Recipe, error) {
	if err := r.checkIndex(index); err != nil {
		return nil, err
	}
	return r.recipes[index].Clone(), nil
}

// Len returns the number of recipes
func (r *RecipeRepository) Len() int {
	return len(r.recipes)
}

// Delete removes the held recipe whose name equals recipe's name. The
// modified flag is set and handlers run even when nothing matched.
func (r *RecipeRepository) Delete(recipe *entities.Recipe) error {
	if i := slices.IndexFunc(r.recipes, recipe.Equal); i >= 0 {
		r.recipes = slices.Delete(r.recipes, i, i+1)
		r.logger.Debug("recipe deleted", interfaces.F("name", recipe.Name))
	} else {
		r.logger.Debug("no recipe to delete", interfaces.F("recipe", recipeName(recipe)))
	}

	r.modified = true
	return r.notifier.notify()
}

// DeleteAt removes the recipe at index
func (r *RecipeRepository) DeleteAt(index int) error {
	if err := r.checkIndex(index); err != nil {
		return err
	}
	return r.Delete(r.recipes[index])
}

// Put stores a copy of recipe, replacing any recipe with the same name
func (r *RecipeRepository) Put(recipe *entities.Recipe) error {
	if err := ValidateRecipe(recipe); err != nil {
		return err
	}

	owned := recipe.Clone()
	i, found := slices.BinarySearchFunc(r.recipes, owned, entities.CompareRecipes)
	if found {
		r.recipes[i] = owned
	} else {
		r.recipes = slices.Insert(r.recipes, i, owned)
	}
	r.logger.Debug("recipe stored",
		interfaces.F("name", owned.Name),
		interfaces.F("replaced", found),
	)

	r.modified = true
	return r.notifier.notify()
}

// IsModified reports whether there are unsaved changes
func (r *RecipeRepository) IsModified() bool {
	return r.modified
}

// OnRecipesChanged registers a handler called after Load, Save, Delete,
// DeleteAt and Put
func (r *RecipeRepository) OnRecipesChanged(handler repositories.RecipesChangedHandler) {
	r.notifier.subscribe(handler)
}

func (r *RecipeRepository) checkIndex(index int) error {
	if index < 0 || index >= len(r.recipes) {
		return &entities.OutOfRangeError{Index: index, Len: len(r.recipes)}
	}
	return nil
}

func recipeName(recipe *entities.Recipe) string {
	if recipe == nil {
		return "<nil>"
	}
	return recipe.Name
}
