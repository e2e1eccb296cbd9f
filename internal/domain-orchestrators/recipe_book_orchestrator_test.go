package orchestrators

import (
	"bytes"
	"context"
	"errors"
	"io"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/filedrecipes/internal/domain/entities"
	"github.com/ochairo/filedrecipes/internal/domain/interfaces/repositories"
)

// Mock implementations for testing
type mockRecipeRepository struct {
	path    string
	recipes []*entities.Recipe
	onDisk  []*entities.Recipe
	loadErr error
	saveErr error
	putErr  error

	loads      int
	saves      int
	modified   bool
	loadedFrom string
}

func (m *mockRecipeRepository) Load(_ context.Context) error {
	m.loads++
	if m.loadErr != nil {
		return m.loadErr
	}
	m.recipes = slices.Clone(m.onDisk)
	m.modified = false
	return nil
}

func (m *mockRecipeRepository) LoadFrom(ctx context.Context, src io.Reader) error {
	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}
	m.loadedFrom = string(data)
	return m.Load(ctx)
}

func (m *mockRecipeRepository) Save(_ context.Context) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.modified = false
	return nil
}

func (m *mockRecipeRepository) GetAll() iter.Seq[*entities.Recipe] {
	return func(yield func(*entities.Recipe) bool) {
		for _, r := range m.recipes {
			if !yield(r.Clone()) {
				return
			}
		}
	}
}

func (m *mockRecipeRepository) GetAt(index int) (*entities.Recipe, error) {
	if index < 0 || index >= len(m.recipes) {
		return nil, &entities.OutOfRangeError{Index: index, Len: len(m.recipes)}
	}
	return m.recipes[index].Clone(), nil
}

func (m *mockRecipeRepository) Len() int { return len(m.recipes) }

func (m *mockRecipeRepository) Delete(recipe *entities.Recipe) error {
	m.recipes = slices.DeleteFunc(m.recipes, recipe.Equal)
	m.modified = true
	return nil
}

func (m *mockRecipeRepository) DeleteAt(index int) error {
	if index < 0 || index >= len(m.recipes) {
		return &entities.OutOfRangeError{Index: index, Len: len(m.recipes)}
	}
	return m.Delete(m.recipes[index])
}

func (m *mockRecipeRepository) Put(recipe *entities.Recipe) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.recipes = slices.DeleteFunc(m.recipes, recipe.Equal)
	m.recipes = append(m.recipes, recipe.Clone())
	slices.SortFunc(m.recipes, entities.CompareRecipes)
	m.modified = true
	return nil
}

func (m *mockRecipeRepository) IsModified() bool { return m.modified }

func (m *mockRecipeRepository) OnRecipesChanged(_ repositories.RecipesChangedHandler) {}

func (m *mockRecipeRepository) Path() string { return m.path }

type mockSignatureGateway struct {
	canSign   bool
	canVerify bool
	verifyErr error
	signErr   error

	signed   []string
	verified []string
	// afterVerify runs once a verification has passed
	afterVerify func()
}

func (m *mockSignatureGateway) SignFile(_ context.Context, filePath, _ string) error {
	if m.signErr != nil {
		return m.signErr
	}
	m.signed = append(m.signed, filePath)
	return nil
}

func (m *mockSignatureGateway) VerifyFile(_ context.Context, filePath, _ string) error {
	m.verified = append(m.verified, filePath)
	return m.verifyErr
}

func (m *mockSignatureGateway) VerifyData(_ context.Context, data []byte, _ string) error {
	m.verified = append(m.verified, string(data))
	if m.verifyErr != nil {
		return m.verifyErr
	}
	if m.afterVerify != nil {
		m.afterVerify()
	}
	return nil
}

func (m *mockSignatureGateway) CanSign() bool   { return m.canSign }
func (m *mockSignatureGateway) CanVerify() bool { return m.canVerify }

type mockView struct {
	shown    []string
	showAlls int
}

func (m *mockView) Show(recipe *entities.Recipe) error {
	m.shown = append(m.shown, recipe.Name)
	return nil
}

func (m *mockView) ShowAll(recipes []*entities.Recipe) error {
	m.showAlls++
	for _, r := range recipes {
		m.shown = append(m.shown, r.Name)
	}
	return nil
}

type mockExporter struct {
	imported []*entities.Recipe
	err      error
}

func (m *mockExporter) Export(w io.Writer, recipes []*entities.Recipe) error {
	for _, r := range recipes {
		if _, err := io.WriteString(w, r.Name+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockExporter) Import(_ io.Reader) ([]*entities.Recipe, error) {
	return m.imported, m.err
}

func recipe(name string) *entities.Recipe {
	return &entities.Recipe{Name: name, Instructions: []string{"Cook " + name + "."}}
}

// newRepo returns a mock repository backed by a real file path, optionally
// with a signature file next to it
func newRepo(t *testing.T, withSignature bool, recipes ...*entities.Recipe) *mockRecipeRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recipes.txt")
	require.NoError(t, os.WriteFile(path, []byte("placeholder"), 0600))
	if withSignature {
		require.NoError(t, os.WriteFile(path+".asc", []byte("sig"), 0600))
	}
	return &mockRecipeRepository{path: path, onDisk: recipes}
}

func TestRecipeBookOrchestrator_Open(t *testing.T) {
	tests := []struct {
		name          string
		withSignature bool
		signatures    *mockSignatureGateway
		require       bool
		wantErr       error
		wantVerified  bool
	}{
		{name: "no signing configured"},
		{name: "verify when key and signature present", withSignature: true,
			signatures: &mockSignatureGateway{canVerify: true}, wantVerified: true},
		{name: "signature without key is skipped", withSignature: true,
			signatures: &mockSignatureGateway{}},
		{name: "bad signature", withSignature: true,
			signatures: &mockSignatureGateway{canVerify: true, verifyErr: errors.New("bad")},
			wantErr: ErrSignature, wantVerified: true},
		{name: "required but missing signature",
			signatures: &mockSignatureGateway{canVerify: true}, require: true, wantErr: ErrSignature},
		{name: "required but no key", withSignature: true,
			signatures: &mockSignatureGateway{}, require: true, wantErr: ErrSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newRepo(t, tt.withSignature, recipe("Tea"))
			var sigs *mockSignatureGateway
			orch := NewRecipeBookOrchestrator(repo, nil, nil, nil, RecipeBookConfig{RequireSignature: tt.require}, nil)
			if tt.signatures != nil {
				sigs = tt.signatures
				orch = NewRecipeBookOrchestrator(repo, sigs, nil, nil, RecipeBookConfig{RequireSignature: tt.require}, nil)
			}

			err := orch.Open(context.Background())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 0, repo.loads, "must not load an unverified file")
			} else {
				require.NoError(t, err)
				assert.Equal(t, 1, repo.loads)
				assert.Equal(t, 1, repo.Len())
			}
			if sigs != nil {
				assert.Equal(t, tt.wantVerified, len(sigs.verified) == 1)
			}
		})
	}
}

func TestRecipeBookOrchestrator_Open_LoadsVerifiedBytes(t *testing.T) {
	repo := newRepo(t, true, recipe("Tea"))
	require.NoError(t, os.WriteFile(repo.path, []byte("signed content"), 0600))

	sigs := &mockSignatureGateway{canVerify: true}
	sigs.afterVerify = func() {
		// The file is replaced between the signature check and the parse
		require.NoError(t, os.WriteFile(repo.path, []byte("swapped content"), 0600))
	}
	orch := NewRecipeBookOrchestrator(repo, sigs, nil, nil, RecipeBookConfig{RequireSignature: true}, nil)

	require.NoError(t, orch.Open(context.Background()))
	assert.Equal(t, []string{"signed content"}, sigs.verified)
	assert.Equal(t, "signed content", repo.loadedFrom)
}

func TestRecipeBookOrchestrator_Open_CanceledContext(t *testing.T) {
	repo := newRepo(t, false, recipe("Tea"))
	orch := NewRecipeBookOrchestrator(repo, nil, nil, nil, RecipeBookConfig{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, orch.Open(ctx), context.Canceled)
	assert.Equal(t, 0, repo.loads)
}

func TestRecipeBookOrchestrator_Open_MissingFile(t *testing.T) {
	repo := &mockRecipeRepository{path: filepath.Join(t.TempDir(), "missing.txt")}

	orch := NewRecipeBookOrchestrator(repo, nil, nil, nil, RecipeBookConfig{}, nil)
	require.NoError(t, orch.Open(context.Background()))
	assert.Equal(t, 0, repo.loads)
	assert.Equal(t, 0, repo.Len())

	strict := NewRecipeBookOrchestrator(repo, nil, nil, nil, RecipeBookConfig{RequireSignature: true}, nil)
	assert.ErrorIs(t, strict.Open(context.Background()), ErrSignature)
}

func TestRecipeBookOrchestrator_Open_LoadError(t *testing.T) {
	repo := newRepo(t, false)
	repo.loadErr = &entities.FormatError{Line: 3, Text: "2;cups", Reason: "ingredient needs amount;measure;name"}

	orch := NewRecipeBookOrchestrator(repo, nil, nil, nil, RecipeBookConfig{}, nil)
	err := orch.Open(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrFormat)
}

func TestRecipeBookOrchestrator_PersistSigns(t *testing.T) {
	repo := newRepo(t, false)
	sigs := &mockSignatureGateway{canSign: true}
	orch := NewRecipeBookOrchestrator(repo, sigs, nil, nil, RecipeBookConfig{}, nil)

	require.NoError(t, orch.Add(context.Background(), recipe("Soup")))

	assert.Equal(t, 1, repo.saves)
	assert.Equal(t, []string{repo.path}, sigs.signed)
	assert.Equal(t, repo.path+".asc", orch.SignaturePath())
}

func TestRecipeBookOrchestrator_PersistErrors(t *testing.T) {
	t.Run("save fails, nothing signed", func(t *testing.T) {
		repo := newRepo(t, false)
		repo.saveErr = &entities.IOError{Op: "write", Path: repo.path, Err: os.ErrPermission}
		sigs := &mockSignatureGateway{canSign: true}
		orch := NewRecipeBookOrchestrator(repo, sigs, nil, nil, RecipeBookConfig{}, nil)

		err := orch.Add(context.Background(), recipe("Soup"))
		assert.ErrorIs(t, err, entities.ErrIO)
		assert.Empty(t, sigs.signed)
	})

	t.Run("sign fails", func(t *testing.T) {
		repo := newRepo(t, false)
		sigs := &mockSignatureGateway{canSign: true, signErr: errors.New("locked key")}
		orch := NewRecipeBookOrchestrator(repo, sigs, nil, nil, RecipeBookConfig{}, nil)

		err := orch.Persist(context.Background())
		assert.ErrorIs(t, err, ErrSignature)
	})
}

func TestRecipeBookOrchestrator_SignVerifyWithoutKeys(t *testing.T) {
	repo := newRepo(t, false)
	orch := NewRecipeBookOrchestrator(repo, &mockSignatureGateway{}, nil, nil, RecipeBookConfig{}, nil)

	assert.ErrorIs(t, orch.Sign(context.Background()), ErrSignature)
	assert.ErrorIs(t, orch.Verify(context.Background()), ErrSignature)
}

func TestRecipeBookOrchestrator_Find(t *testing.T) {
	repo := newRepo(t, false, recipe("Pancakes"), recipe("Tea"), recipe("Waffles"))
	orch := NewRecipeBookOrchestrator(repo, nil, nil, nil, RecipeBookConfig{}, nil)
	require.NoError(t, orch.Open(context.Background()))

	tests := []struct {
		ref     string
		want    int
		wantErr error
	}{
		{"1", 0, nil},
		{"3", 2, nil},
		{"Tea", 1, nil},
		{"waffles", 2, nil},
		{" Pancakes ", 0, nil},
		{"0", -1, entities.ErrOutOfRange},
		{"4", -1, entities.ErrOutOfRange},
		{"Coffee", -1, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := orch.Find(tt.ref)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecipeBookOrchestrator_ShowAndDelete(t *testing.T) {
	repo := newRepo(t, false, recipe("Pancakes"), recipe("Tea"))
	view := &mockView{}
	orch := NewRecipeBookOrchestrator(repo, nil, view, nil, RecipeBookConfig{}, nil)
	require.NoError(t, orch.Open(context.Background()))

	require.NoError(t, orch.ShowAll())
	assert.Equal(t, 1, view.showAlls)
	assert.Equal(t, []string{"Pancakes", "Tea"}, view.shown)

	view.shown = nil
	require.NoError(t, orch.Show(1))
	assert.Equal(t, []string{"Tea"}, view.shown)
	assert.ErrorIs(t, orch.Show(5), entities.ErrOutOfRange)

	deleted, err := orch.Delete(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", deleted.Name)
	assert.Equal(t, 1, repo.saves)
	assert.False(t, repo.IsModified())
	assert.Equal(t, 1, repo.Len())

	_, err = orch.Delete(context.Background(), 9)
	assert.ErrorIs(t, err, entities.ErrOutOfRange)
	assert.Equal(t, 1, repo.saves)
}

func TestRecipeBookOrchestrator_NoView(t *testing.T) {
	orch := NewRecipeBookOrchestrator(newRepo(t, false), nil, nil, nil, RecipeBookConfig{}, nil)
	assert.Error(t, orch.ShowAll())
	assert.Error(t, orch.Show(0))
}

func TestRecipeBookOrchestrator_ExportImport(t *testing.T) {
	repo := newRepo(t, false, recipe("Tea"))
	exporter := &mockExporter{imported: []*entities.Recipe{recipe("Soup"), recipe("Tea")}}
	orch := NewRecipeBookOrchestrator(repo, nil, nil, exporter, RecipeBookConfig{}, nil)
	require.NoError(t, orch.Open(context.Background()))

	n, err := orch.Import(context.Background(), strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, repo.saves, "import persists once")

	var buf bytes.Buffer
	require.NoError(t, orch.Export(&buf))
	assert.Equal(t, "Soup\nTea\n", buf.String())
}

func TestRecipeBookOrchestrator_ImportErrors(t *testing.T) {
	t.Run("exporter fails", func(t *testing.T) {
		repo := newRepo(t, false)
		exporter := &mockExporter{err: &entities.FormatError{Reason: "recipe 1 must have a name"}}
		orch := NewRecipeBookOrchestrator(repo, nil, nil, exporter, RecipeBookConfig{}, nil)

		_, err := orch.Import(context.Background(), strings.NewReader(""))
		assert.ErrorIs(t, err, entities.ErrFormat)
		assert.Equal(t, 0, repo.saves)
	})

	t.Run("rejected recipe is not persisted", func(t *testing.T) {
		repo := newRepo(t, false)
		repo.putErr = &entities.FormatError{Reason: "bad"}
		exporter := &mockExporter{imported: []*entities.Recipe{recipe("Soup")}}
		orch := NewRecipeBookOrchestrator(repo, nil, nil, exporter, RecipeBookConfig{}, nil)

		_, err := orch.Import(context.Background(), strings.NewReader(""))
		assert.ErrorIs(t, err, entities.ErrFormat)
		assert.Equal(t, 0, repo.saves)
	})

	t.Run("no exporter", func(t *testing.T) {
		orch := NewRecipeBookOrchestrator(newRepo(t, false), nil, nil, nil, RecipeBookConfig{}, nil)
		_, err := orch.Import(context.Background(), strings.NewReader(""))
		assert.Error(t, err)
		assert.Error(t, orch.Export(io.Discard))
	})
}
