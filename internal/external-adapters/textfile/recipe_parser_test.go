package textfile

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/filedrecipes/internal/domain/entities"
)

const pancakesFile = `[Recept]
Pancakes
[Ingredienser]
2;dl;flour
1;st;egg
[Instruktioner]
Mix ingredients.
Fry until golden.
`

func TestRecipeParser_Parse_Pancakes(t *testing.T) {
	parser := NewRecipeParser(nil)

	recipes, err := parser.Parse(strings.NewReader(pancakesFile))
	require.NoError(t, err)
	require.Len(t, recipes, 1)

	recipe := recipes[0]
	assert.Equal(t, "Pancakes", recipe.Name)
	assert.Equal(t, []entities.Ingredient{
		{Amount: "2", Measure: "dl", Name: "flour"},
		{Amount: "1", Measure: "st", Name: "egg"},
	}, recipe.Ingredients)
	assert.Equal(t, []string{"Mix ingredients.", "Fry until golden."}, recipe.Instructions)
}

func TestRecipeParser_Parse_Empty(t *testing.T) {
	parser := NewRecipeParser(nil)

	for _, input := range []string{"", "\n\n", "   \r\n\t\n"} {
		recipes, err := parser.Parse(strings.NewReader(input))
		require.NoError(t, err)
		assert.Empty(t, recipes)
	}
}

func TestRecipeParser_Parse_SortsByName(t *testing.T) {
	input := `[Recept]
Waffles
[Ingredienser]
3;dl;milk
[Instruktioner]
Cook.
[Recept]
Apple pie
[Ingredienser]
4;st;apples
[Instruktioner]
Bake.
[Recept]
Meatballs
[Ingredienser]
500;g;mince
[Instruktioner]
Roll.
`
	recipes, err := NewRecipeParser(nil).Parse(strings.NewReader(input))
	require.NoError(t, err)

	names := make([]string, 0, len(recipes))
	for _, r := range recipes {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Apple pie", "Meatballs", "Waffles"}, names)
}

func TestRecipeParser_Parse_DuplicateNameLastWins(t *testing.T) {
	input := `[Recept]
Soup
[Ingredienser]
1;l;water
[Instruktioner]
Boil.
[Recept]
Bread
[Ingredienser]
5;dl;flour
[Instruktioner]
Knead.
[Recept]
Soup
[Ingredienser]
2;st;carrots
3;st;potatoes
[Instruktioner]
Chop.
Simmer.
`
	recipes, err := NewRecipeParser(nil).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, recipes, 2)

	assert.Equal(t, "Bread", recipes[0].Name)
	soup := recipes[1]
	assert.Equal(t, "Soup", soup.Name)
	assert.Equal(t, []entities.Ingredient{
		{Amount: "2", Measure: "st", Name: "carrots"},
		{Amount: "3", Measure: "st", Name: "potatoes"},
	}, soup.Ingredients)
	assert.Equal(t, []string{"Chop.", "Simmer."}, soup.Instructions)
}

func TestRecipeParser_Parse_BlankLinesIgnored(t *testing.T) {
	input := "\n[Recept]\n\n  \nPancakes\n\n[Ingredienser]\n\n2;dl;flour\n   \n1;st;egg\n[Instruktioner]\n\nMix ingredients.\n\t\nFry until golden.\n\n"

	recipes, err := NewRecipeParser(nil).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Len(t, recipes[0].Ingredients, 2)
	assert.Equal(t, []string{"Mix ingredients.", "Fry until golden."}, recipes[0].Instructions)
}

func TestRecipeParser_Parse_CRLFAndBOM(t *testing.T) {
	input := "\uFEFF" + strings.ReplaceAll(pancakesFile, "\n", "\r\n")

	recipes, err := NewRecipeParser(nil).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "Pancakes", recipes[0].Name)
	assert.Equal(t, "egg", recipes[0].Ingredients[1].Name)
	assert.Equal(t, "Fry until golden.", recipes[0].Instructions[1])
}

func TestRecipeParser_Parse_IngredientFields(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    entities.Ingredient
		wantErr bool
	}{
		{name: "three fields", line: "2;cups;flour", want: entities.Ingredient{Amount: "2", Measure: "cups", Name: "flour"}},
		{name: "extra fields ignored", line: "1;tsp;salt;fine;sea", want: entities.Ingredient{Amount: "1", Measure: "tsp", Name: "salt"}},
		{name: "empty fields kept", line: ";;pepper", want: entities.Ingredient{Amount: "", Measure: "", Name: "pepper"}},
		{name: "two fields", line: "2;cups", wantErr: true},
		{name: "one field", line: "flour", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := "[Recept]\nX\n[Ingredienser]\n" + tt.line + "\n[Instruktioner]\nStir.\n"
			recipes, err := NewRecipeParser(nil).Parse(strings.NewReader(input))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, entities.ErrFormat))

				var formatErr *entities.FormatError
				require.ErrorAs(t, err, &formatErr)
				assert.Equal(t, 4, formatErr.Line)
				assert.Equal(t, tt.line, formatErr.Text)
				return
			}
			require.NoError(t, err)
			require.Len(t, recipes, 1)
			assert.Equal(t, []entities.Ingredient{tt.want}, recipes[0].Ingredients)
		})
	}
}

func TestRecipeParser_Parse_InstructionWithoutRecipe(t *testing.T) {
	input := "[Instruktioner]\nStir.\n"

	_, err := NewRecipeParser(nil).Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrFormat)
}

func TestRecipeParser_Parse_IngredientWithoutRecipe(t *testing.T) {
	input := "[Recept]\n[Ingredienser]\n1;st;egg\n"

	_, err := NewRecipeParser(nil).Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrFormat)
}

func TestRecipeParser_Parse_BlockWithoutInstructionsDropped(t *testing.T) {
	input := `[Recept]
Unfinished
[Ingredienser]
1;st;egg
[Recept]
Finished
[Ingredienser]
1;st;egg
[Instruktioner]
`
	recipes, err := NewRecipeParser(nil).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "Finished", recipes[0].Name)
	assert.Empty(t, recipes[0].Instructions)
}

func TestRecipeParser_Parse_LinesBeforeFirstMarkerIgnored(t *testing.T) {
	input := "My recipe book\n" + pancakesFile

	recipes, err := NewRecipeParser(nil).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "Pancakes", recipes[0].Name)
}

func TestRecipeParser_Parse_InstructionsVerbatim(t *testing.T) {
	input := "[Recept]\nTea\n[Ingredienser]\n1;st;bag\n[Instruktioner]\n  Steep 3 min; then remove.  \n"

	recipes, err := NewRecipeParser(nil).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, []string{"  Steep 3 min; then remove.  "}, recipes[0].Instructions)
}

func TestRecipeParser_ParseFile_NotFound(t *testing.T) {
	_, err := NewRecipeParser(nil).ParseFile("/nonexistent/path/recipes.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrIO)

	var ioErr *entities.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "/nonexistent/path/recipes.txt", ioErr.Path)
}
