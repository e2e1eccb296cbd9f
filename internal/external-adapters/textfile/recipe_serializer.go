package textfile

import (
	"bufio"
	"io"
	"strings"

	"github.com/ochairo/filedrecipes/internal/domain/entities"
)

// RecipeSerializer writes recipes in the sectioned text format
type RecipeSerializer struct{}

// NewRecipeSerializer creates a new serializer
func NewRecipeSerializer() *RecipeSerializer {
	return &RecipeSerializer{}
}

// Write writes one block per recipe, in the given order
func (s *RecipeSerializer) Write(w io.Writer, recipes []*entities.Recipe) error {
	for _, recipe := range recipes {
		if err := ValidateRecipe(recipe); err != nil {
			return err
		}
	}

	bw := bufio.NewWriter(w)
	for _, recipe := range recipes {
		writeLine(bw, SectionRecipe)
		writeLine(bw, recipe.Name)
		writeLine(bw, SectionIngredients)
		for _, ingredient := range recipe.Ingredients {
			writeLine(bw, ingredient.String())
		}
		writeLine(bw, SectionInstructions)
		for _, instruction := range recipe.Instructions {
			writeLine(bw, instruction)
		}
	}

	if err := bw.Flush(); err != nil {
		return &entities.IOError{Op: "write", Err: err}
	}
	return nil
}

// bufio.Writer keeps the first error and reports it from Flush
func writeLine(bw *bufio.Writer, line string) {
	_, _ = bw.WriteString(line)
	_ = bw.WriteByte('\n')
}

// ValidateRecipe reports values the text format cannot represent and
// would not read back unchanged
func ValidateRecipe(recipe *entities.Recipe) error {
	if recipe == nil {
		return &entities.FormatError{Reason: "recipe is nil"}
	}
	if err := validateLine("recipe name", recipe.Name); err != nil {
		return err
	}

	for _, ingredient := range recipe.Ingredients {
		for _, field := range []string{ingredient.Amount, ingredient.Measure, ingredient.Name} {
			if strings.ContainsAny(field, IngredientSeparator+"\r\n") {
				return &entities.FormatError{
					Text:   ingredient.String(),
					Reason: "ingredient field of " + recipe.Name + " contains ';' or a line break",
				}
			}
			if containsMarker(field) {
				return &entities.FormatError{
					Text:   ingredient.String(),
					Reason: "ingredient field of " + recipe.Name + " contains a section marker",
				}
			}
		}
	}

	for _, instruction := range recipe.Instructions {
		if err := validateLine("instruction of "+recipe.Name, instruction); err != nil {
			return err
		}
	}
	return nil
}

func validateLine(what, line string) error {
	switch {
	case strings.TrimSpace(line) == "":
		return &entities.FormatError{Text: line, Reason: what + " is blank"}
	case strings.ContainsAny(line, "\r\n"):
		return &entities.FormatError{Text: line, Reason: what + " contains a line break"}
	case containsMarker(line):
		return &entities.FormatError{Text: line, Reason: what + " contains a section marker"}
	}
	return nil
}

func containsMarker(s string) bool {
	return strings.Contains(s, SectionRecipe) ||
		strings.Contains(s, SectionIngredients) ||
		strings.Contains(s, SectionInstructions)
}
