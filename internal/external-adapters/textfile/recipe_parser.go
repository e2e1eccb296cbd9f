// Package textfile provides the line-oriented recipe file format and a
// repository backed by a single recipe file.
package textfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"slices"
	"strings"

	"github.com/ochairo/filedrecipes/internal/domain/entities"
	"github.com/ochairo/filedrecipes/internal/domain/interfaces"
)

// Section markers of the recipe file format
const (
	SectionRecipe       = "[Recept]"
	SectionIngredients  = "[Ingredienser]"
	SectionInstructions = "[Instruktioner]"
)

// IngredientSeparator separates amount, measure and name on an ingredient line
const IngredientSeparator = ";"

// readState tells how the next content line is interpreted
type readState int

const (
	stateIndefinite readState = iota
	stateNew
	stateIngredient
	stateInstruction
)

// RecipeParser parses recipe files
type RecipeParser struct {
	logger interfaces.Logger
}

// NewRecipeParser creates a new parser. A nil logger discards warnings.
func NewRecipeParser(logger interfaces.Logger) *RecipeParser {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &RecipeParser{logger: logger}
}

// ParseFile parses a recipe file. The file is closed before returning.
func (p *RecipeParser) ParseFile(filePath string) ([]*entities.Recipe, error) {
	//nolint:gosec // G304: filePath is the repository's backing file
	f, err := os.Open(filePath)
	if err != nil {
		return nil, &entities.IOError{Op: "open", Path: filePath, Err: err}
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	recipes, err := p.Parse(f)
	if err != nil {
		var ioErr *entities.IOError
		if errors.As(err, &ioErr) {
			ioErr.Path = filePath
		}
		return nil, err
	}
	return recipes, nil
}

// Parse reads recipe blocks from r and returns them sorted by name.
// A later block replaces an earlier one with the same name.
func (p *RecipeParser) Parse(r io.Reader) ([]*entities.Recipe, error) {
	b := &blockCollector{byName: make(map[string]int), logger: p.logger}

	state := stateIndefinite
	lineNo := 0
	for line, err := range readLines(r) {
		if err != nil {
			return nil, &entities.IOError{Op: "read", Err: err}
		}
		lineNo++
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\uFEFF")
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		switch {
		case strings.Contains(line, SectionRecipe):
			b.commit()
			state = stateNew
			continue
		case strings.Contains(line, SectionIngredients):
			state = stateIngredient
			continue
		case strings.Contains(line, SectionInstructions):
			state = stateInstruction
			if b.current != nil {
				b.complete = true
			}
			continue
		}

		switch state {
		case stateNew:
			recipe, err := entities.NewRecipe(line)
			if err != nil {
				return nil, &entities.FormatError{Line: lineNo, Text: line, Reason: "recipe must have a name"}
			}
			if b.current != nil {
				p.logger.Warn("recipe name replaced before ingredients",
					interfaces.F("line", lineNo),
					interfaces.F("previous", b.current.Name),
					interfaces.F("name", line),
				)
			}
			b.current = recipe

		case stateIngredient:
			if b.current == nil {
				return nil, &entities.FormatError{Line: lineNo, Text: line, Reason: "ingredient outside of a recipe"}
			}
			ingredient, err := parseIngredient(line)
			if err != nil {
				return nil, &entities.FormatError{Line: lineNo, Text: line, Reason: err.Error()}
			}
			b.current.AddIngredient(ingredient)

		case stateInstruction:
			if b.current == nil {
				return nil, &entities.FormatError{Line: lineNo, Text: line, Reason: "instruction outside of a recipe"}
			}
			b.current.AddInstruction(line)

		default:
			p.logger.Warn("ignoring line before first section marker",
				interfaces.F("line", lineNo),
				interfaces.F("text", line),
			)
		}
	}

	b.commit()
	slices.SortStableFunc(b.recipes, entities.CompareRecipes)
	return b.recipes, nil
}

// readLines yields the lines of r without their LF or CRLF terminator.
// Lines have no length limit so anything the serializer writes reads back.
func readLines(r io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		reader := bufio.NewReader(r)
		for {
			line, err := reader.ReadString('\n')
			if line != "" {
				line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
				if !yield(line, nil) {
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield("", err)
				}
				return
			}
		}
	}
}

// parseIngredient splits amount;measure;name. Fields past the third are ignored.
func parseIngredient(line string) (entities.Ingredient, error) {
	fields := strings.Split(line, IngredientSeparator)
	if len(fields) < 3 {
		return entities.Ingredient{}, fmt.Errorf("ingredient needs amount%smeasure%sname, got %d field(s)",
			IngredientSeparator, IngredientSeparator, len(fields))
	}
	return entities.Ingredient{
		Amount:  fields[0],
		Measure: fields[1],
		Name:    fields[2],
	}, nil
}

// blockCollector accumulates the recipe in progress and the committed ones
type blockCollector struct {
	recipes  []*entities.Recipe
	byName   map[string]int
	current  *entities.Recipe
	complete bool
	logger   interfaces.Logger
}

// commit stores the recipe in progress if its block reached the
// instructions section. Same-name recipes are replaced.
func (b *blockCollector) commit() {
	defer func() {
		b.current = nil
		b.complete = false
	}()

	if b.current == nil {
		return
	}
	if !b.complete {
		b.logger.Warn("dropping recipe without instructions section",
			interfaces.F("name", b.current.Name),
		)
		return
	}

	if i, ok := b.byName[b.current.Name]; ok {
		b.recipes[i] = b.current
		return
	}
	b.byName[b.current.Name] = len(b.recipes)
	b.recipes = append(b.recipes, b.current)
}
