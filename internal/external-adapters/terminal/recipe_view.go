package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/ochairo/filedrecipes/internal/domain/entities"
)

const (
	ingredientsHeader  = "INGREDIENTS"
	instructionsHeader = "INSTRUCTIONS"
	acknowledgePrompt  = "Press Enter to continue..."
)

// RecipeView writes recipes to out and waits for Enter on in
type RecipeView struct {
	out    io.Writer
	in     *bufio.Reader
	pause  bool
	styles styles
}

// ViewOption configures a RecipeView
type ViewOption func(*RecipeView)

// WithPause enables or disables the acknowledgment prompt
func WithPause(pause bool) ViewOption {
	return func(v *RecipeView) {
		v.pause = v.pause && pause
	}
}

// NewRecipeView creates a view. The prompt is disabled when in is an
// *os.File that is not a terminal.
func NewRecipeView(out io.Writer, in io.Reader, opts ...ViewOption) *RecipeView {
	v := &RecipeView{
		out:    out,
		pause:  in != nil && isInteractive(in),
		styles: newStyles(out),
	}
	if in != nil {
		v.in = bufio.NewReader(in)
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func isInteractive(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return true
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Show renders one recipe and waits for acknowledgment
func (v *RecipeView) Show(recipe *entities.Recipe) error {
	if recipe == nil {
		return fmt.Errorf("recipe is nil")
	}
	if err := v.render(recipe); err != nil {
		return err
	}
	return v.waitForAcknowledgment()
}

// ShowAll renders every recipe in order and waits once at the end
func (v *RecipeView) ShowAll(recipes []*entities.Recipe) error {
	for _, recipe := range recipes {
		if recipe == nil {
			continue
		}
		if err := v.render(recipe); err != nil {
			return err
		}
	}
	return v.waitForAcknowledgment()
}

func (v *RecipeView) render(recipe *entities.Recipe) error {
	var b strings.Builder

	b.WriteString(v.styles.title.Render(recipe.Name))
	b.WriteString("\n")
	b.WriteString(v.styles.muted.Render(separator))
	b.WriteString("\n\n")

	if len(recipe.Ingredients) > 0 {
		b.WriteString(v.styles.category.Render(ingredientsHeader))
		b.WriteString("\n")
		b.WriteString(v.ingredientTable(recipe.Ingredients))
		b.WriteString("\n")
	}

	if len(recipe.Instructions) > 0 {
		b.WriteString(v.styles.category.Render(instructionsHeader))
		b.WriteString("\n")
		for _, instruction := range recipe.Instructions {
			b.WriteString(instruction)
			b.WriteString("\n\n")
		}
	}

	if _, err := io.WriteString(v.out, b.String()); err != nil {
		return fmt.Errorf("failed to write recipe %q: %w", recipe.Name, err)
	}
	return nil
}

// ingredientTable lays out amount, measure and name in aligned columns
func (v *RecipeView) ingredientTable(ingredients []entities.Ingredient) string {
	amountWidth, measureWidth := 0, 0
	for _, ing := range ingredients {
		amountWidth = max(amountWidth, lipgloss.Width(ing.Amount))
		measureWidth = max(measureWidth, lipgloss.Width(ing.Measure))
	}

	amount := v.styles.amount.Width(amountWidth)
	measure := v.styles.cell.Width(measureWidth)

	var b strings.Builder
	for _, ing := range ingredients {
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			"  ",
			amount.Render(ing.Amount),
			" ",
			measure.Render(ing.Measure),
			" ",
			ing.Name,
		)
		b.WriteString(strings.TrimRight(row, " "))
		b.WriteString("\n")
	}
	return b.String()
}

func (v *RecipeView) waitForAcknowledgment() error {
	if !v.pause || v.in == nil {
		return nil
	}
	if _, err := io.WriteString(v.out, v.styles.muted.Render(acknowledgePrompt)); err != nil {
		return fmt.Errorf("failed to write prompt: %w", err)
	}
	if _, err := v.in.ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read acknowledgment: %w", err)
	}
	_, _ = io.WriteString(v.out, "\n")
	return nil
}
