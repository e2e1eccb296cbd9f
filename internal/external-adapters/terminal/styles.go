// Package terminal renders recipes on a terminal with lipgloss styling.
package terminal

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorAccent = lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}
	colorAmount = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}
)

const separator = "──────────────────────────────────────────"

// styles is bound to one renderer so the color profile follows the output
// writer rather than stdout
type styles struct {
	title    lipgloss.Style
	category lipgloss.Style
	muted    lipgloss.Style
	amount   lipgloss.Style
	cell     lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:    r.NewStyle().Bold(true).Foreground(colorAccent),
		category: r.NewStyle().Bold(true),
		muted:    r.NewStyle().Foreground(colorMuted),
		amount:   r.NewStyle().Foreground(colorAmount).Align(lipgloss.Right),
		cell:     r.NewStyle(),
	}
}
