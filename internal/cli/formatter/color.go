package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

var (
	oneThird  = decimal.RequireFromString("0.33")
	twoThirds = decimal.RequireFromString("0.66")
)

// PercentStyle colors a 0..1 fraction: green above two thirds, yellow above
// one third, red below.
func PercentStyle(pct decimal.Decimal) lipgloss.Style {
	switch {
	case pct.LessThan(oneThird):
		return StyleRed
	case pct.LessThan(twoThirds):
		return StyleYellow
	default:
		return StyleGreen
	}
}

// SourceBadge describes where a node's percentage comes from, such as
// "● units" for a direct source or "◆ children" for an indirect one.
func SourceBadge(source domain.SourceKind, typeName string) string {
	switch source {
	case domain.SourceDirect:
		return StyleGreen.Render("● " + typeName)
	case domain.SourceIndirect:
		return StylePurple.Render("◆ " + typeName)
	default:
		return StyleDim.Render("○ none")
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
