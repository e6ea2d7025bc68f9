package formatter

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		return boxStyle.Render(titleRendered + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// FormatPercent renders a 0..1 fraction as a percentage with up to two
// decimals, e.g. 0.4333 -> "43.33%".
func FormatPercent(pct decimal.Decimal) string {
	return pct.Mul(hundred).Round(2).String() + "%"
}

// FormatDate renders a calendar day.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// Bool renders a yes/no flag, highlighting yes.
func Bool(v bool) string {
	if v {
		return StyleGreen.Render("yes")
	}
	return Dim("no")
}
