package formatter

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress renders a bar like [████░░░░] 43.33% for a 0..1 fraction.
// Values outside the range are clamped for the bar but printed as given.
func RenderProgress(pct decimal.Decimal, width int) string {
	return fmt.Sprintf("[%s] %s", RenderCompactBar(pct, width, false), FormatPercent(pct))
}

// RenderCompactBar renders only the blocks, for tables and tree badges.
func RenderCompactBar(pct decimal.Decimal, width int, dim bool) string {
	if width < 2 {
		width = 2
	}
	clamped := decimal.Min(decimal.Max(pct, decimal.Zero), decimal.NewFromInt(1))
	filled := int(clamped.Mul(decimal.NewFromInt(int64(width))).IntPart())

	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)
	if dim {
		return bar
	}
	return PercentStyle(clamped).Render(bar)
}
