package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tally/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// tallyHuhTheme returns a huh theme matching the formatter palette.
func tallyHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// measurementForm asks for the value and date of a measurement. value and
// date are prefilled strings the form edits in place.
func measurementForm(typeName string, maxValue decimal.Decimal, value, date *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("%s value", typeName)).
				Description(fmt.Sprintf("between 0 and %s", maxValue)).
				Value(value).
				Validate(validateMeasurementValue(maxValue)),
			huh.NewInput().
				Title("Date (YYYY-MM-DD)").
				Value(date).
				Validate(validateDate),
		),
	).WithTheme(tallyHuhTheme()).WithShowHelp(false)
}

func validateMeasurementValue(maxValue decimal.Decimal) func(string) error {
	return func(s string) error {
		v, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("enter a number")
		}
		if v.IsNegative() {
			return fmt.Errorf("value must not be negative")
		}
		if v.GreaterThan(maxValue) {
			return fmt.Errorf("value must not exceed %s", maxValue)
		}
		return nil
	}
}

func validateDate(s string) error {
	if _, err := time.Parse(dateLayout, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	return nil
}

// parseMeasurementInput converts the form's text fields.
func parseMeasurementInput(valueText, dayText string) (decimal.Decimal, time.Time, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(valueText))
	if err != nil {
		return decimal.Zero, time.Time{}, fmt.Errorf("invalid value %q: %w", valueText, err)
	}
	day, err := time.Parse(dateLayout, strings.TrimSpace(dayText))
	if err != nil {
		return decimal.Zero, time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", dayText, err)
	}
	return value, day, nil
}
