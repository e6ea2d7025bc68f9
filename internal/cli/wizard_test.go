package cli

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMeasurementValue(t *testing.T) {
	validate := validateMeasurementValue(decimal.NewFromInt(2000))

	assert.NoError(t, validate("0"))
	assert.NoError(t, validate(" 200.5 "))
	assert.NoError(t, validate("2000"))
	assert.ErrorContains(t, validate("abc"), "enter a number")
	assert.ErrorContains(t, validate("-1"), "negative")
	assert.ErrorContains(t, validate("2000.01"), "exceed 2000")
}

func TestValidateDate(t *testing.T) {
	assert.NoError(t, validateDate("2009-09-01"))
	assert.Error(t, validateDate("2009-9-1"))
	assert.Error(t, validateDate(""))
}

func TestMeasurementForm_Builds(t *testing.T) {
	value, date := "", "2009-09-30"
	form := measurementForm("units", decimal.NewFromInt(2000), &value, &date)
	assert.NotNil(t, form)
	assert.NotNil(t, tallyHuhTheme())
}

func TestParseMeasurementInput(t *testing.T) {
	value, day, err := parseMeasurementInput(" 200.5 ", "2009-09-01 ")
	require.NoError(t, err)
	assert.True(t, value.Equal(decimal.RequireFromString("200.5")))
	assert.Equal(t, "2009-09-01", day.Format(dateLayout))

	_, _, err = parseMeasurementInput("abc", "2009-09-01")
	assert.ErrorContains(t, err, "invalid value")

	_, _, err = parseMeasurementInput("5", "2009-9-1")
	assert.ErrorContains(t, err, "invalid date")
}
