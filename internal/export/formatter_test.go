package export

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	f := Formatter{
		Symbol:        "S/",
		DecimalPlaces: 2,
		ThousandsSep:  ",",
		DecimalSep:    ".",
	}

	tests := []struct {
		in   string
		want string
	}{
		{"0", "S/ 0.00"},
		{"5", "S/ 5.00"},
		{"899.99", "S/ 899.99"},
		{"1234.5", "S/ 1,234.50"},
		{"1234567.89", "S/ 1,234,567.89"},
		{"-1234.5", "S/ -1,234.50"},
	}
	for _, tt := range tests {
		got := f.FormatAmount(decimal.RequireFromString(tt.in))
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFormatAmountEuropeanSeparators(t *testing.T) {
	f := Formatter{
		Symbol:        "",
		DecimalPlaces: 2,
		ThousandsSep:  ".",
		DecimalSep:    ",",
	}
	got := f.FormatAmount(decimal.RequireFromString("1234567.89"))
	assert.Equal(t, "1.234.567,89", got)
}

func TestFormatDate(t *testing.T) {
	f := Formatter{DateFormat: "02/01/2006"}
	d := time.Date(2024, 1, 31, 9, 45, 0, 0, time.UTC)
	assert.Equal(t, "31/01/2024", f.FormatDate(d))

	// Empty pattern falls back to day/month/year.
	assert.Equal(t, "31/01/2024", Formatter{}.FormatDate(d))
}
