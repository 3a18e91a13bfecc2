// Package export renders query results into CSV, XLSX and PDF files.
// Display formatting (currency symbol, separators, date pattern) lives
// here, driven by configuration; core arithmetic never depends on it.
package export

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Formatter applies the configured currency and date display rules.
type Formatter struct {
	Symbol        string
	DecimalPlaces int
	ThousandsSep  string
	DecimalSep    string
	DateFormat    string
}

// FormatAmount renders a monetary amount like "S/ 1,234.50".
func (f Formatter) FormatAmount(amount decimal.Decimal) string {
	places := f.DecimalPlaces
	if places < 0 {
		places = 2
	}
	fixed := amount.StringFixed(int32(places))

	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart := fixed
	fracPart := ""
	if i := strings.IndexByte(fixed, '.'); i >= 0 {
		intPart, fracPart = fixed[:i], fixed[i+1:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(f.ThousandsSep)
		}
		b.WriteRune(r)
	}

	out := b.String()
	if fracPart != "" {
		out += f.DecimalSep + fracPart
	}
	if neg {
		out = "-" + out
	}
	if f.Symbol != "" {
		out = f.Symbol + " " + out
	}
	return out
}

// FormatDate renders a date with the configured pattern.
func (f Formatter) FormatDate(t time.Time) string {
	layout := f.DateFormat
	if layout == "" {
		layout = "02/01/2006"
	}
	return t.Format(layout)
}
