package store

import (
	"regexp"
	"strconv"
)

// Sequential invoice numbers look like FAC-000042. Timestamp fallback
// numbers (FAC-20240131094500) deliberately do not match and never feed
// back into the sequence.
var invoiceNumberPattern = regexp.MustCompile(`^FAC-(\d{6})$`)

// InvoiceNumberSuffix extracts the numeric suffix of a sequential
// invoice number. The second return is false for fallback or foreign
// number formats.
func InvoiceNumberSuffix(number string) (int64, bool) {
	m := invoiceNumberPattern.FindStringSubmatch(number)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
