package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvoiceNumberSuffix(t *testing.T) {
	tests := []struct {
		number string
		suffix int64
		ok     bool
	}{
		{"FAC-000001", 1, true},
		{"FAC-000042", 42, true},
		{"FAC-999999", 999999, true},
		{"FAC-20240131094500", 0, false}, // timestamp fallback
		{"FAC-1", 0, false},
		{"INV-000001", 0, false},
		{"FAC-00000A", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		suffix, ok := InvoiceNumberSuffix(tt.number)
		assert.Equal(t, tt.ok, ok, tt.number)
		assert.Equal(t, tt.suffix, suffix, tt.number)
	}
}
