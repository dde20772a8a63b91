package service

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentNumberFormat(t *testing.T) {
	orderNumber, err := newOrderNumber()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{8}-[ABCDEFGHJKLMNPQRSTUVWXYZ23456789]{6}$`), orderNumber)

	invoiceNumber, err := newInvoiceNumber()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^INV-\d{8}-[ABCDEFGHJKLMNPQRSTUVWXYZ23456789]{6}$`), invoiceNumber)
}

func TestDocumentNumbersAreDistinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		n, err := newOrderNumber()
		require.NoError(t, err)
		assert.False(t, seen[n], "duplicate order number %s", n)
		seen[n] = true
	}
}
