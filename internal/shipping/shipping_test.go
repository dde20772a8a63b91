package shipping_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dunelark/storefront/internal/shipping"
)

func Test_ThresholdQuoter(t *testing.T) {
	q := shipping.NewThresholdQuoter(5000, 1000)

	tests := []struct {
		name     string
		subtotal int32
		expected int32
	}{
		{name: "below threshold pays flat rate", subtotal: 2500, expected: 1000},
		{name: "exactly at threshold ships free", subtotal: 5000, expected: 0},
		{name: "above threshold ships free", subtotal: 9900, expected: 0},
		{name: "one cent short pays flat rate", subtotal: 4999, expected: 1000},
		{name: "zero subtotal pays flat rate", subtotal: 0, expected: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, q.Quote(tt.subtotal))
		})
	}
}
