// Package shipping computes shipping cost for an order.
package shipping

// Quoter prices shipping for an order subtotal.
type Quoter interface {
	Quote(subtotalCents int32) int32
}

// ThresholdQuoter implements the storefront's flat rule: free shipping at or
// above the threshold, a flat fee below it.
type ThresholdQuoter struct {
	FreeThresholdCents int32
	FlatRateCents      int32
}

// NewThresholdQuoter creates the flat-threshold quoter.
func NewThresholdQuoter(freeThresholdCents, flatRateCents int32) *ThresholdQuoter {
	return &ThresholdQuoter{
		FreeThresholdCents: freeThresholdCents,
		FlatRateCents:      flatRateCents,
	}
}

// Quote returns the shipping cost for the given subtotal.
func (q *ThresholdQuoter) Quote(subtotalCents int32) int32 {
	if subtotalCents >= q.FreeThresholdCents {
		return 0
	}
	return q.FlatRateCents
}
