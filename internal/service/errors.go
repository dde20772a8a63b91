package service

import (
	"fmt"

	"github.com/dunelark/storefront/internal/domain"
)

// insufficientStock builds a stock-conflict error naming the product, while
// staying matchable with errors.Is(err, domain.ErrInsufficientStock).
func insufficientStock(op, productName string) error {
	return &domain.Error{
		Code:    domain.ECONFLICT,
		Op:      op,
		Message: fmt.Sprintf("Insufficient stock for %s", productName),
		Err:     domain.ErrInsufficientStock,
	}
}

// invalidTransition names both ends of a rejected status change and matches
// errors.Is(err, domain.ErrInvalidTransition).
func invalidTransition(op, from, to string) error {
	return &domain.Error{
		Code:    domain.ECONFLICT,
		Op:      op,
		Message: fmt.Sprintf("Cannot move order from %s to %s", from, to),
		Err:     domain.ErrInvalidTransition,
	}
}
