package service

import (
	"crypto/rand"
	"fmt"
	"time"
)

const numberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newOrderNumber produces a customer-facing order number, e.g. ORD-20250129-A3K9TW.
// Order numbers carry a unique index; the random suffix makes collisions
// vanishingly rare, and the insert fails loudly if one ever happens.
func newOrderNumber() (string, error) {
	return newDocumentNumber("ORD")
}

// newInvoiceNumber produces an invoice number, e.g. INV-20250129-Q7XR2M.
func newInvoiceNumber() (string, error) {
	return newDocumentNumber("INV")
}

func newDocumentNumber(prefix string) (string, error) {
	suffix, err := randomSuffix(6)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().Format("20060102"), suffix), nil
}

func randomSuffix(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i := range b {
		b[i] = numberAlphabet[int(b[i])%len(numberAlphabet)]
	}
	return string(b), nil
}
