package models

import (
	"errors"
	"fmt"
)

// ErrMissingReference is returned when an invoice's customer reference did
// not resolve to a customer and the customer is needed.
var ErrMissingReference = errors.New("missing customer reference")

// MissingReferenceError identifies the invoice and the key that failed to resolve.
type MissingReferenceError struct {
	InvoiceID   int
	CustomerKey string
}

// Error implements the error interface.
func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("invoice %d: customer %q not found: %v", e.InvoiceID, e.CustomerKey, ErrMissingReference)
}

// Is reports whether target is ErrMissingReference.
func (e *MissingReferenceError) Is(target error) bool {
	return target == ErrMissingReference
}
