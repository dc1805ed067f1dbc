package db

import (
	"errors"
	"fmt"
)

var (
	// ErrDataFormat is returned when the record set is missing required
	// structure or has values of the wrong shape. Nothing is loaded.
	ErrDataFormat = errors.New("invalid record set")

	// ErrUnresolvedReference is returned in strict mode when an invoice
	// references a customer key that no customer has.
	ErrUnresolvedReference = errors.New("unresolved customer reference")
)

// DataFormatError describes where in the record set loading failed.
type DataFormatError struct {
	// Path locates the offending value, e.g. "invoices[2].content[0].quantity".
	// Empty for document level problems.
	Path string

	// Line is the 1-based source line, 0 when unknown.
	Line int

	// Message describes the problem.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *DataFormatError) Error() string {
	where := e.Path
	if where == "" {
		where = "document"
	}
	if e.Line > 0 {
		where = fmt.Sprintf("%s (line %d)", where, e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("%v at %s: %s: %v", ErrDataFormat, where, e.Message, e.Err)
	}
	return fmt.Sprintf("%v at %s: %s", ErrDataFormat, where, e.Message)
}

// Unwrap returns the underlying error.
func (e *DataFormatError) Unwrap() error {
	return e.Err
}

// Is matches ErrDataFormat.
func (e *DataFormatError) Is(target error) bool {
	return target == ErrDataFormat
}

// UnresolvedReferenceError is returned by strict loads for an invoice whose
// customer key matches no customer.
type UnresolvedReferenceError struct {
	InvoiceID   int
	CustomerKey string
}

// Error implements the error interface.
func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("invoice %d: %v %q", e.InvoiceID, ErrUnresolvedReference, e.CustomerKey)
}

// Is matches ErrUnresolvedReference.
func (e *UnresolvedReferenceError) Is(target error) bool {
	return target == ErrUnresolvedReference
}
