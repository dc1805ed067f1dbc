package render

import (
	"errors"
	"fmt"
)

var (
	// ErrRender is returned when a template fails to parse or execute.
	ErrRender = errors.New("render failed")

	// ErrUnnamedCustomer is returned when no file name can be derived
	// because the customer name is empty after sanitizing.
	ErrUnnamedCustomer = errors.New("customer has no usable name")
)

// RenderError wraps a template failure for one invoice. InvoiceID is 0 for
// failures while loading the template.
type RenderError struct {
	InvoiceID int
	Template  string
	Err       error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	if e.InvoiceID == 0 {
		return fmt.Sprintf("%v: template %s: %v", ErrRender, e.Template, e.Err)
	}
	return fmt.Sprintf("%v: invoice %d with template %s: %v", ErrRender, e.InvoiceID, e.Template, e.Err)
}

// Unwrap returns the underlying error.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// Is matches ErrRender.
func (e *RenderError) Is(target error) bool {
	return target == ErrRender
}
