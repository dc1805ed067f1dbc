package models

import "github.com/shopspring/decimal"

// Built-in default values applied when the source omits a field.
const (
	DefaultUnit          = "tim"
	DefaultVATPercent    = 25
	DefaultDuePeriodDays = 30
	DefaultCurrency      = "kr"
)

// Defaults is the table of values used for fields a record leaves out.
// It is passed explicitly into line and invoice construction.
type Defaults struct {
	// Unit is the unit label of a line without one.
	Unit string

	// VATPercent is the VAT rate of a line without one.
	VATPercent decimal.Decimal

	// DuePeriodDays is the number of calendar days between issue and due date.
	DuePeriodDays int

	// Currency is the label applied to every invoice.
	Currency string
}

// StandardDefaults returns the built-in defaults table.
func StandardDefaults() Defaults {
	return Defaults{
		Unit:          DefaultUnit,
		VATPercent:    decimal.NewFromInt(DefaultVATPercent),
		DuePeriodDays: DefaultDuePeriodDays,
		Currency:      DefaultCurrency,
	}
}
