package models

import "github.com/shopspring/decimal"

// InvoiceLine is a single billable item of an invoice.
//
// Amounts are decimals so that repeated summation never drifts. VAT is
// derived from the amount on every call and never stored.
type InvoiceLine struct {
	item       string
	quantity   decimal.Decimal
	unitPrice  decimal.Decimal
	unit       string
	vatPercent decimal.Decimal
}

// LineOption overrides a default of a line.
type LineOption func(*InvoiceLine)

// WithUnit sets the unit label.
func WithUnit(unit string) LineOption {
	return func(l *InvoiceLine) {
		l.unit = unit
	}
}

// WithVATPercent sets the VAT rate in percent.
func WithVATPercent(percent decimal.Decimal) LineOption {
	return func(l *InvoiceLine) {
		l.vatPercent = percent
	}
}

// NewInvoiceLine creates a line. Unit and VAT rate come from defaults unless
// overridden by opts.
func NewInvoiceLine(defaults Defaults, item string, quantity, unitPrice decimal.Decimal, opts ...LineOption) InvoiceLine {
	line := InvoiceLine{
		item:       item,
		quantity:   quantity,
		unitPrice:  unitPrice,
		unit:       defaults.Unit,
		vatPercent: defaults.VATPercent,
	}
	for _, opt := range opts {
		opt(&line)
	}
	return line
}

func (l InvoiceLine) Item() string { return l.item }
func (l InvoiceLine) Quantity() decimal.Decimal { return l.quantity }
func (l InvoiceLine) UnitPrice() decimal.Decimal { return l.unitPrice }
func (l InvoiceLine) Unit() string { return l.unit }
func (l InvoiceLine) VATPercent() decimal.Decimal { return l.vatPercent }

// Amount returns unit price times quantity.
func (l InvoiceLine) Amount() decimal.Decimal {
	return l.unitPrice.Mul(l.quantity)
}

// VATAmount returns Amount * VATPercent / 100, exactly.
func (l InvoiceLine) VATAmount() decimal.Decimal {
	// Shift(-2) divides by 100 without the rounding of Div.
	return l.Amount().Mul(l.vatPercent).Shift(-2)
}
