package models

import "github.com/shopspring/decimal"

// Invoice is a billing document addressed to one customer.
type Invoice struct {
	// Sequential 1-based position in the source. It is an artifact of load
	// order and not an invoice number.
	id int

	date          Date
	deliveredOn   Date
	duePeriodDays int

	// Weak reference; nil when customerKey did not resolve.
	customer    *Customer
	customerKey string

	content  []InvoiceLine
	currency string
}

// InvoiceInput holds the required fields of a new invoice.
type InvoiceInput struct {
	ID          int
	Date        Date
	DeliveredOn Date
	CustomerKey string
	Customer    *Customer
	Content     []InvoiceLine
}

// InvoiceOption overrides a default of an invoice.
type InvoiceOption func(*Invoice)

// WithDuePeriodDays sets the number of days until payment is due.
func WithDuePeriodDays(days int) InvoiceOption {
	return func(inv *Invoice) {
		inv.duePeriodDays = days
	}
}

// NewInvoice creates an invoice. Due period and currency come from defaults
// unless overridden by opts. The content slice is copied.
func NewInvoice(defaults Defaults, in InvoiceInput, opts ...InvoiceOption) *Invoice {
	content := make([]InvoiceLine, len(in.Content))
	copy(content, in.Content)

	inv := &Invoice{
		id:            in.ID,
		date:          in.Date,
		deliveredOn:   in.DeliveredOn,
		duePeriodDays: defaults.DuePeriodDays,
		customer:      in.Customer,
		customerKey:   in.CustomerKey,
		content:       content,
		currency:      defaults.Currency,
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

func (inv *Invoice) ID() int { return inv.id }
func (inv *Invoice) Date() Date { return inv.date }
func (inv *Invoice) DeliveredOn() Date { return inv.deliveredOn }
func (inv *Invoice) DuePeriodDays() int { return inv.duePeriodDays }
func (inv *Invoice) Currency() string { return inv.currency }
func (inv *Invoice) CustomerKey() string { return inv.customerKey }
func (inv *Invoice) Customer() *Customer { return inv.customer }
func (inv *Invoice) HasCustomer() bool { return inv.customer != nil }

// Content returns a copy of the lines in source order.
func (inv *Invoice) Content() []InvoiceLine {
	content := make([]InvoiceLine, len(inv.content))
	copy(content, inv.content)
	return content
}

// CustomerName returns the name of the referenced customer. It fails with a
// *MissingReferenceError when the reference is absent.
func (inv *Invoice) CustomerName() (string, error) {
	if inv.customer == nil {
		return "", &MissingReferenceError{InvoiceID: inv.id, CustomerKey: inv.customerKey}
	}
	return inv.customer.Name(), nil
}

// DueDate returns the issue date plus the due period in calendar days.
func (inv *Invoice) DueDate() Date {
	return inv.date.AddDays(inv.duePeriodDays)
}

// Total returns the sum of line amounts, excluding VAT.
func (inv *Invoice) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range inv.content {
		total = total.Add(line.Amount())
	}
	return total
}

// VATTotal returns the sum of per-line VAT amounts.
func (inv *Invoice) VATTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range inv.content {
		total = total.Add(line.VATAmount())
	}
	return total
}

// TotalWithVAT returns Total plus VATTotal.
func (inv *Invoice) TotalWithVAT() decimal.Decimal {
	return inv.Total().Add(inv.VATTotal())
}
