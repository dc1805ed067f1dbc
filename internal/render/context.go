package render

import (
	"github.com/shopspring/decimal"
	"invoices/pkg/models"
)

// Context is the read-only view of one invoice handed to a Renderer. It is
// a plain copy of the invoice's fields and derived values; templates never
// see the model objects themselves.
type Context struct {
	ID            int             `json:"id"`
	Date          models.Date     `json:"date"`
	DueDate       models.Date     `json:"due_date"`
	DeliveredOn   models.Date     `json:"delivered_on"`
	DuePeriodDays int             `json:"due_period_days"`
	Customer      CustomerView    `json:"customer"`
	Content       []LineView      `json:"content"`
	Currency      string          `json:"currency"`
	Total         decimal.Decimal `json:"total"`
	VATTotal      decimal.Decimal `json:"vat_total"`
	TotalWithVAT  decimal.Decimal `json:"total_with_vat"`
}

// CustomerView is the customer part of a Context.
type CustomerView struct {
	Key     string   `json:"key"`
	Name    string   `json:"name"`
	Address []string `json:"address"`
}

// LineView is one invoice line of a Context.
type LineView struct {
	Item       string          `json:"item"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Unit       string          `json:"unit"`
	VATPercent decimal.Decimal `json:"vat_percent"`
	Amount     decimal.Decimal `json:"amount"`
	VATAmount  decimal.Decimal `json:"vat_amount"`
}

// NewContext builds the rendering context of inv. It fails with a
// *models.MissingReferenceError when the invoice has no customer.
func NewContext(inv *models.Invoice) (Context, error) {
	name, err := inv.CustomerName()
	if err != nil {
		return Context{}, err
	}
	customer := inv.Customer()

	lines := inv.Content()
	content := make([]LineView, 0, len(lines))
	for _, line := range lines {
		content = append(content, LineView{
			Item:       line.Item(),
			Quantity:   line.Quantity(),
			UnitPrice:  line.UnitPrice(),
			Unit:       line.Unit(),
			VATPercent: line.VATPercent(),
			Amount:     line.Amount(),
			VATAmount:  line.VATAmount(),
		})
	}

	return Context{
		ID:            inv.ID(),
		Date:          inv.Date(),
		DueDate:       inv.DueDate(),
		DeliveredOn:   inv.DeliveredOn(),
		DuePeriodDays: inv.DuePeriodDays(),
		Customer: CustomerView{
			Key:     customer.Key(),
			Name:    name,
			Address: customer.AddressLines(),
		},
		Content:      content,
		Currency:     inv.Currency(),
		Total:        inv.Total(),
		VATTotal:     inv.VATTotal(),
		TotalWithVAT: inv.TotalWithVAT(),
	}, nil
}
