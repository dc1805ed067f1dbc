// Package db loads a YAML record set of customers and invoices and rebuilds
// the object graph the documents are rendered from.
//
// Expected document layout:
//
//	customers:
//	  - key: acme
//	    address_lines: ["Acme Inc", "123 Main St"]
//	invoices:
//	  - customer_key: acme
//	    invoice_date: 2024-03-01
//	    delivered_on: 2024-03-01
//	    due_period_days: 30     # optional
//	    content:
//	      - item: Widget
//	        quantity: 2
//	        unit_price: 100
//	        unit: st            # optional
//	        vat_percent: 25     # optional
//
// Keys are compared as text in their source spelling: key: 1 and
// customer_key: "1" refer to the same customer, while 1 and 01 do not.
//
// Loading is single pass and all-or-nothing: on error the previously loaded
// graph, if any, is left as it was.
package db

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
	"invoices/internal/logger"
	"invoices/pkg/models"
)

// DB holds the customers and invoices of one record set.
type DB struct {
	defaults models.Defaults
	strict   bool
	log      zerolog.Logger

	customers []*models.Customer
	invoices  []*models.Invoice
	byKey     map[string]*models.Customer
}

// Option configures a DB.
type Option func(*DB)

// WithDefaults sets the defaults table used for omitted fields.
func WithDefaults(defaults models.Defaults) Option {
	return func(db *DB) {
		db.defaults = defaults
	}
}

// WithStrictReferences makes a customer key without a matching customer a
// load error instead of an invoice without customer.
func WithStrictReferences(strict bool) Option {
	return func(db *DB) {
		db.strict = strict
	}
}

// New creates an empty DB.
func New(opts ...Option) *DB {
	db := &DB{
		defaults: models.StandardDefaults(),
		log:      logger.WithComponent("db"),
		byKey:    map[string]*models.Customer{},
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// LoadFile loads the record set stored at path.
func (db *DB) LoadFile(path string) error {
	const op = "LoadFile"

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s: failed to read %s: %w", op, path, err)
	}

	db.log.Debug().Str("file", path).Int("bytes", len(data)).Msg("Read record set")
	return db.LoadBytes(data)
}

// Load loads the record set read from r.
func (db *DB) Load(r io.Reader) error {
	const op = "Load"

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("%s: failed to read record set: %w", op, err)
	}
	return db.LoadBytes(data)
}

// LoadBytes parses and loads a YAML record set.
func (db *DB) LoadBytes(data []byte) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return &DataFormatError{Message: "malformed YAML", Err: err}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return &DataFormatError{Message: "empty record set"}
	}

	root := field{node: doc.Content[0]}
	top, err := root.mapping()
	if err != nil {
		return err
	}
	customersField, err := required(top, root, "customers")
	if err != nil {
		return err
	}
	invoicesField, err := required(top, root, "invoices")
	if err != nil {
		return err
	}

	// Every customer must exist before the first invoice is resolved.
	customers, byKey, err := db.buildCustomers(customersField)
	if err != nil {
		return err
	}
	invoices, err := db.buildInvoices(invoicesField, byKey)
	if err != nil {
		return err
	}

	db.customers = customers
	db.byKey = byKey
	db.invoices = invoices

	db.log.Info().
		Int("customers", len(customers)).
		Int("invoices", len(invoices)).
		Str("currency", db.defaults.Currency).
		Msg("Record set loaded")

	return nil
}

func (db *DB) buildCustomers(f field) ([]*models.Customer, map[string]*models.Customer, error) {
	items, err := f.sequence()
	if err != nil {
		return nil, nil, err
	}

	customers := make([]*models.Customer, 0, len(items))
	byKey := make(map[string]*models.Customer, len(items))
	for _, item := range items {
		customer, err := buildCustomer(item)
		if err != nil {
			return nil, nil, err
		}
		customers = append(customers, customer)

		// Lookup returns the first customer with a key.
		if _, seen := byKey[customer.Key()]; seen {
			db.log.Warn().
				Str("customer_key", customer.Key()).
				Str("path", item.path).
				Msg("Duplicate customer key, first occurrence wins")
			continue
		}
		byKey[customer.Key()] = customer
	}
	return customers, byKey, nil
}

func buildCustomer(f field) (*models.Customer, error) {
	m, err := f.mapping()
	if err != nil {
		return nil, err
	}

	keyField, err := required(m, f, "key")
	if err != nil {
		return nil, err
	}
	key, err := keyField.text()
	if err != nil {
		return nil, err
	}

	linesField, err := required(m, f, "address_lines")
	if err != nil {
		return nil, err
	}
	items, err := linesField.sequence()
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		line, err := item.text()
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return models.NewCustomer(key, lines), nil
}

func (db *DB) buildInvoices(f field, byKey map[string]*models.Customer) ([]*models.Invoice, error) {
	items, err := f.sequence()
	if err != nil {
		return nil, err
	}

	invoices := make([]*models.Invoice, 0, len(items))
	for i, item := range items {
		// IDs follow source order and carry no business meaning.
		id := i + 1

		inv, err := db.buildInvoice(item, id, byKey)
		if err != nil {
			return nil, err
		}
		if !inv.HasCustomer() {
			if db.strict {
				return nil, &UnresolvedReferenceError{InvoiceID: id, CustomerKey: inv.CustomerKey()}
			}
			db.log.Warn().
				Int("invoice_id", id).
				Str("customer_key", inv.CustomerKey()).
				Msg("Invoice references unknown customer")
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

func (db *DB) buildInvoice(f field, id int, byKey map[string]*models.Customer) (*models.Invoice, error) {
	m, err := f.mapping()
	if err != nil {
		return nil, err
	}

	keyField, err := required(m, f, "customer_key")
	if err != nil {
		return nil, err
	}
	customerKey, err := keyField.text()
	if err != nil {
		return nil, err
	}

	dateField, err := required(m, f, "invoice_date")
	if err != nil {
		return nil, err
	}
	date, err := dateField.date()
	if err != nil {
		return nil, err
	}

	deliveredField, err := required(m, f, "delivered_on")
	if err != nil {
		return nil, err
	}
	deliveredOn, err := deliveredField.date()
	if err != nil {
		return nil, err
	}

	contentField, err := required(m, f, "content")
	if err != nil {
		return nil, err
	}
	items, err := contentField.sequence()
	if err != nil {
		return nil, err
	}
	content := make([]models.InvoiceLine, 0, len(items))
	for _, item := range items {
		line, err := db.buildLine(item)
		if err != nil {
			return nil, err
		}
		content = append(content, line)
	}

	var opts []models.InvoiceOption
	if dueField, ok := optional(m, "due_period_days"); ok {
		days, err := dueField.integer()
		if err != nil {
			return nil, err
		}
		if days < 0 {
			return nil, dueField.fail("due period must not be negative, got %d", days)
		}
		opts = append(opts, models.WithDuePeriodDays(days))
	}

	return models.NewInvoice(db.defaults, models.InvoiceInput{
		ID:          id,
		Date:        date,
		DeliveredOn: deliveredOn,
		CustomerKey: customerKey,
		Customer:    byKey[customerKey],
		Content:     content,
	}, opts...), nil
}

func (db *DB) buildLine(f field) (models.InvoiceLine, error) {
	m, err := f.mapping()
	if err != nil {
		return models.InvoiceLine{}, err
	}

	itemField, err := required(m, f, "item")
	if err != nil {
		return models.InvoiceLine{}, err
	}
	item, err := itemField.text()
	if err != nil {
		return models.InvoiceLine{}, err
	}

	quantityField, err := required(m, f, "quantity")
	if err != nil {
		return models.InvoiceLine{}, err
	}
	quantity, err := quantityField.number()
	if err != nil {
		return models.InvoiceLine{}, err
	}

	priceField, err := required(m, f, "unit_price")
	if err != nil {
		return models.InvoiceLine{}, err
	}
	unitPrice, err := priceField.number()
	if err != nil {
		return models.InvoiceLine{}, err
	}

	var opts []models.LineOption
	if unitField, ok := optional(m, "unit"); ok {
		unit, err := unitField.text()
		if err != nil {
			return models.InvoiceLine{}, err
		}
		opts = append(opts, models.WithUnit(unit))
	}
	if vatField, ok := optional(m, "vat_percent"); ok {
		vat, err := vatField.number()
		if err != nil {
			return models.InvoiceLine{}, err
		}
		if vat.IsNegative() {
			return models.InvoiceLine{}, vatField.fail("VAT percent must not be negative, got %s", vat)
		}
		opts = append(opts, models.WithVATPercent(vat))
	}

	return models.NewInvoiceLine(db.defaults, item, quantity, unitPrice, opts...), nil
}

// Customers returns the loaded customers in source order.
func (db *DB) Customers() []*models.Customer {
	out := make([]*models.Customer, len(db.customers))
	copy(out, db.customers)
	return out
}

// Invoices returns the loaded invoices in source order.
func (db *DB) Invoices() []*models.Invoice {
	out := make([]*models.Invoice, len(db.invoices))
	copy(out, db.invoices)
	return out
}

// FindCustomerByKey returns the first customer loaded with key.
func (db *DB) FindCustomerByKey(key string) (*models.Customer, bool) {
	c, ok := db.byKey[key]
	return c, ok
}

// Defaults returns the defaults table the DB builds with.
func (db *DB) Defaults() models.Defaults {
	return db.defaults
}
