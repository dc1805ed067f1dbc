package models

// Customer is an addressee of invoices. The first address line is the name.
type Customer struct {
	key          string
	addressLines []string
}

// NewCustomer creates a customer. The address lines are copied.
func NewCustomer(key string, addressLines []string) *Customer {
	lines := make([]string, len(addressLines))
	copy(lines, addressLines)
	return &Customer{key: key, addressLines: lines}
}

// Key returns the lookup key of the customer.
func (c *Customer) Key() string {
	return c.key
}

// Name returns the first address line, or "" when there are no address lines.
func (c *Customer) Name() string {
	if len(c.addressLines) == 0 {
		return ""
	}
	return c.addressLines[0]
}

// HasName reports whether the customer has at least one address line.
func (c *Customer) HasName() bool {
	return len(c.addressLines) > 0
}

// AddressLines returns a copy of the address lines in order.
func (c *Customer) AddressLines() []string {
	lines := make([]string, len(c.addressLines))
	copy(lines, c.addressLines)
	return lines
}
