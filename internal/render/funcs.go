package render

import (
	"strings"

	"github.com/shopspring/decimal"
	"invoices/pkg/models"
)

func funcs() map[string]any {
	return map[string]any{
		"formatMoney":    formatMoney,
		"formatAmount":   formatAmount,
		"formatDate":     formatDate,
		"formatQuantity": formatQuantity,
		"join":           join,
		"tex":            escapeTeX,
	}
}

// formatAmount prints an amount with two decimals, rounding half away from zero.
func formatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// formatMoney prints an amount with two decimals followed by the currency label.
func formatMoney(amount decimal.Decimal, currency string) string {
	currency = strings.TrimSpace(currency)
	if currency == "" {
		return formatAmount(amount)
	}
	return formatAmount(amount) + " " + currency
}

// formatQuantity prints a number without trailing zeros.
func formatQuantity(value decimal.Decimal) string {
	return value.String()
}

func formatDate(d models.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.String()
}

func join(sep string, items []string) string {
	return strings.Join(items, sep)
}

var texReplacer = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// escapeTeX escapes the LaTeX special characters of s.
func escapeTeX(s string) string {
	return texReplacer.Replace(s)
}
