package render

import (
	"fmt"
	"strings"
	"unicode"
)

// FileName derives the document file name of ctx: the compact issue date and
// the sanitized customer name joined by an underscore, e.g.
// "20240301_Acme_Inc.tex". Equal dates and names yield equal file names.
func FileName(ctx Context, ext string) (string, error) {
	name := sanitizeName(ctx.Customer.Name)
	if name == "" {
		return "", fmt.Errorf("invoice %d: %w (customer %q)", ctx.ID, ErrUnnamedCustomer, ctx.Customer.Key)
	}

	base := ctx.Date.Compact() + "_" + name
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return base, nil
	}
	return base + "." + ext, nil
}

// sanitizeName keeps letters, digits and hyphens, turns whitespace into
// single underscores and drops everything else.
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '_':
			pendingSep = true
		}
	}
	return b.String()
}
