package db

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"invoices/pkg/models"
)

// The record set is walked as a yaml.Node tree instead of being decoded into
// Go values, so only these core scalar and collection tags are ever accepted.
// Application specific tags are rejected before any value is interpreted.
var permittedTags = map[string]bool{
	"!!map":       true,
	"!!seq":       true,
	"!!str":       true,
	"!!int":       true,
	"!!float":     true,
	"!!bool":      true,
	"!!null":      true,
	"!!timestamp": true,
}

// field is a located node: the node plus its path in the document.
type field struct {
	node *yaml.Node
	path string
}

func (f field) fail(format string, args ...interface{}) *DataFormatError {
	line := 0
	if f.node != nil {
		line = f.node.Line
	}
	return &DataFormatError{Path: f.path, Line: line, Message: fmt.Sprintf(format, args...)}
}

func (f field) child(key string) string {
	if f.path == "" {
		return key
	}
	return f.path + "." + key
}

// resolve follows aliases and checks the tag.
func (f field) resolve() (field, error) {
	n := f.node
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n == nil {
		return f, f.fail("missing value")
	}
	f.node = n
	if tag := n.ShortTag(); !permittedTags[tag] {
		return f, f.fail("unsupported tag %s", tag)
	}
	return f, nil
}

func (f field) isNull() bool {
	return f.node == nil || f.node.ShortTag() == "!!null"
}

// mapping returns the keyed children of a mapping node.
func (f field) mapping() (map[string]field, error) {
	f, err := f.resolve()
	if err != nil {
		return nil, err
	}
	if f.node.Kind != yaml.MappingNode {
		return nil, f.fail("expected a mapping")
	}

	out := make(map[string]field, len(f.node.Content)/2)
	for i := 0; i+1 < len(f.node.Content); i += 2 {
		keyNode, valueNode := f.node.Content[i], f.node.Content[i+1]
		key := field{node: keyNode, path: f.path}
		if keyNode.Kind != yaml.ScalarNode || keyNode.ShortTag() != "!!str" {
			return nil, key.fail("unsupported mapping key %q", keyNode.Value)
		}
		if _, dup := out[keyNode.Value]; dup {
			return nil, key.fail("duplicate key %q", keyNode.Value)
		}
		out[keyNode.Value] = field{node: valueNode, path: f.child(keyNode.Value)}
	}
	return out, nil
}

// sequence returns the items of a sequence node.
func (f field) sequence() ([]field, error) {
	f, err := f.resolve()
	if err != nil {
		return nil, err
	}
	if f.node.Kind != yaml.SequenceNode {
		return nil, f.fail("expected a sequence")
	}

	out := make([]field, len(f.node.Content))
	for i, n := range f.node.Content {
		out[i] = field{node: n, path: fmt.Sprintf("%s[%d]", f.path, i)}
	}
	return out, nil
}

func (f field) scalar() (field, error) {
	f, err := f.resolve()
	if err != nil {
		return f, err
	}
	if f.node.Kind != yaml.ScalarNode {
		return f, f.fail("expected a scalar value")
	}
	return f, nil
}

// text returns a scalar as a string. Plain numbers and booleans keep their
// source spelling.
func (f field) text() (string, error) {
	f, err := f.scalar()
	if err != nil {
		return "", err
	}
	switch f.node.ShortTag() {
	case "!!str", "!!int", "!!float", "!!bool":
		return f.node.Value, nil
	default:
		return "", f.fail("expected text, got %s", f.node.ShortTag())
	}
}

// number returns an integer or decimal scalar.
func (f field) number() (decimal.Decimal, error) {
	f, err := f.scalar()
	if err != nil {
		return decimal.Decimal{}, err
	}
	switch f.node.ShortTag() {
	case "!!int":
		// Integers may use YAML spellings such as 0x1F or 1_000.
		var v int64
		if err := f.node.Decode(&v); err != nil {
			return decimal.Decimal{}, f.fail("invalid integer %q", f.node.Value)
		}
		return decimal.NewFromInt(v), nil
	case "!!float":
		d, err := decimal.NewFromString(f.node.Value)
		if err != nil {
			return decimal.Decimal{}, f.fail("invalid number %q", f.node.Value)
		}
		return d, nil
	default:
		return decimal.Decimal{}, f.fail("expected a number, got %s %q", f.node.ShortTag(), f.node.Value)
	}
}

// integer returns a whole number scalar.
func (f field) integer() (int, error) {
	f, err := f.scalar()
	if err != nil {
		return 0, err
	}
	if f.node.ShortTag() != "!!int" {
		return 0, f.fail("expected an integer, got %s %q", f.node.ShortTag(), f.node.Value)
	}
	var v int
	if err := f.node.Decode(&v); err != nil {
		return 0, f.fail("invalid integer %q", f.node.Value)
	}
	return v, nil
}

// date returns a YYYY-MM-DD scalar. Timestamps with a time of day are rejected.
func (f field) date() (models.Date, error) {
	f, err := f.scalar()
	if err != nil {
		return models.Date{}, err
	}
	switch f.node.ShortTag() {
	case "!!timestamp", "!!str":
		d, err := models.ParseDate(f.node.Value)
		if err != nil {
			return models.Date{}, f.fail("invalid date %s", strconv.Quote(f.node.Value))
		}
		return d, nil
	default:
		return models.Date{}, f.fail("expected a date, got %s %q", f.node.ShortTag(), f.node.Value)
	}
}

// required looks up a key that must be present and non-null.
func required(m map[string]field, parent field, key string) (field, error) {
	f, ok := m[key]
	if !ok {
		return field{}, parent.fail("missing required field %q", key)
	}
	if r, err := f.resolve(); err == nil && r.isNull() {
		return field{}, f.fail("required field %q is empty", key)
	}
	return f, nil
}

// optional looks up a key that may be absent or null.
func optional(m map[string]field, key string) (field, bool) {
	f, ok := m[key]
	if !ok {
		return field{}, false
	}
	if r, err := f.resolve(); err == nil && r.isNull() {
		return field{}, false
	}
	return f, true
}
