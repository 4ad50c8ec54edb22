package pix

import (
	"log/slog"

	"github.com/shopspring/decimal"
)

// Field is a single tag-length-value triple. Length is the value length in
// UTF-16 code units, which is what the two length digits on the wire hold.
type Field struct {
	Tag      string  `json:"tag" yaml:"tag" cbor:"tag"`
	Length   int     `json:"length" yaml:"length" cbor:"length"`
	Value    string  `json:"value" yaml:"value" cbor:"value"`
	Name     string  `json:"name,omitempty" yaml:"name,omitempty" cbor:"name,omitempty"`
	Children []Field `json:"children,omitempty" yaml:"children,omitempty" cbor:"children,omitempty"`
}

// NewField builds a Field with its length computed from value.
func NewField(tag, value string) Field {
	return Field{Tag: tag, Length: unitLen(value), Value: value}
}

// String renders the field in wire form, e.g. "5802BR". Fields whose
// value cannot be represented render as an empty string.
func (f Field) String() string {
	b, err := appendField(nil, f.Tag, f.Value)
	if err != nil {
		return ""
	}
	return string(b)
}

// Decimal parses the value as a decimal number.
func (f Field) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(f.Value)
}

// IsComposite reports whether the value is itself a TLV list.
func (f Field) IsComposite() bool {
	spec, ok := lookupTag(f.Tag)
	return ok && spec.Composite
}

// LogValue implements slog.LogValuer.
func (f Field) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("tag", f.Tag),
		slog.Int("length", f.Length),
	}
	if f.Name != "" {
		attrs = append(attrs, slog.String("name", f.Name))
	}
	if len(f.Children) > 0 {
		children := make([]any, 0, len(f.Children))
		for _, c := range f.Children {
			children = append(children, slog.Any(c.Tag, c))
		}
		attrs = append(attrs, slog.Group("children", children...))
	} else {
		attrs = append(attrs, slog.String("value", f.Value))
	}
	return slog.GroupValue(attrs...)
}
