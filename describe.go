package pix

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Describe lists the fields of code in wire order with their names from
// the tag tables. Templates 26 and 62 are expanded into Children. Unlike
// Decode it does not require the 000201 prefix or check the CRC, so it is
// useful for looking at broken codes.
func Describe(code string) ([]Field, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: empty input", ErrFormat)
	}

	u := units(code)
	var fields []Field
	err := walk(u, 0, len(u), func(tag string, value []uint16, offset int) error {
		f := Field{Tag: tag, Length: len(value), Value: fromUnits(value)}
		spec, known := lookupTag(tag)
		if known {
			f.Name = spec.Name
		}
		if known && spec.Composite {
			children, err := describeTemplate(value, offset+headerLen, subSpecs(tag))
			if err != nil {
				return err
			}
			f.Children = children
		}
		fields = append(fields, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fields, nil
}

func describeTemplate(u []uint16, base int, specs map[string]TagSpec) ([]Field, error) {
	var children []Field
	err := walk(u, base, len(u), func(tag string, value []uint16, _ int) error {
		f := Field{Tag: tag, Length: len(value), Value: fromUnits(value)}
		if spec, ok := specs[tag]; ok {
			f.Name = spec.Name
		}
		children = append(children, f)
		return nil
	})
	return children, err
}

// CheckLayout reports values longer than their tag allows and mandatory
// tags that are missing, at the top level and inside templates 26 and 62.
// fields is the output of Describe. Over-length values come first, in
// wire order, followed by missing tags in tag order. Nested tags are
// reported as "26/00".
func CheckLayout(fields []Field) []error {
	return checkLayout(fields, DefaultTagSpecs, "")
}

func checkLayout(fields []Field, specs map[string]TagSpec, parent string) []error {
	var errs []error
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		seen[f.Tag] = true
		spec, ok := specs[f.Tag]
		if !ok {
			continue
		}
		if spec.MaxLength > 0 && f.Length > spec.MaxLength {
			errs = append(errs, &FieldError{
				Tag: tagPath(parent, f.Tag),
				Err: fmt.Errorf("%w: %d > %d", ErrFieldLength, f.Length, spec.MaxLength),
			})
		}
		if parent == "" && spec.Composite {
			errs = append(errs, checkLayout(f.Children, subSpecs(f.Tag), f.Tag)...)
		}
	}

	for _, tag := range slices.Sorted(maps.Keys(specs)) {
		if specs[tag].Mandatory && !seen[tag] {
			errs = append(errs, &FieldError{Tag: tagPath(parent, tag), Err: ErrMissingField})
		}
	}
	return errs
}

func tagPath(parent, tag string) string {
	if parent == "" {
		return tag
	}
	return parent + "/" + tag
}
