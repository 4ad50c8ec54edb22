package pix

import (
	"fmt"
)

// PIX payloads use the fixed-length ASCII TLV layout:
//
//	T(2 digits) L(2 decimal digits) V(L characters)
//
// e.g. "5802BR" is tag 58, length 2, value "BR". Lengths count UTF-16
// code units, so the walk runs over []uint16 rather than bytes.

const (
	tagLen    = 2
	lenLen    = 2
	headerLen = tagLen + lenLen
)

// visitFunc receives one field of a walk. offset is absolute within the
// outermost payload, for error reporting.
type visitFunc func(tag string, value []uint16, offset int) error

// walk reads consecutive fields from u while the cursor is below limit.
// A value may extend past limit but never past len(u). base is added to
// offsets so nested walks report positions in the outer payload.
func walk(u []uint16, base, limit int, visit visitFunc) error {
	offset := 0
	for offset < limit {
		if offset+headerLen > len(u) {
			return &TLVError{
				Offset: base + offset,
				Err:    fmt.Errorf("insufficient data for tag and length: need %d, got %d", headerLen, len(u)-offset),
			}
		}
		tag := fromUnits(u[offset : offset+tagLen])

		length, ok := parseLength(u[offset+tagLen], u[offset+tagLen+1])
		if !ok {
			return &TLVError{
				Tag:    tag,
				Offset: base + offset,
				Err:    fmt.Errorf("invalid length '%s'", fromUnits(u[offset+tagLen:offset+headerLen])),
			}
		}

		end := offset + headerLen + length
		if end > len(u) {
			return &TLVError{
				Tag:    tag,
				Offset: base + offset,
				Err:    fmt.Errorf("insufficient data for value: need %d, got %d", length, len(u)-offset-headerLen),
			}
		}

		if err := visit(tag, u[offset+headerLen:end], base+offset); err != nil {
			return err
		}
		offset = end
	}
	return nil
}

// ParseTLV splits s into its top-level fields. Nested templates are not
// expanded; see Describe for that.
func ParseTLV(s string) ([]Field, error) {
	u := units(s)
	fields := make([]Field, 0, 16)
	err := walk(u, 0, len(u), func(tag string, value []uint16, _ int) error {
		fields = append(fields, Field{Tag: tag, Length: len(value), Value: fromUnits(value)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fields, nil
}

// PackTLV renders fields in order. Tags must be two digits and values at
// most 99 code units long.
func PackTLV(fields []Field) (string, error) {
	buf := getBuffer()
	defer func() { putBuffer(buf) }()

	var err error
	for _, f := range fields {
		if buf, err = appendField(buf, f.Tag, f.Value); err != nil {
			return "", err
		}
	}
	return string(buf), nil
}

// appendField writes one tag+length+value triple to buf.
func appendField(buf []byte, tag, value string) ([]byte, error) {
	if len(tag) != tagLen || !isDigits(tag) {
		return buf, &FieldError{Tag: tag, Err: ErrInvalidTag}
	}
	n := unitLen(value)
	if n > MaxValueLength {
		return buf, &FieldError{Tag: tag, Err: fmt.Errorf("%w: got %d", ErrValueTooLong, n)}
	}
	buf = append(buf, tag...)
	buf = writeLength(buf, n)
	buf = append(buf, value...)
	return buf, nil
}

// FindTLV returns the first field with the given tag.
func FindTLV(fields []Field, tag string) (*Field, bool) {
	for i := range fields {
		if fields[i].Tag == tag {
			return &fields[i], true
		}
	}
	return nil, false
}

// TLVToMap converts fields to a tag -> value map. Later duplicates win.
func TLVToMap(fields []Field) map[string]string {
	result := make(map[string]string, len(fields))
	for _, f := range fields {
		result[f.Tag] = f.Value
	}
	return result
}
