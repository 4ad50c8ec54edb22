package pix

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat is returned when the input is empty or does not start with
	// the payload format indicator ("00020" plus one digit).
	ErrFormat = errors.New("pix: invalid code format")

	// ErrStructure is returned when the TLV walk hits a non-numeric length
	// or a value that runs past the end of the input.
	ErrStructure = errors.New("pix: malformed TLV structure")

	// ErrChecksumMismatch is only returned when strict checksum checking
	// is enabled. By default a mismatch is reported in Payload.ChecksumValid.
	ErrChecksumMismatch = errors.New("pix: checksum mismatch")

	ErrValueTooLong  = errors.New("pix: value exceeds 99 characters")
	ErrInvalidTag    = errors.New("pix: tag must be two decimal digits")
	ErrInvalidAmount = errors.New("pix: invalid amount")
	ErrInvalidKey    = errors.New("pix: invalid key")
	ErrMissingField  = errors.New("pix: missing mandatory field")

	// ErrFieldLength is reported by CheckLayout for a value longer than
	// its tag allows.
	ErrFieldLength = errors.New("pix: value longer than the tag allows")
)

// FieldError reports a problem with a single tag while encoding or
// checking a layout.
type FieldError struct {
	Tag string
	Err error
}

func (fe *FieldError) Error() string {
	return fmt.Sprintf("tag %s: %v", fe.Tag, fe.Err)
}

func (fe *FieldError) Unwrap() error {
	return fe.Err
}

// ValidationError reports a failed validation rule.
type ValidationError struct {
	Field   string
	Rule    string
	Message string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s (%s): %s", ve.Field, ve.Rule, ve.Message)
}

// Unwrap lets callers match validation failures with ErrMissingField,
// ErrInvalidKey or ErrInvalidAmount without inspecting the rule.
func (ve *ValidationError) Unwrap() error {
	if ve.Rule == "presence" {
		return ErrMissingField
	}
	switch ve.Field {
	case "key":
		return ErrInvalidKey
	case "amount":
		return ErrInvalidAmount
	}
	return nil
}

// TLVError is the structural parse error raised by the decoder. It keeps
// the offending tag, the offset (in UTF-16 code units) where the field
// starts and the low-level cause.
type TLVError struct {
	Tag    string
	Offset int
	Err    error
}

func (te *TLVError) Error() string {
	if te.Tag == "" {
		return fmt.Sprintf("%v at offset %d: %v", ErrStructure, te.Offset, te.Err)
	}
	return fmt.Sprintf("%v: tag %s at offset %d: %v", ErrStructure, te.Tag, te.Offset, te.Err)
}

// Is makes every TLVError match ErrStructure.
func (te *TLVError) Is(target error) bool {
	return target == ErrStructure
}

func (te *TLVError) Unwrap() error {
	return te.Err
}
