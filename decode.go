package pix

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// prefixPattern is tag 00, length 02 and the first digit of the version.
var prefixPattern = regexp.MustCompile(`^00020\d`)

// decoder is the per-call accumulator. It is never shared.
type decoder struct {
	p   *Payload
	cfg *decodeConfig
}

// tagHandler stores one field into the payload being built. offset is the
// absolute position of the field's tag.
type tagHandler func(d *decoder, value []uint16, offset int) error

// Dispatch tables. Tags missing from a table end up in the Unknown bucket
// of the template being walked.
var (
	payloadHandlers = map[string]tagHandler{
		TagPayloadFormat:    setString(func(p *Payload) *string { return &p.Version }),
		TagInitiationMethod: setString(func(p *Payload) *string { return &p.InitiationMethod }),
		TagMerchantAccount:  decodeMerchantAccount,
		TagCategoryCode:     setString(func(p *Payload) *string { return &p.Transaction.CategoryCode }),
		TagCurrency:         decodeCurrency,
		TagAmount:           decodeAmount,
		TagCountry:          setString(func(p *Payload) *string { return &p.Transaction.CountryCode }),
		TagMerchantName:     setString(func(p *Payload) *string { return &p.MerchantName }),
		TagMerchantCity:     setString(func(p *Payload) *string { return &p.MerchantCity }),
		TagAdditionalData:   decodeAdditionalData,
		TagCRC:              setString(func(p *Payload) *string { return &p.CRC }),
	}

	merchantAccountHandlers = map[string]tagHandler{
		SubTagGUI:  setString(func(p *Payload) *string { return &p.MerchantAccount.GUI }),
		SubTagKey:  decodeKey,
		SubTagInfo: setString(func(p *Payload) *string { return &p.MerchantAccount.Description }),
	}

	additionalDataHandlers = map[string]tagHandler{
		SubTagReferenceLabel: setString(func(p *Payload) *string { return &p.AdditionalData.ReferenceLabel }),
		SubTagPaymentSystem:  setString(func(p *Payload) *string { return &p.AdditionalData.PaymentSystem }),
	}
)

// Decode parses a PIX code.
//
// Empty input or input that does not start with "00020" and a digit fails
// with ErrFormat. A broken TLV structure fails with a *TLVError matching
// ErrStructure; no partial payload is returned. A wrong checksum is not
// an error: the payload comes back with ChecksumValid == false unless
// WithStrictChecksum is given.
func Decode(code string, opts ...DecodeOption) (*Payload, error) {
	cfg := newDecodeConfig(opts)

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: empty input", ErrFormat)
	}
	if !prefixPattern.MatchString(code) {
		return nil, fmt.Errorf("%w: must start with the payload format indicator 00020", ErrFormat)
	}

	u := units(code)
	d := &decoder{p: &Payload{}, cfg: cfg}

	// The last 4 characters are the checksum value; the walk stops before
	// them but the tag 63 value may still reach the end.
	if err := walk(u, 0, len(u)-crcLength, d.dispatch(payloadHandlers, &d.p.Unknown, "payload")); err != nil {
		return nil, err
	}

	expected := encodeHex16(checksumUnits(u[:len(u)-crcLength]))
	d.p.ChecksumValid = d.p.CRC != "" && strings.EqualFold(expected, d.p.CRC)
	if !d.p.ChecksumValid {
		cfg.logger.Debug("PIX checksum mismatch", "crc", d.p.CRC, "expected", expected)
		if cfg.strictChecksum {
			return nil, fmt.Errorf("%w: got %q, computed %s", ErrChecksumMismatch, d.p.CRC, expected)
		}
	}

	return d.p, nil
}

// dispatch returns a visitFunc that routes each tag through table and
// keeps the rest verbatim in *unknown.
func (d *decoder) dispatch(table map[string]tagHandler, unknown *map[string]string, scope string) visitFunc {
	return func(tag string, value []uint16, offset int) error {
		if h, ok := table[tag]; ok {
			return h(d, value, offset)
		}
		if *unknown == nil {
			*unknown = make(map[string]string)
		}
		(*unknown)[tag] = fromUnits(value)
		d.cfg.logger.Debug("unknown PIX tag", "scope", scope, "tag", tag, "offset", offset)
		return nil
	}
}

func setString(field func(*Payload) *string) tagHandler {
	return func(d *decoder, value []uint16, _ int) error {
		*field(d.p) = fromUnits(value)
		return nil
	}
}

func decodeMerchantAccount(d *decoder, value []uint16, offset int) error {
	return walk(value, offset+headerLen, len(value),
		d.dispatch(merchantAccountHandlers, &d.p.MerchantAccount.Unknown, "merchant_account"))
}

func decodeAdditionalData(d *decoder, value []uint16, offset int) error {
	return walk(value, offset+headerLen, len(value),
		d.dispatch(additionalDataHandlers, &d.p.AdditionalData.Unknown, "additional_data"))
}

func decodeKey(d *decoder, value []uint16, _ int) error {
	key := fromUnits(value)
	d.p.MerchantAccount.Key = key
	d.p.MerchantAccount.KeyType = Classify(key)
	return nil
}

func decodeCurrency(d *decoder, value []uint16, _ int) error {
	code := fromUnits(value)
	d.p.Transaction.CurrencyCode = code
	d.p.Transaction.CurrencyName = currencyNames[code]
	return nil
}

func decodeAmount(d *decoder, value []uint16, offset int) error {
	amount, err := decimal.NewFromString(fromUnits(value))
	if err != nil {
		return &TLVError{Tag: TagAmount, Offset: offset, Err: fmt.Errorf("%w: %v", ErrInvalidAmount, err)}
	}
	d.p.Transaction.Amount = decimal.NewNullDecimal(amount)
	return nil
}
