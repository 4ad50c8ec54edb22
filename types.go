// Package pix encodes and decodes PIX "copia e cola" payment codes, the
// EMV-QR style ASCII TLV payload of the Brazilian instant payment system.
//
// A code is a flat list of fields, each a 2 digit tag, a 2 digit length
// and the value, closed by tag 63 holding a CRC16 of everything before it.
// Tags 26 (merchant account) and 62 (additional data) nest another list.
package pix

import (
	"log/slog"

	"github.com/shopspring/decimal"
)

// Top-level tags of a PIX payload.
const (
	TagPayloadFormat    = "00"
	TagInitiationMethod = "01"
	TagMerchantAccount  = "26"
	TagCategoryCode     = "52"
	TagCurrency         = "53"
	TagAmount           = "54"
	TagCountry          = "58"
	TagMerchantName     = "59"
	TagMerchantCity     = "60"
	TagAdditionalData   = "62"
	TagCRC              = "63"
)

// Sub-tags of the merchant account template (tag 26).
const (
	SubTagGUI  = "00"
	SubTagKey  = "01"
	SubTagInfo = "02"
)

// Sub-tags of the additional data template (tag 62).
const (
	SubTagReferenceLabel = "05"
	SubTagPaymentSystem  = "50"
)

// Fixed values written by the encoder.
const (
	PayloadFormatVersion = "01"
	InitiationStatic     = "12"
	InitiationDynamic    = "11"
	GUI                  = "BR.GOV.BCB.PIX"
	CategoryCodeDefault  = "0000"
	CurrencyBRL          = "986"
	CountryBR            = "BR"
)

// Length limits, counted in UTF-16 code units.
const (
	MaxMerchantName = 25
	MaxMerchantCity = 15
	MaxDescription  = 72
	MaxValueLength  = 99

	crcLength = 4
)

// crcPrefix is tag 63 with the fixed length of a 4 hex digit checksum.
// Consumers recompute the CRC over this literal, so it must stay "6304".
const crcPrefix = TagCRC + "04"

// currencyNames maps ISO 4217 numeric codes to their alphabetic code.
var currencyNames = map[string]string{
	CurrencyBRL: "BRL",
}

// Request holds the data needed to build a static PIX code.
type Request struct {
	Key          string
	MerchantName string
	MerchantCity string
	// Amount is optional; zero or negative amounts are not encoded.
	// Amounts are rounded to cents first, so anything below 0.005 is
	// omitted as well.
	Amount decimal.Decimal
	// Description is written as the reference label (tag 62, sub-tag 05).
	Description string
	// ReferenceID identifies the request in logs. It is not part of the
	// code.
	ReferenceID string
	// Info is the free-text description carried inside the merchant
	// account template (sub-tag 02).
	Info string
}

// LogValue implements slog.LogValuer. The key itself is not logged.
func (r Request) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("key_type", Classify(r.Key).String()),
		slog.String("merchant_name", r.MerchantName),
		slog.String("merchant_city", r.MerchantCity),
		slog.String("amount", r.Amount.StringFixed(2)),
		slog.String("reference_id", r.ReferenceID),
	)
}

// MerchantAccount is the decoded tag 26 template.
type MerchantAccount struct {
	GUI         string            `json:"gui" yaml:"gui" cbor:"gui"`
	Key         string            `json:"key" yaml:"key" cbor:"key"`
	KeyType     KeyType           `json:"key_type" yaml:"key_type" cbor:"key_type"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty" cbor:"description,omitempty"`
	Unknown     map[string]string `json:"unknown,omitempty" yaml:"unknown,omitempty" cbor:"unknown,omitempty"`
}

// Transaction groups the transaction tags (52, 53, 54, 58).
type Transaction struct {
	CategoryCode string              `json:"category_code" yaml:"category_code" cbor:"category_code"`
	CurrencyCode string              `json:"currency_code" yaml:"currency_code" cbor:"currency_code"`
	CurrencyName string              `json:"currency_name,omitempty" yaml:"currency_name,omitempty" cbor:"currency_name,omitempty"`
	Amount       decimal.NullDecimal `json:"amount" yaml:"amount" cbor:"amount"`
	CountryCode  string              `json:"country_code" yaml:"country_code" cbor:"country_code"`
}

// AdditionalData is the decoded tag 62 template.
type AdditionalData struct {
	ReferenceLabel string            `json:"reference_label,omitempty" yaml:"reference_label,omitempty" cbor:"reference_label,omitempty"`
	PaymentSystem  string            `json:"payment_system,omitempty" yaml:"payment_system,omitempty" cbor:"payment_system,omitempty"`
	Unknown        map[string]string `json:"unknown,omitempty" yaml:"unknown,omitempty" cbor:"unknown,omitempty"`
}

// Payload is the structured result of Decode.
type Payload struct {
	Version          string            `json:"version" yaml:"version" cbor:"version"`
	InitiationMethod string            `json:"initiation_method" yaml:"initiation_method" cbor:"initiation_method"`
	MerchantAccount  MerchantAccount   `json:"merchant_account" yaml:"merchant_account" cbor:"merchant_account"`
	Transaction      Transaction       `json:"transaction" yaml:"transaction" cbor:"transaction"`
	MerchantName     string            `json:"merchant_name" yaml:"merchant_name" cbor:"merchant_name"`
	MerchantCity     string            `json:"merchant_city" yaml:"merchant_city" cbor:"merchant_city"`
	AdditionalData   AdditionalData    `json:"additional_data" yaml:"additional_data" cbor:"additional_data"`
	CRC              string            `json:"crc" yaml:"crc" cbor:"crc"`
	ChecksumValid    bool              `json:"checksum_valid" yaml:"checksum_valid" cbor:"checksum_valid"`
	Unknown          map[string]string `json:"unknown,omitempty" yaml:"unknown,omitempty" cbor:"unknown,omitempty"`
}

// IsStatic reports whether the code was generated for reuse (tag 01 = 12).
func (p *Payload) IsStatic() bool {
	return p.InitiationMethod == InitiationStatic
}

// LogValue implements slog.LogValuer.
func (p *Payload) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("key_type", p.MerchantAccount.KeyType.String()),
		slog.String("merchant_name", p.MerchantName),
		slog.String("merchant_city", p.MerchantCity),
		slog.String("crc", p.CRC),
		slog.Bool("checksum_valid", p.ChecksumValid),
	}
	if p.Transaction.Amount.Valid {
		attrs = append(attrs, slog.String("amount", p.Transaction.Amount.Decimal.StringFixed(2)))
	}
	if n := len(p.Unknown); n > 0 {
		attrs = append(attrs, slog.Int("unknown_tags", n))
	}
	return slog.GroupValue(attrs...)
}
