package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/nurycaroline/pix"
)

// cborMode uses Core Deterministic Encoding so the same payload always
// produces the same bytes. Key types and amounts are written through
// their MarshalText methods.
var cborMode cbor.EncMode

func init() {
	opts := cbor.CoreDetEncOptions()
	opts.TextMarshaler = cbor.TextMarshalerTextString

	var err error
	cborMode, err = opts.EncMode()
	if err != nil {
		panic("pixcode: CBOR encoder initialization failed: " + err.Error())
	}
}

// writeOutput renders v in the configured format. text is used for the
// human-readable format.
func writeOutput(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "cbor":
		data, err := cborMode.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding CBOR: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return text(w)
	}
}

// codeResult is one decoded code in structured output.
type codeResult struct {
	Code    string       `json:"code" yaml:"code" cbor:"code"`
	Payload *pix.Payload `json:"payload,omitempty" yaml:"payload,omitempty" cbor:"payload,omitempty"`
	Error   string       `json:"error,omitempty" yaml:"error,omitempty" cbor:"error,omitempty"`
}

func writePayloadText(w io.Writer, p *pix.Payload) {
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(w, "%-18s %s\n", label+":", value)
		}
	}

	initiation := p.InitiationMethod
	switch initiation {
	case pix.InitiationStatic:
		initiation += " (static)"
	case pix.InitiationDynamic:
		initiation += " (dynamic)"
	}

	row("Version", p.Version)
	row("Initiation", initiation)
	row("GUI", p.MerchantAccount.GUI)
	if p.MerchantAccount.Key != "" {
		row("Key", fmt.Sprintf("%s (%s)", p.MerchantAccount.Key, p.MerchantAccount.KeyType))
	}
	row("Info", p.MerchantAccount.Description)
	row("Category", p.Transaction.CategoryCode)
	currency := p.Transaction.CurrencyCode
	if p.Transaction.CurrencyName != "" {
		currency += " (" + p.Transaction.CurrencyName + ")"
	}
	row("Currency", currency)
	if p.Transaction.Amount.Valid {
		row("Amount", p.Transaction.Amount.Decimal.StringFixed(2))
	}
	row("Country", p.Transaction.CountryCode)
	row("Merchant", p.MerchantName)
	row("City", p.MerchantCity)
	row("Reference", p.AdditionalData.ReferenceLabel)
	row("Payment system", p.AdditionalData.PaymentSystem)

	checksum := "invalid"
	if p.ChecksumValid {
		checksum = "valid"
	}
	row("CRC", fmt.Sprintf("%s (%s)", p.CRC, checksum))

	writeUnknown(w, "Unknown", p.Unknown)
	writeUnknown(w, "Unknown in 26", p.MerchantAccount.Unknown)
	writeUnknown(w, "Unknown in 62", p.AdditionalData.Unknown)
}

func writeUnknown(w io.Writer, label string, tags map[string]string) {
	if len(tags) == 0 {
		return
	}
	parts := make([]string, 0, len(tags))
	for _, f := range sortedFields(tags) {
		parts = append(parts, f.Tag+"="+f.Value)
	}
	fmt.Fprintf(w, "%-18s %s\n", label+":", strings.Join(parts, " "))
}

// sortedFields orders a tag map for stable output.
func sortedFields(tags map[string]string) []pix.Field {
	fields := make([]pix.Field, 0, len(tags))
	for tag, value := range tags {
		fields = append(fields, pix.NewField(tag, value))
	}
	slices.SortFunc(fields, func(a, b pix.Field) int {
		return strings.Compare(a.Tag, b.Tag)
	})
	return fields
}

func writeFieldsText(w io.Writer, fields []pix.Field, indent string) {
	for _, f := range fields {
		name := f.Name
		if name == "" {
			name = "?"
		}
		if len(f.Children) > 0 {
			fmt.Fprintf(w, "%s%s %02d  %s\n", indent, f.Tag, f.Length, name)
			writeFieldsText(w, f.Children, indent+"    ")
			continue
		}
		fmt.Fprintf(w, "%s%s %02d  %-32s %s\n", indent, f.Tag, f.Length, name, f.Value)
	}
}
