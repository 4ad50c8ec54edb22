package pix

// TagSpec describes one tag of the PIX layout.
type TagSpec struct {
	Name      string
	MaxLength int
	Mandatory bool
	Composite bool // value is itself a TLV list
}

// DefaultTagSpecs is the top-level layout of a static PIX code (BR Code
// manual, EMV QRCPS merchant-presented mode).
var DefaultTagSpecs = map[string]TagSpec{
	TagPayloadFormat:    {Name: "Payload Format Indicator", MaxLength: 2, Mandatory: true},
	TagInitiationMethod: {Name: "Point of Initiation Method", MaxLength: 2},
	TagMerchantAccount:  {Name: "Merchant Account Information", MaxLength: 99, Mandatory: true, Composite: true},
	TagCategoryCode:     {Name: "Merchant Category Code", MaxLength: 4, Mandatory: true},
	TagCurrency:         {Name: "Transaction Currency", MaxLength: 3, Mandatory: true},
	TagAmount:           {Name: "Transaction Amount", MaxLength: 13},
	TagCountry:          {Name: "Country Code", MaxLength: 2, Mandatory: true},
	TagMerchantName:     {Name: "Merchant Name", MaxLength: MaxMerchantName, Mandatory: true},
	TagMerchantCity:     {Name: "Merchant City", MaxLength: MaxMerchantCity, Mandatory: true},
	TagAdditionalData:   {Name: "Additional Data Field Template", MaxLength: 99, Composite: true},
	TagCRC:              {Name: "CRC16", MaxLength: 4, Mandatory: true},
}

// MerchantAccountSpecs is the layout inside tag 26.
var MerchantAccountSpecs = map[string]TagSpec{
	SubTagGUI:  {Name: "GUI", MaxLength: 14, Mandatory: true},
	SubTagKey:  {Name: "Chave", MaxLength: 77},
	SubTagInfo: {Name: "Info Adicional", MaxLength: 72},
}

// AdditionalDataSpecs is the layout inside tag 62.
var AdditionalDataSpecs = map[string]TagSpec{
	SubTagReferenceLabel: {Name: "Reference Label", MaxLength: MaxDescription},
	SubTagPaymentSystem:  {Name: "Payment System Specific Template", MaxLength: 99, Composite: true},
}

// lookupTag finds the top-level spec for tag.
func lookupTag(tag string) (TagSpec, bool) {
	spec, ok := DefaultTagSpecs[tag]
	return spec, ok
}

// subSpecs returns the nested layout of a composite top-level tag.
func subSpecs(tag string) map[string]TagSpec {
	switch tag {
	case TagMerchantAccount:
		return MerchantAccountSpecs
	case TagAdditionalData:
		return AdditionalDataSpecs
	}
	return nil
}
