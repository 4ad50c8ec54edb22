package pix

// Encode builds a static PIX code from req.
//
// Fields are written in the canonical order (00, 01, 26, 52, 53, 54, 58,
// 59, 60, 62) followed by "6304" and the CRC16 of everything before it,
// including the "6304" prefix. The amount is only written when it is
// positive after rounding to cents; tag 62 only when there is a
// description. The request's ReferenceID is never written to the code.
//
// Encode does not validate the key; use ValidateKey or Request.Validate
// first. A value longer than 99 characters after truncation fails with a
// *FieldError wrapping ErrValueTooLong.
func Encode(req Request, opts ...EncodeOption) (string, error) {
	var cfg encodeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	name, city, description, info := req.MerchantName, req.MerchantCity, req.Description, req.Info
	if cfg.foldASCII {
		name = foldASCII(name)
		city = foldASCII(city)
		description = foldASCII(description)
		info = foldASCII(info)
	}

	account, err := PackTLV(merchantAccountFields(req.Key, info))
	if err != nil {
		return "", &FieldError{Tag: TagMerchantAccount, Err: err}
	}

	fields := make([]Field, 0, 10)
	fields = append(fields,
		NewField(TagPayloadFormat, PayloadFormatVersion),
		NewField(TagInitiationMethod, InitiationStatic),
		NewField(TagMerchantAccount, account),
		NewField(TagCategoryCode, CategoryCodeDefault),
		NewField(TagCurrency, CurrencyBRL),
	)

	if amount := req.Amount.Round(2); amount.IsPositive() {
		fields = append(fields, NewField(TagAmount, amount.StringFixed(2)))
	}

	fields = append(fields,
		NewField(TagCountry, CountryBR),
		NewField(TagMerchantName, truncate(name, MaxMerchantName)),
		NewField(TagMerchantCity, truncate(city, MaxMerchantCity)),
	)

	if description != "" {
		additional, err := PackTLV([]Field{
			NewField(SubTagReferenceLabel, truncate(description, MaxDescription)),
		})
		if err != nil {
			return "", &FieldError{Tag: TagAdditionalData, Err: err}
		}
		fields = append(fields, NewField(TagAdditionalData, additional))
	}

	body, err := PackTLV(fields)
	if err != nil {
		return "", err
	}
	body += crcPrefix
	return body + CRC16(body), nil
}

// merchantAccountFields is the tag 26 template: GUI, key and the optional
// free-text info. Empty info is omitted, never written with length 00.
func merchantAccountFields(key, info string) []Field {
	fields := []Field{
		NewField(SubTagGUI, GUI),
		NewField(SubTagKey, key),
	}
	if info != "" {
		fields = append(fields, NewField(SubTagInfo, info))
	}
	return fields
}
