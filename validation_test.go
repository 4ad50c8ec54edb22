package pix

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateKey(t *testing.T) {
	valid := []string{
		"52998224725",
		"11222333000181",
		"fulano@example.com",
		"+5561999999999",
		"+556133334444",
		evpKey,
	}
	for _, key := range valid {
		t.Run(key, func(t *testing.T) {
			assert.NoError(t, ValidateKey(key))
		})
	}
}

func TestValidateKeyErrors(t *testing.T) {
	tests := []struct {
		key  string
		rule string
		want error
	}{
		{"", "presence", ErrMissingField},
		{"   ", "presence", ErrMissingField},
		{"abc", "type", ErrInvalidKey},
		{"52998224724", "cpf_check_digit", ErrInvalidKey},
		{"11111111111", "cpf_check_digit", ErrInvalidKey},
		{"11222333000182", "cnpj_check_digit", ErrInvalidKey},
		{"fulano@exa_mple.com", "regex", ErrInvalidKey},
		{"+5501999999999", "regex", ErrInvalidKey},
		{strings.Repeat("a", 70) + "@example.com", "length", ErrInvalidKey},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			err := ValidateKey(tc.key)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, "key", ve.Field)
			assert.Equal(t, tc.rule, ve.Rule)
		})
	}
}

func TestRequestValidate(t *testing.T) {
	base := Request{Key: evpKey, MerchantName: "FULANO DE TAL", MerchantCity: "BRASILIA"}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		modify func(*Request)
		field  string
		want   error
	}{
		{"bad key", func(r *Request) { r.Key = "abc" }, "key", ErrInvalidKey},
		{"no name", func(r *Request) { r.MerchantName = "" }, "merchant_name", ErrMissingField},
		{"no city", func(r *Request) { r.MerchantCity = " " }, "merchant_city", ErrMissingField},
		{"negative amount", func(r *Request) { r.Amount = decimal.NewFromInt(-1) }, "amount", ErrInvalidAmount},
		{"huge amount", func(r *Request) { r.Amount = decimal.RequireFromString("10000000000") }, "amount", ErrInvalidAmount},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.modify(&req)

			err := req.Validate()
			assert.ErrorIs(t, err, tc.want)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestLengthRule(t *testing.T) {
	tests := []struct {
		name  string
		rule  LengthRule
		value string
		ok    bool
	}{
		{"exact", LengthRule{ExactLength: 3}, "abc", true},
		{"exact mismatch", LengthRule{ExactLength: 3}, "ab", false},
		{"min", LengthRule{MinLength: 2}, "a", false},
		{"max", LengthRule{MaxLength: 2}, "abc", false},
		{"surrogate pair counts twice", LengthRule{MaxLength: 2}, "a😀", false},
		{"allow empty", LengthRule{MinLength: 2, AllowEmpty: true}, "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rule.Validate(tc.value)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestNumericRule(t *testing.T) {
	r := &NumericRule{}
	assert.NoError(t, r.Validate("0123"))
	assert.Error(t, r.Validate("12a"))
	assert.NoError(t, (&NumericRule{AllowEmpty: true}).Validate(""))
	assert.Equal(t, "numeric", r.Name())
}

func TestRegexRule(t *testing.T) {
	r := NewRegexRule(`^[A-Z]{2}$`, "")
	assert.NoError(t, r.Validate("BR"))
	assert.ErrorContains(t, r.Validate("bra"), "does not match pattern")

	described := NewRegexRule(`^\d+$`, "digits only")
	assert.EqualError(t, described.Validate("x"), "digits only")
}

func TestCustomRule(t *testing.T) {
	r := &CustomRule{RuleName: "not_bob", ValidateFunc: func(s string) error {
		if s == "bob" {
			return fmt.Errorf("bob is not allowed")
		}
		return nil
	}}
	assert.Equal(t, "not_bob", r.Name())
	assert.NoError(t, r.Validate("alice"))
	assert.Error(t, r.Validate("bob"))
}

func TestCheckDigitRule(t *testing.T) {
	rule := keyRules[KeyCPF][2]
	assert.NoError(t, rule.Validate("52998224725"))
	assert.Error(t, rule.Validate("5299822472X"))
	assert.Error(t, rule.Validate("00000000000"))
	assert.Error(t, rule.Validate("1234"))
}

// firstFailure runs a rule chain the way ValidateKey does and returns the
// name of the first rule that rejects value.
func firstFailure(rules []ValidationRule, value string) string {
	for _, rule := range rules {
		if rule.Validate(value) != nil {
			return rule.Name()
		}
	}
	return ""
}

func TestDocumentKeyRuleChain(t *testing.T) {
	tests := []struct {
		name  string
		kt    KeyType
		value string
		want  string
	}{
		{"valid cpf", KeyCPF, "52998224725", ""},
		{"cpf with letter", KeyCPF, "5299822472X", "numeric"},
		{"cpf with separator", KeyCPF, "529.982.247", "numeric"},
		{"short cpf", KeyCPF, "5299822472", "length"},
		{"wrong cpf digit", KeyCPF, "52998224724", "cpf_check_digit"},
		{"valid cnpj", KeyCNPJ, "11222333000181", ""},
		{"cnpj with letters", KeyCNPJ, "11222333ABCD81", "numeric"},
		{"wrong cnpj digit", KeyCNPJ, "11222333000182", "cnpj_check_digit"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, firstFailure(keyRules[tc.kt], tc.value))
		})
	}
}
