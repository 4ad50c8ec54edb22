package pix

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValidationRule defines the interface for a single validation rule.
type ValidationRule interface {
	Validate(value string) error
	Name() string // Returns the name of the rule (e.g., "length")
}

// --- Validation Rule Implementations ---

// LengthRule validates the value's length in UTF-16 code units.
type LengthRule struct {
	MinLength   int
	MaxLength   int
	ExactLength int
	AllowEmpty  bool
}

// Name returns the rule name.
func (r *LengthRule) Name() string {
	return "length"
}

// Validate checks the length constraints.
func (r *LengthRule) Validate(value string) error {
	length := unitLen(value)

	if length == 0 && r.AllowEmpty {
		return nil
	}

	if r.ExactLength > 0 && length != r.ExactLength {
		return fmt.Errorf("expected length %d, got %d", r.ExactLength, length)
	}

	if r.MinLength > 0 && length < r.MinLength {
		return fmt.Errorf("length %d below minimum %d", length, r.MinLength)
	}

	if r.MaxLength > 0 && length > r.MaxLength {
		return fmt.Errorf("length %d exceeds maximum %d", length, r.MaxLength)
	}

	return nil
}

// NumericRule validates that the value contains only decimal digits.
type NumericRule struct {
	AllowEmpty bool
}

// Name returns the rule name.
func (r *NumericRule) Name() string {
	return "numeric"
}

// Validate checks for non-numeric characters.
func (r *NumericRule) Validate(value string) error {
	if len(value) == 0 && r.AllowEmpty {
		return nil
	}

	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return fmt.Errorf("non-numeric character at position %d", i)
		}
	}
	return nil
}

// RegexRule validates the value against a regular expression.
type RegexRule struct {
	Description string // User-friendly error message
	regex       *regexp.Regexp
}

// NewRegexRule compiles pattern up front so the rule can be shared
// between goroutines.
func NewRegexRule(pattern, description string) *RegexRule {
	return &RegexRule{
		Description: description,
		regex:       regexp.MustCompile(pattern),
	}
}

// Name returns the rule name.
func (r *RegexRule) Name() string {
	return "regex"
}

// Validate checks the value against the compiled regex.
func (r *RegexRule) Validate(value string) error {
	if !r.regex.MatchString(value) {
		if r.Description != "" {
			return fmt.Errorf("%s", r.Description)
		}
		return fmt.Errorf("does not match pattern %s", r.regex)
	}
	return nil
}

// CheckDigitRule validates the trailing modulus-11 check digits used by
// CPF and CNPJ numbers. Weights holds one weight list per check digit.
type CheckDigitRule struct {
	RuleName string
	Weights  [][]int
}

// Name returns the rule name.
func (r *CheckDigitRule) Name() string {
	return r.RuleName
}

// Validate recomputes each check digit from the digits before it.
func (r *CheckDigitRule) Validate(value string) error {
	if !isDigits(value) {
		return fmt.Errorf("value must contain only digits")
	}
	if allSame(value) {
		return fmt.Errorf("repeated digits are not a valid document number")
	}

	for _, weights := range r.Weights {
		n := len(weights)
		if len(value) <= n {
			return fmt.Errorf("expected more than %d digits, got %d", n, len(value))
		}
		sum := 0
		for i, w := range weights {
			sum += int(value[i]-'0') * w
		}
		want := mod11(sum)
		if got := int(value[n] - '0'); got != want {
			return fmt.Errorf("check digit at position %d is %d, expected %d", n, got, want)
		}
	}
	return nil
}

// mod11 is the Receita Federal check digit: remainders 0 and 1 map to 0.
func mod11(sum int) int {
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}

func allSame(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

// CustomRule allows defining an arbitrary validation function.
type CustomRule struct {
	ValidateFunc func(string) error
	RuleName     string
}

// Name returns the custom rule name.
func (r *CustomRule) Name() string {
	return r.RuleName
}

// Validate executes the custom validation function.
func (r *CustomRule) Validate(value string) error {
	return r.ValidateFunc(value)
}

// PresenceRule validates that a value is not blank.
type PresenceRule struct{}

// Name returns the rule name.
func (r *PresenceRule) Name() string {
	return "presence"
}

// Validate rejects empty or whitespace-only values.
func (r *PresenceRule) Validate(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("value is required")
	}
	return nil
}

// --- PIX key rules ---

func descendingWeights(from, n int) []int {
	w := make([]int, n)
	for i := range w {
		w[i] = from - i
	}
	return w
}

// keyRules are compiled once and never modified, so ValidateKey is safe
// for concurrent use.
var keyRules = map[KeyType][]ValidationRule{
	KeyCPF: {
		&LengthRule{ExactLength: 11},
		&NumericRule{},
		&CheckDigitRule{RuleName: "cpf_check_digit", Weights: [][]int{
			descendingWeights(10, 9),
			descendingWeights(11, 10),
		}},
	},
	KeyCNPJ: {
		&LengthRule{ExactLength: 14},
		&NumericRule{},
		&CheckDigitRule{RuleName: "cnpj_check_digit", Weights: [][]int{
			{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2},
			{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2},
		}},
	},
	KeyEmail: {
		&LengthRule{MaxLength: 77},
		NewRegexRule(`^[a-zA-Z0-9.!#$%&'*+/=?^_{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`, "malformed e-mail address"),
	},
	KeyPhone: {
		NewRegexRule(`^\+55[1-9]{2}\d{8,9}$`, "phone must be +55, a two digit area code and 8 or 9 digits"),
	},
	KeyEVP: {
		&LengthRule{ExactLength: 36},
		&CustomRule{RuleName: "uuid", ValidateFunc: func(s string) error {
			_, err := uuid.Parse(s)
			return err
		}},
	},
}

// ValidateKey checks that key is a well-formed PIX key: valid CPF/CNPJ
// check digits, a plausible e-mail, a +55 phone number or a random key.
// Encode does not call it; callers should run it before encoding.
func ValidateKey(key string) error {
	if err := (&PresenceRule{}).Validate(key); err != nil {
		return &ValidationError{Field: "key", Rule: "presence", Message: err.Error()}
	}

	kt := Classify(key)
	if kt == KeyUnknown {
		return &ValidationError{
			Field:   "key",
			Rule:    "type",
			Message: "not a CPF, CNPJ, e-mail, +55 phone or random key",
		}
	}

	for _, rule := range keyRules[kt] {
		if err := rule.Validate(key); err != nil {
			return &ValidationError{Field: "key", Rule: rule.Name(), Message: err.Error()}
		}
	}
	return nil
}

// Validate checks the request the way a careful caller should before
// calling Encode.
func (r Request) Validate() error {
	if err := ValidateKey(r.Key); err != nil {
		return err
	}

	presence := &PresenceRule{}
	if err := presence.Validate(r.MerchantName); err != nil {
		return &ValidationError{Field: "merchant_name", Rule: presence.Name(), Message: err.Error()}
	}
	if err := presence.Validate(r.MerchantCity); err != nil {
		return &ValidationError{Field: "merchant_city", Rule: presence.Name(), Message: err.Error()}
	}

	if r.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Rule: "range", Message: "amount must not be negative"}
	}
	if r.Amount.GreaterThan(maxAmount) {
		return &ValidationError{Field: "amount", Rule: "range", Message: "amount does not fit in 13 characters"}
	}
	return nil
}

// maxAmount is the largest value whose 2-decimal rendering fits tag 54.
var maxAmount = decimal.RequireFromString("9999999999.99")
