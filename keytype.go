package pix

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// KeyType is the kind of PIX key ("chave") found in a code.
type KeyType int

const (
	KeyUnknown KeyType = iota
	KeyCPF
	KeyCNPJ
	KeyEmail
	KeyPhone
	KeyEVP // random key, a UUID
)

var keyTypeLabels = [...]string{
	KeyUnknown: "Desconhecido",
	KeyCPF:     "CPF",
	KeyCNPJ:    "CNPJ",
	KeyEmail:   "E-mail",
	KeyPhone:   "Telefone",
	KeyEVP:     "Chave Aleatória (EVP)",
}

var keyTypeNames = [...]string{
	KeyUnknown: "unknown",
	KeyCPF:     "cpf",
	KeyCNPJ:    "cnpj",
	KeyEmail:   "email",
	KeyPhone:   "phone",
	KeyEVP:     "evp",
}

// String returns the label shown to users, e.g. "Chave Aleatória (EVP)".
func (k KeyType) String() string {
	if k < 0 || int(k) >= len(keyTypeLabels) {
		return keyTypeLabels[KeyUnknown]
	}
	return keyTypeLabels[k]
}

// Name returns the short machine name, e.g. "evp".
func (k KeyType) Name() string {
	if k < 0 || int(k) >= len(keyTypeNames) {
		return keyTypeNames[KeyUnknown]
	}
	return keyTypeNames[k]
}

// MarshalText encodes the short name.
func (k KeyType) MarshalText() ([]byte, error) {
	return []byte(k.Name()), nil
}

// UnmarshalText accepts the short name.
func (k *KeyType) UnmarshalText(text []byte) error {
	s := strings.ToLower(string(text))
	for i, name := range keyTypeNames {
		if name == s {
			*k = KeyType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown key type %q", text)
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+55\d{10,11}$`)
)

// Classify guesses the key type from its shape alone. The first match
// wins: 11 digits, 14 digits, e-mail, +55 phone, canonical UUID.
func Classify(key string) KeyType {
	switch {
	case len(key) == 11 && isDigits(key):
		return KeyCPF
	case len(key) == 14 && isDigits(key):
		return KeyCNPJ
	case emailPattern.MatchString(key):
		return KeyEmail
	case phonePattern.MatchString(key):
		return KeyPhone
	case isCanonicalUUID(key):
		return KeyEVP
	}
	return KeyUnknown
}

// isCanonicalUUID accepts only the 8-4-4-4-12 form; uuid.Parse also takes
// URN, braced and undashed forms, which are not valid PIX keys.
func isCanonicalUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
