package pix

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/sigurn/crc16"
	"github.com/stretchr/testify/assert"
)

func TestCRC16(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"check value", "123456789", "29B1"},
		{"empty", "", "FFFF"},
		{"static code body", "00020101021226580014BR.GOV.BCB.PIX0136123e4567-e12b-12d1-a456-4266141740005204000053039865802BR5913FULANO DE TAL6008BRASILIA6304", "BAA5"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CRC16(tc.input)
			assert.Equal(t, tc.want, got)
			assert.Len(t, got, 4)
		})
	}
}

func TestCRC16DiffersFromXModem(t *testing.T) {
	// XMODEM shares the polynomial but starts from zero.
	xmodem := crc16.Checksum([]byte("123456789"), crc16.MakeTable(crc16.CRC16_XMODEM))
	assert.Equal(t, uint16(0x31C3), xmodem)
	assert.Equal(t, uint16(0x29B1), CRC16Value("123456789"))
}

func TestCRC16Deterministic(t *testing.T) {
	s := "5802BR5913FULANO DE TAL"
	assert.Equal(t, CRC16(s), CRC16(s))
	assert.NotEqual(t, CRC16(s), CRC16(s+"X"))
}

func TestCRC16UsesLowByteOfCodeUnits(t *testing.T) {
	// 'ã' is U+00E3, one code unit whose low byte is 0xE3.
	assert.Equal(t, encodeHex16(crc16.Checksum([]byte{'S', 0xE3, 'o'}, crcTable)), CRC16("São"))
}

func TestVerifyCRC(t *testing.T) {
	code := "00020101021226580014BR.GOV.BCB.PIX0136123e4567-e12b-12d1-a456-4266141740005204000053039865802BR5913FULANO DE TAL6008BRASILIA6304BAA5"

	assert.True(t, VerifyCRC(code))
	assert.True(t, VerifyCRC(code[:len(code)-4]+"baa5"))
	assert.False(t, VerifyCRC(code[:len(code)-4]+"BAA6"))
	assert.False(t, VerifyCRC("AB"))
}

// bitwiseCRC is the register loop written out bit by bit: poly 0x1021,
// init 0xFFFF, MSB first, no final xor, low byte of each UTF-16 unit.
func bitwiseCRC(s string) uint16 {
	crc := uint16(0xFFFF)
	for _, u := range utf16.Encode([]rune(s)) {
		crc ^= uint16(byte(u)) << 8
		for range 8 {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

func TestCRC16MatchesBitwiseLoop(t *testing.T) {
	inputs := []string{
		"",
		"123456789",
		"SÃO PAULO",
		"Açúcar & Café",
		fulanoWithLabel[:len(fulanoWithLabel)-4],
	}

	rng := rand.New(rand.NewSource(1))
	for range 200 {
		var b strings.Builder
		for n := rng.Intn(80); n > 0; n-- {
			b.WriteRune(rune(rng.Intn(0x100)))
		}
		inputs = append(inputs, b.String())
	}

	for _, in := range inputs {
		assert.Equal(t, bitwiseCRC(in), CRC16Value(in), "input %q", in)
	}
}
