package pix

import (
	"strings"

	"github.com/sigurn/crc16"
)

// crcTable is CRC-16/CCITT-FALSE: poly 0x1021, init 0xFFFF, MSB first,
// no final XOR. It is built once and only read afterwards.
var crcTable = crc16.MakeTable(crc16.CRC16_CCITT_FALSE)

// CRC16 returns the PIX checksum of s as 4 uppercase hex digits.
func CRC16(s string) string {
	return encodeHex16(CRC16Value(s))
}

// CRC16Value returns the raw 16-bit checksum of s. Every UTF-16 code
// unit contributes its low byte.
func CRC16Value(s string) uint16 {
	return checksumUnits(units(s))
}

func checksumUnits(u []uint16) uint16 {
	buf := getBuffer()
	for _, c := range u {
		buf = append(buf, byte(c))
	}
	sum := crc16.Checksum(buf, crcTable)
	putBuffer(buf)
	return sum
}

// VerifyCRC reports whether the last 4 characters of code are the
// checksum of everything before them.
func VerifyCRC(code string) bool {
	u := units(strings.TrimSpace(code))
	if len(u) < crcLength {
		return false
	}
	body, trailer := u[:len(u)-crcLength], fromUnits(u[len(u)-crcLength:])
	return strings.EqualFold(encodeHex16(checksumUnits(body)), trailer)
}
