package pix

import (
	"unicode"
	"unicode/utf16"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const hexTableUpper = "0123456789ABCDEF"

// encodeHex16 renders v as 4 uppercase hex digits.
func encodeHex16(v uint16) string {
	var b [4]byte
	b[0] = hexTableUpper[v>>12]
	b[1] = hexTableUpper[(v>>8)&0x0f]
	b[2] = hexTableUpper[(v>>4)&0x0f]
	b[3] = hexTableUpper[v&0x0f]
	return string(b[:])
}

// units returns s as UTF-16 code units. All lengths in a PIX code are
// counted this way.
func units(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

// unitLen is len(units(s)) without allocating.
func unitLen(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// fromUnits converts code units back to a Go string.
func fromUnits(u []uint16) string {
	return string(utf16.Decode(u))
}

// truncate keeps the first max UTF-16 code units of s. A surrogate pair
// straddling the limit is dropped whole.
func truncate(s string, max int) string {
	n := 0
	for i, r := range s {
		w := utf16.RuneLen(r)
		if n+w > max {
			return s[:i]
		}
		n += w
	}
	return s
}

// writeLength appends n as two zero-padded decimal digits.
func writeLength(buf []byte, n int) []byte {
	return append(buf, byte('0'+(n/10)%10), byte('0'+n%10))
}

// parseLength reads two decimal digits. ok is false on any non-digit.
func parseLength(hi, lo uint16) (int, bool) {
	if hi < '0' || hi > '9' || lo < '0' || lo > '9' {
		return 0, false
	}
	return int(hi-'0')*10 + int(lo-'0'), true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// foldASCII strips combining marks after canonical decomposition, so
// "São Paulo" becomes "Sao Paulo".
func foldASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
