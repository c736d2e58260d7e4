// Package escape implements the legacy percent encoding used for free-text
// antiraid settings. Unreserved characters pass through, bytes below 0x100
// become %XX and every other UTF-16 code unit becomes %uXXXX.
package escape

import (
	"strings"
	"unicode/utf16"
)

const hexDigits = "0123456789ABCDEF"

func unreserved(c uint16) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c >= 0x80:
		return false
	}
	return strings.IndexByte("@*_+-./", byte(c)) >= 0
}

// Escape encodes s so that it only contains unreserved ASCII and escapes.
func Escape(s string) string {
	units := utf16.Encode([]rune(s))

	var b strings.Builder
	b.Grow(len(units))
	for _, c := range units {
		switch {
		case unreserved(c):
			b.WriteByte(byte(c))
		case c < 0x100:
			b.WriteByte('%')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0xF])
		default:
			b.WriteString("%u")
			b.WriteByte(hexDigits[c>>12])
			b.WriteByte(hexDigits[(c>>8)&0xF])
			b.WriteByte(hexDigits[(c>>4)&0xF])
			b.WriteByte(hexDigits[c&0xF])
		}
	}
	return b.String()
}

// Unescape reverses Escape. Malformed escape sequences are kept literally.
func Unescape(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}

	units := utf16.Encode([]rune(s))
	out := make([]uint16, 0, len(units))
	for i := 0; i < len(units); i++ {
		c := units[i]
		if c == '%' {
			if i+5 < len(units) && units[i+1] == 'u' {
				if v, ok := parseHex(units[i+2 : i+6]); ok {
					out = append(out, v)
					i += 5
					continue
				}
			}
			if i+2 < len(units) {
				if v, ok := parseHex(units[i+1 : i+3]); ok {
					out = append(out, v)
					i += 2
					continue
				}
			}
		}
		out = append(out, c)
	}
	return string(utf16.Decode(out))
}

func parseHex(units []uint16) (uint16, bool) {
	var v uint16
	for _, c := range units {
		var d uint16
		switch {
		case c >= '0' && c <= '9':
			d = c - '0'
		case c >= 'a' && c <= 'f':
			d = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			d = c - 'A' + 10
		default:
			return 0, false
		}
		v = v<<4 | d
	}
	return v, true
}
