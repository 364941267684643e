// Package textnorm turns stored diary content back into its display form
// before it is matched: emoji placeholder escapes are decoded and the result
// is brought to Unicode NFC so composed and decomposed accents compare equal.
package textnorm

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Placeholder escapes have the form \u{1F600}: a backslash, 'u', and one to
// eight hex digits between braces.
const (
	escapePrefix = `\u{`
	maxHexDigits = 8
)

// Content decodes placeholder escapes and normalizes s to NFC.
func Content(s string) string {
	return norm.NFC.String(DecodeEscapes(s))
}

// DecodeEscapes replaces every well-formed placeholder escape with the rune
// it names. Malformed or out-of-range escapes are left untouched.
func DecodeEscapes(s string) string {
	if !strings.Contains(s, escapePrefix) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for {
		i := strings.Index(s, escapePrefix)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		rest := s[i+len(escapePrefix):]

		end := strings.IndexByte(rest, '}')
		if end < 1 || end > maxHexDigits {
			b.WriteString(escapePrefix)
			s = rest
			continue
		}

		code, err := strconv.ParseUint(rest[:end], 16, 32)
		r := rune(code)
		if err != nil || !utf8.ValidRune(r) {
			b.WriteString(escapePrefix)
			s = rest
			continue
		}
		b.WriteRune(r)
		s = rest[end+1:]
	}
}
