// Package strutil holds the path and string helpers shared by the parser,
// the navigation code, and the trash subsystem. Every function is pure:
// strings in, strings out, no global state.
package strutil

import (
	"errors"
	"strings"
)

// ErrInvalidEncoding reports a malformed percent sequence found while
// decoding. The decoder still returns its best-effort output.
var ErrInvalidEncoding = errors.New("invalid percent encoding")

// metaChars are the shell metacharacters Escape prefixes with a backslash.
const metaChars = " \t'\"\\*?[]()$&;|<>`#~"

// TildeExpand replaces a leading "~" with home when the tilde is the whole
// string or is followed by a path separator. Anything else is returned
// unchanged.
func TildeExpand(s, home string) string {
	if home == "" || s == "" || s[0] != '~' {
		return s
	}
	if len(s) == 1 {
		return home
	}
	if s[1] == '/' {
		return home + s[1:]
	}
	return s
}

// Dequote collapses backslash escapes and strips unescaped quotes. A quote
// opens a span in which the other quote character and whitespace are
// literal; inside single quotes backslashes are literal too.
func Dequote(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && quote != '\'' && i+1 < len(s):
			i++
			b.WriteByte(s[i])
		case quote == 0 && (c == '\'' || c == '"'):
			quote = c
		case quote == c:
			quote = 0
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Escape prefixes every shell metacharacter with a backslash so the result
// survives tokenization as a single field. Dequote(Escape(s)) == s for any
// s free of unescaped quotes.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(metaChars, s[i]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

const upperhex = "0123456789ABCDEF"

func isUnreserved(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_' || c == '.' || c == '~' || c == '/':
		return true
	}
	return false
}

// URLEncode percent-encodes every byte outside the RFC 2396 unreserved set,
// keeping '/' so encoded paths stay readable. Used for trash-info files.
func URLEncode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0xf])
	}
	return b.String()
}

func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// URLDecode reverses URLEncode. Malformed sequences are copied through
// verbatim and reported with ErrInvalidEncoding; the caller decides whether
// the best-effort result is usable.
func URLDecode(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))
	var err error
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			b.WriteByte(s[i])
			continue
		}
		if i+2 < len(s) {
			hi, ok1 := unhex(s[i+1])
			lo, ok2 := unhex(s[i+2])
			if ok1 && ok2 {
				b.WriteByte(hi<<4 | lo)
				i += 2
				continue
			}
		}
		err = ErrInvalidEncoding
		b.WriteByte(s[i])
	}
	return b.String(), err
}

// IsNumber reports whether s is a non-empty run of decimal digits.
func IsNumber(s string) bool {
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

// AtoiChecked parses a non-negative decimal integer, rejecting signs,
// non-digits and values that overflow int.
func AtoiChecked(s string) (int, error) {
	if !IsNumber(s) {
		return 0, errors.New("not a decimal number: " + s)
	}
	n := 0
	for i := 0; i < len(s); i++ {
		d := int(s[i] - '0')
		if n > (int(^uint(0)>>1)-d)/10 {
			return 0, errors.New("number overflows int: " + s)
		}
		n = n*10 + d
	}
	return n, nil
}
