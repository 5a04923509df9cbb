package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// EscapeJS escapes s for embedding inside a JavaScript string literal that
// itself lives in an HTML page. Every character that could end the literal
// or the surrounding script element is written as a \uXXXX sequence.
//
// Existing \uXXXX sequences are copied through unchanged, which makes the
// function idempotent: EscapeJS(EscapeJS(s)) == EscapeJS(s). The price is
// that input which already contains a \uXXXX sequence is decoded by the
// browser as the escaped character rather than as the six literal bytes.
func EscapeJS(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		if s[i] == '\\' && isUnicodeEscape(s[i:]) {
			b.WriteString(s[i : i+6])
			i += 6
			continue
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		if r != utf8.RuneError && needsEscape(r) {
			fmt.Fprintf(&b, `\u%04X`, r)
		} else {
			b.WriteString(s[i : i+size])
		}
		i += size
	}

	return b.String()
}

func needsEscape(r rune) bool {
	if r < 0x20 || r == 0x7f {
		return true
	}
	switch r {
	case '\\', '"', '\'', '`', '<', '>', '&', '=', '/', '\u2028', '\u2029':
		return true
	}
	return false
}

func isUnicodeEscape(s string) bool {
	if len(s) < 6 || s[0] != '\\' || s[1] != 'u' {
		return false
	}
	for i := 2; i < 6; i++ {
		if !isHex(s[i]) {
			return false
		}
	}
	return true
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
