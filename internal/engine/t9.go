package engine

import (
	"strings"
	"unicode"
)

// keypad maps 'a'..'z' to the ITU E.161 telephone keypad digit.
var keypad = [26]byte{
	'2', '2', '2',      // abc
	'3', '3', '3',      // def
	'4', '4', '4',      // ghi
	'5', '5', '5',      // jkl
	'6', '6', '6',      // mno
	'7', '7', '7', '7', // pqrs
	'8', '8', '8',      // tuv
	'9', '9', '9', '9', // wxyz
}

// t9Digit returns the keypad digit for r and whether r is a T9 letter.
// Only a..z (case-insensitive) map; everything else is dropped.
func t9Digit(r rune) (byte, bool) {
	r = unicode.ToLower(r)
	if r < 'a' || r > 'z' {
		return 0, false
	}
	return keypad[r-'a'], true
}

// Encode returns the numeric keypad encoding of name.
// Non-letters (spaces, punctuation, digits, accented letters) are dropped,
// so "O'Brien" encodes to "627436".
func Encode(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if d, ok := t9Digit(r); ok {
			b.WriteByte(d)
		}
	}
	return b.String()
}

// Matches reports whether the T9 encoding of name contains digits as a
// contiguous substring. Empty digits always match.
func Matches(name, digits string) bool {
	return strings.Contains(Encode(name), digits)
}
