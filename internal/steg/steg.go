// Package steg reversibly hides a payload inside invisible characters so
// it can ride along in user-visible text. Each payload byte is split into
// two nibbles and every nibble maps to one of sixteen Unicode variation
// selectors (U+FE00..U+FE0F), which render as nothing in chat clients.
package steg

import (
	"fmt"
	"strings"
)

// alphabetBase is the first of the 16 reserved invisible code points.
const alphabetBase rune = 0xFE00

// alphabetSize is the number of reserved code points (one per nibble value).
const alphabetSize = 16

// Encode returns the invisible encoding of payload. The result has one
// rune per nibble, so its rune length is twice the payload byte length.
// Append it after visible text; Decode recovers the payload.
func Encode(payload string) string {
	var b strings.Builder
	b.Grow(len(payload) * 2 * 3) // each selector is 3 bytes in UTF-8
	for i := 0; i < len(payload); i++ {
		c := payload[i]
		b.WriteRune(alphabetBase + rune(c>>4))
		b.WriteRune(alphabetBase + rune(c&0x0F))
	}
	return b.String()
}

// Index returns the byte index of the first reserved code point in text,
// or -1 if none is present. A negative result is the caller's "no hidden
// payload" signal; it is not an error.
func Index(text string) int {
	return strings.IndexFunc(text, func(r rune) bool {
		return r >= alphabetBase && r < alphabetBase+alphabetSize
	})
}

// Decode extracts the payload hidden in text. The suffix starting at the
// first reserved code point is treated as the encoded tail; every rune in
// it must belong to the alphabet and the nibble count must be even.
// Decode must only be called on text known to carry a payload — use Index
// to test for presence first.
func Decode(text string) (string, error) {
	start := Index(text)
	if start < 0 {
		return "", fmt.Errorf("steg: no hidden payload in text")
	}

	var nibbles []byte
	for _, r := range text[start:] {
		if r < alphabetBase || r >= alphabetBase+alphabetSize {
			return "", fmt.Errorf("steg: invalid code point %U in encoded tail", r)
		}
		nibbles = append(nibbles, byte(r-alphabetBase))
	}
	if len(nibbles)%2 != 0 {
		return "", fmt.Errorf("steg: odd nibble count %d in encoded tail", len(nibbles))
	}

	out := make([]byte, 0, len(nibbles)/2)
	for i := 0; i < len(nibbles); i += 2 {
		out = append(out, nibbles[i]<<4|nibbles[i+1])
	}
	return string(out), nil
}

// Strip returns text with any hidden payload suffix removed.
func Strip(text string) string {
	if i := Index(text); i >= 0 {
		return text[:i]
	}
	return text
}
