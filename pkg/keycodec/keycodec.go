// Package keycodec makes arbitrary strings safe to use as single Realtime
// Database path segments and reverses that transform.
//
// The database forbids the characters . $ # [ ] / inside a key. Encode replaces
// each of them with a %XX escape holding the character code in uppercase hex;
// Decode turns every %XX escape (hex digits in either case) back into the
// character it names. Other characters, including a literal %, pass through
// Encode untouched, so Decode(Encode(s)) == s only when s has no %XX-shaped
// substrings of its own.
package keycodec

import (
	"strings"
)

// reserved lists the characters that may not appear in a raw key.
const reserved = ".$#[]/"

const upperHex = "0123456789ABCDEF"

// Encode escapes every reserved character in key. It never fails.
func Encode(key string) string {
	if !strings.ContainsAny(key, reserved) {
		return key
	}

	var b strings.Builder
	b.Grow(len(key) + 8)
	for i := 0; i < len(key); i++ {
		c := key[i]
		if strings.IndexByte(reserved, c) >= 0 {
			b.WriteByte('%')
			b.WriteByte(upperHex[c>>4])
			b.WriteByte(upperHex[c&0x0F])
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Decode replaces each %XX escape with the character whose code point is XX.
// A % not followed by two hex digits is kept as is.
func Decode(key string) string {
	if !strings.Contains(key, "%") {
		return key
	}

	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c == '%' && i+2 < len(key) {
			hi, okHi := unhex(key[i+1])
			lo, okLo := unhex(key[i+2])
			if okHi && okLo {
				b.WriteRune(rune(hi<<4 | lo))
				i += 2
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Join encodes each key and joins the results into a slash-delimited path.
func Join(keys ...string) string {
	encoded := make([]string, len(keys))
	for i, k := range keys {
		encoded[i] = Encode(k)
	}
	return strings.Join(encoded, "/")
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
