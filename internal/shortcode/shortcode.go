// Package shortcode generates short codes for URLs by base62-encoding the
// database row ID, left-padded to a minimum length.
package shortcode

import (
	"fmt"
	"math/rand"
	"strings"
)

// alphabet is the base62 character set, lowercase letters first so codes for
// small IDs read as plain words.
const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const base = uint64(len(alphabet))

// Encode converts a non-negative integer to its base62 representation.
func Encode(num uint64) string {
	if num == 0 {
		return string(alphabet[0])
	}

	var b strings.Builder
	for num > 0 {
		rem := num % base
		b.WriteByte(alphabet[rem])
		num /= base
	}

	// Digits were emitted least significant first.
	encoded := []byte(b.String())
	for i, j := 0, len(encoded)-1; i < j; i, j = i+1, j-1 {
		encoded[i], encoded[j] = encoded[j], encoded[i]
	}
	return string(encoded)
}

// Decode converts a base62 string back to the integer it encodes.
func Decode(code string) (uint64, error) {
	var num uint64
	for _, c := range code {
		idx := strings.IndexRune(alphabet, c)
		if idx < 0 {
			return 0, fmt.Errorf("shortcode: invalid character %q", c)
		}
		num = num*base + uint64(idx)
	}
	return num, nil
}

// Generator produces short codes of a minimum length.
type Generator struct {
	minLength int
}

// NewGenerator creates a generator padding codes to minLength characters.
func NewGenerator(minLength int) *Generator {
	if minLength < 1 {
		minLength = 1
	}
	return &Generator{minLength: minLength}
}

// FromID generates a short code from a database ID, left-padded with the
// zero character ("a") up to the minimum length.
func (g *Generator) FromID(id uint64) string {
	encoded := Encode(id)
	if len(encoded) < g.minLength {
		encoded = strings.Repeat(string(alphabet[0]), g.minLength-len(encoded)) + encoded
	}
	return encoded
}

// WithRetry appends an encoded retry counter to the base code, for resolving
// the rare collision against an existing custom alias.
func (g *Generator) WithRetry(id uint64, attempt int) string {
	code := g.FromID(id)
	if attempt > 0 {
		code += Encode(uint64(attempt))
	}
	return code
}

// Random generates a random code of the given length, usable as a fallback
// when ID-derived codes keep colliding.
func (g *Generator) Random(length int) string {
	if length < 1 {
		length = g.minLength
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}
