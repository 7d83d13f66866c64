// Package nibble provides the minimal 4-bit value type that a radix-16 trie
// is keyed by: an ordered value in [0, 15] and byte conversions, nothing
// else.
package nibble

import "fmt"

// Nibble is a 4-bit value, 0 through 15 inclusive.
type Nibble uint8

// Max is the largest valid Nibble value.
const Max Nibble = 15

// NumValues is the number of distinct Nibble values, and therefore the fan-out
// of a radix-16 trie node.
const NumValues = 16

// FromByte converts a low nibble out of b, discarding the high nibble.
func FromByte(b byte) Nibble { return Nibble(b & 0x0f) }

// Byte widens n back out to a byte.
func (n Nibble) Byte() byte { return byte(n) }

// Less reports whether n sorts before other, giving Nibble its total order.
func (n Nibble) Less(other Nibble) bool { return n < other }

// BytesToNibbles splits each byte of bs into two nibbles, high nibble first.
//
// This is the conventional encoding for a Merkle-Patricia trie key: every
// byte of an external key contributes two trie levels.
func BytesToNibbles(bs []byte) []Nibble {
	out := make([]Nibble, 0, len(bs)*2)

	for _, b := range bs {
		out = append(out, Nibble(b>>4), Nibble(b&0x0f))
	}

	return out
}

// String implements fmt.Stringer.
func (n Nibble) String() string { return fmt.Sprintf("%x", byte(n)) }
