package nibble_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nibblekv/ptrie/pkg/nibble"
)

func TestFromByte(t *testing.T) {
	assert.Equal(t, nibble.Nibble(0xa), nibble.FromByte(0xfa))
}

func TestLess(t *testing.T) {
	assert.True(t, nibble.Nibble(1).Less(nibble.Nibble(2)))
	assert.False(t, nibble.Nibble(2).Less(nibble.Nibble(2)))
}

func TestBytesToNibbles(t *testing.T) {
	got := nibble.BytesToNibbles([]byte{0x12, 0x34})
	assert.Equal(t, []nibble.Nibble{1, 2, 3, 4}, got)
}

func TestByte(t *testing.T) {
	assert.Equal(t, byte(7), nibble.Nibble(7).Byte())
}
