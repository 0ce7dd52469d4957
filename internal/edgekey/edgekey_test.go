package edgekey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyIsCommutative(t *testing.T) {
	pairs := [][2]string{
		{"Boa Viagem", "Pina"},
		{"a", "a"},
		{"", "x"},
		{"10", "9"},
		{"Torre", "Madalena"},
	}
	for _, p := range pairs {
		assert.Equal(t, Key(p[0], p[1]), Key(p[1], p[0]), "pair %q", p)
	}
}

func TestKeyUsesLexicalOrder(t *testing.T) {
	// "10" < "9" lexically even though 10 > 9 numerically.
	assert.Equal(t, "10||9", Key("9", "10"))
	assert.Equal(t, "Madalena||Torre", Key("Torre", "Madalena"))
}

func TestSplit(t *testing.T) {
	a, b, ok := Split(Key("Pina", "Boa Viagem"))
	require.True(t, ok)
	assert.Equal(t, "Boa Viagem", a)
	assert.Equal(t, "Pina", b)

	_, _, ok = Split("no-separator")
	assert.False(t, ok)
}
