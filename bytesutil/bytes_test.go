package bytesutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXORSelfInverse(t *testing.T) {
	a := Random(16)
	b := Random(16)

	x, err := a.XOR(b)
	assert.NoError(t, err)
	back, err := x.XOR(b)
	assert.NoError(t, err)
	assert.True(t, back.Equal(a))
}

func TestXORLengthMismatch(t *testing.T) {
	_, err := Zero(4).XOR(Zero(5))
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestXORAll(t *testing.T) {
	a := Random(8)
	b := Random(8)
	c := Random(8)

	ab, err := a.XOR(b)
	assert.NoError(t, err)
	abc, err := ab.XOR(c)
	assert.NoError(t, err)

	got, err := XORAll(a, b, c)
	assert.NoError(t, err)
	assert.True(t, got.Equal(abc))
}

func TestEqual(t *testing.T) {
	a := Random(16)
	assert.True(t, a.Equal(a.Clone()))
	assert.False(t, a.Equal(Random(16)))
	assert.False(t, a.Equal(Random(8)))
}

func TestIsZero(t *testing.T) {
	assert.True(t, Zero(16).IsZero())
	nonzero := Zero(16)
	nonzero[3] = 1
	assert.False(t, nonzero.IsZero())
}
