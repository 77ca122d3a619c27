package prg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAESEvalDeterministic(t *testing.T) {
	seed := NewAESSeed()
	out1 := AESEval(seed, 64)
	out2 := AESEval(seed, 64)
	assert.Equal(t, out1, out2)
}

func TestAESEvalDistinctSeedsDiverge(t *testing.T) {
	s1 := NewAESSeed()
	s2 := NewAESSeed()
	assert.NotEqual(t, AESEval(s1, 32), AESEval(s2, 32))
}

func TestNullAESOutputIsZero(t *testing.T) {
	out := NullAESOutput(16)
	assert.Len(t, out, 16)
	for _, b := range out {
		assert.Zero(t, b)
	}
}

func TestRandomSeedLength(t *testing.T) {
	assert.Len(t, RandomSeed(), SeedLength)
}
