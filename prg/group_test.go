package prg

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"spectrum-core/field"
)

func TestGroupEvalSeedHomomorphism(t *testing.T) {
	generators := Generators([]byte("rho"), 3)
	s1 := NewGroupSeed()
	s2 := NewGroupSeed()

	combined := GroupEval(CombineSeeds(s1, s2), generators)
	pointwise := CombineOutputs(GroupEval(s1, generators), GroupEval(s2, generators))

	assert.Len(t, combined, 3)
	for i := range combined {
		assert.True(t, combined[i].Equal(pointwise[i]))
	}
}

func TestNullGroupSeedIsIdentity(t *testing.T) {
	generators := Generators([]byte("rho"), 2)
	out := GroupEval(NullGroupSeed(), generators)
	for _, p := range out {
		assert.True(t, p.IsIdentity())
	}
}

func TestGeneratorsDeterministic(t *testing.T) {
	a := Generators([]byte("rho"), 4)
	b := Generators([]byte("rho"), 4)
	for i := range a {
		assert.True(t, a[i].Equal(b[i]))
	}
}

func TestCombineSeedsMatchesFieldAdd(t *testing.T) {
	s1 := field.Random()
	s2 := field.Random()
	assert.True(t, CombineSeeds(s1, s2).Equal(s1.Add(s2)))
}
