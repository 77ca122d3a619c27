package prg

import (
	"encoding/binary"

	"spectrum-core/field"
)

// GroupSeed is a seed for the seed-homomorphic group PRG: a scalar in F_p.
type GroupSeed = field.Element

// GroupOutput is the pseudorandom output of the group PRG: one group element
// per generator.
type GroupOutput []field.Point

// NewGroupSeed draws a fresh random group-PRG seed.
func NewGroupSeed() GroupSeed {
	return field.Random()
}

// NullGroupSeed returns the identity seed (0 in F_p), combine_seeds'
// identity element.
func NullGroupSeed() GroupSeed {
	return field.Zero()
}

// Generators deterministically derives l independent generators
// g_1..g_l from rho via hash_to_group(rho || i), as spec.md §4.2 requires:
// the generators must be public, fixed, and reusable across evaluations of
// the same PRG instance.
func Generators(rho []byte, l int) []field.Point {
	out := make([]field.Point, l)
	for i := 0; i < l; i++ {
		buf := make([]byte, len(rho)+8)
		copy(buf, rho)
		binary.BigEndian.PutUint64(buf[len(rho):], uint64(i))
		out[i] = field.HashToGroup(buf)
	}
	return out
}

// GroupEval evaluates the seed-homomorphic PRG: eval(s) = [s*g_1, ..., s*g_l].
// Because scalar multiplication distributes over scalar addition,
// eval(s1+s2) = eval(s1) (+) eval(s2) pointwise, the homomorphism spec.md
// §4.2/§8 property 3 requires.
func GroupEval(seed GroupSeed, generators []field.Point) GroupOutput {
	out := make(GroupOutput, len(generators))
	for i, g := range generators {
		out[i] = g.ScalarMul(seed)
	}
	return out
}

// CombineSeeds sums group-PRG seeds in F_p.
func CombineSeeds(seeds ...GroupSeed) GroupSeed {
	sum := field.Zero()
	for _, s := range seeds {
		sum = sum.Add(s)
	}
	return sum
}

// CombineOutputs pointwise-adds group-PRG outputs of equal length. Given
// outputs of independently drawn seeds, CombineOutputs(eval(s1), eval(s2))
// equals GroupEval(CombineSeeds(s1, s2), generators).
func CombineOutputs(outputs ...GroupOutput) GroupOutput {
	if len(outputs) == 0 {
		return nil
	}
	l := len(outputs[0])
	out := make(GroupOutput, l)
	for i := 0; i < l; i++ {
		acc := field.Identity()
		for _, o := range outputs {
			acc = acc.Add(o[i])
		}
		out[i] = acc
	}
	return out
}
