package field

import (
	"fmt"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// Point is an element of the prime-order group G (BLS12-381's G1). Scalar
// multiplication takes an Element from the same curve's scalar field, so
// Point and Element are always used together, as spec.md §3 requires.
type Point struct {
	inner bls12381.G1Jac
}

// Identity returns 0_G, computed as 0 times the curve's generator so the
// result matches whatever point-at-infinity representation the underlying
// library uses internally.
func Identity() Point {
	_, _, g1Aff, _ := bls12381.Generators()
	var p Point
	p.inner.ScalarMultiplication(&g1Aff, new(big.Int))
	return p
}

// Generator returns the group's canonical public generator. Group-PRG
// generators (spec.md §4.2) do not come from this one: they are derived
// independently by HashToGroup.
func Generator() Point {
	_, _, g1Aff, _ := bls12381.Generators()
	var p Point
	p.inner.FromAffine(&g1Aff)
	return p
}

// Add returns a + b.
func (a Point) Add(b Point) Point {
	out := a
	out.inner.AddAssign(&b.inner)
	return out
}

// Sub returns a - b.
func (a Point) Sub(b Point) Point {
	return a.Add(b.Neg())
}

// Neg returns -a.
func (a Point) Neg() Point {
	var out Point
	out.inner.Neg(&a.inner)
	return out
}

// ScalarMul returns s*a.
func (a Point) ScalarMul(s Element) Point {
	var affine bls12381.G1Affine
	affine.FromJacobian(&a.inner)
	var scalar big.Int
	s.inner.BigInt(&scalar)
	var out Point
	out.inner.ScalarMultiplication(&affine, &scalar)
	return out
}

// Equal reports group equality.
func (a Point) Equal(b Point) bool {
	var affA, affB bls12381.G1Affine
	affA.FromJacobian(&a.inner)
	affB.FromJacobian(&b.inner)
	return affA.Equal(&affB)
}

// IsIdentity reports whether a is 0_G.
func (a Point) IsIdentity() bool {
	var aff bls12381.G1Affine
	aff.FromJacobian(&a.inner)
	return aff.IsInfinity()
}

// Bytes returns the canonical compressed encoding: equal group elements
// always serialize identically, as spec.md §3 requires.
func (a Point) Bytes() []byte {
	var aff bls12381.G1Affine
	aff.FromJacobian(&a.inner)
	enc := aff.Bytes()
	return enc[:]
}

// PointFromBytes decodes the canonical encoding produced by Bytes. It is
// the inverse Bytes needs so group-PRG outputs (spec.md §4.2) can round-
// trip through the dpf.Key wire encoding in dpf/groupmultikey.
func PointFromBytes(b []byte) (Point, error) {
	var aff bls12381.G1Affine
	if _, err := aff.SetBytes(b); err != nil {
		return Point{}, fmt.Errorf("field: decoding point: %w", err)
	}
	var p Point
	p.inner.FromAffine(&aff)
	return p, nil
}

// HashToGroup deterministically maps arbitrary bytes to a group element. It
// is the public map used to derive the group-PRG's independent generators
// g_1..g_L (spec.md §4.2).
func HashToGroup(data []byte) Point {
	aff, err := bls12381.HashToG1(data, []byte("spectrum-core-hash-to-curve"))
	if err != nil {
		panic(fmt.Sprintf("field: hash to curve failed: %v", err))
	}
	var p Point
	p.inner.FromAffine(&aff)
	return p
}
