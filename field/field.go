// Package field implements the prime field F_p and prime-order group G that
// back the VDPF's proof shares and the multi-key DPF's seed-homomorphic PRG.
//
// Both are backed by the BLS12-381 curve from gnark-crypto: F_p is the
// curve's scalar field (package fr), and G is the curve's G1 group. This is
// the teacher's own primary dependency (github.com/consensys/gnark-crypto);
// see DESIGN.md for why the curve choice changed from secp256k1.
package field

import (
	"crypto/sha256"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Element is a field element of F_p, p the BLS12-381 scalar field order.
// Every exposed Element is reduced into [0, p), matching the invariant in
// spec.md §3.
type Element struct {
	inner fr.Element
}

// Zero returns the additive identity.
func Zero() Element {
	var e Element
	e.inner.SetZero()
	return e
}

// One returns the multiplicative identity.
func One() Element {
	var e Element
	e.inner.SetOne()
	return e
}

// Random draws a uniform field element.
func Random() Element {
	var e Element
	if _, err := e.inner.SetRandom(); err != nil {
		panic(err.Error())
	}
	return e
}

// FromUint64 embeds a small integer into the field.
func FromUint64(v uint64) Element {
	var e Element
	e.inner.SetUint64(v)
	return e
}

// Add returns a + b.
func (a Element) Add(b Element) Element {
	var out Element
	out.inner.Add(&a.inner, &b.inner)
	return out
}

// Sub returns a - b.
func (a Element) Sub(b Element) Element {
	var out Element
	out.inner.Sub(&a.inner, &b.inner)
	return out
}

// Mul returns a * b.
func (a Element) Mul(b Element) Element {
	var out Element
	out.inner.Mul(&a.inner, &b.inner)
	return out
}

// Inverse returns a^-1, computed by gnark-crypto's fr.Element.Inverse.
func (a Element) Inverse() Element {
	var out Element
	out.inner.Inverse(&a.inner)
	return out
}

// Neg returns -a.
func (a Element) Neg() Element {
	var out Element
	out.inner.Neg(&a.inner)
	return out
}

// IsZero reports whether a is the additive identity.
func (a Element) IsZero() bool {
	return a.inner.IsZero()
}

// Equal reports field equality.
func (a Element) Equal(b Element) bool {
	return a.inner.Equal(&b.inner)
}

// Bytes returns the canonical fixed-length big-endian encoding.
func (a Element) Bytes() []byte {
	b := a.inner.Bytes()
	return b[:]
}

// MarshalBinary implements encoding.BinaryMarshaler with the Bytes
// encoding, so an Element can travel inside gob-encoded messages.
func (a Element) MarshalBinary() ([]byte, error) {
	return a.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler via FromBytes.
func (a *Element) UnmarshalBinary(b []byte) error {
	e, err := FromBytes(b)
	if err != nil {
		return err
	}
	*a = e
	return nil
}

// FromBytes decodes the encoding produced by Bytes, reducing modulo p.
func FromBytes(b []byte) (Element, error) {
	if len(b) == 0 {
		return Element{}, fmt.Errorf("field: empty encoding")
	}
	var out Element
	out.inner.SetBytes(b)
	return out, nil
}

// Share splits v into n additive shares: n-1 uniform random values and a
// final value chosen so the shares sum to v. This is spec.md §4.1's
// share(v, n), the n-out-of-n specialization of the Shamir sharing in the
// teacher's pcg/frkey package.
func Share(v Element, n int) []Element {
	if n <= 0 {
		panic("field: Share requires n > 0")
	}
	shares := make([]Element, n)
	sum := Zero()
	for i := 0; i < n-1; i++ {
		shares[i] = Random()
		sum = sum.Add(shares[i])
	}
	shares[n-1] = v.Sub(sum)
	return shares
}

// Recover sums shares modulo p, the inverse of Share.
func Recover(shares []Element) Element {
	sum := Zero()
	for _, s := range shares {
		sum = sum.Add(s)
	}
	return sum
}

// HashToField maps arbitrary bytes into F_p deterministically, used by the
// VDPF to fold a seed vector or data digest into a proof component.
func HashToField(data []byte) Element {
	digest := sha256.Sum256(data)
	var e Element
	e.inner.SetBytes(digest[:])
	return e
}
