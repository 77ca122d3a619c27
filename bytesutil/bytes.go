// Package bytesutil provides the fixed-length byte string type used
// throughout the core as DPF message payloads and channel contents.
package bytesutil

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
)

// ErrLengthMismatch is returned whenever two Bytes values of different
// lengths are combined.
var ErrLengthMismatch = errors.New("bytesutil: length mismatch")

// Bytes is a fixed-length byte string. The zero value is not meaningful;
// use Zero or Random to construct one.
type Bytes []byte

// Zero returns a Bytes of the given length, all zero.
func Zero(length int) Bytes {
	return make(Bytes, length)
}

// Random returns a Bytes of the given length filled with cryptographically
// secure random bytes.
func Random(length int) Bytes {
	b := make(Bytes, length)
	if _, err := rand.Read(b); err != nil {
		panic(err.Error())
	}
	return b
}

// Clone returns an independent copy.
func (b Bytes) Clone() Bytes {
	out := make(Bytes, len(b))
	copy(out, b)
	return out
}

// XOR returns the componentwise XOR of b and other. Both must have the same
// length.
func (b Bytes) XOR(other Bytes) (Bytes, error) {
	if len(b) != len(other) {
		return nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(b), len(other))
	}
	out := make(Bytes, len(b))
	for i := range b {
		out[i] = b[i] ^ other[i]
	}
	return out, nil
}

// XORAll XORs together a sequence of equal-length Bytes values.
func XORAll(values ...Bytes) (Bytes, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := values[0].Clone()
	for _, v := range values[1:] {
		var err error
		out, err = out.XOR(v)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Equal reports whether b and other hold identical contents, using a
// constant-time comparison (writes are adversarial input in this system).
func (b Bytes) Equal(other Bytes) bool {
	if len(b) != len(other) {
		return false
	}
	return subtle.ConstantTimeCompare(b, other) == 1
}

// IsZero reports whether every byte is zero.
func (b Bytes) IsZero() bool {
	var acc byte
	for _, v := range b {
		acc |= v
	}
	return acc == 0
}
