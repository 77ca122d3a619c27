// Package dpf declares the Distributed Point Function contract shared by
// the concrete constructions in dpf/twokey, dpf/multikey and
// dpf/groupmultikey (spec.md §4.3). A DPF splits a point function (one nonzero message at a single
// index, zero everywhere else, over a domain of size NumPoints) into keys
// such that no proper subset of keys reveals the index or the message, yet
// combining all of them reconstructs the full sparse vector.
package dpf

import (
	"errors"
	"fmt"

	"spectrum-core/bytesutil"
)

// ErrIndexOutOfRange is returned by Gen when the special index does not lie
// in [0, NumPoints).
var ErrIndexOutOfRange = errors.New("dpf: index out of range")

// ErrMessageSize is returned when a message does not match Params.MsgSize.
var ErrMessageSize = errors.New("dpf: message has wrong size")

// ErrWrongKeyType is returned when a Key produced by one construction is
// passed into another construction's Eval/Combine.
var ErrWrongKeyType = errors.New("dpf: key was not produced by this construction")

// Params fixes the domain size and message width for a DPF instance. Every
// key generated by the same DPF value shares these parameters, and Combine
// requires that all input keys do too.
type Params struct {
	// NumPoints is the size of the domain the point function is defined
	// over: valid indices are [0, NumPoints).
	NumPoints int
	// MsgSize is the length in bytes of the nonzero message.
	MsgSize int
}

// Validate reports whether p describes a usable instance.
func (p Params) Validate() error {
	if p.NumPoints <= 0 {
		return fmt.Errorf("dpf: NumPoints must be positive, got %d", p.NumPoints)
	}
	if p.MsgSize <= 0 {
		return fmt.Errorf("dpf: MsgSize must be positive, got %d", p.MsgSize)
	}
	return nil
}

// CheckIndex validates a special-point index against p.
func (p Params) CheckIndex(index int) error {
	if index < 0 || index >= p.NumPoints {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, p.NumPoints)
	}
	return nil
}

// CheckMessage validates a message's length against p.
func (p Params) CheckMessage(msg bytesutil.Bytes) error {
	if len(msg) != p.MsgSize {
		return fmt.Errorf("%w: got %d want %d", ErrMessageSize, len(msg), p.MsgSize)
	}
	return nil
}

// Key is a single party's share of a DPF instance. Concrete constructions
// (twokey.Key, multikey.Key) implement gob-based Serialize/Deserialize the
// way the teacher's optreedpf.Key does.
//
// Digest returns a SHA-256 hash of the key's "encoded message component"
// (spec.md §4.4's data_hash): the part of the key that is, by construction,
// identical across every honest party's key, so that vdpf.CheckAudit's
// pairwise DataHash equality check actually has something invariant to
// compare. twokey.Key's FinalCW is that component; multikey.Key has no
// such shared component (every party's share is independently random), so
// it digests only the public Params/N metadata — see DESIGN.md.
type Key interface {
	Serialize() ([]byte, error)
	Deserialize([]byte) error
	Digest() [32]byte
}

// DPF is the contract every construction satisfies: gen splits a point
// function into keys, gen_empty produces keys for the all-zero function
// (spec.md §4.5's null broadcast), FullEval expands a single key over the
// whole domain (the protocol layer's to_accumulator, spec.md §4.5), and
// combine reconstructs the full sparse vector from a complete set of keys.
type DPF interface {
	Params() Params
	Gen(index int, message bytesutil.Bytes) ([]Key, error)
	GenEmpty() ([]Key, error)
	FullEval(key Key) ([]bytesutil.Bytes, error)
	Combine(keys []Key) ([]bytesutil.Bytes, error)
}
