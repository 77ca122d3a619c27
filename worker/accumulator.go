// Package worker implements the per-epoch orchestration that drives the
// protocol layer across concurrent client uploads (spec.md §4.6): the
// channel accumulator, the once-drain audit/check registries, the client
// registry, and the quorum barrier.
package worker

import (
	"sync"

	"spectrum-core/bytesutil"
)

// Combinable is a monoid payload an Accumulator folds (spec.md §4.6's
// "combine is the monoid operation of the payload type"). Go's lack of a
// Rust-style associated-type trait for this (original_source's Foldable)
// means Combine takes and returns the interface itself rather than a
// generic Item type; the two concrete instantiations below are the only
// ones the core needs (spec.md §3's Bytes and Vec<Bytes> channel
// accumulator).
type Combinable interface {
	Combine(other Combinable) Combinable
}

// ChannelVector is spec.md §3's channel accumulator: one Bytes slot per
// channel, combined by componentwise XOR.
type ChannelVector []bytesutil.Bytes

// Combine XORs each channel slot of other into a copy of d. Both must have
// the same number of channels and matching per-channel lengths.
func (d ChannelVector) Combine(other Combinable) Combinable {
	o, ok := other.(ChannelVector)
	if !ok {
		panic("worker: ChannelVector.Combine: mismatched payload type")
	}
	if len(d) != len(o) {
		panic("worker: ChannelVector.Combine: mismatched channel count")
	}
	out := make(ChannelVector, len(d))
	for i := range d {
		v, err := d[i].XOR(o[i])
		if err != nil {
			panic("worker: ChannelVector.Combine: " + err.Error())
		}
		out[i] = v
	}
	return out
}

// ZeroChannelVector returns a ChannelVector with numChannels all-zero
// slots of msgSize bytes each, the Accumulator's identity element.
func ZeroChannelVector(numChannels, msgSize int) ChannelVector {
	out := make(ChannelVector, numChannels)
	for i := range out {
		out[i] = bytesutil.Zero(msgSize)
	}
	return out
}

// Scalar is a plain Bytes payload, combined by XOR — the degenerate
// single-channel case of the channel accumulator.
type Scalar bytesutil.Bytes

// Combine XORs other into a copy of d.
func (d Scalar) Combine(other Combinable) Combinable {
	o, ok := other.(Scalar)
	if !ok {
		panic("worker: Scalar.Combine: mismatched payload type")
	}
	v, err := bytesutil.Bytes(d).XOR(bytesutil.Bytes(o))
	if err != nil {
		panic("worker: Scalar.Combine: " + err.Error())
	}
	return Scalar(v)
}

// Accumulator is a scoped mutable (state, count) pair behind a single
// readers-writer lock (spec.md §4.6, §5: "atomicity of fold-and-count is
// part of the contract" — the lock must not be split in two). Accumulate
// is exclusive; Get is shared.
type Accumulator struct {
	mu    sync.RWMutex
	state Combinable
	count int
}

// NewAccumulator starts an Accumulator at the given identity state (e.g.
// ZeroChannelVector or a zero Scalar).
func NewAccumulator(identity Combinable) *Accumulator {
	return &Accumulator{state: identity}
}

// Accumulate folds data into the accumulator's state and returns the new
// count of successful accumulate calls (spec.md §4.6).
func (a *Accumulator) Accumulate(data Combinable) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = a.state.Combine(data)
	a.count++
	return a.count
}

// Get returns the current accumulated state and the count of folds that
// produced it.
func (a *Accumulator) Get() (Combinable, int) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state, a.count
}
