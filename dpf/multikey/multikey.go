// Package multikey implements the n-party Distributed Point Function
// (spec.md §4.3 for n>=2) as a direct n-out-of-n XOR sharing of the sparse
// result vector: each key is one random-looking share of the full
// NumPoints x MsgSize vector, and the n shares XOR back to a vector that is
// zero everywhere except the hidden index. This trades the two-key
// construction's logarithmic key size for a simple, provably correct
// n-party combine. No PRG is involved here; the seed-homomorphic group PRG
// (spec.md §4.2's other PRG) is used by dpf/groupmultikey instead.
package multikey

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/gob"
	"fmt"

	"spectrum-core/bytesutil"
	"spectrum-core/dpf"
)

// Key is one party's share of an n-party DPF instance: a full share of the
// result vector, flattened to NumPoints*MsgSize bytes.
type Key struct {
	Params     dpf.Params
	PartyIndex int
	N          int
	Share      []byte
}

// Serialize gob-encodes the key.
func (k *Key) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(k); err != nil {
		return nil, fmt.Errorf("multikey: serialize: %w", err)
	}
	return buf.Bytes(), nil
}

// Deserialize decodes bytes produced by Serialize into k.
func (k *Key) Deserialize(data []byte) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(k); err != nil {
		return fmt.Errorf("multikey: deserialize: %w", err)
	}
	return nil
}

// Digest hashes the key's public metadata (NumPoints, MsgSize, N). Unlike
// twokey.Key, an n-out-of-n XOR share has no component that is identical
// across parties by construction — every party's Share is independently
// random — so this only asserts parties agree on the instance shape; it is
// not a payload-tamper check for the multi-key construction. See
// DESIGN.md.
func (k *Key) Digest() [32]byte {
	buf := make([]byte, 24)
	binary.BigEndian.PutUint64(buf[:8], uint64(k.Params.NumPoints))
	binary.BigEndian.PutUint64(buf[8:16], uint64(k.Params.MsgSize))
	binary.BigEndian.PutUint64(buf[16:], uint64(k.N))
	return sha256.Sum256(buf)
}

// DPF is the n-party construction, parameterized by the number of parties N
// in addition to the shared dpf.Params.
type DPF struct {
	params dpf.Params
	n      int
}

// New builds an n-party DPF instance. n must be >= 2.
func New(params dpf.Params, n int) (*DPF, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if n < 2 {
		return nil, fmt.Errorf("multikey: n must be >= 2, got %d", n)
	}
	return &DPF{params: params, n: n}, nil
}

// Params returns the instance's domain/message parameters.
func (d *DPF) Params() dpf.Params { return d.params }

// Gen splits the point function into n keys.
func (d *DPF) Gen(index int, message bytesutil.Bytes) ([]dpf.Key, error) {
	if err := d.params.CheckIndex(index); err != nil {
		return nil, err
	}
	if err := d.params.CheckMessage(message); err != nil {
		return nil, err
	}
	return d.gen(index, message)
}

// GenEmpty produces n keys for the all-zero point function (spec.md §4.5).
func (d *DPF) GenEmpty() ([]dpf.Key, error) {
	return d.gen(0, bytesutil.Zero(d.params.MsgSize))
}

func (d *DPF) gen(index int, message bytesutil.Bytes) ([]dpf.Key, error) {
	vector := bytesutil.Zero(d.params.NumPoints * d.params.MsgSize)
	copy(vector[index*d.params.MsgSize:], message)

	shares := make([]bytesutil.Bytes, d.n)
	acc := bytesutil.Zero(len(vector))
	for i := 0; i < d.n-1; i++ {
		shares[i] = bytesutil.Random(len(vector))
		var err error
		acc, err = acc.XOR(shares[i])
		if err != nil {
			return nil, err
		}
	}
	last, err := acc.XOR(vector)
	if err != nil {
		return nil, err
	}
	shares[d.n-1] = last

	keys := make([]dpf.Key, d.n)
	for i := 0; i < d.n; i++ {
		keys[i] = &Key{Params: d.params, PartyIndex: i, N: d.n, Share: shares[i]}
	}
	return keys, nil
}

// FullEval returns a single key's share of the full result vector, split
// into one bytesutil.Bytes slot per index.
func (d *DPF) FullEval(key dpf.Key) ([]bytesutil.Bytes, error) {
	mkey, ok := key.(*Key)
	if !ok {
		return nil, dpf.ErrWrongKeyType
	}
	if len(mkey.Share) != d.params.NumPoints*d.params.MsgSize {
		return nil, fmt.Errorf("multikey: key has wrong share length %d", len(mkey.Share))
	}
	out := make([]bytesutil.Bytes, d.params.NumPoints)
	for i := 0; i < d.params.NumPoints; i++ {
		start := i * d.params.MsgSize
		out[i] = bytesutil.Bytes(mkey.Share[start : start+d.params.MsgSize]).Clone()
	}
	return out, nil
}

// Eval evaluates a single key at one index.
func (d *DPF) Eval(key dpf.Key, index int) (bytesutil.Bytes, error) {
	if err := d.params.CheckIndex(index); err != nil {
		return nil, err
	}
	full, err := d.FullEval(key)
	if err != nil {
		return nil, err
	}
	return full[index], nil
}

// Combine XORs every party's share vector together, reconstructing a
// vector with the message at the special index and zero everywhere else.
func (d *DPF) Combine(keys []dpf.Key) ([]bytesutil.Bytes, error) {
	if len(keys) != d.n {
		return nil, fmt.Errorf("multikey: combine requires exactly %d keys, got %d", d.n, len(keys))
	}
	evals := make([][]bytesutil.Bytes, d.n)
	for i, k := range keys {
		full, err := d.FullEval(k)
		if err != nil {
			return nil, err
		}
		evals[i] = full
	}
	result := make([]bytesutil.Bytes, d.params.NumPoints)
	for idx := 0; idx < d.params.NumPoints; idx++ {
		perSlot := make([]bytesutil.Bytes, d.n)
		for i := range evals {
			perSlot[i] = evals[i][idx]
		}
		v, err := bytesutil.XORAll(perSlot...)
		if err != nil {
			return nil, err
		}
		result[idx] = v
	}
	return result, nil
}
