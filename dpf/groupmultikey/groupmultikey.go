// Package groupmultikey implements the seed-homomorphic group-PRG
// multi-key Distributed Point Function spec.md §4.3 describes for n>=2:
// "keys are field-scalar shares s_i ... exploiting eval(Σ s_i) = Σ
// eval(s_i)." A literal single combined seed cannot make a group-PRG
// expansion vanish at every position but one under fixed public
// generators (scalar multiplication can't be selectively zeroed per
// position by one scalar), so this construction splits the difference
// the real homomorphism allows: n-1 parties hold only a short GroupSeed
// each, and the last party holds the one correction vector that pins the
// sum of all n-1 seed-holders' independent PRG expansions (computed as a
// single group-PRG evaluation of their combined seed, via
// prg.CombineSeeds/prg.GroupEval's homomorphism) to the hidden point
// function. Messages here are vectors of L group elements (spec.md §8's
// E5), not arbitrary bytes, giving prg.GroupEval/Generators/CombineSeeds/
// CombineOutputs a real production caller instead of only their own unit
// tests in prg/group_test.go. See DESIGN.md.
package groupmultikey

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/gob"
	"fmt"

	"spectrum-core/bytesutil"
	"spectrum-core/dpf"
	"spectrum-core/field"
	"spectrum-core/prg"
)

// pointLen is the byte length of field.Point's canonical encoding,
// computed once so this package never hardcodes a curve-specific
// constant.
var pointLen = len(field.Identity().Bytes())

// Key is one party's share of an n-party group-PRG DPF instance. Every
// party but one (IsLast) holds only SeedBytes, the encoding of a
// GroupSeed it expands on demand; the last party holds DeltaBytes, one
// full correction vector of L-group-element slots, one per domain
// position.
type Key struct {
	Params     dpf.Params
	PartyIndex int
	N          int
	IsLast     bool
	SeedBytes  []byte
	DeltaBytes [][]byte
}

// Serialize gob-encodes the key.
func (k *Key) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(k); err != nil {
		return nil, fmt.Errorf("groupmultikey: serialize: %w", err)
	}
	return buf.Bytes(), nil
}

// Deserialize decodes bytes produced by Serialize into k.
func (k *Key) Deserialize(data []byte) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(k); err != nil {
		return fmt.Errorf("groupmultikey: deserialize: %w", err)
	}
	return nil
}

// Digest hashes the key's public shape (NumPoints, MsgSize, N). Like
// multikey.Key, an n-out-of-n share (a seed or a correction vector) has
// no component identical across every honest party's key by
// construction, so this only asserts parties agree on the instance
// shape. See DESIGN.md.
func (k *Key) Digest() [32]byte {
	buf := make([]byte, 24)
	binary.BigEndian.PutUint64(buf[:8], uint64(k.Params.NumPoints))
	binary.BigEndian.PutUint64(buf[8:16], uint64(k.Params.MsgSize))
	binary.BigEndian.PutUint64(buf[16:], uint64(k.N))
	return sha256.Sum256(buf)
}

// DPF is the group-PRG multi-key construction. Params.MsgSize must be an
// exact multiple of the curve's compressed point length: a message is L
// = MsgSize/pointLen group elements (spec.md §8's E5).
type DPF struct {
	params dpf.Params
	n      int
	l      int
	gens   [][]field.Point // gens[position][limb]
}

// New builds an n-party group-PRG DPF instance for the given domain and
// message width. n must be >= 2.
func New(params dpf.Params, n int) (*DPF, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if n < 2 {
		return nil, fmt.Errorf("groupmultikey: n must be >= 2, got %d", n)
	}
	if params.MsgSize%pointLen != 0 {
		return nil, fmt.Errorf("groupmultikey: MsgSize %d is not a multiple of the point encoding length %d", params.MsgSize, pointLen)
	}
	l := params.MsgSize / pointLen
	gens := make([][]field.Point, params.NumPoints)
	for pos := 0; pos < params.NumPoints; pos++ {
		rho := make([]byte, 8)
		binary.BigEndian.PutUint64(rho, uint64(pos))
		gens[pos] = prg.Generators(rho, l)
	}
	return &DPF{params: params, n: n, l: l, gens: gens}, nil
}

// Params returns the instance's domain/message parameters.
func (d *DPF) Params() dpf.Params { return d.params }

func encodePoints(pts []field.Point) bytesutil.Bytes {
	out := make(bytesutil.Bytes, 0, len(pts)*pointLen)
	for _, p := range pts {
		out = append(out, p.Bytes()...)
	}
	return out
}

func decodePoints(msg bytesutil.Bytes, l int) ([]field.Point, error) {
	if len(msg) != l*pointLen {
		return nil, fmt.Errorf("groupmultikey: expected %d bytes, got %d", l*pointLen, len(msg))
	}
	out := make([]field.Point, l)
	for i := 0; i < l; i++ {
		p, err := field.PointFromBytes(msg[i*pointLen : (i+1)*pointLen])
		if err != nil {
			return nil, fmt.Errorf("groupmultikey: decoding message limb %d: %w", i, err)
		}
		out[i] = p
	}
	return out, nil
}

// Gen splits the point function "message (L group elements) at index,
// identity elsewhere" into n keys.
func (d *DPF) Gen(index int, message bytesutil.Bytes) ([]dpf.Key, error) {
	if err := d.params.CheckIndex(index); err != nil {
		return nil, err
	}
	if err := d.params.CheckMessage(message); err != nil {
		return nil, err
	}
	msgPoints, err := decodePoints(message, d.l)
	if err != nil {
		return nil, err
	}
	return d.gen(index, msgPoints)
}

// GenEmpty produces n keys for the all-identity point function (spec.md
// §4.5's null broadcast).
func (d *DPF) GenEmpty() ([]dpf.Key, error) {
	identity := make([]field.Point, d.l)
	for i := range identity {
		identity[i] = field.Identity()
	}
	return d.gen(0, identity)
}

func (d *DPF) gen(index int, msgPoints []field.Point) ([]dpf.Key, error) {
	seeds := make([]field.Element, d.n-1)
	for i := range seeds {
		seeds[i] = prg.NewGroupSeed()
	}
	// By the group PRG's seed homomorphism (spec.md §4.2/§8 property 3),
	// the sum of the n-1 seed-holders' independent expansions equals one
	// GroupEval call on their combined seed, so the correction vector
	// only needs a single evaluation per position rather than n-1.
	combinedSeed := prg.CombineSeeds(seeds...)

	keys := make([]dpf.Key, d.n)
	for i := 0; i < d.n-1; i++ {
		keys[i] = &Key{Params: d.params, PartyIndex: i, N: d.n, SeedBytes: seeds[i].Bytes()}
	}

	delta := make([][]byte, d.params.NumPoints)
	for pos := 0; pos < d.params.NumPoints; pos++ {
		target := make([]field.Point, d.l)
		for limb := range target {
			target[limb] = field.Identity()
		}
		if pos == index {
			copy(target, msgPoints)
		}

		sumOfSeeds := prg.GroupEval(combinedSeed, d.gens[pos])
		posDelta := make([]field.Point, d.l)
		for limb := range posDelta {
			posDelta[limb] = target[limb].Sub(sumOfSeeds[limb])
		}
		delta[pos] = encodePoints(posDelta)
	}
	keys[d.n-1] = &Key{Params: d.params, PartyIndex: d.n - 1, N: d.n, IsLast: true, DeltaBytes: delta}
	return keys, nil
}

// FullEval expands a single key over every domain position. A seed-
// holder's key derives its share purely from the group PRG, with no
// stored per-position data; the correction-holder's key is its stored
// Delta vector directly.
func (d *DPF) FullEval(key dpf.Key) ([]bytesutil.Bytes, error) {
	gkey, ok := key.(*Key)
	if !ok {
		return nil, dpf.ErrWrongKeyType
	}
	out := make([]bytesutil.Bytes, d.params.NumPoints)
	if gkey.IsLast {
		if len(gkey.DeltaBytes) != d.params.NumPoints {
			return nil, fmt.Errorf("groupmultikey: key has wrong delta length %d", len(gkey.DeltaBytes))
		}
		for pos, enc := range gkey.DeltaBytes {
			out[pos] = bytesutil.Bytes(enc)
		}
		return out, nil
	}
	seed, err := field.FromBytes(gkey.SeedBytes)
	if err != nil {
		return nil, fmt.Errorf("groupmultikey: decoding seed: %w", err)
	}
	for pos := 0; pos < d.params.NumPoints; pos++ {
		expanded := prg.GroupEval(seed, d.gens[pos])
		out[pos] = encodePoints(expanded)
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

// Combine sums every party's share pointwise under the group operation
// (spec.md §4.3: "combine(parts) is componentwise XOR (or group sum) of
// evaluations"), reusing prg.CombineOutputs for the per-position fold.
func (d *DPF) Combine(keys []dpf.Key) ([]bytesutil.Bytes, error) {
	if len(keys) != d.n {
		return nil, fmt.Errorf("groupmultikey: combine requires exactly %d keys, got %d", d.n, len(keys))
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
	for pos := 0; pos < d.params.NumPoints; pos++ {
		outputs := make([]prg.GroupOutput, d.n)
		for i := range evals {
			pts, err := decodePoints(evals[i][pos], d.l)
			if err != nil {
				return nil, err
			}
			outputs[i] = prg.GroupOutput(pts)
		}
		combined := prg.CombineOutputs(outputs...)
		result[pos] = encodePoints(combined)
	}
	return result, nil
}
