// Package twokey implements the two-party Distributed Point Function
// (Boyle-Gilboa-Ishai, FSS '16/'18) as a depth-n GGM tree. It follows the
// structure of the teacher's optimized tree DPF (dpf/2018_boyle_optimization),
// generalized from a single hidden scalar beta over secp256k1 to an
// arbitrary MsgSize-byte message hidden under byte-XOR: see DESIGN.md for
// why the final correction step no longer needs field arithmetic.
package twokey

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"errors"
	"fmt"
	"sync"

	"spectrum-core/bytesutil"
	"spectrum-core/dpf"
	"spectrum-core/prg"
)

const (
	alice = 0
	bob   = 1
)

// CorrectionWord is a single tree level's correction word: a seed mask plus
// two control-bit corrections, one per child.
type CorrectionWord struct {
	S      []byte
	Tl, Tr bool
}

// Key is one party's share of a two-key DPF instance.
type Key struct {
	Params  dpf.Params
	ID      uint8
	S       []byte
	CW      []CorrectionWord
	FinalCW []byte
}

// Serialize gob-encodes the key, matching the teacher's Key.Serialize
// convention in dpf/2018_boyle_optimization/optreedpf.go.
func (k *Key) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(k); err != nil {
		return nil, fmt.Errorf("twokey: serialize: %w", err)
	}
	return buf.Bytes(), nil
}

// Deserialize decodes bytes produced by Serialize into k.
func (k *Key) Deserialize(data []byte) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(k); err != nil {
		return fmt.Errorf("twokey: deserialize: %w", err)
	}
	return nil
}

// Digest hashes FinalCW, the one field both parties' keys carry
// identically (spec.md §4.4's data_hash): honest Gen output always agrees
// here, and tampering with it (or regenerating it from a tampered message)
// changes the digest.
func (k *Key) Digest() [32]byte {
	return sha256.Sum256(k.FinalCW)
}

// DPF is the two-key construction. depth is ceil(log2(Params.NumPoints)),
// but at least 1, fixed at construction time so every key traverses a tree of the same
// shape regardless of which index is hidden.
type DPF struct {
	params          dpf.Params
	depth           int
	prgOutputLength int
}

// New builds a two-key DPF instance for the given domain size and message
// width.
func New(params dpf.Params) (*DPF, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	depth := bitsNeeded(params.NumPoints)
	return &DPF{
		params:          params,
		depth:           depth,
		prgOutputLength: 2 * (prg.SeedLength + 1),
	}, nil
}

func bitsNeeded(numPoints int) int {
	depth := 0
	for (1 << depth) < numPoints {
		depth++
	}
	if depth == 0 {
		depth = 1
	}
	return depth
}

// Params returns the instance's domain/message parameters.
func (d *DPF) Params() dpf.Params { return d.params }

func indexBits(index, depth int) []bool {
	bits := make([]bool, depth)
	for i := 0; i < depth; i++ {
		bits[depth-i-1] = (index>>uint(i))&1 == 1
	}
	return bits
}

// Gen splits the point function "message at index, zero elsewhere" into two
// keys, one per party.
func (d *DPF) Gen(index int, message bytesutil.Bytes) ([]dpf.Key, error) {
	if err := d.params.CheckIndex(index); err != nil {
		return nil, err
	}
	if err := d.params.CheckMessage(message); err != nil {
		return nil, err
	}
	return d.gen(indexBits(index, d.depth), message)
}

// GenEmpty produces a pair of keys for the all-zero point function, used
// for null broadcasts (spec.md §4.5). Index 0 is as good as any index: the
// message is zero, so the resulting vector is zero everywhere regardless of
// which index was "special".
func (d *DPF) GenEmpty() ([]dpf.Key, error) {
	return d.gen(indexBits(0, d.depth), bytesutil.Zero(d.params.MsgSize))
}

func (d *DPF) gen(alpha []bool, message bytesutil.Bytes) ([]dpf.Key, error) {
	s := make([][]byte, 2)
	t := make([]bool, 2)
	s[alice] = prg.RandomSeed()
	s[bob] = prg.RandomSeed()
	t[alice] = false
	t[bob] = true

	cw := make([]CorrectionWord, d.depth)

	for level := 0; level < d.depth; level++ {
		var sl, sr [2][]byte
		var tl, tr [2]bool
		for _, party := range []int{alice, bob} {
			out := prg.AESEval(seedArray(s[party]), d.prgOutputLength)
			var err error
			sl[party], tl[party], sr[party], tr[party], err = splitPRGOutput(out)
			if err != nil {
				return nil, err
			}
		}

		keep, lose := 0, 1
		if alpha[level] {
			keep, lose = 1, 0
		}

		var sLose0, sLose1 []byte
		if lose == 0 {
			sLose0, sLose1 = sl[alice], sl[bob]
		} else {
			sLose0, sLose1 = sr[alice], sr[bob]
		}
		sCW, err := bytesutil.Bytes(sLose0).XOR(sLose1)
		if err != nil {
			return nil, err
		}

		tlCW := tl[alice] != tl[bob] != alpha[level] != true
		trCW := tr[alice] != tr[bob] != alpha[level]

		cw[level] = CorrectionWord{S: sCW, Tl: tlCW, Tr: trCW}

		for _, party := range []int{alice, bob} {
			tPrev := t[party]
			var sKeep []byte
			var tKeep bool
			if keep == 0 {
				sKeep, tKeep = sl[party], tl[party]
			} else {
				sKeep, tKeep = sr[party], tr[party]
			}
			tCW := tlCW
			if keep == 1 {
				tCW = trCW
			}
			if tPrev {
				masked, err := bytesutil.Bytes(sKeep).XOR(sCW)
				if err != nil {
					return nil, err
				}
				s[party] = masked
				t[party] = tKeep != tCW
			} else {
				s[party] = sKeep
				t[party] = tKeep
			}
		}
	}

	finalAlice := prg.AESEval(seedArray(s[alice]), d.params.MsgSize)
	finalBob := prg.AESEval(seedArray(s[bob]), d.params.MsgSize)
	combined, err := bytesutil.XORAll(bytesutil.Bytes(finalAlice), bytesutil.Bytes(finalBob))
	if err != nil {
		return nil, err
	}
	finalCW, err := combined.XOR(message)
	if err != nil {
		return nil, err
	}

	keyAlice := &Key{Params: d.params, ID: alice, S: s[alice], CW: cw, FinalCW: finalCW}
	keyBob := &Key{Params: d.params, ID: bob, S: s[bob], CW: cw, FinalCW: finalCW}
	return []dpf.Key{keyAlice, keyBob}, nil
}

// Eval evaluates a single key at one index, returning that party's share of
// the message at that index.
func (d *DPF) Eval(key dpf.Key, index int) (bytesutil.Bytes, error) {
	tkey, ok := key.(*Key)
	if !ok {
		return nil, dpf.ErrWrongKeyType
	}
	if err := d.params.CheckIndex(index); err != nil {
		return nil, err
	}
	alpha := indexBits(index, d.depth)

	s := tkey.S
	t := tkey.ID != alice
	for level := 0; level < d.depth; level++ {
		out := prg.AESEval(seedArray(s), d.prgOutputLength)
		if t {
			out = applyCorrectionToPRGOutput(out, tkey.CW[level])
		}
		sl, tl, sr, tr, err := splitPRGOutput(out)
		if err != nil {
			return nil, err
		}
		if alpha[level] {
			s, t = sr, tr
		} else {
			s, t = sl, tl
		}
	}

	partial := bytesutil.Bytes(prg.AESEval(seedArray(s), d.params.MsgSize))
	if t {
		var err error
		partial, err = partial.XOR(tkey.FinalCW)
		if err != nil {
			return nil, err
		}
	}
	return partial, nil
}

// FullEval evaluates a key at every index in the domain, fanning work out
// across goroutines the way the teacher's traverse/SafeCounter does in
// dpf/2018_boyle_optimization/optreedpf.go.
func (d *DPF) FullEval(key dpf.Key) ([]bytesutil.Bytes, error) {
	tkey, ok := key.(*Key)
	if !ok {
		return nil, dpf.ErrWrongKeyType
	}
	out := make([]bytesutil.Bytes, d.params.NumPoints)
	errs := make([]error, d.params.NumPoints)

	const fanoutThreshold = 64
	if d.params.NumPoints <= fanoutThreshold {
		for i := 0; i < d.params.NumPoints; i++ {
			out[i], errs[i] = d.Eval(tkey, i)
		}
	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, 16)
		for i := 0; i < d.params.NumPoints; i++ {
			i := i
			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				out[i], errs[i] = d.Eval(tkey, i)
			}()
		}
		wg.Wait()
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Combine XORs each party's full evaluation together. Off the special
// index both parties agree on seed and control bit at every leaf, so their
// contributions cancel; at the special index exactly one party's final
// correction word applies, leaving the hidden message.
func (d *DPF) Combine(keys []dpf.Key) ([]bytesutil.Bytes, error) {
	if len(keys) != 2 {
		return nil, errors.New("twokey: combine requires exactly two keys")
	}
	evals := make([][]bytesutil.Bytes, 2)
	for i, k := range keys {
		full, err := d.FullEval(k)
		if err != nil {
			return nil, err
		}
		evals[i] = full
	}
	result := make([]bytesutil.Bytes, d.params.NumPoints)
	for idx := 0; idx < d.params.NumPoints; idx++ {
		v, err := evals[0][idx].XOR(evals[1][idx])
		if err != nil {
			return nil, err
		}
		result[idx] = v
	}
	return result, nil
}

func seedArray(b []byte) prg.AESSeed {
	var s prg.AESSeed
	copy(s[:], b)
	return s
}

// splitPRGOutput parses a PRG expansion into left/right seeds and control
// bits, matching the teacher's splitPRGOutput layout: seed | bit | seed | bit.
func splitPRGOutput(out []byte) (sl []byte, tl bool, sr []byte, tr bool, err error) {
	if len(out) < 2*(prg.SeedLength+1) {
		return nil, false, nil, false, errors.New("twokey: insufficient PRG output length")
	}
	sl = out[:prg.SeedLength]
	tl = out[prg.SeedLength]&1 != 0
	sr = out[prg.SeedLength+1 : 2*prg.SeedLength+1]
	tr = out[2*prg.SeedLength+1]&1 != 0
	return sl, tl, sr, tr, nil
}

func applyCorrectionToPRGOutput(out []byte, cw CorrectionWord) []byte {
	corrected := make([]byte, len(out))
	copy(corrected, out)
	for i, b := range cw.S {
		corrected[i] ^= b
	}
	if cw.Tl {
		corrected[prg.SeedLength] ^= 1
	}
	for i, b := range cw.S {
		corrected[prg.SeedLength+1+i] ^= b
	}
	if cw.Tr {
		corrected[2*prg.SeedLength+1] ^= 1
	}
	return corrected
}
