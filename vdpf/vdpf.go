// Package vdpf adds audit proofs on top of a dpf.DPF (spec.md §4.4), letting
// servers check that the keys a client handed out really do combine to a
// valid point function, without learning the hidden index or message.
// FieldVDPF wraps a dpf.DPF exactly the way
// original_source/spectrum_primitives/src/vdpf/field.rs wraps its inner DPF:
// every dpf.DPF call simply delegates, and the audit layer is purely
// additive on top.
package vdpf

import (
	"errors"
	"fmt"

	"spectrum-core/bytesutil"
	"spectrum-core/dpf"
	"spectrum-core/field"
)

// AuthKey is the per-channel "password" (spec.md §3): a field scalar chosen
// independently for each channel, known to the client and baked into the
// proof shares it hands out alongside its DPF keys.
type AuthKey = field.Element

// ProofShare is one party's additive share of the audit proof: a bit
// component tying the proof to the channel's AuthKey, and a seed component
// tying it to the specific key material the party received (spec.md §3).
type ProofShare struct {
	Bit  field.Element
	Seed field.Element
}

// AuditToken is what a party computes from its own (Key, ProofShare) pair
// and exchanges with the other parties (spec.md §3). Honestly generated
// tokens sum to zero in both components and carry matching DataHash; a
// tampered key or share almost certainly breaks one of the three checks.
type AuditToken struct {
	BitShare  field.Element
	SeedShare field.Element
	DataHash  [32]byte
}

// FieldVDPF wraps an inner DPF construction with audit generation and
// checking.
type FieldVDPF struct {
	inner dpf.DPF
}

// New wraps inner with the audit layer.
func New(inner dpf.DPF) *FieldVDPF {
	return &FieldVDPF{inner: inner}
}

// Params returns the inner DPF's domain/message parameters.
func (v *FieldVDPF) Params() dpf.Params { return v.inner.Params() }

// Gen delegates key generation to the inner DPF.
func (v *FieldVDPF) Gen(index int, message bytesutil.Bytes) ([]dpf.Key, error) {
	return v.inner.Gen(index, message)
}

// GenEmpty delegates to the inner DPF.
func (v *FieldVDPF) GenEmpty() ([]dpf.Key, error) {
	return v.inner.GenEmpty()
}

// Combine delegates to the inner DPF.
func (v *FieldVDPF) Combine(keys []dpf.Key) ([]bytesutil.Bytes, error) {
	return v.inner.Combine(keys)
}

// FullEval delegates to the inner DPF; the protocol layer's
// to_accumulator (spec.md §4.5) uses this to expand a single server's key
// into its share of the channel accumulator.
func (v *FieldVDPF) FullEval(key dpf.Key) ([]bytesutil.Bytes, error) {
	return v.inner.FullEval(key)
}

// keySeedDigest folds a key's serialized bytes into a field element,
// standing in for "hash_seeds(dpf_keys[idx-slot seeds])" from spec.md §4.4:
// the concrete DPF constructions here don't expose a single per-slot seed
// independent of the rest of the key, so the whole serialized key is
// hashed instead. See DESIGN.md for why this still satisfies properties
// 7/8. (The seed-homomorphic group PRG spec.md §4.2 names is exercised by
// dpf/groupmultikey, the construction that actually depends on its
// homomorphism; routing this digest through it as well added no real
// consumer, only an extra hop, so it stays a plain field hash here.)
func keySeedDigest(key dpf.Key) (field.Element, error) {
	enc, err := key.Serialize()
	if err != nil {
		return field.Element{}, fmt.Errorf("vdpf: serializing key: %w", err)
	}
	return field.HashToField(enc), nil
}

// GenProofs computes bit_proof = auth_key and seed_proof =
// hash_seeds(dpf_keys), then additively shares each across len(dpfKeys)
// parties, pairing them into ProofShares (spec.md §4.4).
func GenProofs(authKey AuthKey, dpfKeys []dpf.Key) ([]ProofShare, error) {
	n := len(dpfKeys)
	if n == 0 {
		return nil, errors.New("vdpf: GenProofs requires at least one key")
	}
	seedProof := field.Zero()
	for _, k := range dpfKeys {
		digest, err := keySeedDigest(k)
		if err != nil {
			return nil, err
		}
		seedProof = seedProof.Add(digest)
	}

	bitShares := field.Share(authKey, n)
	seedShares := field.Share(seedProof, n)
	shares := make([]ProofShare, n)
	for i := 0; i < n; i++ {
		shares[i] = ProofShare{Bit: bitShares[i], Seed: seedShares[i]}
	}
	return shares, nil
}

// GenProofsNoop produces proof shares for the null-broadcast cover traffic
// path (spec.md §4.5, §9). spec.md's source carries both a literal
// all-zero-shares noop and a real GenProofs call against a zero AuthKey,
// and leaves it an open question which one a correct implementation should
// use for the null path. Literal all-zero shares do not actually satisfy
// property 7 here: CheckAudit's seed check cancels GenProofs' seed_proof
// against the per-key digests GenAudit recomputes from dpfKeys, and those
// digests are never zero even for GenEmpty's keys. SPEC_FULL.md resolves
// the open question by using the real generator with AuthKey zero, which
// both keeps the "no real channel" semantics (bit shares cancel a zero
// AuthKey, revealing nothing) and satisfies property 7 for the null case
// (E2).
func GenProofsNoop(dpfKeys []dpf.Key) ([]ProofShare, error) {
	return GenProofs(field.Zero(), dpfKeys)
}

// GenAudit computes one party's audit token from its own key, its own
// ProofShare, and the channel's AuthKey (known to every auditing server,
// per spec.md §4.4's `gen_audit(auth_keys, dpf_key, proof_share)` — the
// AuthKey identifies the channel, it does not hide it from participating
// servers):
//
//	bit_share_i  = proof_share.bit  - auth_key / numParties
//	seed_share_i = proof_share.seed - hash_seeds(this key)
//	data_hash    = key.Digest() (SHA-256 of the key's shared component)
//
// GenProofs split auth_key into numParties additive shares, so summing
// bit_share_i over all parties cancels auth_key exactly; summing
// seed_share_i cancels the sum of per-key digests GenProofs folded into
// seed_proof. Honest execution therefore ties bit_share to the specific
// channel (through auth_key) and seed_share to the specific key material
// the party actually holds, exactly as spec.md's security rationale
// requires.
func (v *FieldVDPF) GenAudit(authKey AuthKey, numParties int, key dpf.Key, share ProofShare) (AuditToken, error) {
	if numParties <= 0 {
		return AuditToken{}, fmt.Errorf("vdpf: numParties must be positive, got %d", numParties)
	}
	digest, err := keySeedDigest(key)
	if err != nil {
		return AuditToken{}, err
	}
	authShare := authKey.Mul(field.FromUint64(uint64(numParties)).Inverse())

	return AuditToken{
		BitShare:  share.Bit.Sub(authShare),
		SeedShare: share.Seed.Sub(digest),
		DataHash:  key.Digest(),
	}, nil
}

// CheckAudit accepts iff every token's bit shares sum to zero, every token's
// seed shares sum to zero, and every token carries the same DataHash
// (spec.md §4.4).
func CheckAudit(tokens []AuditToken) bool {
	if len(tokens) == 0 {
		return false
	}
	bitSum := field.Zero()
	seedSum := field.Zero()
	for _, t := range tokens {
		bitSum = bitSum.Add(t.BitShare)
		seedSum = seedSum.Add(t.SeedShare)
	}
	if !bitSum.IsZero() || !seedSum.IsZero() {
		return false
	}
	want := tokens[0].DataHash
	for _, t := range tokens[1:] {
		if t.DataHash != want {
			return false
		}
	}
	return true
}
