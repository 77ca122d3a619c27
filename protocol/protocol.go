// Package protocol aggregates the dpf and vdpf layers into the end-to-end
// per-channel write protocol (spec.md §4.5): client-side broadcast and
// null_broadcast, server-side gen_audit and check_audit, and the
// evaluation step that folds an accepted write into a channel
// accumulator. It also defines the wire message schemas (spec.md §6) that
// a transport collaborator would carry between client and server, or
// between peer servers.
package protocol

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"spectrum-core/bytesutil"
	"spectrum-core/dpf"
	"spectrum-core/dpf/multikey"
	"spectrum-core/dpf/twokey"
	"spectrum-core/vdpf"
)

func init() {
	gob.Register(&twokey.Key{})
	gob.Register(&multikey.Key{})
}

// ChannelKey is the client-held secret for one channel: the index it
// writes to, plus the channel's AuthKey ("password", spec.md §3).
type ChannelKey struct {
	Idx    int
	Secret vdpf.AuthKey
}

// WriteToken is a single server's share of a client upload (spec.md §3):
// its DPF key plus the matching VDPF proof share.
type WriteToken struct {
	DPFKey dpf.Key
	Proof  vdpf.ProofShare
}

// AuditShare is what a server computes from its WriteToken and exchanges
// with its peers (spec.md §3); it is a vdpf.AuditToken.
type AuditShare = vdpf.AuditToken

// MarshalBinary encodes a WriteToken into the opaque byte blob spec.md §6
// describes: a gob encoding of the concrete DPF key type (registered in
// this package's init) and the proof share, mirroring the teacher's
// Key.Serialize/Deserialize gob convention.
func (t WriteToken) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(wireToken{DPFKey: t.DPFKey, Proof: t.Proof}); err != nil {
		return nil, fmt.Errorf("protocol: marshal write token: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a WriteToken produced by MarshalBinary.
func (t *WriteToken) UnmarshalBinary(data []byte) error {
	var w wireToken
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return fmt.Errorf("protocol: unmarshal write token: %w", err)
	}
	*t = WriteToken(w)
	return nil
}

type wireToken struct {
	DPFKey dpf.Key
	Proof  vdpf.ProofShare
}

// Protocol binds a VDPF-wrapped DPF construction to a fixed number of
// servers (spec.md §4.5's n) and exposes the client/server operations that
// drive one epoch's writes.
type Protocol struct {
	vdpf       *vdpf.FieldVDPF
	numServers int
}

// New builds a Protocol over v for numServers servers. numServers must
// match the key arity v's underlying DPF was constructed with.
func New(v *vdpf.FieldVDPF, numServers int) (*Protocol, error) {
	if numServers <= 0 {
		return nil, fmt.Errorf("protocol: numServers must be positive, got %d", numServers)
	}
	return &Protocol{vdpf: v, numServers: numServers}, nil
}

// Broadcast is the client operation: encode msg at channelKey.Idx and
// produce one WriteToken per server (spec.md §4.5).
func (p *Protocol) Broadcast(msg bytesutil.Bytes, channelKey ChannelKey) ([]WriteToken, error) {
	keys, err := p.vdpf.Gen(channelKey.Idx, msg)
	if err != nil {
		return nil, fmt.Errorf("protocol: broadcast: %w", err)
	}
	return p.zip(keys, channelKey.Secret, false)
}

// NullBroadcast is the client's cover-traffic operation: an all-zero
// point function with no-op proof shares (spec.md §4.5, §9).
func (p *Protocol) NullBroadcast() ([]WriteToken, error) {
	keys, err := p.vdpf.GenEmpty()
	if err != nil {
		return nil, fmt.Errorf("protocol: null broadcast: %w", err)
	}
	return p.zip(keys, vdpf.AuthKey{}, true)
}

func (p *Protocol) zip(keys []dpf.Key, secret vdpf.AuthKey, noop bool) ([]WriteToken, error) {
	if len(keys) != p.numServers {
		return nil, fmt.Errorf("protocol: gen produced %d keys, want %d", len(keys), p.numServers)
	}
	var shares []vdpf.ProofShare
	var err error
	if noop {
		shares, err = vdpf.GenProofsNoop(keys)
	} else {
		shares, err = vdpf.GenProofs(secret, keys)
	}
	if err != nil {
		return nil, fmt.Errorf("protocol: gen proofs: %w", err)
	}
	tokens := make([]WriteToken, p.numServers)
	for i := range keys {
		tokens[i] = WriteToken{DPFKey: keys[i], Proof: shares[i]}
	}
	return tokens, nil
}

// GenAudit is the per-server operation: from its own WriteToken and the
// channel's AuthKey, compute the AuditShare it will exchange with its
// peers (spec.md §4.5). Callers auditing a null-broadcast token pass the
// zero AuthKey, matching NullBroadcast's GenProofsNoop call.
func (p *Protocol) GenAudit(authKey vdpf.AuthKey, token WriteToken) (AuditShare, error) {
	return p.vdpf.GenAudit(authKey, p.numServers, token.DPFKey, token.Proof)
}

// CheckAudit is the acceptance decision (spec.md §4.5): true iff every
// server's AuditShare for one client is present and consistent.
func (p *Protocol) CheckAudit(shares []AuditShare) bool {
	if len(shares) != p.numServers {
		return false
	}
	return vdpf.CheckAudit(shares)
}

// ToAccumulator evaluates a single server's DPF key into the full channel
// vector to be folded into that server's channel accumulator (spec.md
// §4.5). The result is this server's share only: for a null token it is
// pseudorandom, and it is the XOR across every server's share that comes
// out all-zero (spec.md §8 property 6).
func (p *Protocol) ToAccumulator(token WriteToken) ([]bytesutil.Bytes, error) {
	return p.vdpf.FullEval(token.DPFKey)
}
