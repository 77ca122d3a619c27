package worker

import (
	"fmt"
	"sync"

	"spectrum-core/protocol"
	"spectrum-core/vdpf"
)

// Server is one worker's per-epoch orchestration over the protocol layer:
// it tracks each client's state machine (spec.md §4.5 INIT -> AUDITING ->
// VERIFIED/REJECTED) across two sequential quorums (spec.md §4.6) —
// audit shares, then check verdicts — holding the client's own
// WriteToken until both registry slots have filled and every server's
// check verdict agrees, then folding the accepted write into the channel
// accumulator exactly once.
type Server struct {
	proto       *protocol.Protocol
	numServers  int
	numChannels int
	msgSize     int

	audits  *AuditRegistry
	checks  *CheckRegistry
	clients *ClientRegistry
	acc     *Accumulator

	mu          sync.Mutex
	pending     map[int]protocol.WriteToken
	localChecks map[int]ShareCheck
}

// NewServer builds a Server for a deployment of numServers peer servers,
// a domain of numChannels channels each msgSize bytes wide, sized for
// numClients concurrent clients this epoch.
func NewServer(proto *protocol.Protocol, numServers, numChannels, msgSize, numClients int) *Server {
	return &Server{
		proto:       proto,
		numServers:  numServers,
		numChannels: numChannels,
		msgSize:     msgSize,
		audits:      NewAuditRegistry(numClients),
		checks:      NewCheckRegistry(numClients),
		clients:     NewClientRegistry(),
		acc:         NewAccumulator(ZeroChannelVector(numChannels, msgSize)),
		pending:     make(map[int]protocol.WriteToken),
		localChecks: make(map[int]ShareCheck),
	}
}

// Upload is the INIT -> AUDITING transition for a client (spec.md §4.5):
// it stashes the client's own WriteToken, computes this server's
// AuditShare for it, and folds that share into the audit registry. authKey
// identifies the channel this write targets; see DESIGN.md for why this
// core passes it explicitly rather than summing over every channel's key.
func (s *Server) Upload(clientIdx int, authKey vdpf.AuthKey, token protocol.WriteToken) (protocol.AuditShare, error) {
	s.mu.Lock()
	s.pending[clientIdx] = token
	s.mu.Unlock()

	share, err := s.proto.GenAudit(authKey, token)
	if err != nil {
		return protocol.AuditShare{}, fmt.Errorf("worker: upload: %w", err)
	}
	s.addShare(clientIdx, share)
	return share, nil
}

// Verify ingests a peer server's AuditShare for clientIdx. Once all
// numServers shares (including this server's own, added by Upload) have
// arrived, the client's audit is drained and decided.
func (s *Server) Verify(clientIdx int, share protocol.AuditShare) {
	s.addShare(clientIdx, share)
}

func (s *Server) addShare(clientIdx int, share protocol.AuditShare) {
	n := s.audits.Add(clientIdx, share)
	if n < s.numServers {
		return
	}
	s.resolveAudit(clientIdx)
}

// resolveAudit drains clientIdx's audit registry slot exactly once
// (spec.md §5's once-drain invariant), decides this server's own verdict,
// and stores it for LocalCheck to hand to peers before folding it into
// the check registry like any other server's verdict.
func (s *Server) resolveAudit(clientIdx int) {
	shares := s.audits.Drain(clientIdx)
	check := ShareCheck{Accepted: s.proto.CheckAudit(shares)}

	s.mu.Lock()
	s.localChecks[clientIdx] = check
	s.mu.Unlock()

	s.addCheck(clientIdx, check)
}

// LocalCheck returns this server's own verdict on clientIdx's audit, for
// a caller to forward to the other numServers-1 peers (spec.md §4.6's
// check exchange, mirroring Upload/Verify's audit-share exchange). It
// errors if this server's audit registry slot hasn't resolved yet.
func (s *Server) LocalCheck(clientIdx int) (ShareCheck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	check, ok := s.localChecks[clientIdx]
	if !ok {
		return ShareCheck{}, fmt.Errorf("worker: LocalCheck: client %d has not resolved its audit yet", clientIdx)
	}
	return check, nil
}

// Check ingests a peer server's ShareCheck verdict for clientIdx. Once
// all numServers verdicts (including this server's own, added by
// resolveAudit) have arrived, the check registry slot is drained and
// decided.
func (s *Server) Check(clientIdx int, check ShareCheck) {
	s.addCheck(clientIdx, check)
}

func (s *Server) addCheck(clientIdx int, check ShareCheck) {
	n := s.checks.Add(clientIdx, check)
	if n < s.numServers {
		return
	}
	s.finalize(clientIdx)
}

// finalize drains clientIdx's check registry slot exactly once (spec.md
// §5's once-drain invariant) and transitions to VERIFIED or REJECTED: only
// when every server's verdict agrees the audit was accepted does the
// pending write fold into the channel accumulator.
func (s *Server) finalize(clientIdx int) {
	checks := s.checks.Drain(clientIdx)
	unanimous := len(checks) == s.numServers
	for _, c := range checks {
		if !c.Accepted {
			unanimous = false
		}
	}

	s.mu.Lock()
	token, ok := s.pending[clientIdx]
	delete(s.pending, clientIdx)
	delete(s.localChecks, clientIdx)
	s.mu.Unlock()

	if !unanimous || !ok {
		return
	}

	vec, err := s.proto.ToAccumulator(token)
	if err != nil {
		return
	}
	s.acc.Accumulate(ChannelVector(vec))
}

// Accumulator exposes the server's running channel accumulator and the
// count of accepted writes folded into it.
func (s *Server) Accumulator() (ChannelVector, int) {
	state, count := s.acc.Get()
	return state.(ChannelVector), count
}

// Clients exposes the server's client->peer registry (spec.md §6's
// RegisterClientRequest path).
func (s *Server) Clients() *ClientRegistry { return s.clients }
