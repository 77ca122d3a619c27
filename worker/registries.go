package worker

import "spectrum-core/vdpf"

// AuditRegistry collects vdpf.AuditToken shares for each client, draining
// them exactly once when the protocol layer is ready to run check_audit
// (spec.md §3, §4.6).
type AuditRegistry = Registry[vdpf.AuditToken]

// NewAuditRegistry allocates an AuditRegistry for numClients clients.
func NewAuditRegistry(numClients int) *AuditRegistry {
	return NewRegistry[vdpf.AuditToken](numClients)
}

// ShareCheck is one peer server's verdict on a client's audit, exchanged
// after check_audit so that a quorum of servers agree on acceptance before
// any of them accumulates the write. original_source's check_registry.rs
// holds a generated-proto ShareCheck type not present in the filtered
// source; this restores its shape as the minimal data the registry needs
// to hold.
type ShareCheck struct {
	Accepted bool
}

// CheckRegistry is structurally identical to AuditRegistry (spec.md
// §4.6), holding ShareCheck values instead of AuditTokens.
type CheckRegistry = Registry[ShareCheck]

// NewCheckRegistry allocates a CheckRegistry for numClients clients.
func NewCheckRegistry(numClients int) *CheckRegistry {
	return NewRegistry[ShareCheck](numClients)
}
