package worker

import "sync"

// mailbox is the per-client growing vector of shares, guarded by its own
// exclusive lock so concurrent Adds to the same client need not serialize
// against Adds to other clients (spec.md §4.6's per-client audit registry
// slot).
type mailbox[T any] struct {
	mu    sync.Mutex
	items []T
}

// slot gates a single client's mailbox behind a readers-writer lock: Add
// takes the read side (many concurrent adds), Drain takes the write side
// (a one-time, exclusive takeover). A nil mail means the slot has already
// been drained.
type slot[T any] struct {
	mu   sync.RWMutex
	mail *mailbox[T]
}

// Registry is the once-drain mailbox-per-client structure spec.md §4.6
// describes for both the audit registry and the check registry: "a fixed
// size vector indexed by client; each slot holds Option<Mutex<Vec<S>>>".
// AuditRegistry and CheckRegistry (registries.go) are its two
// instantiations, matching original_source's audit_registry.rs and
// check_registry.rs, which are structurally identical modulo the share
// type.
type Registry[T any] struct {
	slots []*slot[T]
}

// NewRegistry allocates an empty Registry for numClients clients, each
// slot starting as an empty, undrained mailbox.
func NewRegistry[T any](numClients int) *Registry[T] {
	slots := make([]*slot[T], numClients)
	for i := range slots {
		slots[i] = &slot[T]{mail: &mailbox[T]{}}
	}
	return &Registry[T]{slots: slots}
}

// Add appends value to client's mailbox and returns the new length. Add on
// a client whose mailbox has already been drained is a programming error
// and panics, matching original_source/src/worker/audit_registry.rs's
// `.expect("Can only add to client that hasn't had its shares drained")`.
func (r *Registry[T]) Add(client int, value T) int {
	s := r.slots[client]
	s.mu.RLock()
	defer s.mu.RUnlock()
	mail := s.mail
	if mail == nil {
		panic("worker: Add called on a drained registry slot")
	}
	mail.mu.Lock()
	defer mail.mu.Unlock()
	mail.items = append(mail.items, value)
	return len(mail.items)
}

// Drain takes client's mailbox contents and marks the slot unusable. A
// second Drain (or any further Add) on the same client is a programming
// error and panics — spec.md §5's "Invariant on once-drain": this
// assertion models the protocol's control flow never re-draining a
// client, not a recoverable error.
func (r *Registry[T]) Drain(client int) []T {
	s := r.slots[client]
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mail == nil {
		panic("worker: Drain called twice on the same registry slot")
	}
	mail := s.mail
	s.mail = nil
	mail.mu.Lock()
	defer mail.mu.Unlock()
	items := mail.items
	mail.items = nil
	return items
}

// Len reports how many clients the registry was sized for.
func (r *Registry[T]) Len() int { return len(r.slots) }
