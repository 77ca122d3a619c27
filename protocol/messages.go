package protocol

// Wire message schemas (spec.md §6). These are transport-agnostic: no RPC
// stub is implemented here (out of scope per spec.md §1), but the shapes
// are fixed so a transport collaborator has a stable contract to carry.
// WriteToken and AuditShare travel as the gob-encoded opaque blobs
// MarshalBinary/UnmarshalBinary produce.

// UploadRequest carries one server's share of a client's write.
type UploadRequest struct {
	ClientID   string
	WriteToken []byte
}

// UploadResponse acknowledges an UploadRequest.
type UploadResponse struct{}

// VerifyRequest carries one peer server's audit share for a client.
type VerifyRequest struct {
	ClientID   string
	AuditShare []byte
}

// VerifyResponse acknowledges a VerifyRequest.
type VerifyResponse struct{}

// AggregateRequest carries one worker's final channel accumulator at
// epoch end.
type AggregateRequest struct {
	WorkerID    string
	Accumulator [][]byte
}

// ShardInfo identifies one peer server a client should send shares to:
// its trust group and its index within that group (spec.md §6's
// SPECTRUM_*_GROUP / SPECTRUM_*_INDEX identifiers).
type ShardInfo struct {
	Group string
	Index int
}

// RegisterClientRequest associates a client with the set of peer servers
// it will upload to.
type RegisterClientRequest struct {
	ClientID  string
	ShardInfo []ShardInfo
}

// RegisterClientResponse acknowledges a RegisterClientRequest.
type RegisterClientResponse struct{}
