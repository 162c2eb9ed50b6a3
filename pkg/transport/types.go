// ABOUTME: Conn interface, Metadata side-channel, and Response types
// ABOUTME: The transport-agnostic contract pkg/singer drives against
package transport

import "context"

// Metadata is the request/response side-channel: userid, username, offset,
// and opaque event annotations the server consumes without interpretation
// by this layer (spec section 6.5). Epoch tags the request with the
// caller's session generation (spec section 9, "Epoch handling") so a
// response arriving after a reset can be recognized as stale.
type Metadata struct {
	UserID             string
	Username           string
	AudioOffsetSeconds float64
	Events             map[string]any
	Epoch              uint64
}

// Response is one server reply. HasChunk distinguishes "the server had
// nothing to send back yet" (HasChunk false, normal) from a chunk actually
// being present.
type Response struct {
	Metadata Metadata
	Chunk    []byte
	HasChunk bool
	Epoch    uint64
}

// Conn is the server connection the singer client drives. Send returns
// (nil, nil) to signal connectivity loss (the spec's Option<Response> ==
// None) — that is not itself an error, it is the documented terminal
// signal the singer client watches for. A non-nil error means the send
// itself failed unexpectedly.
type Conn interface {
	Send(ctx context.Context, body []byte, meta Metadata) (*Response, error)
	Close() error
}
