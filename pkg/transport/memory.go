// ABOUTME: In-memory Conn test double used in place of a real server
// ABOUTME: Answers Send with an installed handler and records every request for assertions
package transport

import (
	"context"
	"sync"
)

// MemoryConn is an in-memory Conn test double: each call to Send is
// answered by the Handler function the test installs; there is no
// canned-response mode. Used by pkg/singer's tests in place of a real server.
type MemoryConn struct {
	mu       sync.Mutex
	Handler  func(body []byte, meta Metadata) (*Response, error)
	Requests []MemoryRequest
	closed   bool
}

// MemoryRequest records one call made through Send, for assertions.
type MemoryRequest struct {
	Body     []byte
	Metadata Metadata
}

// NewMemoryConn builds a MemoryConn that answers every Send with handler.
func NewMemoryConn(handler func(body []byte, meta Metadata) (*Response, error)) *MemoryConn {
	return &MemoryConn{Handler: handler}
}

// Send records the request and delegates to Handler. Returns (nil, nil)
// once Close has been called, matching a real connection going away.
func (c *MemoryConn) Send(ctx context.Context, body []byte, meta Metadata) (*Response, error) {
	c.mu.Lock()
	closed := c.closed
	c.Requests = append(c.Requests, MemoryRequest{Body: body, Metadata: meta})
	c.mu.Unlock()

	if closed {
		return nil, nil
	}
	return c.Handler(body, meta)
}

// Close marks the connection as gone; subsequent Sends report connectivity
// loss.
func (c *MemoryConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
