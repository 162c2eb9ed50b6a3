// ABOUTME: gorilla/websocket-backed Conn implementation (spec section 6.5)
// ABOUTME: One connection, one request/response message pair, read back synchronously in Send
package transport

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketConfig configures a WebSocketConn.
type WebSocketConfig struct {
	ServerAddr string // host:port, ws scheme assumed
	Path       string
}

// WebSocketConn is the gorilla/websocket-backed Conn (spec section 6.5),
// grounded on the teacher's internal/client/websocket.go Client: one
// connection, one binary message per request, one binary message per
// response, read back synchronously in Send since the connection is
// strictly ordered and this transport never has more than one request in
// flight at a time (mirrors pkg/singer's single-outstanding-batch
// discipline).
type WebSocketConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// DialWebSocket connects to cfg.ServerAddr and returns a ready Conn.
func DialWebSocket(cfg WebSocketConfig) (*WebSocketConn, error) {
	path := cfg.Path
	if path == "" {
		path = "/"
	}
	u := url.URL{Scheme: "ws", Host: cfg.ServerAddr, Path: path}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", u.String(), err)
	}
	return &WebSocketConn{conn: conn}, nil
}

// Send transmits one request and waits for its response. A closed or
// broken connection is reported as (nil, nil): connectivity lost, not an
// application error (spec section 4.7's "None" response).
func (c *WebSocketConn) Send(ctx context.Context, body []byte, meta Metadata) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetWriteDeadline(deadline)
		c.conn.SetReadDeadline(deadline)
	} else {
		c.conn.SetWriteDeadline(time.Time{})
		c.conn.SetReadDeadline(time.Time{})
	}

	frame, err := encodeFrame(requestHeader{
		UserID:             meta.UserID,
		Username:           meta.Username,
		AudioOffsetSeconds: meta.AudioOffsetSeconds,
		Events:             meta.Events,
		Epoch:              meta.Epoch,
	}, body)
	if err != nil {
		return nil, err
	}

	if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return nil, nil
	}

	msgType, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, nil
	}
	if msgType != websocket.BinaryMessage {
		return nil, fmt.Errorf("transport: unexpected message type %d", msgType)
	}

	var hdr responseHeader
	chunk, err := decodeFrame(data, &hdr)
	if err != nil {
		return nil, err
	}

	return &Response{
		Metadata: Metadata{
			UserID:             hdr.UserID,
			Username:           hdr.Username,
			AudioOffsetSeconds: hdr.AudioOffsetSeconds,
			Events:             hdr.Events,
		},
		Chunk:    chunk,
		HasChunk: hdr.HasChunk,
		Epoch:    hdr.Epoch,
	}, nil
}

// Close closes the underlying connection.
func (c *WebSocketConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}
