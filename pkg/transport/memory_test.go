// ABOUTME: Tests for MemoryConn
// ABOUTME: Asserts request recording, handler delegation, and post-Close connectivity loss
package transport

import (
	"context"
	"testing"
)

func TestMemoryConn_SendRecordsAndDelegates(t *testing.T) {
	conn := NewMemoryConn(func(body []byte, meta Metadata) (*Response, error) {
		return &Response{HasChunk: true, Chunk: []byte("reply"), Epoch: 1}, nil
	})

	resp, err := conn.Send(context.Background(), []byte("req"), Metadata{UserID: "u1"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !resp.HasChunk || string(resp.Chunk) != "reply" {
		t.Errorf("resp = %+v", resp)
	}
	if len(conn.Requests) != 1 || conn.Requests[0].Metadata.UserID != "u1" {
		t.Errorf("Requests = %+v", conn.Requests)
	}
}

func TestMemoryConn_SendAfterCloseSignalsConnectivityLoss(t *testing.T) {
	conn := NewMemoryConn(func(body []byte, meta Metadata) (*Response, error) {
		t.Fatal("handler should not run after Close")
		return nil, nil
	})
	if err := conn.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	resp, err := conn.Send(context.Background(), []byte("req"), Metadata{})
	if resp != nil || err != nil {
		t.Errorf("Send after Close = (%v, %v), want (nil, nil)", resp, err)
	}
}
