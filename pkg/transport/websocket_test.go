// ABOUTME: Tests for WebSocketConn
// ABOUTME: Drives it against an httptest-backed echo server
package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// echoServer answers each request frame with a response frame containing
// the same body bytes, doubling as the has-chunk flag: an empty request
// body gets an empty (no-chunk) response, grounded on the teacher's
// internal/server/server.go upgrade-and-serve loop.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if msgType != websocket.BinaryMessage {
				continue
			}
			var hdr requestHeader
			body, err := decodeFrame(data, &hdr)
			if err != nil {
				t.Errorf("server decodeFrame: %v", err)
				return
			}
			resp, err := encodeFrame(responseHeader{
				UserID:   hdr.UserID,
				HasChunk: len(body) > 0,
				Epoch:    7,
			}, body)
			if err != nil {
				t.Errorf("server encodeFrame: %v", err)
				return
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, resp); err != nil {
				return
			}
		}
	}))
}

func TestWebSocketConn_SendReceivesEchoedChunk(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	conn, err := DialWebSocket(WebSocketConfig{ServerAddr: strings.TrimPrefix(srv.URL, "http://")})
	if err != nil {
		t.Fatalf("DialWebSocket: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resp, err := conn.Send(ctx, []byte{9, 9, 9}, Metadata{UserID: "u1"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !resp.HasChunk || string(resp.Chunk) != string([]byte{9, 9, 9}) {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Epoch != 7 || resp.Metadata.UserID != "u1" {
		t.Errorf("resp header = %+v", resp)
	}
}

func TestWebSocketConn_SendEmptyBodyGetsNoChunk(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	conn, err := DialWebSocket(WebSocketConfig{ServerAddr: strings.TrimPrefix(srv.URL, "http://")})
	if err != nil {
		t.Fatalf("DialWebSocket: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resp, err := conn.Send(ctx, nil, Metadata{})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.HasChunk {
		t.Errorf("resp.HasChunk = true, want false for empty body")
	}
}

func TestWebSocketConn_SendAfterServerCloseSignalsConnectivityLoss(t *testing.T) {
	srv := echoServer(t)
	conn, err := DialWebSocket(WebSocketConfig{ServerAddr: strings.TrimPrefix(srv.URL, "http://")})
	if err != nil {
		t.Fatalf("DialWebSocket: %v", err)
	}
	defer conn.Close()

	srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := conn.Send(ctx, []byte{1}, Metadata{})
	if resp != nil || err != nil {
		t.Errorf("Send after server close = (%v, %v), want (nil, nil)", resp, err)
	}
}
