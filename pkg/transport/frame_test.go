// ABOUTME: Tests for the request/response frame encoding
// ABOUTME: Asserts encodeFrame/decodeFrame round trip headers and payloads intact
package transport

import "testing"

func TestEncodeDecodeFrameRoundTrip(t *testing.T) {
	hdr := requestHeader{
		UserID:             "u1",
		Username:           "alice",
		AudioOffsetSeconds: 1.5,
		Events:             map[string]any{"declare_event": "ping"},
	}
	body := []byte{1, 2, 3, 4}

	frame, err := encodeFrame(hdr, body)
	if err != nil {
		t.Fatalf("encodeFrame: %v", err)
	}

	var got requestHeader
	payload, err := decodeFrame(frame, &got)
	if err != nil {
		t.Fatalf("decodeFrame: %v", err)
	}
	if got.UserID != hdr.UserID || got.Username != hdr.Username {
		t.Errorf("header = %+v, want %+v", got, hdr)
	}
	if string(payload) != string(body) {
		t.Errorf("payload = %v, want %v", payload, body)
	}
}

func TestDecodeFrameTooShort(t *testing.T) {
	var hdr requestHeader
	if _, err := decodeFrame([]byte{1, 2}, &hdr); err == nil {
		t.Error("expected error for too-short frame")
	}
}

func TestEncodeDecodeFrameEmptyPayload(t *testing.T) {
	hdr := responseHeader{HasChunk: false, Epoch: 3}
	frame, err := encodeFrame(hdr, nil)
	if err != nil {
		t.Fatalf("encodeFrame: %v", err)
	}
	var got responseHeader
	payload, err := decodeFrame(frame, &got)
	if err != nil {
		t.Fatalf("decodeFrame: %v", err)
	}
	if got.HasChunk || got.Epoch != 3 {
		t.Errorf("header = %+v", got)
	}
	if len(payload) != 0 {
		t.Errorf("payload = %v, want empty", payload)
	}
}
