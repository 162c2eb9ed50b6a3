// ABOUTME: Length-prefixed JSON-header-plus-binary-payload request/response framing
// ABOUTME: [header_len:u32 BE][header JSON][payload], used by both directions over the socket
package transport

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// requestHeader is the JSON side-channel sent ahead of a request's binary
// body, mirroring the teacher's msgType|payload binary framing
// (internal/client/websocket.go handleBinaryMessage) but carrying
// structured metadata instead of a bare timestamp.
type requestHeader struct {
	UserID             string         `json:"user_id,omitempty"`
	Username           string         `json:"username,omitempty"`
	AudioOffsetSeconds float64        `json:"audio_offset_seconds"`
	Events             map[string]any `json:"events,omitempty"`
	Epoch              uint64         `json:"epoch"`
}

// responseHeader is the JSON side-channel that precedes a response's
// optional binary chunk.
type responseHeader struct {
	UserID             string         `json:"user_id,omitempty"`
	Username           string         `json:"username,omitempty"`
	AudioOffsetSeconds float64        `json:"audio_offset_seconds"`
	Events             map[string]any `json:"events,omitempty"`
	HasChunk           bool           `json:"has_chunk"`
	Epoch              uint64         `json:"epoch"`
}

// encodeFrame packs a JSON header and a binary payload into a single
// websocket binary message: [header_len:u32 BE][header JSON][payload].
func encodeFrame(header any, payload []byte) ([]byte, error) {
	h, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("transport: marshal header: %w", err)
	}
	buf := make([]byte, 4+len(h)+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(h)))
	copy(buf[4:], h)
	copy(buf[4+len(h):], payload)
	return buf, nil
}

// decodeFrame splits a websocket binary message back into its JSON header
// and binary payload.
func decodeFrame(data []byte, header any) (payload []byte, err error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("transport: frame too short: %d bytes", len(data))
	}
	hlen := binary.BigEndian.Uint32(data[0:4])
	if uint64(4+hlen) > uint64(len(data)) {
		return nil, fmt.Errorf("transport: frame header length %d exceeds message size %d", hlen, len(data))
	}
	if err := json.Unmarshal(data[4:4+hlen], header); err != nil {
		return nil, fmt.Errorf("transport: unmarshal header: %w", err)
	}
	return data[4+hlen:], nil
}
