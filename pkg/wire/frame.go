// ABOUTME: PackMulti/UnpackMulti: the [count][len_hi][len_lo]bytes multi-packet wire framing
// ABOUTME: Used by both codec pipeline directions to pack a chunk's Opus packets together
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/gwillen/solstice-audio-test/pkg/bberrors"
)

// maxPacketLen is the largest payload PackMulti can frame: length is
// encoded in 16 bits, and PackMulti returns an error for any longer packet.
const maxPacketLen = 1<<16 - 1

// PackMulti writes packets as [count:u8]([len_hi:u8][len_lo:u8]payload){count},
// big-endian, matching the framing internal/client/websocket.go uses for
// its own length-prefixed binary messages.
func PackMulti(packets [][]byte) ([]byte, error) {
	if len(packets) > 255 {
		return nil, fmt.Errorf("wire: PackMulti: %d packets exceeds the 8-bit count field", len(packets))
	}

	total := 1
	for _, p := range packets {
		if len(p) > maxPacketLen {
			return nil, fmt.Errorf("wire: PackMulti: packet of %d bytes exceeds 16-bit length field", len(p))
		}
		total += 2 + len(p)
	}

	out := make([]byte, 0, total)
	out = append(out, byte(len(packets)))
	for _, p := range packets {
		var lenBuf [2]byte
		binary.BigEndian.PutUint16(lenBuf[:], uint16(len(p)))
		out = append(out, lenBuf[0], lenBuf[1])
		out = append(out, p...)
	}
	return out, nil
}

// UnpackMulti reverses PackMulti, returning MalformedFrame if a declared
// length runs past the end of blob.
func UnpackMulti(blob []byte) ([][]byte, error) {
	if len(blob) < 1 {
		return nil, fmt.Errorf("wire: UnpackMulti: %w: empty blob", bberrors.ErrMalformedFrame)
	}

	count := int(blob[0])
	packets := make([][]byte, 0, count)
	pos := 1

	for i := 0; i < count; i++ {
		if pos+2 > len(blob) {
			return nil, fmt.Errorf("wire: UnpackMulti: %w: truncated length prefix for packet %d", bberrors.ErrMalformedFrame, i)
		}
		length := int(binary.BigEndian.Uint16(blob[pos : pos+2]))
		pos += 2

		if pos+length > len(blob) {
			return nil, fmt.Errorf("wire: UnpackMulti: %w: packet %d of length %d runs past end of blob", bberrors.ErrMalformedFrame, i, length)
		}
		packets = append(packets, blob[pos:pos+length])
		pos += length
	}

	return packets, nil
}
