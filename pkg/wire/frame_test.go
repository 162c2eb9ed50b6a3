// ABOUTME: Unit tests for the packed multi-packet wire format
// ABOUTME: Covers round-trip packing and malformed-frame detection
package wire

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gwillen/solstice-audio-test/pkg/bberrors"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		packets [][]byte
	}{
		{name: "empty list", packets: [][]byte{}},
		{name: "single packet", packets: [][]byte{{0x00, 0x01, 0x02}}},
		{name: "multiple packets", packets: [][]byte{{0xAA}, {0xBB, 0xCC}, {}}},
		{name: "empty packet among others", packets: [][]byte{{}, {0x01}, {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := PackMulti(tt.packets)
			if err != nil {
				t.Fatalf("PackMulti() unexpected error = %v", err)
			}

			got, err := UnpackMulti(blob)
			if err != nil {
				t.Fatalf("UnpackMulti() unexpected error = %v", err)
			}

			if len(got) != len(tt.packets) {
				t.Fatalf("UnpackMulti() returned %d packets, want %d", len(got), len(tt.packets))
			}
			for i := range tt.packets {
				if !bytes.Equal(got[i], tt.packets[i]) {
					t.Errorf("packet %d = %v, want %v", i, got[i], tt.packets[i])
				}
			}
		})
	}
}

func TestPackMultiSize(t *testing.T) {
	packets := [][]byte{{1, 2, 3}, {4, 5}}
	blob, err := PackMulti(packets)
	if err != nil {
		t.Fatalf("PackMulti() unexpected error = %v", err)
	}

	want := 1 + (2 + 3) + (2 + 2)
	if len(blob) != want {
		t.Errorf("PackMulti() size = %d, want %d", len(blob), want)
	}
}

func TestUnpackMultiMalformed(t *testing.T) {
	tests := []struct {
		name string
		blob []byte
	}{
		{name: "empty blob", blob: []byte{}},
		{name: "truncated length prefix", blob: []byte{1, 0x00}},
		{name: "length runs past end", blob: []byte{1, 0x00, 0x05, 0x01, 0x02}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnpackMulti(tt.blob)
			if !errors.Is(err, bberrors.ErrMalformedFrame) {
				t.Errorf("UnpackMulti() error = %v, want MalformedFrame", err)
			}
		})
	}
}

func TestPackMultiPacketTooLong(t *testing.T) {
	_, err := PackMulti([][]byte{make([]byte, 1<<16)})
	if err == nil {
		t.Error("PackMulti() expected error for oversized packet")
	}
}
