// ABOUTME: Unit tests for the chunk algebra
// ABOUTME: Covers construction invariants, contiguity, and reference checks
package chunk

import (
	"errors"
	"testing"

	"github.com/gwillen/solstice-audio-test/pkg/bberrors"
)

func TestNewAudioChunk(t *testing.T) {
	clientRef := NewClientReference(48000)
	serverRef := NewServerReference(48000)

	tests := []struct {
		name     string
		interval ClockInterval
		data     []float32
		wantErr  bool
	}{
		{
			name:     "valid",
			interval: ClockInterval{Reference: clientRef, End: 100, Length: 100},
			data:     make([]float32, 100),
			wantErr:  false,
		},
		{
			name:     "wrong reference variant",
			interval: ClockInterval{Reference: serverRef, End: 100, Length: 100},
			data:     make([]float32, 100),
			wantErr:  true,
		},
		{
			name:     "data length mismatch",
			interval: ClockInterval{Reference: clientRef, End: 100, Length: 100},
			data:     make([]float32, 50),
			wantErr:  true,
		},
		{
			name:     "negative length",
			interval: ClockInterval{Reference: clientRef, End: 100, Length: -1},
			data:     nil,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAudioChunk(tt.interval, tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewAudioChunk() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConcatAudio(t *testing.T) {
	ref := NewClientReference(48000)

	a, _ := NewAudioChunk(ClockInterval{Reference: ref, End: 100, Length: 100}, make([]float32, 100))
	b, _ := NewAudioChunk(ClockInterval{Reference: ref, End: 200, Length: 100}, make([]float32, 100))

	merged, err := ConcatAudio([]AudioChunk{a, b})
	if err != nil {
		t.Fatalf("ConcatAudio() unexpected error = %v", err)
	}
	if merged.Interval().Start() != 0 || merged.Interval().End != 200 {
		t.Errorf("ConcatAudio() interval = %+v, want [0,200)", merged.Interval())
	}
	if len(merged.Data) != 200 {
		t.Errorf("ConcatAudio() data length = %d, want 200", len(merged.Data))
	}
}

func TestConcatAudio_NonContiguous(t *testing.T) {
	ref := NewClientReference(48000)

	a, _ := NewAudioChunk(ClockInterval{Reference: ref, End: 100, Length: 100}, make([]float32, 100))
	b, _ := NewAudioChunk(ClockInterval{Reference: ref, End: 201, Length: 100}, make([]float32, 100))

	_, err := ConcatAudio([]AudioChunk{a, b})
	if !errors.Is(err, bberrors.ErrNonContiguous) {
		t.Fatalf("ConcatAudio() error = %v, want NonContiguous", err)
	}
}

func TestConcatPlaceholder(t *testing.T) {
	ref := NewServerReference(48000)

	a, _ := NewPlaceholderChunk(ClockInterval{Reference: ref, End: 2880, Length: 2880})
	b, _ := NewPlaceholderChunk(ClockInterval{Reference: ref, End: 5760, Length: 2880})

	merged, err := ConcatPlaceholder([]PlaceholderChunk{a, b})
	if err != nil {
		t.Fatalf("ConcatPlaceholder() unexpected error = %v", err)
	}
	if merged.Interval().Length != 5760 {
		t.Errorf("ConcatPlaceholder() length = %d, want 5760", merged.Interval().Length)
	}
}

func TestCheckClockReference(t *testing.T) {
	clientRef := NewClientReference(48000)
	serverRef := NewServerReference(48000)

	c, _ := NewAudioChunk(ClockInterval{Reference: clientRef, End: 100, Length: 100}, make([]float32, 100))

	if err := CheckClockReference(c, clientRef); err != nil {
		t.Errorf("CheckClockReference() unexpected error = %v", err)
	}
	if err := CheckClockReference(c, serverRef); !errors.Is(err, bberrors.ErrClockReferenceMismatch) {
		t.Errorf("CheckClockReference() error = %v, want ClockReferenceMismatch", err)
	}
}

func TestWireChunkRebless(t *testing.T) {
	tests := []struct {
		name    string
		w       WireChunk
		wantErr bool
	}{
		{
			name: "audio",
			w: WireChunk{
				Kind: WireAudio, Reference: WireReferenceClient, Rate: 48000,
				End: 10, Length: 10, Samples: make([]float32, 10),
			},
		},
		{
			name: "compressed",
			w: WireChunk{
				Kind: WireCompressed, Reference: WireReferenceServer, Rate: 48000,
				End: 2880, Length: 2880, Data: []byte{1, 2, 3},
			},
		},
		{
			name: "placeholder",
			w: WireChunk{
				Kind: WirePlaceholder, Reference: WireReferenceClient, Rate: 44100,
				End: 500, Length: 500,
			},
		},
		{
			name:    "unknown kind",
			w:       WireChunk{Kind: "bogus", Reference: WireReferenceClient, Rate: 48000},
			wantErr: true,
		},
		{
			name:    "unknown reference",
			w:       WireChunk{Kind: WireAudio, Reference: "bogus", Rate: 48000, End: 0, Length: 0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.w.Rebless()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Rebless() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && c.Interval().End != tt.w.End {
				t.Errorf("Rebless() interval end = %d, want %d", c.Interval().End, tt.w.End)
			}
		})
	}
}

func TestToWireRoundTrip(t *testing.T) {
	ref := NewClientReference(48000)
	c, _ := NewAudioChunk(ClockInterval{Reference: ref, End: 10, Length: 10}, make([]float32, 10))

	w := ToWire(c)
	back, err := w.Rebless()
	if err != nil {
		t.Fatalf("Rebless() after ToWire unexpected error = %v", err)
	}
	if back.Interval() != c.Interval() {
		t.Errorf("round trip interval = %+v, want %+v", back.Interval(), c.Interval())
	}
}
