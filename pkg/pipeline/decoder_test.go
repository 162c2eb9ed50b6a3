// ABOUTME: Scenario-style tests for the decoder pipeline's clock bookkeeping
// ABOUTME: and multi-packet dispatch-before-await ordering, against codec.MockDecoderWorker
package pipeline

import (
	"errors"
	"testing"

	"github.com/gwillen/solstice-audio-test/pkg/bberrors"
	"github.com/gwillen/solstice-audio-test/pkg/chunk"
	"github.com/gwillen/solstice-audio-test/pkg/codec"
	"github.com/gwillen/solstice-audio-test/pkg/wire"
)

func serverInterval(rate int, end, length int64) chunk.ClockInterval {
	return chunk.ClockInterval{Reference: chunk.NewServerReference(rate), End: end, Length: length}
}

func TestDecoder_StraightThroughAudio(t *testing.T) {
	packed, err := wire.PackMulti([][]byte{{1, 2, 3}})
	if err != nil {
		t.Fatalf("PackMulti: %v", err)
	}

	worker := codec.NewMockDecoderWorker([]codec.DecodeResult{
		{Samples: make([]float32, 960)},
	})
	dec := NewDecoder(worker)
	if err := dec.Setup(DecoderConfig{SamplingRate: 48000, NumChannels: 1}); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	in, err := chunk.NewCompressedAudioChunk(serverInterval(48000, 960, 960), packed)
	if err != nil {
		t.Fatalf("NewCompressedAudioChunk: %v", err)
	}

	out, err := dec.DecodeChunk(in)
	if err != nil {
		t.Fatalf("DecodeChunk: %v", err)
	}
	audio := out.(chunk.AudioChunk)
	if audio.Interval().End != 960 || audio.Interval().Length != 960 {
		t.Errorf("interval = %+v, want end=960 length=960", audio.Interval())
	}
}

// multiPacketDispatchOrder verifies that the PCM decoded from every packet
// in a chunk comes back concatenated in dispatch order.
func TestDecoder_MultiPacketDispatchOrder(t *testing.T) {
	packed, err := wire.PackMulti([][]byte{{1}, {2}, {3}})
	if err != nil {
		t.Fatalf("PackMulti: %v", err)
	}

	worker := codec.NewMockDecoderWorker([]codec.DecodeResult{
		{Samples: []float32{0.1, 0.1}},
		{Samples: []float32{0.2, 0.2}},
		{Samples: []float32{0.3, 0.3}},
	})
	dec := NewDecoder(worker)
	if err := dec.Setup(DecoderConfig{SamplingRate: 48000, NumChannels: 1}); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	in, err := chunk.NewCompressedAudioChunk(serverInterval(48000, 6, 6), packed)
	if err != nil {
		t.Fatalf("NewCompressedAudioChunk: %v", err)
	}

	out, err := dec.DecodeChunk(in)
	if err != nil {
		t.Fatalf("DecodeChunk: %v", err)
	}
	audio := out.(chunk.AudioChunk)
	want := []float32{0.1, 0.1, 0.2, 0.2, 0.3, 0.3}
	if len(audio.Data) != len(want) {
		t.Fatalf("got %d samples, want %d", len(audio.Data), len(want))
	}
	for i := range want {
		if audio.Data[i] != want[i] {
			t.Errorf("Data[%d] = %v, want %v", i, audio.Data[i], want[i])
		}
	}
}

func TestDecoder_PlaceholderNoFrameSnapping(t *testing.T) {
	worker := codec.NewMockDecoderWorker(nil)
	dec := NewDecoder(worker)
	if err := dec.Setup(DecoderConfig{SamplingRate: 48000, NumChannels: 1}); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	in, err := chunk.NewPlaceholderChunk(serverInterval(48000, 2700, 2700))
	if err != nil {
		t.Fatalf("NewPlaceholderChunk: %v", err)
	}

	out, err := dec.DecodeChunk(in)
	if err != nil {
		t.Fatalf("DecodeChunk: %v", err)
	}
	ph := out.(chunk.PlaceholderChunk)
	if ph.Interval().Length != 2700 {
		t.Errorf("length = %d, want 2700 (no Opus-frame snapping on decode)", ph.Interval().Length)
	}
}

func TestDecoder_PlaceholderAfterClockStartFails(t *testing.T) {
	packed, _ := wire.PackMulti([][]byte{{1}})
	worker := codec.NewMockDecoderWorker([]codec.DecodeResult{{Samples: make([]float32, 960)}})
	dec := NewDecoder(worker)
	if err := dec.Setup(DecoderConfig{SamplingRate: 48000, NumChannels: 1}); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	audio, _ := chunk.NewCompressedAudioChunk(serverInterval(48000, 960, 960), packed)
	if _, err := dec.DecodeChunk(audio); err != nil {
		t.Fatalf("DecodeChunk(audio): %v", err)
	}

	ph, _ := chunk.NewPlaceholderChunk(serverInterval(48000, 1920, 960))
	if _, err := dec.DecodeChunk(ph); !errors.Is(err, bberrors.ErrClockStartedPlaceholder) {
		t.Fatalf("error = %v, want ClockStartedPlaceholder", err)
	}
}

func TestDecoder_NonContiguousRejected(t *testing.T) {
	packed, _ := wire.PackMulti([][]byte{{1}})
	worker := codec.NewMockDecoderWorker([]codec.DecodeResult{
		{Samples: make([]float32, 960)},
		{Samples: make([]float32, 960)},
	})
	dec := NewDecoder(worker)
	if err := dec.Setup(DecoderConfig{SamplingRate: 48000, NumChannels: 1}); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	first, _ := chunk.NewCompressedAudioChunk(serverInterval(48000, 960, 960), packed)
	if _, err := dec.DecodeChunk(first); err != nil {
		t.Fatalf("DecodeChunk(first): %v", err)
	}

	gap, _ := chunk.NewCompressedAudioChunk(serverInterval(48000, 2880, 960), packed)
	if _, err := dec.DecodeChunk(gap); !errors.Is(err, bberrors.ErrNonContiguous) {
		t.Fatalf("error = %v, want NonContiguous", err)
	}
}

func TestDecoder_LengthMismatchStrictFails(t *testing.T) {
	packed, _ := wire.PackMulti([][]byte{{1}})
	worker := codec.NewMockDecoderWorker([]codec.DecodeResult{
		{Samples: make([]float32, 100)}, // expected 960, way off
	})
	dec := NewDecoder(worker)
	if err := dec.Setup(DecoderConfig{SamplingRate: 48000, NumChannels: 1}); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	in, _ := chunk.NewCompressedAudioChunk(serverInterval(48000, 960, 960), packed)
	if _, err := dec.DecodeChunk(in); !errors.Is(err, bberrors.ErrDecodeLengthMismatch) {
		t.Fatalf("error = %v, want DecodeLengthMismatch", err)
	}
}

func TestDecoder_LengthMismatchNonStrictTolerated(t *testing.T) {
	packed, _ := wire.PackMulti([][]byte{{1}})
	worker := codec.NewMockDecoderWorker([]codec.DecodeResult{
		{Samples: make([]float32, 100)},
	})
	dec := NewDecoder(worker)
	dec.Strict = false
	if err := dec.Setup(DecoderConfig{SamplingRate: 48000, NumChannels: 1}); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	in, _ := chunk.NewCompressedAudioChunk(serverInterval(48000, 960, 960), packed)
	out, err := dec.DecodeChunk(in)
	if err != nil {
		t.Fatalf("DecodeChunk: %v", err)
	}
	if out.Interval().Length != 100 {
		t.Errorf("length = %d, want actual decoded length 100", out.Interval().Length)
	}
}

func TestDecoder_ResponseOutOfOrderPropagates(t *testing.T) {
	packed, _ := wire.PackMulti([][]byte{{1}, {2}})
	worker := codec.NewMockDecoderWorker([]codec.DecodeResult{
		{RequestID: 99, Samples: make([]float32, 480)},
		{Samples: make([]float32, 480)},
	})
	dec := NewDecoder(worker)
	if err := dec.Setup(DecoderConfig{SamplingRate: 48000, NumChannels: 1}); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	in, _ := chunk.NewCompressedAudioChunk(serverInterval(48000, 960, 960), packed)
	if _, err := dec.DecodeChunk(in); !errors.Is(err, bberrors.ErrResponseOutOfOrder) {
		t.Fatalf("error = %v, want ResponseOutOfOrder", err)
	}
}
