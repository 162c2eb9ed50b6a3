// ABOUTME: Decoder pipeline (spec section 4.5): server-referenced compressed chunks in, client-referenced audio out
// ABOUTME: The encoder's mirror, minus the sub-frame remainder it has no need to carry
package pipeline

import (
	"fmt"

	"github.com/gwillen/solstice-audio-test/pkg/bbconst"
	"github.com/gwillen/solstice-audio-test/pkg/bberrors"
	"github.com/gwillen/solstice-audio-test/pkg/chunk"
	"github.com/gwillen/solstice-audio-test/pkg/codec"
	"github.com/gwillen/solstice-audio-test/pkg/wire"
)

// DecoderConfig is the decoder pipeline's setup payload: the client's
// speaker sampling rate and channel count.
type DecoderConfig struct {
	SamplingRate int
	NumChannels  int
}

// Decoder is the decoder pipeline (spec section 4.5), the encoder's mirror:
// it accepts a contiguous stream of server-referenced chunks and emits
// client-referenced PCM chunks, driving a codec.DecoderWorker underneath.
//
// Unlike the encoder, the decoder has no sub-frame remainder to carry:
// placeholder lengths convert with a plain rounding, with no frame-boundary
// snapping, so there is nothing left over to queue.
type Decoder struct {
	worker codec.DecoderWorker

	clientRate int
	serverRate int
	clientRef  chunk.ClockReference
	serverRef  chunk.ClockReference

	// Strict controls whether a DecodeLengthMismatch of
	// bbconst.DriftThresholdSamples or more fails the decode outright (true, the
	// default) or is tolerated and the actual decoded length is used
	// instead (false).
	Strict bool

	// Resampling reports whether the client rate configured at Setup
	// differs from the canonical codec rate. The decoder worker contract
	// (spec section 6.1) has no response field for this, unlike the
	// encoder's, so it is inferred from the configured rates rather than
	// reported by the worker.
	Resampling bool

	clientClock *int64
	serverClock *int64

	placeholderEnd int64

	pending       codec.PendingQueue
	nextRequestID uint32

	epoch uint64
}

// NewDecoder builds a Decoder driving worker. Setup must be called before
// DecodeChunk.
func NewDecoder(worker codec.DecoderWorker) *Decoder {
	return &Decoder{worker: worker, serverRate: bbconst.DefaultCodecRate, Strict: true}
}

// Setup performs the one-time codec setup call and establishes the
// pipeline's clock references.
func (d *Decoder) Setup(cfg DecoderConfig) error {
	if err := d.worker.Setup(codec.DecoderConfig{
		SamplingRate: cfg.SamplingRate,
		NumChannels:  cfg.NumChannels,
	}); err != nil {
		return fmt.Errorf("pipeline: decoder setup: %w: %v", bberrors.ErrSetupFailed, err)
	}

	d.clientRate = cfg.SamplingRate
	d.serverRate = bbconst.DefaultCodecRate
	d.Resampling = cfg.SamplingRate != d.serverRate
	d.clientRef = chunk.NewClientReference(cfg.SamplingRate)
	d.serverRef = chunk.NewServerReference(d.serverRate)
	return nil
}

// ServerReference is the decoder's server-rate clock reference, needed by
// callers (pkg/singer) to construct the incoming CompressedAudioChunk the
// transport layer's raw response bytes don't carry an interval for.
func (d *Decoder) ServerReference() chunk.ClockReference { return d.serverRef }

// NextServerStart is the server-clock position the next incoming
// CompressedAudioChunk must start at: the running server clock once audio
// has started it, or the placeholder-tracked position otherwise.
func (d *Decoder) NextServerStart() int64 {
	if d.serverClock != nil {
		return *d.serverClock
	}
	return d.placeholderEnd
}

// OpusFrameSamples is the fixed Opus frame length at the server rate, the
// unit the transport's packed multi-packet responses are self-describing
// in: each packet decodes to exactly this many samples. It is the
// decode-side counterpart of Encoder.opusFrameSamples.
func (d *Decoder) OpusFrameSamples() int64 {
	return int64(d.serverRate) * bbconst.OpusFrameMs / 1000
}

// Reset clears all clock and buffering state and resets the underlying
// worker.
func (d *Decoder) Reset() {
	d.clientClock = nil
	d.serverClock = nil
	d.placeholderEnd = 0
	d.pending.Reset()
	d.worker.Reset()
}

// SetEpoch records the session generation subsequent codec RPCs are
// dispatched under. DecodeChunk discards a result whose request went out
// under an epoch that Reset has since superseded (spec section 9, "Epoch
// handling").
func (d *Decoder) SetEpoch(epoch uint64) { d.epoch = epoch }

// DecodeChunk processes one server-referenced chunk and returns the
// resulting client-referenced chunk.
func (d *Decoder) DecodeChunk(c chunk.Chunk) (chunk.Chunk, error) {
	if err := chunk.CheckClockReference(c, d.serverRef); err != nil {
		return nil, err
	}

	switch v := c.(type) {
	case chunk.PlaceholderChunk:
		return d.decodePlaceholder(v)
	case chunk.CompressedAudioChunk:
		return d.decodeAudio(v)
	default:
		return nil, fmt.Errorf("pipeline: decoder: unsupported chunk kind %T", c)
	}
}

func (d *Decoder) decodePlaceholder(c chunk.PlaceholderChunk) (chunk.Chunk, error) {
	if d.clientClock != nil {
		return nil, fmt.Errorf("pipeline: decoder: %w", bberrors.ErrClockStartedPlaceholder)
	}

	resultLength := roundRatio(c.Interval().Length, int64(d.clientRate), int64(d.serverRate))

	end := d.placeholderEnd + resultLength
	d.placeholderEnd = end

	return chunk.NewPlaceholderChunk(chunk.ClockInterval{
		Reference: d.clientRef,
		End:       end,
		Length:    resultLength,
	})
}

func (d *Decoder) decodeAudio(c chunk.CompressedAudioChunk) (chunk.Chunk, error) {
	start := c.Interval().Start()

	if d.clientClock == nil {
		sc := start
		cc := roundRatio(sc, int64(d.clientRate), int64(d.serverRate))
		d.serverClock = &sc
		d.clientClock = &cc
	}

	if start != *d.serverClock {
		return nil, fmt.Errorf("pipeline: decoder: %w: chunk starts at %d, expected %d",
			bberrors.ErrNonContiguous, start, *d.serverClock)
	}
	*d.serverClock = c.Interval().End

	packets, err := wire.UnpackMulti(c.Data)
	if err != nil {
		return nil, err
	}

	dispatchEpoch := d.epoch
	ids := make([]uint32, len(packets))
	for i, p := range packets {
		id := d.nextRequestID
		d.nextRequestID++
		ids[i] = id
		d.pending.Push(id)
		d.worker.Submit(id, p)
	}

	var pcm []float32
	for range ids {
		result := <-d.worker.Results()
		if d.epoch != dispatchEpoch {
			// Reset ran while these RPCs were in flight; the pending
			// queue and clock state they belonged to are already gone.
			return nil, nil
		}
		if err := d.pending.Pop(result.RequestID); err != nil {
			return nil, err
		}
		if result.Exception != "" {
			return nil, &bberrors.CodecExceptionError{Payload: result.Exception}
		}
		if result.Status != 0 {
			return nil, &bberrors.CodecRPCFailedError{Status: result.Status}
		}
		pcm = append(pcm, result.Samples...)
	}

	expected := roundRatio(c.Interval().Length, int64(d.clientRate), int64(d.serverRate))
	actual := int64(len(pcm))
	if diff := absInt64(expected - actual); diff >= bbconst.DriftThresholdSamples {
		if d.Strict {
			return nil, fmt.Errorf("pipeline: decoder: %w: expected %d samples, got %d",
				bberrors.ErrDecodeLengthMismatch, expected, actual)
		}
	}

	*d.clientClock += actual

	return chunk.NewAudioChunk(chunk.ClockInterval{
		Reference: d.clientRef,
		End:       *d.clientClock,
		Length:    actual,
	}, pcm)
}
