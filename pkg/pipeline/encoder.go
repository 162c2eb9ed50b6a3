// ABOUTME: Encoder pipeline (spec section 4.4): client-referenced audio in, server-referenced compressed chunks out
// ABOUTME: Owns the dual clock state, queued remainder, drift check, and epoch-tagged codec RPCs
package pipeline

import (
	"fmt"

	"github.com/gwillen/solstice-audio-test/pkg/bbconst"
	"github.com/gwillen/solstice-audio-test/pkg/bberrors"
	"github.com/gwillen/solstice-audio-test/pkg/chunk"
	"github.com/gwillen/solstice-audio-test/pkg/codec"
	"github.com/gwillen/solstice-audio-test/pkg/wire"
)

// EncoderConfig is the encoder pipeline's setup payload: the client's
// microphone sampling rate and channel count. The server/codec side is
// always bbconst.DefaultCodecRate.
type EncoderConfig struct {
	SamplingRate    int
	NumChannels     int
	FrameDurationMs int
}

// Encoder is the encoder pipeline (spec section 4.4): it accepts a
// contiguous stream of client-referenced chunks and emits server-referenced
// compressed chunks aligned to Opus frame boundaries, driving a
// codec.EncoderWorker underneath.
//
// A queued remainder can only exist while the clocks are unset (placeholders
// are illegal once real audio has started the clocks, so nothing can enqueue
// a new one afterward). If real audio arrives while a remainder from a prior
// placeholder run is still queued, that remainder is discarded rather than
// folded into the audio branch: the clock-start rounding in that branch must
// stay a bijection of chunk.Start() alone, or the clock-bijection invariant
// the pipeline is tested against would no longer hold from the first sample.
type Encoder struct {
	worker codec.EncoderWorker

	clientRate int
	serverRate int
	clientRef  chunk.ClockReference
	serverRef  chunk.ClockReference

	Resampling bool

	clientClock *int64
	serverClock *int64

	hasQueuedRemainder bool
	queuedRemainder    int64

	placeholderEnd int64

	pending       codec.PendingQueue
	nextRequestID uint32

	epoch uint64
}

// NewEncoder builds an Encoder driving worker. Setup must be called before
// EncodeChunk.
func NewEncoder(worker codec.EncoderWorker) *Encoder {
	return &Encoder{worker: worker, serverRate: bbconst.DefaultCodecRate}
}

// Setup performs the one-time codec setup call and establishes the
// pipeline's clock references.
func (e *Encoder) Setup(cfg EncoderConfig) error {
	frameMs := cfg.FrameDurationMs
	if frameMs == 0 {
		frameMs = bbconst.OpusFrameMs
	}

	resampling, err := e.worker.Setup(codec.EncoderConfig{
		SamplingRate:    cfg.SamplingRate,
		NumChannels:     cfg.NumChannels,
		FrameDurationMs: frameMs,
	})
	if err != nil {
		return fmt.Errorf("pipeline: encoder setup: %w: %v", bberrors.ErrSetupFailed, err)
	}

	e.clientRate = cfg.SamplingRate
	e.serverRate = bbconst.DefaultCodecRate
	e.Resampling = resampling
	e.clientRef = chunk.NewClientReference(cfg.SamplingRate)
	e.serverRef = chunk.NewServerReference(e.serverRate)
	return nil
}

// Reset clears all clock and buffering state and resets the underlying
// worker, matching a session reload_settings or a fresh singing start.
func (e *Encoder) Reset() {
	e.clientClock = nil
	e.serverClock = nil
	e.hasQueuedRemainder = false
	e.queuedRemainder = 0
	e.placeholderEnd = 0
	e.pending.Reset()
	e.worker.Reset()
}

// SetEpoch records the session generation subsequent codec RPCs are
// dispatched under. EncodeChunk discards a result whose request went out
// under an epoch that Reset has since superseded (spec section 9, "Epoch
// handling").
func (e *Encoder) SetEpoch(epoch uint64) { e.epoch = epoch }

// opusFrameSamples is the fixed Opus frame length at the server rate.
func (e *Encoder) opusFrameSamples() int64 {
	return int64(e.serverRate) * bbconst.OpusFrameMs / 1000
}

// EncodeChunk processes one client-referenced chunk and returns the
// resulting server-referenced chunk. warn is non-nil only on the audio
// branch, and only when the drift check exceeds threshold; it is
// informational and does not indicate encode failure.
func (e *Encoder) EncodeChunk(c chunk.Chunk) (out chunk.Chunk, warn *DriftWarning, err error) {
	if err := chunk.CheckClockReference(c, e.clientRef); err != nil {
		return nil, nil, err
	}

	switch v := c.(type) {
	case chunk.PlaceholderChunk:
		return e.encodePlaceholder(v)
	case chunk.AudioChunk:
		return e.encodeAudio(v)
	default:
		return nil, nil, fmt.Errorf("pipeline: encoder: unsupported chunk kind %T", c)
	}
}

func (e *Encoder) encodePlaceholder(c chunk.PlaceholderChunk) (chunk.Chunk, *DriftWarning, error) {
	if e.clientClock != nil {
		return nil, nil, fmt.Errorf("pipeline: encoder: %w", bberrors.ErrClockStartedPlaceholder)
	}

	length := c.Interval().Length
	if e.hasQueuedRemainder {
		length += e.queuedRemainder
		e.hasQueuedRemainder = false
		e.queuedRemainder = 0
	}
	if length < 0 {
		length = 0
	}

	resultLength := roundRatio(length, int64(e.serverRate), int64(e.clientRate))

	opusSamples := e.opusFrameSamples()
	frames := roundDiv(resultLength, opusSamples)
	sendLength := frames * opusSamples

	leftoverServer := resultLength - sendLength
	leftoverClient := roundRatio(leftoverServer, int64(e.clientRate), int64(e.serverRate))
	if leftoverClient != 0 {
		e.hasQueuedRemainder = true
		e.queuedRemainder = leftoverClient
	}

	end := e.placeholderEnd + sendLength
	e.placeholderEnd = end

	out, err := chunk.NewPlaceholderChunk(chunk.ClockInterval{
		Reference: e.serverRef,
		End:       end,
		Length:    sendLength,
	})
	return out, nil, err
}

func (e *Encoder) encodeAudio(c chunk.AudioChunk) (chunk.Chunk, *DriftWarning, error) {
	e.hasQueuedRemainder = false
	e.queuedRemainder = 0

	start := c.Interval().Start()

	if e.clientClock == nil {
		cc := start
		sc := roundRatio(cc, int64(e.serverRate), int64(e.clientRate))
		e.clientClock = &cc
		e.serverClock = &sc
	}

	if start != *e.clientClock {
		return nil, nil, fmt.Errorf("pipeline: encoder: %w: chunk starts at %d, expected %d",
			bberrors.ErrNonContiguous, start, *e.clientClock)
	}
	*e.clientClock = c.Interval().End

	dispatchEpoch := e.epoch
	requestID := e.nextRequestID
	e.nextRequestID++
	e.pending.Push(requestID)
	e.worker.Submit(requestID, c.Data)

	result := <-e.worker.Results()
	if e.epoch != dispatchEpoch {
		// Reset ran while this RPC was in flight; the pending queue and
		// clock state it belonged to are already gone.
		return nil, nil, nil
	}
	if err := e.pending.Pop(result.RequestID); err != nil {
		return nil, nil, err
	}
	if result.Exception != "" {
		return nil, nil, &bberrors.CodecExceptionError{Payload: result.Exception}
	}
	if result.Status != 0 {
		return nil, nil, &bberrors.CodecRPCFailedError{Status: result.Status}
	}

	*e.serverClock += int64(result.SamplesEncoded)

	var warn *DriftWarning
	hypotheticalServer := *e.serverClock + int64(result.BufferedSamples)
	hypotheticalClient := roundRatio(hypotheticalServer, int64(e.clientRate), int64(e.serverRate))
	diff := absInt64(c.Interval().End - hypotheticalClient)
	if diff > bbconst.DriftThresholdSamples {
		warn = &DriftWarning{Expected: c.Interval().End, Actual: hypotheticalClient, DiffSamples: diff}
	}

	packed, err := wire.PackMulti(result.Packets)
	if err != nil {
		return nil, nil, err
	}

	out, err := chunk.NewCompressedAudioChunk(chunk.ClockInterval{
		Reference: e.serverRef,
		End:       *e.serverClock,
		Length:    int64(result.SamplesEncoded),
	}, packed)
	return out, warn, err
}
