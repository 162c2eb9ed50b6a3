// ABOUTME: The chunk algebra: ClockInterval, AudioChunk, CompressedAudioChunk, PlaceholderChunk
// ABOUTME: Immutable value types both codec pipelines are built on
package chunk

import (
	"fmt"

	"github.com/gwillen/solstice-audio-test/pkg/bberrors"
)

// Chunk is implemented by AudioChunk, CompressedAudioChunk, and
// PlaceholderChunk. Downstream code matches on the concrete type with a
// type switch rather than reattaching a prototype at runtime (see
// Rebless).
type Chunk interface {
	Interval() ClockInterval
	chunkKind() string
}

// AudioChunk carries client-referenced PCM samples.
type AudioChunk struct {
	interval ClockInterval
	Data     []float32
}

// NewAudioChunk validates and constructs an AudioChunk. The interval's
// reference must be a Client reference and len(data) must equal the
// interval's length.
func NewAudioChunk(interval ClockInterval, data []float32) (AudioChunk, error) {
	if err := interval.Validate(); err != nil {
		return AudioChunk{}, err
	}
	if interval.Reference.Variant != Client {
		return AudioChunk{}, fmt.Errorf("chunk: AudioChunk: %w: reference variant is %s, want client",
			bberrors.ErrClockReferenceMismatch, interval.Reference.Variant)
	}
	if int64(len(data)) != interval.Length {
		return AudioChunk{}, fmt.Errorf("chunk: AudioChunk: data length %d does not match interval length %d",
			len(data), interval.Length)
	}
	return AudioChunk{interval: interval, Data: data}, nil
}

func (c AudioChunk) Interval() ClockInterval { return c.interval }
func (c AudioChunk) chunkKind() string       { return "audio" }

// CompressedAudioChunk carries server-referenced opaque encoded bytes (a
// packed multi-packet blob, see pkg/wire).
type CompressedAudioChunk struct {
	interval ClockInterval
	Data     []byte
}

// NewCompressedAudioChunk validates and constructs a CompressedAudioChunk.
// The interval's reference must be a Server reference.
func NewCompressedAudioChunk(interval ClockInterval, data []byte) (CompressedAudioChunk, error) {
	if err := interval.Validate(); err != nil {
		return CompressedAudioChunk{}, err
	}
	if interval.Reference.Variant != Server {
		return CompressedAudioChunk{}, fmt.Errorf("chunk: CompressedAudioChunk: %w: reference variant is %s, want server",
			bberrors.ErrClockReferenceMismatch, interval.Reference.Variant)
	}
	return CompressedAudioChunk{interval: interval, Data: data}, nil
}

func (c CompressedAudioChunk) Interval() ClockInterval { return c.interval }
func (c CompressedAudioChunk) chunkKind() string       { return "compressed" }

// PlaceholderChunk represents a time interval with no audio content. It
// may be tagged with either a Client or a Server reference.
type PlaceholderChunk struct {
	interval ClockInterval
}

// NewPlaceholderChunk validates and constructs a PlaceholderChunk.
func NewPlaceholderChunk(interval ClockInterval) (PlaceholderChunk, error) {
	if err := interval.Validate(); err != nil {
		return PlaceholderChunk{}, err
	}
	return PlaceholderChunk{interval: interval}, nil
}

func (c PlaceholderChunk) Interval() ClockInterval { return c.interval }
func (c PlaceholderChunk) chunkKind() string       { return "placeholder" }

// CheckClockReference fails with ErrClockReferenceMismatch if c's
// reference differs by variant or rate from want.
func CheckClockReference(c Chunk, want ClockReference) error {
	got := c.Interval().Reference
	if !got.Equal(want) {
		return fmt.Errorf("chunk: %w: got %s@%d, want %s@%d",
			bberrors.ErrClockReferenceMismatch, got.Variant, got.Rate, want.Variant, want.Rate)
	}
	return nil
}

// checkContiguous validates that a non-empty list of intervals share one
// reference and that each meets the previous one exactly (a.End ==
// b.Start). It returns the shared reference and the merged [start, end).
func checkContiguous(intervals []ClockInterval) (ref ClockReference, start, end int64, err error) {
	if len(intervals) == 0 {
		return ref, 0, 0, fmt.Errorf("chunk: %w: concat of zero chunks", bberrors.ErrNonContiguous)
	}
	ref = intervals[0].Reference
	start = intervals[0].Start()
	end = intervals[0].End
	for i := 1; i < len(intervals); i++ {
		iv := intervals[i]
		if !iv.Reference.Equal(ref) {
			return ref, 0, 0, fmt.Errorf("chunk: %w: concat mixes %s@%d and %s@%d",
				bberrors.ErrClockReferenceMismatch, ref.Variant, ref.Rate, iv.Reference.Variant, iv.Reference.Rate)
		}
		if iv.Start() != end {
			return ref, 0, 0, fmt.Errorf("chunk: %w: chunk starting at %d does not meet previous chunk ending at %d",
				bberrors.ErrNonContiguous, iv.Start(), end)
		}
		end = iv.End
	}
	return ref, start, end, nil
}

// ConcatAudio concatenates a non-empty, contiguous, single-reference run
// of AudioChunks into one, by concatenating their sample data.
func ConcatAudio(chunks []AudioChunk) (AudioChunk, error) {
	intervals := make([]ClockInterval, len(chunks))
	total := 0
	for i, c := range chunks {
		intervals[i] = c.Interval()
		total += len(c.Data)
	}
	ref, start, end, err := checkContiguous(intervals)
	if err != nil {
		return AudioChunk{}, err
	}
	data := make([]float32, 0, total)
	for _, c := range chunks {
		data = append(data, c.Data...)
	}
	return NewAudioChunk(ClockInterval{Reference: ref, End: end, Length: end - start}, data)
}

// ConcatPlaceholder concatenates a non-empty, contiguous, single-reference
// run of PlaceholderChunks into one by summing their lengths.
func ConcatPlaceholder(chunks []PlaceholderChunk) (PlaceholderChunk, error) {
	intervals := make([]ClockInterval, len(chunks))
	for i, c := range chunks {
		intervals[i] = c.Interval()
	}
	ref, start, end, err := checkContiguous(intervals)
	if err != nil {
		return PlaceholderChunk{}, err
	}
	return NewPlaceholderChunk(ClockInterval{Reference: ref, End: end, Length: end - start})
}

// ConcatCompressed concatenates a non-empty, contiguous, single-reference
// run of CompressedAudioChunks by concatenating their opaque byte blobs.
// The pipelines never need this (compressed chunks are emitted one at a
// time and unpacked, never re-packed after transmission), but it keeps the
// three chunk kinds symmetric under the same algebra the spec describes.
func ConcatCompressed(chunks []CompressedAudioChunk) (CompressedAudioChunk, error) {
	intervals := make([]ClockInterval, len(chunks))
	total := 0
	for i, c := range chunks {
		intervals[i] = c.Interval()
		total += len(c.Data)
	}
	ref, start, end, err := checkContiguous(intervals)
	if err != nil {
		return CompressedAudioChunk{}, err
	}
	data := make([]byte, 0, total)
	for _, c := range chunks {
		data = append(data, c.Data...)
	}
	return NewCompressedAudioChunk(ClockInterval{Reference: ref, End: end, Length: end - start}, data)
}
