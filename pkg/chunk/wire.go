// ABOUTME: WireChunk: a chunk detached from any particular ClockReference, pending reblessing
// ABOUTME: Replaces the source's dynamic prototype reattachment with a small closed WireKind set
package chunk

import "fmt"

// WireKind tags which chunk variant a WireChunk decodes into. It replaces
// the source's dynamic reblessing (reattaching a prototype based on a
// runtime `type` string) with a small closed set matched explicitly in
// Rebless.
type WireKind string

const (
	WireAudio       WireKind = "audio"
	WireCompressed  WireKind = "compressed"
	WirePlaceholder WireKind = "placeholder"
)

// WireReference is the wire-form spelling of a ClockReference's variant.
type WireReference string

const (
	WireReferenceClient WireReference = "client"
	WireReferenceServer WireReference = "server"
)

func (r WireReference) toVariant() (Variant, error) {
	switch r {
	case WireReferenceClient:
		return Client, nil
	case WireReferenceServer:
		return Server, nil
	default:
		return 0, fmt.Errorf("chunk: unknown wire reference %q", r)
	}
}

// WireChunk is the boundary representation of a chunk crossing a thread or
// process boundary (worklet messages, transport responses): a flat,
// serializable struct tagged with a Kind. Rebless reconstitutes it into
// the correct concrete Chunk variant, validating invariants along the way.
type WireChunk struct {
	Kind      WireKind
	Reference WireReference
	Rate      int
	End       int64
	Length    int64
	Samples   []float32 // populated for Kind == WireAudio
	Data      []byte    // populated for Kind == WireCompressed
}

// Rebless reconstitutes a WireChunk into the concrete Chunk variant its
// Kind names, or fails if the wire data violates that variant's
// invariants (wrong reference, mismatched sample count, etc).
func (w WireChunk) Rebless() (Chunk, error) {
	variant, err := w.Reference.toVariant()
	if err != nil {
		return nil, err
	}
	ref := ClockReference{Variant: variant, Rate: w.Rate}
	interval := ClockInterval{Reference: ref, End: w.End, Length: w.Length}

	switch w.Kind {
	case WireAudio:
		return NewAudioChunk(interval, w.Samples)
	case WireCompressed:
		return NewCompressedAudioChunk(interval, w.Data)
	case WirePlaceholder:
		return NewPlaceholderChunk(interval)
	default:
		return nil, fmt.Errorf("chunk: unknown wire kind %q", w.Kind)
	}
}

// ToWire flattens any Chunk into its WireChunk form for transmission
// across a thread or process boundary.
func ToWire(c Chunk) WireChunk {
	iv := c.Interval()
	wireRef := WireReferenceClient
	if iv.Reference.Variant == Server {
		wireRef = WireReferenceServer
	}
	w := WireChunk{
		Reference: wireRef,
		Rate:      iv.Reference.Rate,
		End:       iv.End,
		Length:    iv.Length,
	}
	switch v := c.(type) {
	case AudioChunk:
		w.Kind = WireAudio
		w.Samples = v.Data
	case CompressedAudioChunk:
		w.Kind = WireCompressed
		w.Data = v.Data
	case PlaceholderChunk:
		w.Kind = WirePlaceholder
	}
	return w
}
