// ABOUTME: ToWorklet/FromWorklet message protocol (spec sections 6.3/6.4)
// ABOUTME: A Go tagged union standing in for the worklet's postMessage wire format
package workletnode

import "github.com/gwillen/solstice-audio-test/pkg/chunk"

// ToWorklet is implemented by every message the session context may post to
// the player node (spec section 6.3).
type ToWorklet interface{ toWorklet() }

// Stop halts playback and discards queued output. MalgoNode keeps
// capturing after a Stop.
type Stop struct{}

// AudioParams reconfigures the node and carries the session's current
// Epoch. The node only records it: no FromWorklet message has an epoch
// field.
type AudioParams struct {
	SyntheticSource bool
	ClickInterval   int
	LoopbackMode    bool
	Epoch           uint64
}

// SamplesIn delivers a decoded chunk to be played out.
type SamplesIn struct {
	Chunk chunk.Chunk
}

// LatencyEstimationMode toggles the latency-calibration click/echo mode.
type LatencyEstimationMode struct{ Enabled bool }

// VolumeEstimationMode toggles RMS volume readback mode.
type VolumeEstimationMode struct{ Enabled bool }

// IgnoreInput mutes the microphone without tearing down the device.
type IgnoreInput struct{ Enabled bool }

// ClickVolumeChange adjusts the latency-calibration click's playback volume.
type ClickVolumeChange struct{ Value float32 }

// LocalLatency reports a measured local latency (in whole milliseconds,
// rounded, as an i32) back to the node for compensation.
type LocalLatency struct{ LocalLatencyMs int32 }

// RequestCurClock asks the node to report its current hardware clock.
type RequestCurClock struct{}

// SetAlarm schedules a one-shot Alarm callback at the given hardware clock
// time.
type SetAlarm struct{ Time int64 }

func (Stop) toWorklet()                  {}
func (AudioParams) toWorklet()           {}
func (SamplesIn) toWorklet()             {}
func (LatencyEstimationMode) toWorklet() {}
func (VolumeEstimationMode) toWorklet()  {}
func (IgnoreInput) toWorklet()           {}
func (ClickVolumeChange) toWorklet()     {}
func (LocalLatency) toWorklet()          {}
func (RequestCurClock) toWorklet()       {}
func (SetAlarm) toWorklet()              {}

// FromWorklet is implemented by every message the player node may emit
// (spec section 6.4).
type FromWorklet interface{ fromWorklet() }

// SamplesOut carries one captured microphone frame, on the wire as a
// WireChunk pending reblessing.
type SamplesOut struct {
	Chunk chunk.WireChunk
}

// Underflow reports the playback buffer ran dry.
type Underflow struct{}

// NoMicInput reports the microphone is delivering no signal (device muted
// or disconnected at the OS level).
type NoMicInput struct{}

// CurrentVolume reports one RMS volume sample during volume calibration.
type CurrentVolume struct{ Volume float32 }

// InputGain is the volume calibrator's terminal event, reporting the
// computed input gain.
type InputGain struct{ InputGain float32 }

// LatencyEstimate reports one round-trip click/echo measurement during
// latency calibration. The percentile and jank fields are optional because
// early samples may not yet support a percentile estimate.
type LatencyEstimate struct {
	Samples int
	P25     *float64
	P50     *float64
	P75     *float64
	Jank    *bool
}

// CurClock answers a RequestCurClock.
type CurClock struct{ Clock int64 }

// Alarm fires when a SetAlarm's scheduled time arrives.
type Alarm struct{ Time int64 }

// Exception carries a fatal error raised inside the node.
type Exception struct{ Exception string }

func (SamplesOut) fromWorklet()      {}
func (Underflow) fromWorklet()       {}
func (NoMicInput) fromWorklet()      {}
func (CurrentVolume) fromWorklet()   {}
func (InputGain) fromWorklet()       {}
func (LatencyEstimate) fromWorklet() {}
func (CurClock) fromWorklet()        {}
func (Alarm) fromWorklet()           {}
func (Exception) fromWorklet()       {}

// Node is the player-node counterparty: send configuration and playback
// samples, receive captured frames and status events. Messages are
// delivered in send order (spec section 5).
type Node interface {
	Send(msg ToWorklet)
	Messages() <-chan FromWorklet
	Close() error
}
