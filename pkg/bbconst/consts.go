// ABOUTME: Bit-exact protocol constants shared across the streaming core
// ABOUTME: Mirrors spec section 6.6 verbatim so no package hardcodes its own copy
package bbconst

const (
	// InitialMsPerBatch is the starting pacing window the session uses to
	// size the singer client's mic-frame batch.
	InitialMsPerBatch = 600
	// MaxMsPerBatch bounds how far the pacing window may grow.
	MaxMsPerBatch = 900
	// OpusFrameMs is the Opus frame duration used on the wire.
	OpusFrameMs = 60
	// WorkletFrameSamples is the fixed frame size the audio-device
	// ring buffer / worklet delivers microphone frames in.
	WorkletFrameSamples = 128
	// DriftThresholdSamples is the encoder's non-fatal drift-warning
	// threshold.
	DriftThresholdSamples = 5
	// CalibrationSuccessWindowMs is the latency calibrator's p75-p25
	// success window.
	CalibrationSuccessWindowMs = 2
	// CalibrationSampleMinimum is the number of latency samples required
	// before the calibrator can terminate.
	CalibrationSampleMinimum = 7
	// DefaultCodecRate is the canonical server/codec sample rate.
	DefaultCodecRate = 48000
	// OpusAddedLatencyMs is the fixed latency contribution of the Opus
	// codec itself.
	OpusAddedLatencyMs = 6.5
	// ResamplerAddedLatencyMs is the latency contribution of resampling,
	// applied once per direction that actually resamples.
	ResamplerAddedLatencyMs = 1.8
)
