// ABOUTME: EncoderWorker/DecoderWorker interfaces and their request/result types
// ABOUTME: The codec RPC contract pkg/pipeline drives and pkg/codec's workers implement
package codec

// EncoderConfig is the encoder worker's setup payload (spec §6.1).
type EncoderConfig struct {
	SamplingRate    int
	NumChannels     int
	FrameDurationMs int
}

// DecoderConfig is the decoder worker's setup payload (spec §6.1).
type DecoderConfig struct {
	SamplingRate int
	NumChannels  int
}

// EncodeResult is an encoder worker response, keyed by RequestID. Status
// != 0 or a non-empty Exception both indicate failure; callers check
// Exception first (it takes precedence, matching the "exception responses
// ... propagate as fatal errors" rule regardless of Status).
type EncodeResult struct {
	RequestID       uint32
	Status          int
	Packets         [][]byte
	SamplesEncoded  int
	BufferedSamples int
	Exception       string
}

// DecodeResult is a decoder worker response, keyed by RequestID.
type DecodeResult struct {
	RequestID uint32
	Status    int
	Samples   []float32
	Exception string
}

// EncoderWorker is the contract an encoder pipeline drives. Submit is
// fire-and-forget; results arrive on Results() in the order requests were
// submitted (spec §5: "single-executor guarantee").
type EncoderWorker interface {
	// Setup performs the one-time setup call and reports whether the
	// worker is internally resampling (spec §4.3).
	Setup(cfg EncoderConfig) (resampling bool, err error)

	// Submit dispatches an encode request. samples must already be at the
	// worker's configured sampling rate and channel count.
	Submit(requestID uint32, samples []float32)

	// Results is the response stream, one EncodeResult per Submit call,
	// in submission order.
	Results() <-chan EncodeResult

	// Reset clears any internal buffering.
	Reset()

	// Close releases the worker's resources. The worker must not be used
	// afterward.
	Close()
}

// DecoderWorker is the contract a decoder pipeline drives.
type DecoderWorker interface {
	Setup(cfg DecoderConfig) error
	Submit(requestID uint32, data []byte)
	Results() <-chan DecodeResult
	Reset()
	Close()
}
