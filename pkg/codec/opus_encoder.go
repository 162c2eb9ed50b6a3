// ABOUTME: Opus-backed EncoderWorker driving gopkg.in/hraban/opus.v2
// ABOUTME: Submit queues onto a 64-deep buffered channel served by a dedicated goroutine
package codec

import (
	"fmt"
	"sync"

	"github.com/gwillen/solstice-audio-test/pkg/bbconst"
	"gopkg.in/hraban/opus.v2"
)

type encodeRequest struct {
	requestID uint32
	samples   []float32
}

// OpusEncoderWorker is the Opus-backed EncoderWorker. It owns a single
// *opus.Encoder and a single goroutine, matching the "separate execution
// context" concurrency model: callers only ever touch Submit/Results.
//
// Grounded on pkg/audio/encode/opus.go's opus.NewEncoder/Encode call
// shape; the internal resampling and Opus-frame bucketing this worker
// does is new (the teacher's OpusEncoder is a stateless per-call
// converter, this one buffers across calls) because the streaming core's
// input is arbitrary-length client-rate batches, not pre-sliced frames.
type OpusEncoderWorker struct {
	mu sync.Mutex

	enc        *opus.Encoder
	channels   int
	resampler  *linearResampler
	resampling bool

	codecRate    int
	frameSamples int // samples per channel per Opus frame, at codec rate
	buffer       []float32 // leftover PCM at codec rate, not yet a full frame

	reqCh    chan encodeRequest
	resultCh chan EncodeResult
	done     chan struct{}
}

// NewOpusEncoderWorker constructs a worker; call Setup before Submit.
func NewOpusEncoderWorker() *OpusEncoderWorker {
	return &OpusEncoderWorker{
		reqCh:    make(chan encodeRequest, 64),
		resultCh: make(chan EncodeResult, 64),
		done:     make(chan struct{}),
	}
}

func (w *OpusEncoderWorker) Setup(cfg EncoderConfig) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.codecRate = bbconst.DefaultCodecRate
	w.channels = cfg.NumChannels
	if w.channels == 0 {
		w.channels = 1
	}

	enc, err := opus.NewEncoder(w.codecRate, w.channels, opus.AppVoIP)
	if err != nil {
		return false, fmt.Errorf("codec: opus encoder setup: %w", err)
	}
	w.enc = enc

	frameDuration := cfg.FrameDurationMs
	if frameDuration == 0 {
		frameDuration = bbconst.OpusFrameMs
	}
	w.frameSamples = w.codecRate * frameDuration / 1000

	if cfg.SamplingRate != 0 && cfg.SamplingRate != w.codecRate {
		w.resampler = newLinearResampler(cfg.SamplingRate, w.codecRate)
		w.resampling = true
	}

	go w.run()

	return w.resampling, nil
}

func (w *OpusEncoderWorker) run() {
	for {
		select {
		case req := <-w.reqCh:
			w.resultCh <- w.process(req)
		case <-w.done:
			return
		}
	}
}

func (w *OpusEncoderWorker) process(req encodeRequest) EncodeResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	pcm := req.samples
	if w.resampler != nil {
		pcm = w.resampler.resample(req.samples, nil)
	}
	w.buffer = append(w.buffer, pcm...)

	var packets [][]byte
	samplesEncoded := 0
	frameLen := w.frameSamples * w.channels

	for len(w.buffer) >= frameLen {
		frame := w.buffer[:frameLen]
		out := make([]byte, 4000)
		n, err := w.enc.Encode(float32SliceToInt16(frame), out)
		if err != nil {
			return EncodeResult{RequestID: req.requestID, Exception: err.Error()}
		}
		packets = append(packets, out[:n])
		samplesEncoded += w.frameSamples
		w.buffer = w.buffer[frameLen:]
	}

	return EncodeResult{
		RequestID:       req.requestID,
		Status:          0,
		Packets:         packets,
		SamplesEncoded:  samplesEncoded,
		BufferedSamples: len(w.buffer) / max(w.channels, 1),
	}
}

func (w *OpusEncoderWorker) Submit(requestID uint32, samples []float32) {
	w.reqCh <- encodeRequest{requestID: requestID, samples: samples}
}

func (w *OpusEncoderWorker) Results() <-chan EncodeResult {
	return w.resultCh
}

func (w *OpusEncoderWorker) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buffer = nil
	if w.resampler != nil {
		w.resampler.position = 0
	}
}

func (w *OpusEncoderWorker) Close() {
	close(w.done)
}
