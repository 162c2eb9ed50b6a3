// ABOUTME: Opus-backed DecoderWorker driving gopkg.in/hraban/opus.v2
// ABOUTME: Mirrors OpusEncoderWorker's dedicated-goroutine, channel-based RPC shape
package codec

import (
	"fmt"
	"sync"

	"gopkg.in/hraban/opus.v2"
)

type decodeRequest struct {
	requestID uint32
	data      []byte
}

// OpusDecoderWorker is the Opus-backed DecoderWorker, grounded on
// pkg/audio/decode/opus.go's opus.NewDecoder/Decode call shape.
type OpusDecoderWorker struct {
	mu sync.Mutex

	dec      *opus.Decoder
	channels int

	reqCh    chan decodeRequest
	resultCh chan DecodeResult
	done     chan struct{}
}

func NewOpusDecoderWorker() *OpusDecoderWorker {
	return &OpusDecoderWorker{
		reqCh:    make(chan decodeRequest, 64),
		resultCh: make(chan DecodeResult, 64),
		done:     make(chan struct{}),
	}
}

func (w *OpusDecoderWorker) Setup(cfg DecoderConfig) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.channels = cfg.NumChannels
	if w.channels == 0 {
		w.channels = 1
	}

	dec, err := opus.NewDecoder(cfg.SamplingRate, w.channels)
	if err != nil {
		return fmt.Errorf("codec: opus decoder setup: %w", err)
	}
	w.dec = dec

	go w.run()
	return nil
}

func (w *OpusDecoderWorker) run() {
	for {
		select {
		case req := <-w.reqCh:
			w.resultCh <- w.process(req)
		case <-w.done:
			return
		}
	}
}

func (w *OpusDecoderWorker) process(req decodeRequest) DecodeResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	const maxFrameSamples = 5760 // largest possible Opus frame (120ms @ 48kHz)
	pcm16 := make([]int16, maxFrameSamples*w.channels)

	n, err := w.dec.Decode(req.data, pcm16)
	if err != nil {
		return DecodeResult{RequestID: req.requestID, Exception: err.Error()}
	}

	samples := int16SliceToFloat32(pcm16[:n*w.channels])
	return DecodeResult{RequestID: req.requestID, Status: 0, Samples: samples}
}

func (w *OpusDecoderWorker) Submit(requestID uint32, data []byte) {
	w.reqCh <- decodeRequest{requestID: requestID, data: data}
}

func (w *OpusDecoderWorker) Results() <-chan DecodeResult {
	return w.resultCh
}

func (w *OpusDecoderWorker) Reset() {
	// The Opus decoder itself keeps no cross-call state we need to clear;
	// packet loss concealment state resets naturally on the next decode.
}

func (w *OpusDecoderWorker) Close() {
	close(w.done)
}
