// ABOUTME: Session context (spec section 4.6): owns the player node and encoder/decoder pipelines
// ABOUTME: The only thing that posts configuration to the node; bumps the epoch on every reset
package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gwillen/solstice-audio-test/pkg/bbconst"
	"github.com/gwillen/solstice-audio-test/pkg/chunk"
	"github.com/gwillen/solstice-audio-test/pkg/codec"
	"github.com/gwillen/solstice-audio-test/pkg/pipeline"
	"github.com/gwillen/solstice-audio-test/pkg/workletnode"
)

// Config is the session's audio configuration, applied by Start and
// ReloadSettings.
type Config struct {
	ClientSampleRate int
	NumChannels      int
	SyntheticSource  bool
	ClickInterval    int
	LoopbackMode     bool
}

// Session is the session context of spec section 4.6. It owns the player
// node and the encoder/decoder pipelines, and is the only thing that posts
// configuration to the node.
type Session struct {
	mu sync.Mutex

	id            uuid.UUID
	node          workletnode.Node
	encoderWorker codec.EncoderWorker
	decoderWorker codec.DecoderWorker

	encoder *pipeline.Encoder
	decoder *pipeline.Decoder

	cfg   Config
	epoch uint64

	dispatcher *Dispatcher
	pumpDone   chan struct{}
}

// New builds a Session around node, driving encWorker/decWorker for its
// pipelines. It immediately starts pumping node messages to the
// dispatcher; call Close to stop.
func New(node workletnode.Node, encWorker codec.EncoderWorker, decWorker codec.DecoderWorker) *Session {
	s := &Session{
		id:            uuid.New(),
		node:          node,
		encoderWorker: encWorker,
		decoderWorker: decWorker,
		dispatcher:    newDispatcher(),
		pumpDone:      make(chan struct{}),
	}
	go s.pump()
	return s
}

func (s *Session) pump() {
	for {
		select {
		case msg, ok := <-s.node.Messages():
			if !ok {
				return
			}
			s.dispatcher.dispatch(msg)
		case <-s.pumpDone:
			return
		}
	}
}

// Subscribe registers fn on the session's dispatcher; see Dispatcher.
func (s *Session) Subscribe(fn func(workletnode.FromWorklet)) int {
	return s.dispatcher.Subscribe(fn)
}

// Unsubscribe removes a subscription registered with Subscribe.
func (s *Session) Unsubscribe(id int) {
	s.dispatcher.Unsubscribe(id)
}

// ID returns the session's identifier, generated once at construction and
// stable across every reload_settings within the session's lifetime.
func (s *Session) ID() uuid.UUID { return s.id }

// Epoch returns the current session epoch, bumped on every Start/
// ReloadSettings. Callers should stamp outbound codec/server requests with
// it and discard responses whose epoch has since gone stale.
func (s *Session) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// BatchSize computes the singer client's mic-frame batch size in samples:
// round(samples_per_ms * INITIAL_MS_PER_BATCH / 128) frames of 128 samples,
// i.e. the sample count is that many multiples of 128.
func BatchSize(sampleRate int) int64 {
	samplesPerMs := float64(sampleRate) / 1000
	frames := roundNearest(samplesPerMs * bbconst.InitialMsPerBatch / bbconst.WorkletFrameSamples)
	return frames * bbconst.WorkletFrameSamples
}

func roundNearest(f float64) int64 {
	if f < 0 {
		return int64(f - 0.5)
	}
	return int64(f + 0.5)
}

// Start performs the first reload_settings (spec section 4.6): the
// pipelines are constructed and set up lazily on this call and reused
// across every later ReloadSettings.
func (s *Session) Start(cfg Config) error {
	return s.reloadSettings(cfg, true)
}

// ReloadSettings performs a non-startup reload_settings: it stops the
// player node, resets both pipelines, bumps the epoch, and reconfigures the
// node.
func (s *Session) ReloadSettings(cfg Config) error {
	return s.reloadSettings(cfg, false)
}

func (s *Session) reloadSettings(cfg Config, startup bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !startup {
		s.node.Send(workletnode.Stop{})
	}

	if err := s.ensurePipelinesLocked(cfg); err != nil {
		return err
	}

	s.epoch++
	s.encoder.SetEpoch(s.epoch)
	s.decoder.SetEpoch(s.epoch)
	s.encoder.Reset()
	s.decoder.Reset()

	s.cfg = cfg

	s.node.Send(workletnode.AudioParams{
		SyntheticSource: cfg.SyntheticSource,
		ClickInterval:   cfg.ClickInterval,
		LoopbackMode:    cfg.LoopbackMode,
		Epoch:           s.epoch,
	})
	return nil
}

// ensurePipelinesLocked constructs and sets up the encoder/decoder exactly
// once (spec section 4.6: "lazily created on first start and reused across
// resets, the codec workers are expensive to allocate"). Callers must hold
// s.mu.
func (s *Session) ensurePipelinesLocked(cfg Config) error {
	if s.encoder == nil {
		enc := pipeline.NewEncoder(s.encoderWorker)
		if err := enc.Setup(pipeline.EncoderConfig{
			SamplingRate: cfg.ClientSampleRate,
			NumChannels:  cfg.NumChannels,
		}); err != nil {
			return fmt.Errorf("session: encoder setup: %w", err)
		}
		s.encoder = enc
	}
	if s.decoder == nil {
		dec := pipeline.NewDecoder(s.decoderWorker)
		if err := dec.Setup(pipeline.DecoderConfig{
			SamplingRate: cfg.ClientSampleRate,
			NumChannels:  cfg.NumChannels,
		}); err != nil {
			return fmt.Errorf("session: decoder setup: %w", err)
		}
		s.decoder = dec
	}
	return nil
}

// Encoder returns the session's encoder pipeline. Nil until Start has been
// called.
func (s *Session) Encoder() *pipeline.Encoder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encoder
}

// Decoder returns the session's decoder pipeline. Nil until Start has been
// called.
func (s *Session) Decoder() *pipeline.Decoder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decoder
}

// Node returns the player node the session posts configuration to.
func (s *Session) Node() workletnode.Node { return s.node }

// ClientSampleRate returns the sample rate from the most recent Start/
// ReloadSettings, for callers (pkg/singer) that need to size their own
// buffers against it.
func (s *Session) ClientSampleRate() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.ClientSampleRate
}

// SendSamples pushes a decoded chunk to the player node for playback.
func (s *Session) SendSamples(c chunk.Chunk) {
	s.node.Send(workletnode.SamplesIn{Chunk: c})
}

// EncodingLatencyMs is the local latency compensation the session reports
// to the player node (spec section 4.6): a fixed Opus contribution, plus a
// fixed resampler contribution per direction that's actually resampling,
// forced to zero whenever a synthetic source is active.
func (s *Session) EncodingLatencyMs() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.SyntheticSource {
		return 0
	}

	resamplers := 0
	if s.encoder != nil && s.encoder.Resampling {
		resamplers++
	}
	if s.decoder != nil && s.decoder.Resampling {
		resamplers++
	}
	return bbconst.OpusAddedLatencyMs + float64(resamplers)*bbconst.ResamplerAddedLatencyMs
}

// Close stops the message pump. It does not close the underlying node;
// callers that own the node's lifecycle close it separately.
func (s *Session) Close() {
	close(s.pumpDone)
}
