// ABOUTME: Singer client state machine (spec section 4.7)
// ABOUTME: Drains mic samples, encodes, transmits, decodes, and plays the response
package singer

import (
	"context"
	"fmt"
	"sync"

	"github.com/gwillen/solstice-audio-test/pkg/bberrors"
	"github.com/gwillen/solstice-audio-test/pkg/chunk"
	"github.com/gwillen/solstice-audio-test/pkg/session"
	"github.com/gwillen/solstice-audio-test/pkg/transport"
	"github.com/gwillen/solstice-audio-test/pkg/wire"
	"github.com/gwillen/solstice-audio-test/pkg/workletnode"
)

// State is one of the singer client's lifecycle states (spec section 4.7).
type State int

const (
	Constructed State = iota
	Starting
	Running
	LostConnectivity
	Stopped
)

func (s State) String() string {
	switch s {
	case Constructed:
		return "Constructed"
	case Starting:
		return "Starting"
	case Running:
		return "Running"
	case LostConnectivity:
		return "LostConnectivity"
	case Stopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Config configures a Singer, in the teacher's callback style
// (pkg/resonate.PlayerConfig's OnStateChange/OnError) rather than an event
// channel: the singer's dispatch loop already runs on the session's pump
// goroutine, so a callback avoids introducing a second one just to relay
// events.
type Config struct {
	// Username is attached to every transmitted batch's metadata.
	Username string
	// OnConnectivityChange fires once when the transport reports
	// connectivity lost (spec's "None" response).
	OnConnectivityChange func(connected bool)
	// OnError fires exactly once, with the fatal error, immediately after
	// the singer transitions to Stopped.
	OnError func(error)
}

// Singer is the singer client of spec section 4.7.
type Singer struct {
	mu sync.Mutex

	session *session.Session
	conn    transport.Conn
	cfg     Config

	state State
	err   error

	subID     int
	batchSize int64

	micBuf []chunk.AudioChunk
	micLen int64

	sendMetadata map[string]any
}

// New builds a Singer around sess and conn. Call StartSinging to begin.
func New(sess *session.Session, conn transport.Conn, cfg Config) *Singer {
	return &Singer{session: sess, conn: conn, cfg: cfg}
}

// State returns the singer's current lifecycle state.
func (s *Singer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the fatal error that stopped the singer, if any.
func (s *Singer) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// DeclareEvent accumulates one key/value pair into the metadata sent with
// the next transmitted batch. Events declared before StartSinging is
// called are discarded (spec section 9's open question, resolved as
// discard rather than queue).
func (s *Singer) DeclareEvent(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Constructed {
		return
	}
	if s.sendMetadata == nil {
		s.sendMetadata = make(map[string]any)
	}
	s.sendMetadata[key] = value
}

// StartSinging opens the singer client: it subscribes to the session's
// player-node messages and transitions Constructed -> Running.
func (s *Singer) StartSinging() error {
	s.mu.Lock()
	if s.state != Constructed {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("singer: StartSinging called from state %s, want Constructed", state)
	}
	s.state = Starting
	s.batchSize = session.BatchSize(s.session.ClientSampleRate())
	s.mu.Unlock()

	subID := s.session.Subscribe(s.handleWorkletMessage)

	s.mu.Lock()
	s.subID = subID
	s.state = Running
	s.mu.Unlock()
	return nil
}

// Stop transitions the singer to Stopped without an error, unsubscribing
// from the session.
func (s *Singer) Stop() {
	s.mu.Lock()
	if s.state == Stopped {
		s.mu.Unlock()
		return
	}
	s.state = Stopped
	subID := s.subID
	s.mu.Unlock()
	s.session.Unsubscribe(subID)
}

func (s *Singer) fail(err error) {
	s.mu.Lock()
	if s.state == Stopped {
		s.mu.Unlock()
		return
	}
	s.state = Stopped
	s.err = err
	subID := s.subID
	s.mu.Unlock()

	s.session.Unsubscribe(subID)
	if s.cfg.OnError != nil {
		s.cfg.OnError(err)
	}
}

func (s *Singer) loseConnectivity() {
	s.mu.Lock()
	if s.state == Stopped || s.state == LostConnectivity {
		s.mu.Unlock()
		return
	}
	s.state = LostConnectivity
	s.mu.Unlock()

	if s.cfg.OnConnectivityChange != nil {
		s.cfg.OnConnectivityChange(false)
	}
}

// handleWorkletMessage is the singer's inbound event loop (spec section
// 4.7), registered as a subscriber on the session's dispatcher.
func (s *Singer) handleWorkletMessage(msg workletnode.FromWorklet) {
	switch v := msg.(type) {
	case workletnode.Exception:
		s.fail(fmt.Errorf("singer: player exception: %s", v.Exception))
	case workletnode.Underflow:
		s.fail(fmt.Errorf("singer: %w", bberrors.ErrPlayerUnderflow))
	case workletnode.SamplesOut:
		s.handleSamplesOut(v)
	default:
		// Any other FromWorklet message (NoMicInput, CurrentVolume,
		// InputGain, LatencyEstimate, CurClock, Alarm, ...) is not part of
		// the singer's protocol and stops it with UnknownMessage.
		s.fail(fmt.Errorf("singer: %w: %T", bberrors.ErrUnknownMessage, msg))
	}
}

func (s *Singer) handleSamplesOut(v workletnode.SamplesOut) {
	c, err := v.Chunk.Rebless()
	if err != nil {
		s.fail(err)
		return
	}
	audio, ok := c.(chunk.AudioChunk)
	if !ok {
		s.fail(fmt.Errorf("singer: samples_out chunk reblessed to %T, want AudioChunk", c))
		return
	}

	s.mu.Lock()
	s.micBuf = append(s.micBuf, audio)
	s.micLen += int64(len(audio.Data))
	drain := s.micLen >= s.batchSize
	s.mu.Unlock()

	if drain {
		s.drainAndSend()
	}
}

// drainAndSend performs one full encode/transmit/decode/playback cycle
// (spec section 4.7): concatenate the buffered mic samples, encode, attach
// metadata, transmit, and route the response back to the player node.
func (s *Singer) drainAndSend() {
	s.mu.Lock()
	buffered := s.micBuf
	s.micBuf = nil
	s.micLen = 0
	meta := s.sendMetadata
	s.sendMetadata = nil
	s.mu.Unlock()

	batch, err := chunk.ConcatAudio(buffered)
	if err != nil {
		s.fail(err)
		return
	}

	epoch := s.session.Epoch()

	encoded, _, err := s.session.Encoder().EncodeChunk(batch)
	if err != nil {
		s.fail(err)
		return
	}
	if encoded == nil {
		// The in-flight codec RPC's epoch went stale mid-encode (a
		// reload_settings raced this batch); the result was discarded
		// rather than risk resurrecting pre-reset clock state.
		return
	}
	compressed, ok := encoded.(chunk.CompressedAudioChunk)
	if !ok {
		s.fail(fmt.Errorf("singer: encoder returned %T, want CompressedAudioChunk", encoded))
		return
	}

	resp, err := s.conn.Send(context.Background(), compressed.Data, transport.Metadata{
		Username: s.cfg.Username,
		Events:   meta,
		Epoch:    epoch,
	})
	if err != nil {
		s.fail(err)
		return
	}
	if resp == nil {
		s.loseConnectivity()
		return
	}
	if resp.Epoch != s.session.Epoch() {
		// Stale response to a request issued before the latest reset
		// (spec section 9, "Epoch handling"); discard silently.
		return
	}
	if !resp.HasChunk {
		return
	}

	if err := s.playResponse(resp.Chunk); err != nil {
		s.fail(err)
	}
}

// playResponse decodes one server response chunk and pushes the result to
// the player node. The response carries only raw packed-multi-packet
// bytes (spec section 6.5); the chunk's clock interval isn't part of the
// wire response, so it is reconstructed from the decoder's own running
// clock and the fixed Opus frame duration each packet is self-describing
// in (spec section 6.2).
func (s *Singer) playResponse(data []byte) error {
	packets, err := wire.UnpackMulti(data)
	if err != nil {
		return err
	}

	dec := s.session.Decoder()
	start := dec.NextServerStart()
	length := int64(len(packets)) * dec.OpusFrameSamples()

	in, err := chunk.NewCompressedAudioChunk(chunk.ClockInterval{
		Reference: dec.ServerReference(),
		End:       start + length,
		Length:    length,
	}, data)
	if err != nil {
		return err
	}

	decoded, err := dec.DecodeChunk(in)
	if err != nil {
		return err
	}
	if decoded == nil {
		// Codec RPC went stale mid-decode (reload_settings raced this
		// response); nothing to play.
		return nil
	}

	s.session.SendSamples(decoded)
	return nil
}
