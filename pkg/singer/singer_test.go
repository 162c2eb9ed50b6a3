// ABOUTME: Tests for the singer client state machine
// ABOUTME: Drives a Singer against a MockNode and a MemoryConn end to end
package singer

import (
	"testing"
	"time"

	"github.com/gwillen/solstice-audio-test/pkg/chunk"
	"github.com/gwillen/solstice-audio-test/pkg/codec"
	"github.com/gwillen/solstice-audio-test/pkg/session"
	"github.com/gwillen/solstice-audio-test/pkg/transport"
	"github.com/gwillen/solstice-audio-test/pkg/wire"
	"github.com/gwillen/solstice-audio-test/pkg/workletnode"
)

const testClientRate = 1000 // yields a small, test-friendly batch size

func newTestRig(t *testing.T, encQueue []codec.EncodeResult, decQueue []codec.DecodeResult) (*session.Session, *workletnode.MockNode) {
	t.Helper()
	node := workletnode.NewMockNode()
	enc := codec.NewMockEncoderWorker(false, encQueue)
	dec := codec.NewMockDecoderWorker(decQueue)
	sess := session.New(node, enc, dec)
	if err := sess.Start(session.Config{ClientSampleRate: testClientRate, NumChannels: 1}); err != nil {
		t.Fatalf("session.Start: %v", err)
	}
	return sess, node
}

func micChunk(t *testing.T, length int64) workletnode.SamplesOut {
	t.Helper()
	audio, err := chunk.NewAudioChunk(chunk.ClockInterval{
		Reference: chunk.NewClientReference(testClientRate),
		End:       length,
		Length:    length,
	}, make([]float32, length))
	if err != nil {
		t.Fatalf("NewAudioChunk: %v", err)
	}
	return workletnode.SamplesOut{Chunk: chunk.ToWire(audio)}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for condition")
}

func TestSinger_FullCycleDecodesResponseToPlayerNode(t *testing.T) {
	sess, node := newTestRig(t,
		[]codec.EncodeResult{{Packets: [][]byte{{0xAA}}, SamplesEncoded: 2880}},
		// One Opus frame (2880 samples at the 48kHz codec rate) resampled
		// down to the client's 1000Hz test rate is 60 samples.
		[]codec.DecodeResult{{Samples: make([]float32, 60)}},
	)

	serverChunk, err := wire.PackMulti([][]byte{{0xBB}})
	if err != nil {
		t.Fatalf("PackMulti: %v", err)
	}
	var gotUsername string
	var gotEvents map[string]any
	conn := transport.NewMemoryConn(func(body []byte, meta transport.Metadata) (*transport.Response, error) {
		gotUsername = meta.Username
		gotEvents = meta.Events
		return &transport.Response{HasChunk: true, Chunk: serverChunk, Epoch: 1}, nil
	})

	s := New(sess, conn, Config{Username: "alice"})
	if err := s.StartSinging(); err != nil {
		t.Fatalf("StartSinging: %v", err)
	}
	s.DeclareEvent("greeting", "hello")

	batch := session.BatchSize(testClientRate)
	node.Push(micChunk(t, batch))

	waitFor(t, time.Second, func() bool {
		_, ok := node.LastSent().(workletnode.SamplesIn)
		return ok
	})

	if gotUsername != "alice" {
		t.Errorf("sent username = %q, want alice", gotUsername)
	}
	if gotEvents["greeting"] != "hello" {
		t.Errorf("sent events = %+v, want greeting=hello", gotEvents)
	}
	if s.State() != Running {
		t.Errorf("State() = %v, want Running", s.State())
	}
}

func TestSinger_DeclareEventBeforeStartIsDiscarded(t *testing.T) {
	sess, _ := newTestRig(t, nil, nil)
	conn := transport.NewMemoryConn(func([]byte, transport.Metadata) (*transport.Response, error) {
		t.Fatal("should not transmit in this test")
		return nil, nil
	})
	s := New(sess, conn, Config{})
	s.DeclareEvent("early", "should be dropped")

	s.mu.Lock()
	meta := s.sendMetadata
	s.mu.Unlock()
	if meta != nil {
		t.Errorf("sendMetadata = %+v, want nil (discarded before StartSinging)", meta)
	}
}

func TestSinger_ConnectivityLostOnNilResponse(t *testing.T) {
	sess, node := newTestRig(t,
		[]codec.EncodeResult{{Packets: [][]byte{{0xAA}}, SamplesEncoded: 2880}},
		nil,
	)
	conn := transport.NewMemoryConn(func([]byte, transport.Metadata) (*transport.Response, error) {
		return nil, nil
	})

	var lostConnectivity bool
	s := New(sess, conn, Config{OnConnectivityChange: func(connected bool) {
		if !connected {
			lostConnectivity = true
		}
	}})
	if err := s.StartSinging(); err != nil {
		t.Fatalf("StartSinging: %v", err)
	}

	batch := session.BatchSize(testClientRate)
	node.Push(micChunk(t, batch))

	waitFor(t, time.Second, func() bool { return s.State() == LostConnectivity })
	if !lostConnectivity {
		t.Error("OnConnectivityChange(false) was not called")
	}
	for _, msg := range node.Sent {
		if _, ok := msg.(workletnode.SamplesIn); ok {
			t.Error("nothing should be pushed to the player node on connectivity loss")
		}
	}
}

func TestSinger_ExceptionMessageIsFatal(t *testing.T) {
	sess, _ := newTestRig(t, nil, nil)
	conn := transport.NewMemoryConn(func([]byte, transport.Metadata) (*transport.Response, error) {
		t.Fatal("should not transmit")
		return nil, nil
	})

	var gotErr error
	s := New(sess, conn, Config{OnError: func(err error) { gotErr = err }})
	if err := s.StartSinging(); err != nil {
		t.Fatalf("StartSinging: %v", err)
	}

	node := sess.Node().(*workletnode.MockNode)
	node.Push(workletnode.Exception{Exception: "boom"})

	waitFor(t, time.Second, func() bool { return s.State() == Stopped })
	if gotErr == nil {
		t.Error("OnError was not called")
	}
}

func TestSinger_UnderflowIsFatal(t *testing.T) {
	sess, _ := newTestRig(t, nil, nil)
	conn := transport.NewMemoryConn(func([]byte, transport.Metadata) (*transport.Response, error) {
		t.Fatal("should not transmit")
		return nil, nil
	})

	s := New(sess, conn, Config{})
	if err := s.StartSinging(); err != nil {
		t.Fatalf("StartSinging: %v", err)
	}
	node := sess.Node().(*workletnode.MockNode)
	node.Push(workletnode.Underflow{})

	waitFor(t, time.Second, func() bool { return s.State() == Stopped })
}
