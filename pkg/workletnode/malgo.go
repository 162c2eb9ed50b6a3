// ABOUTME: malgo-backed Node: paired capture device and pluggable playback backend
// ABOUTME: Frames captured mic samples into fixed WorkletFrameSamples chunks as SamplesOut
package workletnode

import (
	"encoding/binary"
	"fmt"
	"log"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/gwillen/solstice-audio-test/pkg/bbconst"
	"github.com/gwillen/solstice-audio-test/pkg/chunk"
)

// ringBuffer is a small thread-safe circular float32 buffer, grounded on
// pkg/audio/output/malgo.go's int32 ring buffer and generalized to carry
// normalized float samples.
type ringBuffer struct {
	mu       sync.Mutex
	buf      []float32
	readPos  int
	writePos int
	count    int
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{buf: make([]float32, capacity)}
}

func (rb *ringBuffer) Write(samples []float32) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	written := 0
	for i := 0; i < len(samples) && rb.count < len(rb.buf); i++ {
		rb.buf[rb.writePos] = samples[i]
		rb.writePos = (rb.writePos + 1) % len(rb.buf)
		rb.count++
		written++
	}
	return written
}

func (rb *ringBuffer) Read(dst []float32) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	read := 0
	for i := 0; i < len(dst) && rb.count > 0; i++ {
		dst[i] = rb.buf[rb.readPos]
		rb.readPos = (rb.readPos + 1) % len(rb.buf)
		rb.count--
		read++
	}
	for i := read; i < len(dst); i++ {
		dst[i] = 0
	}
	return read
}

// PlaybackBackend selects MalgoNode's output device implementation.
// Capture is always malgo; oto has no capture API.
type PlaybackBackend int

const (
	// BackendMalgo drives playback through the same malgo device pair as
	// capture (the default).
	BackendMalgo PlaybackBackend = iota
	// BackendOto drives playback through oto instead, for environments
	// where malgo's playback backend isn't available.
	BackendOto
)

// MalgoNode is the real device-backed Node: a malgo capture device paired
// with a pluggable playback backend, grounded on
// pkg/audio/output/malgo.go's device lifecycle (context,
// DefaultDeviceConfig, DeviceCallbacks, Start/Uninit) and
// internal/audio/malgo_capturer.go's capture-side device setup, generalized
// to frame captured samples into fixed bbconst.WorkletFrameSamples chunks
// emitted as SamplesOut messages.
type MalgoNode struct {
	mu sync.Mutex

	sampleRate int
	channels   int
	epoch      uint64
	ignoreMic  bool

	malgoCtx      *malgo.AllocatedContext
	captureDevice *malgo.Device

	player  playbackBackend
	capture []float32 // partial frame accumulator, < WorkletFrameSamples long

	clockSamples int64

	messages chan FromWorklet
}

// NewMalgoNode opens a capture device and a malgo-backed playback device
// at sampleRate with the given channel count.
func NewMalgoNode(sampleRate, channels int) (*MalgoNode, error) {
	return NewMalgoNodeWithBackend(sampleRate, channels, BackendMalgo)
}

// NewMalgoNodeWithBackend is NewMalgoNode with an explicit playback
// backend selection (spec's "output backend selectable at startup").
func NewMalgoNodeWithBackend(sampleRate, channels int, backend PlaybackBackend) (*MalgoNode, error) {
	n := &MalgoNode{
		sampleRate: sampleRate,
		channels:   channels,
		messages:   make(chan FromWorklet, 256),
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("workletnode: malgo context: %w", err)
	}
	n.malgoCtx = ctx

	if err := n.openCapture(); err != nil {
		n.malgoCtx.Uninit() //nolint:errcheck
		return nil, err
	}

	switch backend {
	case BackendOto:
		p, err := newOtoPlayer(sampleRate, channels)
		if err != nil {
			n.captureDevice.Uninit()
			n.malgoCtx.Uninit() //nolint:errcheck
			return nil, err
		}
		n.player = p
	default:
		if err := n.openPlayback(); err != nil {
			n.captureDevice.Uninit()
			n.malgoCtx.Uninit() //nolint:errcheck
			return nil, err
		}
	}

	log.Printf("workletnode: capture+playback(%v) devices open at %dHz/%dch", backend, sampleRate, channels)
	return n, nil
}

func (b PlaybackBackend) String() string {
	if b == BackendOto {
		return "oto"
	}
	return "malgo"
}

func (n *MalgoNode) openCapture() error {
	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = uint32(n.channels)
	cfg.SampleRate = uint32(n.sampleRate)
	cfg.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, in []byte, frameCount uint32) {
			n.mu.Lock()
			n.clockSamples += int64(frameCount)
			ignoreMic := n.ignoreMic
			n.mu.Unlock()
			if !ignoreMic {
				n.feedCapture(int16BytesToFloat32(in))
			}
		},
	}

	device, err := malgo.InitDevice(n.malgoCtx.Context, cfg, callbacks)
	if err != nil {
		return fmt.Errorf("workletnode: init capture device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("workletnode: start capture device: %w", err)
	}
	n.captureDevice = device
	return nil
}

func (n *MalgoNode) openPlayback() error {
	buf := newRingBuffer(n.sampleRate * n.channels) // 1s of buffering
	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = uint32(n.channels)
	cfg.SampleRate = uint32(n.sampleRate)
	cfg.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, frameCount uint32) {
			samples := make([]float32, int(frameCount)*n.channels)
			buf.Read(samples)
			float32ToInt16Bytes(samples, out)
		},
	}

	device, err := malgo.InitDevice(n.malgoCtx.Context, cfg, callbacks)
	if err != nil {
		return fmt.Errorf("workletnode: init playback device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("workletnode: start playback device: %w", err)
	}
	n.player = &malgoPlayer{sampleRate: n.sampleRate, channels: n.channels, buf: buf, device: device}
	return nil
}

// feedCapture accumulates captured samples and emits one SamplesOut message
// per full bbconst.WorkletFrameSamples frame, mirroring the worklet's fixed
// frame size.
func (n *MalgoNode) feedCapture(samples []float32) {
	n.mu.Lock()
	n.capture = append(n.capture, samples...)
	var frames [][]float32
	for len(n.capture) >= bbconst.WorkletFrameSamples {
		frames = append(frames, append([]float32(nil), n.capture[:bbconst.WorkletFrameSamples]...))
		n.capture = n.capture[bbconst.WorkletFrameSamples:]
	}
	end := n.clockSamples
	n.mu.Unlock()

	for _, f := range frames {
		iv := chunk.ClockInterval{
			Reference: chunk.NewClientReference(n.sampleRate),
			End:       end,
			Length:    int64(len(f)),
		}
		out, err := chunk.NewAudioChunk(iv, f)
		if err != nil {
			continue
		}
		select {
		case n.messages <- SamplesOut{Chunk: chunk.ToWire(out)}:
		default:
			select {
			case n.messages <- Exception{Exception: "workletnode: message backlog full"}:
			default:
			}
		}
	}
}

func (n *MalgoNode) Send(msg ToWorklet) {
	switch m := msg.(type) {
	case Stop:
		n.player.reset()
	case AudioParams:
		n.mu.Lock()
		n.epoch = m.Epoch
		n.mu.Unlock()
	case SamplesIn:
		if audio, ok := m.Chunk.(chunk.AudioChunk); ok {
			n.player.write(audio.Data)
		}
	case IgnoreInput:
		n.mu.Lock()
		n.ignoreMic = m.Enabled
		n.mu.Unlock()
	case RequestCurClock:
		n.mu.Lock()
		clock := n.clockSamples
		n.mu.Unlock()
		select {
		case n.messages <- CurClock{Clock: clock}:
		default:
		}
	default:
		// LatencyEstimationMode, VolumeEstimationMode, ClickVolumeChange,
		// LocalLatency, and SetAlarm are ignored: MalgoNode generates no
		// calibration clicks and estimates no volume, so it never emits
		// LatencyEstimate, CurrentVolume, InputGain or Alarm.
	}
}

func (n *MalgoNode) Messages() <-chan FromWorklet { return n.messages }

func (n *MalgoNode) Close() error {
	if n.captureDevice != nil {
		n.captureDevice.Uninit()
	}
	if n.player != nil {
		n.player.close() //nolint:errcheck
	}
	if n.malgoCtx != nil {
		return n.malgoCtx.Uninit()
	}
	return nil
}

func int16BytesToFloat32(b []byte) []float32 {
	out := make([]float32, len(b)/2)
	for i := range out {
		v := int16(binary.LittleEndian.Uint16(b[i*2:]))
		out[i] = float32(v) / 32768
	}
	return out
}

func float32ToInt16Bytes(samples []float32, out []byte) {
	for i, s := range samples {
		if i*2+2 > len(out) {
			break
		}
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(s*32767)))
	}
}
