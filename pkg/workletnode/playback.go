// ABOUTME: playbackBackend interface and the default malgo-backed implementation
// ABOUTME: Lets MalgoNode swap its output device without touching capture
package workletnode

import "github.com/gen2brain/malgo"

// playbackBackend is the pluggable half of MalgoNode's device pair: audio
// capture is always malgo (oto has no capture API), but playback can be
// swapped, mirroring the teacher's Output-interface pluggability between
// its malgo and oto backends.
type playbackBackend interface {
	write(samples []float32)
	reset()
	close() error
}

// malgoPlayer is the default playback backend: a ring buffer drained by a
// malgo playback device's data callback.
type malgoPlayer struct {
	sampleRate int
	channels   int
	buf        *ringBuffer
	device     *malgo.Device
}

func (p *malgoPlayer) write(samples []float32) { p.buf.Write(samples) }

func (p *malgoPlayer) reset() {
	p.buf.mu.Lock()
	p.buf.readPos, p.buf.writePos, p.buf.count = 0, 0, 0
	p.buf.mu.Unlock()
}

func (p *malgoPlayer) close() error {
	if p.device != nil {
		p.device.Uninit()
	}
	return nil
}
