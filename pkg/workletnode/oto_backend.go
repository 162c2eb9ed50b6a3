// ABOUTME: Alternate oto-backed playbackBackend implementation
// ABOUTME: For environments where malgo's own playback device isn't available
package workletnode

import (
	"fmt"
	"io"

	"github.com/ebitengine/oto/v3"
)

// otoPlayer is the alternate playback backend, grounded on the teacher's
// pkg/audio/output/oto.go: a persistent oto.Player fed through an
// io.Pipe, generalized from int16 PCM bytes to this package's float32
// samples. oto owns one process-wide context, so reset() re-primes the
// pipe rather than tearing the context down.
type otoPlayer struct {
	sampleRate int
	channels   int

	ctx    *oto.Context
	player *oto.Player
	w      *io.PipeWriter
	r      *io.PipeReader
}

// newOtoPlayer opens an oto context at sampleRate/channels and starts a
// persistent player reading from an internal pipe.
func newOtoPlayer(sampleRate, channels int) (*otoPlayer, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("workletnode: oto context: %w", err)
	}
	<-ready

	p := &otoPlayer{sampleRate: sampleRate, channels: channels, ctx: ctx}
	p.openPipe()
	return p, nil
}

func (p *otoPlayer) openPipe() {
	p.r, p.w = io.Pipe()
	p.player = p.ctx.NewPlayer(p.r)
	p.player.Play()
}

// write blocks until the oto player has read the samples from the pipe,
// which has no buffer of its own. This differs from malgoPlayer, whose
// write never blocks and drops samples that do not fit its ring buffer.
func (p *otoPlayer) write(samples []float32) {
	out := make([]byte, len(samples)*2)
	float32ToInt16Bytes(samples, out)
	_, _ = p.w.Write(out)
}

func (p *otoPlayer) reset() {
	if p.player != nil {
		p.player.Close()
	}
	if p.w != nil {
		p.w.Close()
	}
	if p.r != nil {
		p.r.Close()
	}
	p.openPipe()
}

func (p *otoPlayer) close() error {
	if p.player != nil {
		p.player.Close()
	}
	if p.w != nil {
		p.w.Close()
	}
	if p.r != nil {
		p.r.Close()
	}
	p.ctx.Suspend()
	return nil
}
