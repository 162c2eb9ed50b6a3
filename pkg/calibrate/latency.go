// ABOUTME: Latency calibration client: click/echo round-trip measurement
// ABOUTME: Drives the session's LatencyEstimationMode and reports BeepEvent samples
package calibrate

import (
	"math"
	"sync"

	"github.com/gwillen/solstice-audio-test/pkg/bbconst"
	"github.com/gwillen/solstice-audio-test/pkg/session"
	"github.com/gwillen/solstice-audio-test/pkg/workletnode"
)

// BeepEvent is emitted for every latency_estimate the player node reports.
// EstLatencyMs, Est25To75Ms, and Jank mirror the source event's optional
// fields; Success and Done are only meaningful once Done is true.
type BeepEvent struct {
	Samples      int
	Done         bool
	EstLatencyMs *float64
	Est25To75Ms  *float64
	Jank         *bool
	Success      *bool
}

// LatencyConfig configures a LatencyCalibrator.
type LatencyConfig struct {
	// ClickVolume is the initial calibration click's playback volume.
	ClickVolume float32

	OnBeep           func(BeepEvent)
	OnMicInputChange func(hasMicInput bool)
}

// LatencyCalibrator is the latency calibration client of spec section 4.8.
type LatencyCalibrator struct {
	mu sync.Mutex

	session *session.Session
	cfg     LatencyConfig

	running     bool
	subID       int
	hasMicInput bool
	done        bool
}

// NewLatencyCalibrator builds a LatencyCalibrator around sess. Call Start
// to enable latency_estimation_mode.
func NewLatencyCalibrator(sess *session.Session, cfg LatencyConfig) *LatencyCalibrator {
	return &LatencyCalibrator{session: sess, cfg: cfg, hasMicInput: true}
}

// Start subscribes to the session, enables latency_estimation_mode, and
// sets the initial click volume.
func (c *LatencyCalibrator) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.mu.Unlock()

	subID := c.session.Subscribe(c.handle)
	c.mu.Lock()
	c.subID = subID
	c.mu.Unlock()

	c.session.Node().Send(workletnode.LatencyEstimationMode{Enabled: true})
	c.SetClickVolume(c.cfg.ClickVolume)
}

// Stop unsubscribes and disables latency_estimation_mode. Idempotent.
func (c *LatencyCalibrator) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	subID := c.subID
	c.mu.Unlock()

	c.session.Unsubscribe(subID)
	c.session.Node().Send(workletnode.LatencyEstimationMode{Enabled: false})
}

// SetClickVolume adjusts the calibration click's playback volume while
// running (spec's "settable clickVolume").
func (c *LatencyCalibrator) SetClickVolume(value float32) {
	c.mu.Lock()
	c.cfg.ClickVolume = value
	c.mu.Unlock()
	c.session.Node().Send(workletnode.ClickVolumeChange{Value: value})
}

func (c *LatencyCalibrator) handle(msg workletnode.FromWorklet) {
	switch v := msg.(type) {
	case workletnode.LatencyEstimate:
		c.handleEstimate(v)
	case workletnode.NoMicInput:
		c.mu.Lock()
		c.hasMicInput = !c.hasMicInput
		has := c.hasMicInput
		c.mu.Unlock()
		if c.cfg.OnMicInputChange != nil {
			c.cfg.OnMicInputChange(has)
		}
	}
}

func (c *LatencyCalibrator) handleEstimate(v workletnode.LatencyEstimate) {
	c.mu.Lock()
	alreadyDone := c.done
	done := !alreadyDone && v.Samples >= bbconst.CalibrationSampleMinimum
	if done {
		c.done = true
	}
	c.mu.Unlock()

	event := BeepEvent{Samples: v.Samples, Done: done, Jank: v.Jank}

	if v.P50 != nil {
		event.EstLatencyMs = v.P50
	}

	var success bool
	if v.P25 != nil && v.P75 != nil {
		spread := *v.P75 - *v.P25
		event.Est25To75Ms = &spread
		success = spread <= bbconst.CalibrationSuccessWindowMs
	}

	if done {
		event.Success = &success
		if success && v.P50 != nil {
			c.sendLocalLatency(*v.P50)
		}
	}

	if c.cfg.OnBeep != nil {
		c.cfg.OnBeep(event)
	}
}

func (c *LatencyCalibrator) sendLocalLatency(estLatencyMs float64) {
	c.session.Node().Send(workletnode.LocalLatency{
		LocalLatencyMs: int32(math.Round(estLatencyMs)),
	})
}
