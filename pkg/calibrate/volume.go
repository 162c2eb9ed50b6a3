// ABOUTME: Volume calibration client: RMS input-level estimation and gain solving
// ABOUTME: Drives the session's VolumeEstimationMode and reports CurrentVolume/InputGain events
package calibrate

import (
	"math"
	"sync"

	"github.com/gwillen/solstice-audio-test/pkg/session"
	"github.com/gwillen/solstice-audio-test/pkg/workletnode"
)

// VolumeChange is emitted for every current_volume message received while
// the calibrator is running.
type VolumeChange struct {
	Volume        float32
	HumanReadable float64
}

// VolumeCalibratedEvent is emitted once, when the player reports the
// terminal input_gain reading.
type VolumeCalibratedEvent struct {
	InputGain float32
}

// VolumeConfig configures a VolumeCalibrator.
type VolumeConfig struct {
	OnVolumeChange   func(VolumeChange)
	OnCalibrated     func(VolumeCalibratedEvent)
	OnMicInputChange func(hasMicInput bool)
}

// VolumeCalibrator is the volume calibration client of spec section 4.8.
type VolumeCalibrator struct {
	mu sync.Mutex

	session *session.Session
	cfg     VolumeConfig

	running     bool
	subID       int
	hasMicInput bool
}

// NewVolumeCalibrator builds a VolumeCalibrator around sess. Call Start to
// enable volume_estimation_mode.
func NewVolumeCalibrator(sess *session.Session, cfg VolumeConfig) *VolumeCalibrator {
	return &VolumeCalibrator{session: sess, cfg: cfg, hasMicInput: true}
}

// Start subscribes to the session and enables volume_estimation_mode.
func (c *VolumeCalibrator) Start() {
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

	c.session.Node().Send(workletnode.VolumeEstimationMode{Enabled: true})
}

// Stop unsubscribes and disables volume_estimation_mode. Idempotent.
func (c *VolumeCalibrator) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	subID := c.subID
	c.mu.Unlock()

	c.session.Unsubscribe(subID)
	c.session.Node().Send(workletnode.VolumeEstimationMode{Enabled: false})
}

func (c *VolumeCalibrator) handle(msg workletnode.FromWorklet) {
	switch v := msg.(type) {
	case workletnode.CurrentVolume:
		humanReadable := math.Log(float64(v.Volume)*1000) / 6.908
		if c.cfg.OnVolumeChange != nil {
			c.cfg.OnVolumeChange(VolumeChange{Volume: v.Volume, HumanReadable: humanReadable})
		}
	case workletnode.InputGain:
		c.Stop()
		if c.cfg.OnCalibrated != nil {
			c.cfg.OnCalibrated(VolumeCalibratedEvent{InputGain: v.InputGain})
		}
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
