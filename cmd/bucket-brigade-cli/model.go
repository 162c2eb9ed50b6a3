// ABOUTME: Bubbletea model for the bucket-brigade-cli TUI
// ABOUTME: Tracks connection/singer/calibration status for rendering
package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gwillen/solstice-audio-test/pkg/singer"
	"github.com/gwillen/solstice-audio-test/pkg/transport"
)

// Model is the bucket-brigade-cli TUI state, grounded on internal/ui's
// Model but reporting singer/calibration status instead of a Resonate
// player's track metadata.
type Model struct {
	mode string

	connected  bool
	serverAddr string

	singerState string
	singerErr   string

	hasMicInput bool

	volume        float32
	volumeHuman   float64
	inputGain     float32
	inputGainSet  bool

	latencySamples int
	latencyDone    bool
	latencySuccess *bool
	latencyEstMs   *float64

	rttMs     float64
	rttQuality transport.Quality

	showDebug bool

	width, height int

	quit chan struct{}
}

// NewModel builds the initial TUI state for the given mode ("sing",
// "calibrate-volume", or "calibrate-latency").
func NewModel(mode, serverAddr string, quit chan struct{}) Model {
	return Model{
		mode:        mode,
		serverAddr:  serverAddr,
		singerState: singer.Constructed.String(),
		hasMicInput: true,
		quit:        quit,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		close(m.quit)
		return m, tea.Quit
	case "d":
		m.showDebug = !m.showDebug
	}
	return m, nil
}

// StatusMsg is a partial update to the TUI's model, applied field-by-field
// the way internal/ui.StatusMsg is (zero value means "no change").
type StatusMsg struct {
	Connected      *bool
	SingerState    string
	SingerErr      string
	HasMicInput    *bool
	Volume         *float32
	VolumeHuman    float64
	InputGain      *float32
	LatencySamples int
	LatencyDone    bool
	LatencySuccess *bool
	LatencyEstMs   *float64
	RTTMs          *float64
	RTTQuality     *transport.Quality
}

func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Connected != nil {
		m.connected = *msg.Connected
	}
	if msg.SingerState != "" {
		m.singerState = msg.SingerState
	}
	if msg.SingerErr != "" {
		m.singerErr = msg.SingerErr
	}
	if msg.HasMicInput != nil {
		m.hasMicInput = *msg.HasMicInput
	}
	if msg.Volume != nil {
		m.volume = *msg.Volume
		m.volumeHuman = msg.VolumeHuman
	}
	if msg.InputGain != nil {
		m.inputGain = *msg.InputGain
		m.inputGainSet = true
	}
	if msg.LatencySamples != 0 {
		m.latencySamples = msg.LatencySamples
		m.latencyDone = msg.LatencyDone
		m.latencySuccess = msg.LatencySuccess
		m.latencyEstMs = msg.LatencyEstMs
	}
	if msg.RTTMs != nil {
		m.rttMs = *msg.RTTMs
	}
	if msg.RTTQuality != nil {
		m.rttQuality = *msg.RTTQuality
	}
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := m.renderHeader()
	switch m.mode {
	case "calibrate-volume":
		s += m.renderVolumeCalibration()
	case "calibrate-latency":
		s += m.renderLatencyCalibration()
	default:
		s += m.renderSinger()
	}
	if m.showDebug {
		s += m.renderDebug()
	}
	s += "│ d:Debug  q:Quit                                     │\n"
	s += "└──────────────────────────────────────────────────────┘\n"
	return s
}

func (m Model) renderHeader() string {
	connStatus := "Disconnected"
	if m.connected {
		connStatus = fmt.Sprintf("Connected to %s", m.serverAddr)
	}
	micStatus := "yes"
	if !m.hasMicInput {
		micStatus = "NO INPUT"
	}
	return fmt.Sprintf(`┌─ bucket-brigade %-38s ┐
│ Status: %-45s │
│ Mic:    %-45s │
├──────────────────────────────────────────────────────┤
`, "("+m.mode+")", connStatus, micStatus)
}

func (m Model) renderSinger() string {
	s := fmt.Sprintf("│ Singer: %-45s │\n", m.singerState)
	if m.singerErr != "" {
		s += fmt.Sprintf("│ Error:  %-45s │\n", truncate(m.singerErr, 45))
	}
	return s
}

func (m Model) renderVolumeCalibration() string {
	return fmt.Sprintf("│ Volume: %-6.3f (%.2f)%-30s │\n", m.volume, m.volumeHuman, "") +
		fmt.Sprintf("│ Input gain: %-38s │\n", inputGainText(m.inputGainSet, m.inputGain))
}

func inputGainText(set bool, gain float32) string {
	if !set {
		return "(calibrating...)"
	}
	return fmt.Sprintf("%.3f (calibrated)", gain)
}

func (m Model) renderLatencyCalibration() string {
	s := fmt.Sprintf("│ Samples: %d/7%-38s │\n", m.latencySamples, "")
	if m.latencyEstMs != nil {
		s += fmt.Sprintf("│ Estimate: %.1fms%-35s │\n", *m.latencyEstMs, "")
	}
	if m.latencyDone {
		result := "in progress"
		if m.latencySuccess != nil {
			if *m.latencySuccess {
				result = "success"
			} else {
				result = "failed"
			}
		}
		s += fmt.Sprintf("│ Result: %-42s │\n", result)
	}
	return s
}

func (m Model) renderDebug() string {
	return fmt.Sprintf(`├──────────────────────────────────────────────────────┤
│ RTT: %.1fms  quality=%-30s │
`, m.rttMs, m.rttQuality)
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
