// ABOUTME: Entry point for the bucket-brigade singer/calibration client
// ABOUTME: Parses CLI flags and drives a session against a bucket-brigade server
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gwillen/solstice-audio-test/pkg/bberrors"
	"github.com/gwillen/solstice-audio-test/pkg/calibrate"
	"github.com/gwillen/solstice-audio-test/pkg/codec"
	"github.com/gwillen/solstice-audio-test/pkg/session"
	"github.com/gwillen/solstice-audio-test/pkg/singer"
	"github.com/gwillen/solstice-audio-test/pkg/transport"
	"github.com/gwillen/solstice-audio-test/pkg/workletnode"
)

var (
	serverAddr    = flag.String("server", "", "Server address (host:port), required")
	path          = flag.String("path", "/", "Websocket path")
	username      = flag.String("username", "", "Username attached to every transmitted batch")
	mode          = flag.String("mode", "sing", "One of: sing, calibrate-volume, calibrate-latency")
	sampleRate    = flag.Int("sample-rate", 48000, "Client-side capture/playback sample rate")
	channels      = flag.Int("channels", 1, "Number of audio channels")
	synthetic     = flag.Bool("synthetic-source", false, "Use a synthetic capture source instead of the microphone")
	outputBackend = flag.String("output-backend", "malgo", "Playback backend: malgo or oto")
	loopback      = flag.Bool("loopback", false, "Loop captured audio straight back to playback")
	clickVol      = flag.Float64("click-volume", 0.5, "Initial calibration click volume (calibrate-latency mode)")
	logFile       = flag.String("log-file", "bucket-brigade-cli.log", "Log file path")
	noTUI         = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
)

func main() {
	flag.Parse()

	if *serverAddr == "" {
		fmt.Fprintln(os.Stderr, "bucket-brigade-cli: -server is required")
		os.Exit(2)
	}

	useTUI := !*noTUI

	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	quit := make(chan struct{})
	var tuiProg *tea.Program
	if useTUI {
		tuiProg, err = runTUI(*mode, *serverAddr, quit)
		if err != nil {
			log.Fatalf("failed to start TUI: %v", err)
		}
		go func() {
			if _, err := tuiProg.Run(); err != nil {
				log.Printf("TUI exited: %v", err)
			}
		}()
	}
	updateTUI := func(msg StatusMsg) {
		if tuiProg != nil {
			tuiProg.Send(msg)
		}
	}

	backend := workletnode.BackendMalgo
	if *outputBackend == "oto" {
		backend = workletnode.BackendOto
	}
	node, err := workletnode.NewMalgoNodeWithBackend(*sampleRate, *channels, backend)
	if err != nil {
		log.Fatalf("failed to open audio device: %v", err)
	}
	defer node.Close()

	encWorker := codec.NewOpusEncoderWorker()
	decWorker := codec.NewOpusDecoderWorker()
	sess := session.New(node, encWorker, decWorker)
	defer sess.Close()

	if err := sess.Start(session.Config{
		ClientSampleRate: *sampleRate,
		NumChannels:      *channels,
		SyntheticSource:  *synthetic,
		LoopbackMode:     *loopback,
	}); err != nil {
		log.Fatalf("session.Start: %v", err)
	}

	conn, err := transport.DialWebSocket(transport.WebSocketConfig{ServerAddr: *serverAddr, Path: *path})
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", *serverAddr, err)
	}
	defer conn.Close()
	tc := newTimedConn(conn)

	connected := true
	updateTUI(StatusMsg{Connected: &connected})

	switch *mode {
	case "sing":
		runSinger(sess, tc, updateTUI)
	case "calibrate-volume":
		runVolumeCalibration(sess, updateTUI)
	case "calibrate-latency":
		runLatencyCalibration(sess, float32(*clickVol), updateTUI)
	default:
		log.Fatalf("unknown -mode %q", *mode)
	}

	if useTUI {
		go rttPoll(tc, updateTUI, quit)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		log.Printf("received quit signal from TUI")
	case <-sigChan:
		log.Printf("shutdown signal received")
	}

	log.Printf("bucket-brigade-cli stopped")
}

func runSinger(sess *session.Session, conn transport.Conn, updateTUI func(StatusMsg)) {
	s := singer.New(sess, conn, singer.Config{
		Username: *username,
		OnConnectivityChange: func(connected bool) {
			updateTUI(StatusMsg{Connected: &connected})
		},
		OnError: func(err error) {
			log.Printf("singer error [%s]: %v", bberrors.Classify(err), err)
			connected := false
			updateTUI(StatusMsg{
				Connected:   &connected,
				SingerState: singer.Stopped.String(),
				SingerErr:   err.Error(),
			})
		},
	})
	if err := s.StartSinging(); err != nil {
		log.Fatalf("StartSinging: %v", err)
	}
	updateTUI(StatusMsg{SingerState: s.State().String()})
}

func runVolumeCalibration(sess *session.Session, updateTUI func(StatusMsg)) {
	c := calibrate.NewVolumeCalibrator(sess, calibrate.VolumeConfig{
		OnVolumeChange: func(v calibrate.VolumeChange) {
			vol := v.Volume
			updateTUI(StatusMsg{Volume: &vol, VolumeHuman: v.HumanReadable})
		},
		OnCalibrated: func(e calibrate.VolumeCalibratedEvent) {
			gain := e.InputGain
			log.Printf("volume calibration complete: input_gain=%.3f", gain)
			updateTUI(StatusMsg{InputGain: &gain})
		},
		OnMicInputChange: func(has bool) {
			updateTUI(StatusMsg{HasMicInput: &has})
		},
	})
	c.Start()
}

func runLatencyCalibration(sess *session.Session, clickVolume float32, updateTUI func(StatusMsg)) {
	c := calibrate.NewLatencyCalibrator(sess, calibrate.LatencyConfig{
		ClickVolume: clickVolume,
		OnBeep: func(b calibrate.BeepEvent) {
			log.Printf("latency beep: samples=%d done=%v", b.Samples, b.Done)
			updateTUI(StatusMsg{
				LatencySamples: b.Samples,
				LatencyDone:    b.Done,
				LatencySuccess: b.Success,
				LatencyEstMs:   b.EstLatencyMs,
			})
		},
		OnMicInputChange: func(has bool) {
			updateTUI(StatusMsg{HasMicInput: &has})
		},
	})
	c.Start()
}

// rttPoll periodically pushes the timed connection's RTT quality to the
// TUI's debug pane; the singer/calibrator clients themselves never need
// this, it's purely diagnostic (bberrors.ErrConnectivityLost is what
// they actually act on).
func rttPoll(tc *timedConn, updateTUI func(StatusMsg), quit chan struct{}) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			ms := float64(tc.tracker.SmoothedRTT()) / float64(time.Millisecond)
			quality := tc.tracker.Quality()
			updateTUI(StatusMsg{RTTMs: &ms, RTTQuality: &quality})
		case <-quit:
			return
		}
	}
}
