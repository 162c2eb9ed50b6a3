// ABOUTME: Calibration clients that drive the player node's estimation modes
// ABOUTME: VolumeCalibrator measures mic gain, LatencyCalibrator measures round-trip audio latency
// Package calibrate implements the two calibration clients of spec section
// 4.8. Both substitute themselves as a session subscriber (never the
// player node's message handler directly, replacing the source's invasive
// coupling per spec section 9) and toggle one of the player node's
// estimation modes for the duration of the calibration run.
package calibrate
