// ABOUTME: The player-node message protocol (spec section 6.3/6.4) and a
// ABOUTME: malgo-backed duplex mic/speaker implementation of it
// Package workletnode models the audio-device boundary as a
// producer/consumer counterparty addressed by message passing, the way the
// spec treats the browser/OS worklet: a fixed-size frame producer for
// microphone input and a frame consumer for playback, driven by a malgo
// capture device and a separate playback device (malgo or oto).
package workletnode
