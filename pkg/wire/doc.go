// ABOUTME: Length-prefixed multi-packet wire framing shared by both codec directions
// ABOUTME: PackMulti/UnpackMulti implement the [count][len_hi][len_lo]bytes framing
// Package wire implements the packed multi-packet wire format used both for
// encoder-to-server transmission and for the CompressedAudioChunk data
// field: a one-byte packet count followed by that many
// (16-bit-big-endian-length, payload) pairs.
package wire
