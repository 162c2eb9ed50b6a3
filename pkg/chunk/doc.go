// ABOUTME: Immutable audio-interval value types shared by both codec pipelines
// ABOUTME: Defines ClockReference, ClockInterval, AudioChunk, CompressedAudioChunk, PlaceholderChunk
// Package chunk provides the chunk algebra the streaming core is built on:
// immutable, interval-tagged audio values that flow between the encoder
// pipeline, the decoder pipeline, and the session context.
//
// Every chunk carries a ClockReference identifying which sample clock
// (client-rate or server-rate) its interval is measured in, so a chunk
// measured in the wrong time base is a construction-time or Concat-time
// error rather than a silent bug further downstream.
package chunk
