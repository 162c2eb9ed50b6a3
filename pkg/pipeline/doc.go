// ABOUTME: Encoder and decoder pipelines bridging client-rate and server-rate sample clocks
// ABOUTME: Owns the dual clock state, queued remainder, and drift monitoring described in spec section 4
// Package pipeline implements the two codec pipelines that are the
// sample-rate/clock-domain bridge at the heart of the streaming core: the
// encoder pipeline accepts a contiguous stream of client-referenced
// chunks and emits server-referenced compressed chunks aligned to Opus
// frame boundaries; the decoder pipeline is its mirror image.
//
// Both pipelines drive a codec.EncoderWorker/DecoderWorker and enforce the
// request-id FIFO ordering contract those workers are expected to honor.
package pipeline
