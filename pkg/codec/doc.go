// ABOUTME: Codec worker contract and Opus-backed encoder/decoder workers
// ABOUTME: Each worker is a goroutine-owned executor addressed by request-id-tagged messages
// Package codec implements the codec worker contract the two pipelines
// depend on (see spec §4.3/§6.1): an isolated executor, addressed by
// request-id-tagged requests, that emits responses in the order requests
// were submitted (the "single-executor guarantee").
//
// Each worker owns its Opus encoder/decoder exclusively and is driven by a
// single goroutine, mirroring the "separate execution context, no shared
// mutable memory" concurrency model of the streaming core: callers never
// touch the *opus.Encoder/*opus.Decoder directly, only the request and
// result channels.
package codec
