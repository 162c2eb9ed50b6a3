// ABOUTME: Closed error taxonomy for the bucket-brigade streaming core
// ABOUTME: Sentinel errors plus a Kind classifier for terminal-event surfacing
// Package bberrors defines the fixed set of error kinds the streaming core
// can produce, per the error handling design: all of them are fatal to the
// current session except ConnectivityLost, which is observable and
// non-terminal.
//
// Callers construct or wrap one of the sentinel errors (or the two payload
// carrying types, CodecRPCFailedError and CodecExceptionError) and classify
// it at the session boundary with Classify to decide what terminal event to
// surface.
package bberrors
