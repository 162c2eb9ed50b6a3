// ABOUTME: Session context owning the audio-graph endpoints, pipelines, and
// ABOUTME: the publish/subscribe dispatcher that replaces invasive coupling
// Package session implements the session context of spec section 4.6: the
// single site that owns the encoder/decoder pipelines and the player node,
// and the only site that may post configuration messages to the node.
//
// It also carries the two structural fixes spec section 9 calls for: a
// publish/subscribe Dispatcher in place of the source's single rebindable
// message handler, and an Epoch that is bumped on every reset, pushed into
// both pipelines so codec results dispatched before the reset are dropped,
// and stamped on the AudioParams sent to the player node. Messages coming
// back from the node carry no epoch.
package session
