// ABOUTME: Singer client state machine driving the mic-to-server-to-speaker cycle
// ABOUTME: Buffers mic frames into batches, encodes, transmits, decodes, and plays back
// Package singer implements the singer client of spec section 4.7: it
// subscribes to a session's player-node messages, accumulates microphone
// frames into batches, drives them through the session's encoder pipeline,
// transmits the result over a transport.Conn, and pushes whatever the
// server sends back through the decoder pipeline to the player node.
//
// It replaces the source's invasive coupling (rebinding the player's
// global message handler) with a plain subscription on the session's
// dispatcher (see pkg/session.Dispatcher), following the pub/sub design
// called for in spec section 9.
package singer
