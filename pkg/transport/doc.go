// ABOUTME: Server transport (spec section 6.5): request/response over one
// ABOUTME: ordered connection, plus a websocket implementation and RTT tracker
// Package transport is the singer client's connection to the server: one
// binary body (a packed multi-packet blob) per request, with a metadata
// side-channel, answered by an optional chunk plus the response's epoch. A
// response that never arrives (the connection is gone) is distinguished
// from a response that arrived with nothing to send back yet.
package transport
