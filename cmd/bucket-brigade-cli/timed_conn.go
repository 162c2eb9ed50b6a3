// ABOUTME: Wraps a transport.Conn to feed an RTTTracker from each round trip
// ABOUTME: Purely diagnostic, drives the TUI's connection-quality readout
package main

import (
	"context"
	"time"

	"github.com/gwillen/solstice-audio-test/pkg/transport"
)

// timedConn wraps a transport.Conn and feeds an RTTTracker from each
// round trip's wall-clock time, so the TUI's debug pane can show
// connection quality the way the singer client itself never needs to.
type timedConn struct {
	transport.Conn
	tracker *transport.RTTTracker
}

func newTimedConn(conn transport.Conn) *timedConn {
	return &timedConn{Conn: conn, tracker: transport.NewRTTTracker()}
}

func (c *timedConn) Send(ctx context.Context, body []byte, meta transport.Metadata) (*transport.Response, error) {
	start := time.Now()
	resp, err := c.Conn.Send(ctx, body, meta)
	if err == nil && resp != nil {
		c.tracker.RecordRTT(time.Since(start))
	}
	return resp, err
}
