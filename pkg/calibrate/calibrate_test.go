// ABOUTME: Shared test helpers for the calibrate package's suites
// ABOUTME: waitForCond polls for subscriber-callback side effects on the session's pump goroutine
package calibrate

import (
	"testing"
	"time"
)

// waitForCond polls cond until it's true or a short timeout elapses,
// needed because subscriber callbacks run on the session's background
// pump goroutine.
func waitForCond(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for condition")
}
