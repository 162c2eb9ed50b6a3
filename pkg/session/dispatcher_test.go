// ABOUTME: Tests for the pub/sub dispatcher
// ABOUTME: Asserts subscribe/unsubscribe and fan-out to multiple subscribers
package session

import (
	"testing"

	"github.com/gwillen/solstice-audio-test/pkg/workletnode"
)

func TestDispatcher_FanOutToAllSubscribers(t *testing.T) {
	d := newDispatcher()
	var gotA, gotB []workletnode.FromWorklet
	d.Subscribe(func(m workletnode.FromWorklet) { gotA = append(gotA, m) })
	d.Subscribe(func(m workletnode.FromWorklet) { gotB = append(gotB, m) })

	d.dispatch(workletnode.Underflow{})

	if len(gotA) != 1 || len(gotB) != 1 {
		t.Fatalf("gotA=%d gotB=%d, want 1 each", len(gotA), len(gotB))
	}
}

func TestDispatcher_Unsubscribe(t *testing.T) {
	d := newDispatcher()
	var count int
	id := d.Subscribe(func(workletnode.FromWorklet) { count++ })
	d.dispatch(workletnode.Underflow{})
	d.Unsubscribe(id)
	d.dispatch(workletnode.Underflow{})

	if count != 1 {
		t.Errorf("count = %d, want 1 (second dispatch should not reach unsubscribed consumer)", count)
	}
}
