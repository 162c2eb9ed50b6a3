// ABOUTME: Runtime-registerable pub/sub dispatcher for FromWorklet messages
// ABOUTME: Replaces the invasive rebind-a-handler coupling spec section 9 flags for removal
package session

import (
	"sync"

	"github.com/gwillen/solstice-audio-test/pkg/workletnode"
)

// Dispatcher fans out player-node messages to any number of registered
// consumers, replacing the source's pattern of a calibrator or the singer
// client directly rebinding the node's single message handler (spec
// section 9, "Invasive coupling"). Every subscriber sees every message; a
// consumer that only cares about a subset type-switches and ignores the
// rest, the same way a Go channel-per-type demuxer would, but without
// requiring the node to know its consumers' types in advance.
type Dispatcher struct {
	mu     sync.Mutex
	subs   map[int]func(workletnode.FromWorklet)
	nextID int
}

func newDispatcher() *Dispatcher {
	return &Dispatcher{subs: make(map[int]func(workletnode.FromWorklet))}
}

// Subscribe registers fn to receive every subsequent dispatched message and
// returns an id for Unsubscribe.
func (d *Dispatcher) Subscribe(fn func(workletnode.FromWorklet)) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextID
	d.nextID++
	d.subs[id] = fn
	return id
}

// Unsubscribe removes a previously registered consumer. Unsubscribing an
// unknown or already-removed id is a no-op.
func (d *Dispatcher) Unsubscribe(id int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.subs, id)
}

func (d *Dispatcher) dispatch(msg workletnode.FromWorklet) {
	d.mu.Lock()
	fns := make([]func(workletnode.FromWorklet), 0, len(d.subs))
	for _, fn := range d.subs {
		fns = append(fns, fn)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn(msg)
	}
}
