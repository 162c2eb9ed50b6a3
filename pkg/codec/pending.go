// ABOUTME: FIFO request-id tracker used to detect out-of-order codec responses
// ABOUTME: A response whose id isn't the queue front is a protocol violation
package codec

import (
	"fmt"

	"github.com/gwillen/solstice-audio-test/pkg/bberrors"
)

// PendingQueue tracks in-flight request IDs in dispatch order, so a
// pipeline can detect a codec worker returning responses out of order
// (spec §4.3, §5): "a response whose id != queue-front is a protocol
// violation and fatal."
type PendingQueue struct {
	ids []uint32
}

// Push records a request as dispatched.
func (q *PendingQueue) Push(id uint32) {
	q.ids = append(q.ids, id)
}

// Pop checks that id matches the front of the queue and, if so, removes
// it. It returns ResponseOutOfOrder if id does not match, or if the queue
// is empty (a response with nothing pending is equally a protocol
// violation).
func (q *PendingQueue) Pop(id uint32) error {
	if len(q.ids) == 0 {
		return fmt.Errorf("codec: %w: response for request %d, nothing pending", bberrors.ErrResponseOutOfOrder, id)
	}
	front := q.ids[0]
	if front != id {
		return fmt.Errorf("codec: %w: response for request %d, expected %d", bberrors.ErrResponseOutOfOrder, id, front)
	}
	q.ids = q.ids[1:]
	return nil
}

// Len reports how many requests are still in flight.
func (q *PendingQueue) Len() int {
	return len(q.ids)
}

// Reset discards all pending request ids, e.g. across a pipeline Reset.
func (q *PendingQueue) Reset() {
	q.ids = nil
}
