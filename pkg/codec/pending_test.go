// ABOUTME: Unit tests for the codec request-id FIFO ordering queue
// ABOUTME: Asserts front-of-queue matching and the out-of-order error path
package codec

import (
	"errors"
	"testing"

	"github.com/gwillen/solstice-audio-test/pkg/bberrors"
)

func TestPendingQueueInOrder(t *testing.T) {
	var q PendingQueue
	q.Push(1)
	q.Push(2)
	q.Push(3)

	for _, id := range []uint32{1, 2, 3} {
		if err := q.Pop(id); err != nil {
			t.Fatalf("Pop(%d) unexpected error = %v", id, err)
		}
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}

func TestPendingQueueOutOfOrder(t *testing.T) {
	var q PendingQueue
	q.Push(1)
	q.Push(2)

	if err := q.Pop(2); !errors.Is(err, bberrors.ErrResponseOutOfOrder) {
		t.Fatalf("Pop(2) error = %v, want ResponseOutOfOrder", err)
	}
}

func TestPendingQueueEmpty(t *testing.T) {
	var q PendingQueue
	if err := q.Pop(1); !errors.Is(err, bberrors.ErrResponseOutOfOrder) {
		t.Fatalf("Pop() on empty queue error = %v, want ResponseOutOfOrder", err)
	}
}

func TestPendingQueueReset(t *testing.T) {
	var q PendingQueue
	q.Push(1)
	q.Push(2)
	q.Reset()
	if q.Len() != 0 {
		t.Errorf("Len() after Reset() = %d, want 0", q.Len())
	}
}
