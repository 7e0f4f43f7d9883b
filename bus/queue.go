package bus

import (
	"container/heap"

	"github.com/GoCodeAlone/simbus/event"
	"github.com/GoCodeAlone/simbus/simtime"
)

// entry is one scheduled event waiting for dispatch.
type entry struct {
	ts        simtime.Timestamp
	seq       uint64
	stream    event.StreamID
	topic     string
	payload   event.Event
	publisher event.AgentID
}

// entryHeap orders entries by (scheduled_ts, sequence). Sequence numbers are
// globally unique, so the pair is a total order and heap instability never
// shows through.
type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].ts != h[j].ts {
		return h[i].ts < h[j].ts
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(*entry)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// scheduledQueue is the priority queue the dispatch loop owns. It is not
// safe for concurrent use; external producers go through the inject queue.
type scheduledQueue struct {
	h entryHeap
}

func newScheduledQueue() *scheduledQueue {
	q := &scheduledQueue{h: make(entryHeap, 0, 64)}
	heap.Init(&q.h)
	return q
}

func (q *scheduledQueue) push(e *entry) { heap.Push(&q.h, e) }

// popMin removes and returns the smallest entry, or ErrQueueEmpty.
func (q *scheduledQueue) popMin() (*entry, error) {
	if len(q.h) == 0 {
		return nil, ErrQueueEmpty
	}
	return heap.Pop(&q.h).(*entry), nil
}

// peekMinTS returns the scheduled time of the next entry, if any.
func (q *scheduledQueue) peekMinTS() (simtime.Timestamp, bool) {
	if len(q.h) == 0 {
		return 0, false
	}
	return q.h[0].ts, true
}

func (q *scheduledQueue) size() int { return len(q.h) }
