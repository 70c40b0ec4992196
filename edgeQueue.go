package dualmesh

import (
	"fmt"
)

// EdgeQueue is the FIFO frontier of the dual-face traversal. It is a
// growable ring buffer, so the steady push/pop churn of the interior
// sweep does not allocate once the buffer has reached its working size.
type EdgeQueue struct {
	buf   []EdgeIndex
	head  int
	count int
}

// NewEdgeQueue returns an empty queue with room for size edges.
func NewEdgeQueue(size int) *EdgeQueue {
	if size < 4 {
		size = 4
	}
	return &EdgeQueue{
		buf: make([]EdgeIndex, size),
	}
}

// IsEmpty checks, if the queue is empty.
func (q *EdgeQueue) IsEmpty() bool {
	return q.count == 0
}

func (q *EdgeQueue) Len() int {
	return q.count
}

// Push appends e at the tail of the queue.
func (q *EdgeQueue) Push(e EdgeIndex) {
	if q.count == len(q.buf) {
		grown := make([]EdgeIndex, 2*len(q.buf))
		n := copy(grown, q.buf[q.head:])
		copy(grown[n:], q.buf[:q.head])
		q.buf = grown
		q.head = 0
	}
	q.buf[(q.head+q.count)%len(q.buf)] = e
	q.count++
}

// Pop removes and returns the oldest edge.
func (q *EdgeQueue) Pop() (EdgeIndex, bool) {
	if q.count == 0 {
		return EmptyEdge, false
	}
	e := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.count--
	return e, true
}

func (q *EdgeQueue) String() string {
	s := ""
	for i := 0; i < q.count; i++ {
		s += fmt.Sprintf("%v --> ", q.buf[(q.head+i)%len(q.buf)])
	}
	return s
}
