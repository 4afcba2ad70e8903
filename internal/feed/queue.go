package feed

// QueueCapacity bounds the pending queue. Overflow drops the oldest entry,
// so the queue always holds the most recently received notifications.
const QueueCapacity = 100

// Queue is a capacity-bounded FIFO of notifications awaiting load. It is
// not safe for concurrent use; all access happens on the update loop.
type Queue struct {
	entries []*Notification
	cap     int
}

// NewQueue creates a queue with the given capacity. Non-positive values
// fall back to QueueCapacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = QueueCapacity
	}
	return &Queue{cap: capacity}
}

// Enqueue appends n, dropping the head entry first when the queue is
// already full. It never blocks and never grows past capacity.
func (q *Queue) Enqueue(n *Notification) {
	if len(q.entries) >= q.cap {
		q.entries = q.entries[1:]
	}
	q.entries = append(q.entries, n)
}

// Dequeue removes and returns the head entry, or nil when empty.
func (q *Queue) Dequeue() *Notification {
	if len(q.entries) == 0 {
		return nil
	}
	n := q.entries[0]
	q.entries = q.entries[1:]
	return n
}

// Len returns the number of pending entries.
func (q *Queue) Len() int {
	return len(q.entries)
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.entries = nil
}
