// Package queue provides the unbounded FIFO hand-off between the poller and
// the processing workers.
//
// Enqueue never blocks; a source that outruns the workers must not stall
// ingestion. Dequeue blocks until an item arrives or the queue is closed.
// Unbounded capacity is a deliberate trade: memory grows if the workers stall
// permanently, which is a scaling limit rather than a correctness one at
// single-operator scale.
package queue

import "sync"

// Queue is a thread-safe FIFO with blocking dequeue.
type Queue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []T
	closed bool
}

// New constructs an empty queue.
func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends an item. It never blocks. Items pushed after Close are
// dropped.
func (q *Queue[T]) Enqueue(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, item)
	q.cond.Signal()
}

// Dequeue removes and returns the oldest item, blocking while the queue is
// empty. The boolean is false once the queue is closed and drained.
func (q *Queue[T]) Dequeue() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

// Len reports the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops the queue. Blocked consumers wake up; queued items remain
// dequeueable until drained.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}
