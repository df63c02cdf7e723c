// Package ingress implements the bounded-by-convention multi-producer,
// single-consumer queue that transports orders from feeder goroutines to
// the matching engine's single consumer loop.
//
// Grounded on the original simulator's ThreadSafeQueue (mutex +
// condition variable, exact Push/Pop/WaitAndPop split) rather than a
// lock-free intrusive list: the blocking wait_and_pop semantics the
// engine loop needs require a condition variable regardless, so a
// lock-free push gains nothing here.
package ingress

import (
	"errors"
	"sync"

	"github.com/vamartid/lobsim/internal/orders"
)

// ErrZeroQuantity is returned by Push when an order with zero quantity
// is submitted; such orders are rejected at ingest with no event.
var ErrZeroQuantity = errors.New("ingress: order has zero quantity")

// Queue is a thread-safe FIFO of orders shared by N producers and one
// consumer (the engine thread).
type Queue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	items    []orders.Order
	closed   bool
}

// New creates an empty ingress queue.
func New() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push enqueues an order. Never blocks. Rejects zero-quantity orders.
func (q *Queue) Push(o orders.Order) error {
	if o.Quantity == 0 {
		return ErrZeroQuantity
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return errors.New("ingress: queue closed")
	}
	q.items = append(q.items, o)
	q.mu.Unlock()
	q.cond.Signal()
	return nil
}

// TryPop returns the oldest order without blocking, or false if empty.
func (q *Queue) TryPop() (orders.Order, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return orders.Order{}, false
	}
	o := q.items[0]
	q.items = q.items[1:]
	return o, true
}

// WaitAndPop blocks until an order is available or the queue is closed.
// Returns false only when the queue has been closed and drained.
func (q *Queue) WaitAndPop() (orders.Order, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return orders.Order{}, false
	}
	o := q.items[0]
	q.items = q.items[1:]
	return o, true
}

// Close wakes every blocked WaitAndPop so the engine loop can exit
// cleanly. Further pushes are rejected; already-queued items can still
// be drained via WaitAndPop/TryPop until empty.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}
