package ingress

import (
	"sync"
	"testing"

	"github.com/vamartid/lobsim/internal/orders"
)

func TestQueue_PushTryPop(t *testing.T) {
	q := New()
	if _, ok := q.TryPop(); ok {
		t.Fatalf("expected empty queue")
	}
	if err := q.Push(orders.Order{ID: 1, Quantity: 10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	o, ok := q.TryPop()
	if !ok || o.ID != 1 {
		t.Fatalf("expected order 1, got %+v ok=%v", o, ok)
	}
}

func TestQueue_RejectsZeroQuantity(t *testing.T) {
	q := New()
	if err := q.Push(orders.Order{ID: 1, Quantity: 0}); err != ErrZeroQuantity {
		t.Fatalf("expected ErrZeroQuantity, got %v", err)
	}
}

func TestQueue_WaitAndPopBlocksUntilPush(t *testing.T) {
	q := New()
	done := make(chan orders.Order, 1)
	go func() {
		o, ok := q.WaitAndPop()
		if ok {
			done <- o
		}
	}()

	if err := q.Push(orders.Order{ID: 42, Quantity: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case o := <-done:
		if o.ID != 42 {
			t.Fatalf("expected order 42, got %d", o.ID)
		}
	}
}

func TestQueue_CloseWakesWaiters(t *testing.T) {
	q := New()
	var wg sync.WaitGroup
	results := make([]bool, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, ok := q.WaitAndPop()
			results[i] = ok
		}(i)
	}
	q.Close()
	wg.Wait()
	for i, ok := range results {
		if ok {
			t.Fatalf("waiter %d should have observed closed queue, not an order", i)
		}
	}
}

func TestQueue_MultiProducerFIFOPerPush(t *testing.T) {
	q := New()
	const producers = 8
	const perProducer = 500
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				id := uint64(p*perProducer + i)
				if err := q.Push(orders.Order{ID: id, Quantity: 1}); err != nil {
					t.Errorf("unexpected push error: %v", err)
				}
			}
		}(p)
	}
	wg.Wait()

	count := 0
	next := make([]uint64, producers)
	for {
		o, ok := q.TryPop()
		if !ok {
			break
		}
		p := o.ID / perProducer
		if o.ID%perProducer != next[p] {
			t.Fatalf("producer %d: expected its push %d next, got %d", p, next[p], o.ID%perProducer)
		}
		next[p]++
		count++
	}
	if count != producers*perProducer {
		t.Fatalf("expected %d items, drained %d", producers*perProducer, count)
	}
}
