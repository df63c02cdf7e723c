package ring

import (
	"sync"
	"testing"
)

func TestRing_BasicPushPop(t *testing.T) {
	r := New[int](8)

	if !r.Push(1) {
		t.Fatalf("expected push to succeed on empty ring")
	}
	var out int
	if !r.Pop(&out) {
		t.Fatalf("expected pop to succeed")
	}
	if out != 1 {
		t.Fatalf("expected 1, got %d", out)
	}
	if r.Pop(&out) {
		t.Fatalf("expected pop to fail on empty ring")
	}
}

func TestRing_FullWhenCapacityExhausted(t *testing.T) {
	r := New[int](4)
	for i := 0; i < 4; i++ {
		if !r.Push(i) {
			t.Fatalf("push %d should have succeeded", i)
		}
	}
	if r.Push(99) {
		t.Fatalf("push should fail once ring is full")
	}
	var out int
	if !r.Pop(&out) || out != 0 {
		t.Fatalf("expected FIFO pop of 0, got %d", out)
	}
	if !r.Push(99) {
		t.Fatalf("push should succeed after freeing a slot")
	}
}

func TestRing_PanicsOnNonPowerOfTwo(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for non-power-of-two capacity")
		}
	}()
	New[int](3)
}

func TestRing_ConcurrentSPSC(t *testing.T) {
	const n = 200_000
	r := New[int](1024)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			for !r.Push(i) {
			}
		}
	}()

	go func() {
		defer wg.Done()
		var out int
		for i := 0; i < n; i++ {
			for !r.Pop(&out) {
			}
			if out != i {
				t.Errorf("expected %d in order, got %d", i, out)
			}
		}
	}()

	wg.Wait()
}
