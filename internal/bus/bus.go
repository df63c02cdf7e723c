// Package bus implements the single-producer, multi-consumer event fan-
// out: one bounded SPSC ring per listener, a dedicated consumer
// goroutine per listener, and three backpressure policies governing
// what the publisher does when a listener's ring is full.
//
// Grounded on original_source/src/engine/events/EventBus.cpp (the exact
// per-endpoint struct and push_one backpressure switch) and the
// teacher's internal/marketdata/publisher.go (non-blocking fan-out
// idiom), generalized with the per-consumer-sequence registration shape
// shown in other_examples' go-arcade-arcade ring buffer.
package bus

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/vamartid/lobsim/internal/events"
	"github.com/vamartid/lobsim/internal/ring"
)

func goYield() { runtime.Gosched() }

// Backpressure governs what Publish does when a listener's ring is
// full.
type Backpressure int

const (
	// Drop makes a single non-blocking push attempt; on failure the
	// event is lost for that endpoint only.
	Drop Backpressure = iota
	// Block spins until the push succeeds.
	Block
	// SpinYield spins like Block but calls runtime.Gosched every 64
	// failed attempts.
	SpinYield
)

// ErrListenerNotFound is returned by RemoveListener for a handle that
// was never issued or has already been removed.
var ErrListenerNotFound = errors.New("bus: listener not found")

// Callback is invoked once per event, from the listener's own consumer
// goroutine. It must not block indefinitely and must not call back into
// Publish.
type Callback func(events.Event)

const defaultRingCapacity = 1 << 12

type endpoint struct {
	q    *ring.Ring[events.Event]
	cb   Callback
	bp   Backpressure
	run  atomic.Bool
	done chan struct{}
}

// Bus is the single-writer event fan-out. Publish is expected to be
// called from exactly one goroutine (the order book engine); listener
// registration is expected to happen only while the engine is not
// concurrently publishing, per spec.
type Bus struct {
	ringCapacity int
	log          *zap.Logger

	mu        sync.Mutex
	listeners []*endpoint // append-only; nil entries are removed slots
}

// New creates a bus whose per-listener rings have the given power-of-two
// capacity (defaults to 4096 if capacity <= 0). log may be nil, in which
// case a no-op logger is used.
func New(ringCapacity int, log *zap.Logger) *Bus {
	if ringCapacity <= 0 {
		ringCapacity = defaultRingCapacity
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{ringCapacity: ringCapacity, log: log}
}

// AddListener registers cb with the given backpressure policy, starts
// its consumer goroutine, and returns a stable handle. Handles are
// never reused within a bus's lifetime.
func (b *Bus) AddListener(cb Callback, bp Backpressure) int {
	ep := &endpoint{
		q:    ring.New[events.Event](b.ringCapacity),
		cb:   cb,
		bp:   bp,
		done: make(chan struct{}),
	}
	ep.run.Store(true)

	b.mu.Lock()
	handle := len(b.listeners)
	b.listeners = append(b.listeners, ep)
	b.mu.Unlock()

	go b.consume(ep)
	return handle
}

func (b *Bus) consume(ep *endpoint) {
	defer close(ep.done)
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("listener callback panicked; endpoint stopped", zap.Any("panic", r))
		}
	}()

	var e events.Event
	for ep.run.Load() {
		if ep.q.Pop(&e) {
			ep.cb(e)
		} else {
			goYield()
		}
	}
	// drain remaining events published before shutdown.
	for ep.q.Pop(&e) {
		ep.cb(e)
	}
}

// RemoveListener stops the endpoint's consumer goroutine after it
// drains its ring, then destroys it. Returns ErrListenerNotFound for an
// unknown or already-removed handle.
func (b *Bus) RemoveListener(handle int) error {
	b.mu.Lock()
	if handle < 0 || handle >= len(b.listeners) || b.listeners[handle] == nil {
		b.mu.Unlock()
		return ErrListenerNotFound
	}
	ep := b.listeners[handle]
	b.listeners[handle] = nil
	b.mu.Unlock()

	ep.run.Store(false)
	<-ep.done
	return nil
}

// Publish fans e out to every live listener according to its
// backpressure policy. Single-writer only.
func (b *Bus) Publish(e events.Event) {
	b.mu.Lock()
	snapshot := make([]*endpoint, len(b.listeners))
	copy(snapshot, b.listeners)
	b.mu.Unlock()

	for _, ep := range snapshot {
		if ep == nil {
			continue
		}
		pushOne(ep, e)
	}
}

func pushOne(ep *endpoint, e events.Event) {
	switch ep.bp {
	case Drop:
		ep.q.Push(e)
	case Block:
		for !ep.q.Push(e) {
		}
	case SpinYield:
		spins := 0
		for !ep.q.Push(e) {
			spins++
			if spins%64 == 0 {
				goYield()
			}
		}
	}
}

// StopAll signals every live endpoint to stop, waits for each to drain
// its ring and exit. Every slot is left empty, so the stopped handles
// report ErrListenerNotFound and are not handed out again.
func (b *Bus) StopAll() {
	b.mu.Lock()
	snapshot := make([]*endpoint, len(b.listeners))
	copy(snapshot, b.listeners)
	for i := range b.listeners {
		b.listeners[i] = nil
	}
	b.mu.Unlock()

	for _, ep := range snapshot {
		if ep != nil {
			ep.run.Store(false)
		}
	}
	for _, ep := range snapshot {
		if ep != nil {
			<-ep.done
		}
	}
}
