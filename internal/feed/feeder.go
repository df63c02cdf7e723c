package feed

import (
	"sync/atomic"
	"time"

	"github.com/vamartid/lobsim/internal/ingress"
	"github.com/vamartid/lobsim/internal/orders"
)

// Synthetic order parameters, grounded verbatim on
// original_source/include/core/MarketFeeder.h's private constants.
const (
	delayMin    = 45
	delayMax    = 70
	delayJitter = 5

	priceMin = 100.0
	priceMax = 105.0

	qtyMin = 1
	qtyMax = 100
)

const feederIDBits = 16
const counterBits = 64 - feederIDBits

// encodeOrderID packs a feeder id into the high 16 bits and a per-
// feeder counter into the low 48, guaranteeing uniqueness across
// concurrently running feeders without any shared counter.
//
// Grounded on original_source/include/utils/GeneralUtils.h's
// encode_order_id.
func encodeOrderID(feederID uint16, counter uint64) uint64 {
	return uint64(feederID)<<counterBits | counter
}

// Feeder is a goroutine that generates synthetic orders at a jittered
// rate and pushes them onto an ingress queue, standing in for
// spec.md §1's "Producer (order feeder)" external collaborator.
//
// Grounded on original_source/src/core/MarketFeeder.cpp.
type Feeder struct {
	queue      *ingress.Queue
	rng        RNG
	feederID   uint16
	extraDelay uint32 // additional baseline delay in milliseconds, shifts this feeder's sleep window

	counter uint64

	running atomic.Bool
	done    chan struct{}
}

// NewFeeder creates a feeder that pushes generated orders onto queue.
// extraDelay shifts this feeder's sleep window, letting callers stagger
// several feeders' rates.
func NewFeeder(queue *ingress.Queue, rng RNG, feederID uint16, extraDelay uint32) *Feeder {
	return &Feeder{
		queue:      queue,
		rng:        rng,
		feederID:   feederID,
		extraDelay: extraDelay,
		done:       make(chan struct{}),
	}
}

// Start begins generating orders in a new goroutine. Calling Start more
// than once is undefined.
func (f *Feeder) Start() {
	f.running.Store(true)
	go f.run()
}

// Stop signals the feeder to exit and waits for its goroutine to
// return.
func (f *Feeder) Stop() {
	f.running.Store(false)
	<-f.done
}

func (f *Feeder) run() {
	defer close(f.done)

	jitter := delayJitter*int(f.feederID) + int(f.extraDelay)
	sleepMin := delayMin + jitter
	sleepMax := delayMax + jitter

	for f.running.Load() {
		order := f.generateOrder()
		if err := f.queue.Push(order); err != nil {
			// Zero-quantity orders are impossible by construction (qtyMin
			// is 1); a closed queue means the simulator is shutting down.
			return
		}

		sleepMillis := sleepMin
		if sleepMax > sleepMin {
			sleepMillis = sleepMin + int(f.rngIntForSleep(sleepMax-sleepMin))
		}
		time.Sleep(time.Duration(sleepMillis) * time.Millisecond)
	}
}

// rngIntForSleep draws a jitter offset in [0, span] from the feeder's
// RNG. With a MockRNG this consumes the next value of the same sequence
// the side/price/qty draws read from. With the delayMin/delayMax
// constants above, span is always 25.
func (f *Feeder) rngIntForSleep(span int) int {
	if span <= 0 {
		return 0
	}
	return f.rng.UniformInt(0, span)
}

// generateOrder draws one synthetic order from the configured RNG.
func (f *Feeder) generateOrder() orders.Order {
	id := encodeOrderID(f.feederID, atomic.AddUint64(&f.counter, 1)-1)

	side := orders.SideBuy
	if f.rng.UniformInt(0, 1) == 1 {
		side = orders.SideSell
	}

	return orders.Order{
		ID:        id,
		Side:      side,
		Price:     f.rng.UniformReal(priceMin, priceMax),
		Quantity:  uint32(f.rng.UniformInt(qtyMin, qtyMax)),
		FeederID:  uint8(f.feederID),
		Timestamp: uint32(time.Now().UnixNano()),
	}
}
