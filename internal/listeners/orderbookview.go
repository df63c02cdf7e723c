// Package listeners implements the reference event-bus consumers:
// an incremental L2 book snapshot, a metrics collector, a structured
// logger, a per-order live view, and a text renderer over the L2
// snapshot and the metrics collector.
//
// Every listener here is a plain `func(events.Event)` registered with
// bus.Bus.AddListener -- they implement spec.md §6's listener contract
// (must not block indefinitely, must not call back into Publish) by
// construction: each only touches its own locked state.
package listeners

import (
	"sync"

	"github.com/vamartid/lobsim/internal/events"
	"github.com/vamartid/lobsim/internal/orderbook"
	"github.com/vamartid/lobsim/internal/orders"
)

// OrderBookView maintains an incremental L2 snapshot of the book by
// consuming LevelAgg events, without ever touching the engine's own
// BookSide.
//
// Grounded on original_source/include/engine/listeners/OrderBookView.h
// and its .cpp: two ordered maps (bid descending, ask ascending)
// updated in place, erasing a price the instant its aggregate hits
// zero.
type OrderBookView struct {
	mu   sync.RWMutex
	bids map[float64]uint32
	asks map[float64]uint32
}

// NewOrderBookView creates an empty L2 view.
func NewOrderBookView() *OrderBookView {
	return &OrderBookView{
		bids: make(map[float64]uint32),
		asks: make(map[float64]uint32),
	}
}

// OnEvent is the bus callback. Non-LevelAgg events are ignored.
func (v *OrderBookView) OnEvent(e events.Event) {
	if e.Kind != events.KindLevelAgg {
		return
	}
	lvl := e.LevelAgg

	v.mu.Lock()
	defer v.mu.Unlock()

	levels := v.asks
	if lvl.Side == orders.SideBuy {
		levels = v.bids
	}
	if lvl.AggQty > 0 {
		levels[lvl.Price] = lvl.AggQty
	} else {
		delete(levels, lvl.Price)
	}
}

// QtyAtPrice returns the live aggregate quantity at (side, price), or
// false if that level does not currently exist.
func (v *OrderBookView) QtyAtPrice(side orders.Side, price float64) (uint32, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	levels := v.asks
	if side == orders.SideBuy {
		levels = v.bids
	}
	qty, ok := levels[price]
	return qty, ok
}

// TopN returns up to n levels for side, best price first.
func (v *OrderBookView) TopN(side orders.Side, n int) []orderbook.PriceLevelView {
	v.mu.RLock()
	defer v.mu.RUnlock()

	levels := v.asks
	if side == orders.SideBuy {
		levels = v.bids
	}

	prices := make([]float64, 0, len(levels))
	for p := range levels {
		prices = append(prices, p)
	}
	sortPrices(prices, side)

	if n > len(prices) {
		n = len(prices)
	}
	out := make([]orderbook.PriceLevelView, 0, n)
	for _, p := range prices[:n] {
		out = append(out, orderbook.PriceLevelView{Price: p, AggregateQty: uint64(levels[p])})
	}
	return out
}

// sortPrices orders prices best-first: descending for bids, ascending
// for asks. n here is small (live book depth), so a simple insertion
// sort avoids pulling in sort for a handful of elements -- matches the
// scale OrderBookView.top_n operates at in the original.
func sortPrices(prices []float64, side orders.Side) {
	less := func(a, b float64) bool { return a < b }
	if side == orders.SideBuy {
		less = func(a, b float64) bool { return a > b }
	}
	for i := 1; i < len(prices); i++ {
		for j := i; j > 0 && less(prices[j], prices[j-1]); j-- {
			prices[j], prices[j-1] = prices[j-1], prices[j]
		}
	}
}
