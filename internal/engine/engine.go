// Package engine implements the single-threaded order book mutator: the
// only component that ever writes to a BookSide, the id index, or the
// tick/sequence counters. It orchestrates match -> publish(Fill) ->
// apply -> insert exactly per spec.md §4.7.
//
// Grounded on the teacher's internal/matching/engine.go (ProcessOrder
// orchestration shape, since renamed and re-scoped to AddOrder/
// CancelOrder) and original_source/src/engine/OrderBookEngine.cpp,
// whose id_lookup_ tuple-of-(side,price,iterator) becomes a Go map of
// (side, *orderbook.OrderNode) handles.
package engine

import (
	"go.uber.org/zap"

	"github.com/vamartid/lobsim/internal/bus"
	"github.com/vamartid/lobsim/internal/events"
	"github.com/vamartid/lobsim/internal/matching"
	"github.com/vamartid/lobsim/internal/orderbook"
	"github.com/vamartid/lobsim/internal/orders"
)

type indexEntry struct {
	side orders.Side
	node *orderbook.OrderNode
}

// Engine owns both sides of the book, the id->position index, and the
// tick/sequence counters. It is not safe for concurrent use: exactly one
// goroutine (the simulator's engine loop) may call AddOrder or
// CancelOrder at a time, per spec.md §4.7/§5.
type Engine struct {
	bids *orderbook.BookSide
	asks *orderbook.BookSide

	index map[uint64]indexEntry

	strategy matching.Strategy
	bus      *bus.Bus
	log      *zap.Logger

	tick uint32
	seq  uint32

	fillsScratch []orders.FillOp
}

// New creates an engine with the given matching strategy and event bus.
// strategy defaults to PriceTimePriority if nil; log may be nil for a
// no-op logger.
func New(strategy matching.Strategy, b *bus.Bus, log *zap.Logger) *Engine {
	if strategy == nil {
		strategy = matching.PriceTimePriority{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		bids:     orderbook.NewBookSide(orders.SideBuy),
		asks:     orderbook.NewBookSide(orders.SideSell),
		index:    make(map[uint64]indexEntry),
		strategy: strategy,
		bus:      b,
		log:      log,
	}
}

// Tick returns the engine's current tick counter.
func (e *Engine) Tick() uint32 { return e.tick }

// AdvanceTick increments the tick counter by one, recording a new point
// in simulated time for subsequently published events.
func (e *Engine) AdvanceTick() { e.tick++ }

func (e *Engine) nextSeq() uint32 {
	s := e.seq
	e.seq++
	return s
}

func (e *Engine) publish(build func(seq, tick uint32) events.Event) {
	e.bus.Publish(build(e.nextSeq(), e.tick))
}

func (e *Engine) sideOf(side orders.Side) (own, opposite *orderbook.BookSide) {
	if side == orders.SideBuy {
		return e.bids, e.asks
	}
	return e.asks, e.bids
}

// AddOrder executes the 8-step protocol from spec.md §4.7: match against
// the opposite side, publish fills, apply them to resting makers,
// reduce the incoming order's quantity, then either rest the residual
// (plain limit) or discard it (IOC) or drop everything silently (FOK
// failure).
func (e *Engine) AddOrder(o orders.Order) {
	own, opposite := e.sideOf(o.Side)

	e.fillsScratch = e.fillsScratch[:0]
	result := e.strategy.Match(o, opposite.View(), &e.fillsScratch)

	if result.AonFailed {
		// FOK pre-check already guarantees no FillOp was produced.
		return
	}

	for _, f := range e.fillsScratch {
		e.publish(func(seq, tick uint32) events.Event {
			return events.MakeFill(seq, tick, events.Fill{
				MakerID: f.MakerOrderID,
				TakerID: o.ID,
				Price:   f.Price,
				Qty:     f.Quantity,
			})
		})
	}
	for _, f := range e.fillsScratch {
		e.applyFill(opposite, f)
	}

	residual := o.Quantity - result.FilledQty

	if residual > 0 && !o.IsIOC() && !o.IsFOK() {
		o.Quantity = residual
		node := own.Add(o)
		e.index[o.ID] = indexEntry{side: o.Side, node: node}

		e.publish(func(seq, tick uint32) events.Event {
			return events.MakeOrderAdded(seq, tick, events.OrderAdded{
				ID: o.ID, Side: o.Side, Price: o.Price, Qty: residual,
			})
		})
		e.publishLevelAgg(o.Side, own, o.Price)
	}
	// residual > 0 with IOC or FOK set (but not aon-failed): the order
	// was never in the book, so it is discarded without an event.
}

// applyFill deducts fill.Quantity from its resting maker on side,
// removing the order (and the level if now empty) when it reaches
// zero, and publishes OrderRemoved/LevelAgg as appropriate. A maker
// missing from the index is a no-op: it cannot happen in this
// single-threaded engine, but the guard matches spec.md §7's defensive
// stance.
func (e *Engine) applyFill(side *orderbook.BookSide, fill orders.FillOp) {
	entry, ok := e.index[fill.MakerOrderID]
	if !ok {
		return
	}

	node := entry.node
	if side.ApplyFill(node, fill.Quantity) {
		delete(e.index, fill.MakerOrderID)

		e.publish(func(seq, tick uint32) events.Event {
			return events.MakeOrderRemoved(seq, tick, fill.MakerOrderID)
		})
	}

	e.publishLevelAgg(side.Side(), side, fill.Price)
}

// publishLevelAgg emits the live aggregate for (side, price): 0 if the
// level is now gone, otherwise its current TotalQty.
func (e *Engine) publishLevelAgg(side orders.Side, bs *orderbook.BookSide, price float64) {
	var agg uint32
	if level, ok := bs.GetLevel(price); ok {
		agg = uint32(level.TotalQty)
	}
	e.publish(func(seq, tick uint32) events.Event {
		return events.MakeLevelAgg(seq, tick, events.LevelAgg{Side: side, Price: price, AggQty: agg})
	})
}

// CancelOrder removes a resting order by id. Unknown ids are a silent
// no-op per spec.md §4.7/§7.
func (e *Engine) CancelOrder(id uint64) {
	entry, ok := e.index[id]
	if !ok {
		return
	}

	node := entry.node
	price := node.Order.Price
	side, _ := e.sideOf(entry.side)

	side.Erase(node)
	delete(e.index, id)

	e.publish(func(seq, tick uint32) events.Event {
		return events.MakeOrderRemoved(seq, tick, id)
	})
	e.publishLevelAgg(entry.side, side, price)
}

// BestBid returns the current best bid price, or false if the bid side
// is empty.
func (e *Engine) BestBid() (float64, bool) { return e.bids.BestPrice() }

// BestAsk returns the current best ask price, or false if the ask side
// is empty.
func (e *Engine) BestAsk() (float64, bool) { return e.asks.BestPrice() }

// NumLiveOrders reports the number of orders currently resting on
// either side, via the id index.
func (e *Engine) NumLiveOrders() int { return len(e.index) }
