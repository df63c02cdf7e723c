// Package events defines the tagged-union event schema published by the
// order book engine and carried over the event bus's per-listener
// rings.
//
// Events are plain values (no pointers to engine-owned state) so they
// can be copied by value through an SPSC ring. The engine is the sole
// publisher; Seq strictly increases by one per event within a run, and
// Tick is the engine's monotonic tick counter at publish time.
//
// Grounded directly on original_source/include/engine/events/Events.h:
// same five variants, same {seq, tick} header, same field names (px,
// qty translated to Price, Qty).
package events

import (
	"fmt"

	"github.com/vamartid/lobsim/internal/orders"
)

// Kind discriminates which variant of Event is populated.
type Kind uint8

const (
	KindOrderAdded Kind = iota
	KindOrderUpdated
	KindOrderRemoved
	KindFill
	KindLevelAgg
)

func (k Kind) String() string {
	switch k {
	case KindOrderAdded:
		return "OrderAdded"
	case KindOrderUpdated:
		return "OrderUpdated"
	case KindOrderRemoved:
		return "OrderRemoved"
	case KindFill:
		return "Fill"
	case KindLevelAgg:
		return "LevelAgg"
	default:
		return "Unknown"
	}
}

// OrderAdded: a residual was enqueued as a resting order.
type OrderAdded struct {
	ID    uint64
	Side  orders.Side
	Price float64
	Qty   uint32
}

// OrderUpdated: a resting order's visible quantity changed. Reserved --
// the reference engine does not emit this (see DESIGN.md Open Question
// 3); LevelAgg carries the equivalent information per touched level.
type OrderUpdated struct {
	ID    uint64
	Price float64
	Qty   uint32
}

// OrderRemoved: a resting order left the book (full fill or cancel).
type OrderRemoved struct {
	ID uint64
}

// Fill: an executed trade between a resting maker and the incoming
// taker.
type Fill struct {
	MakerID uint64
	TakerID uint64
	Price   float64
	Qty     uint32
}

// LevelAgg: the live aggregate quantity at one (side, price) after a
// change. AggQty == 0 means the level no longer exists.
type LevelAgg struct {
	Side   orders.Side
	Price  float64
	AggQty uint32
}

// Event is the common envelope carried over the bus. Exactly one of the
// variant fields is meaningful, selected by Kind.
type Event struct {
	Seq  uint32
	Tick uint32
	Kind Kind

	OrderAdded   OrderAdded
	OrderUpdated OrderUpdated
	OrderRemoved OrderRemoved
	Fill         Fill
	LevelAgg     LevelAgg
}

func (e Event) String() string {
	switch e.Kind {
	case KindOrderAdded:
		a := e.OrderAdded
		return fmt.Sprintf("seq:%d tick:%d OrderAdded{ID:%d Side:%s Price:%.2f Qty:%d}", e.Seq, e.Tick, a.ID, a.Side, a.Price, a.Qty)
	case KindOrderUpdated:
		u := e.OrderUpdated
		return fmt.Sprintf("seq:%d tick:%d OrderUpdated{ID:%d Price:%.2f Qty:%d}", e.Seq, e.Tick, u.ID, u.Price, u.Qty)
	case KindOrderRemoved:
		return fmt.Sprintf("seq:%d tick:%d OrderRemoved{ID:%d}", e.Seq, e.Tick, e.OrderRemoved.ID)
	case KindFill:
		f := e.Fill
		return fmt.Sprintf("seq:%d tick:%d Fill{Maker:%d Taker:%d Price:%.2f Qty:%d}", e.Seq, e.Tick, f.MakerID, f.TakerID, f.Price, f.Qty)
	case KindLevelAgg:
		l := e.LevelAgg
		return fmt.Sprintf("seq:%d tick:%d LevelAgg{Side:%s Price:%.2f AggQty:%d}", e.Seq, e.Tick, l.Side, l.Price, l.AggQty)
	default:
		return fmt.Sprintf("seq:%d tick:%d Unknown", e.Seq, e.Tick)
	}
}

func MakeOrderAdded(seq, tick uint32, a OrderAdded) Event {
	return Event{Seq: seq, Tick: tick, Kind: KindOrderAdded, OrderAdded: a}
}

func MakeOrderUpdated(seq, tick uint32, u OrderUpdated) Event {
	return Event{Seq: seq, Tick: tick, Kind: KindOrderUpdated, OrderUpdated: u}
}

func MakeOrderRemoved(seq, tick uint32, id uint64) Event {
	return Event{Seq: seq, Tick: tick, Kind: KindOrderRemoved, OrderRemoved: OrderRemoved{ID: id}}
}

func MakeFill(seq, tick uint32, f Fill) Event {
	return Event{Seq: seq, Tick: tick, Kind: KindFill, Fill: f}
}

func MakeLevelAgg(seq, tick uint32, l LevelAgg) Event {
	return Event{Seq: seq, Tick: tick, Kind: KindLevelAgg, LevelAgg: l}
}
