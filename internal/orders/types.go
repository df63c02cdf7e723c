// Package orders defines the core order and fill types shared by the
// book side, matching strategy, and engine.
//
// Price is a float64 (IEEE-754 double), not a fixed-point integer: the
// book's level discriminator is exact float equality, not a decimal
// type with rounding rules. Two producers that arrive at "100.0" via
// different arithmetic paths may therefore land on different levels --
// this is an intentional property of the simulated book, not a bug.
package orders

import (
	"fmt"
	"unsafe"
)

// Side is which side of the book an order rests on or matches against.
type Side uint8

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	if s == SideSell {
		return "SELL"
	}
	return "BUY"
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Control is a bitset of order-control flags. Only IOC, FOK, and Market
// are honored by the matching core; the rest are carried for provenance
// and forward compatibility, matching the original simulator's own
// comment that only three of the eight bits are load-bearing.
type Control uint8

const (
	ControlIceberg Control = 1 << iota
	ControlHidden
	ControlWeight
	ControlAuction
	ControlIOC
	ControlFOK
	ControlMarket
	ControlReserved
)

func (c Control) Has(f Control) bool { return c&f != 0 }

// Order is the unit of work flowing through the ingress queue and the
// book. IDs are assigned by the caller (the simulator's id generator)
// and are expected to be monotonically unique; FeederID is provenance
// only.
//
// Cache-line sized (64 bytes), per spec and
// original_source/include/core/Order.h's own static_assert(sizeof(Order)
// == 64, ...). Only the size is fixed: Go aligns Order to 8 bytes, so an
// Order is not guaranteed to start on a cache-line boundary. The original reaches 64 bytes with a union of auxiliary,
// control-specific fields (iceberg visible qty, weight, auction meta);
// Go has no aliasing union, so Aux stands in as a single fixed 8-byte
// payload whose meaning is selected by Control (the union's footprint,
// not its aliasing semantics, is what the layout preserves). The
// trailing pad absorbs the rest of the line explicitly rather than
// relying on incidental struct-field alignment.
type Order struct {
	ID    uint64
	Price float64
	// Aux carries the control-specific payload: iceberg's visible
	// quantity, weighted-order weight, or auction reference price,
	// depending on which Control bit is set. Unused when none apply.
	Aux       uint64
	Quantity  uint32
	Timestamp uint32 // producer-assigned; feed.Feeder stores the low 32 bits of wall-clock nanoseconds, not a tick count
	Side      Side
	Control   Control
	FeederID  uint8
	_         [29]byte // pad to 64 bytes
}

// Compile-time layout assertion, mirroring the original's static_assert.
var _ [64]byte = [unsafe.Sizeof(Order{})]byte{}

func (o Order) IsIOC() bool          { return o.Control.Has(ControlIOC) }
func (o Order) IsFOK() bool          { return o.Control.Has(ControlFOK) }
func (o Order) IsMarket() bool       { return o.Control.Has(ControlMarket) }
func (o Order) IsIceberg() bool      { return o.Control.Has(ControlIceberg) }
func (o Order) IsHidden() bool       { return o.Control.Has(ControlHidden) }
func (o Order) IsWeighted() bool     { return o.Control.Has(ControlWeight) }
func (o Order) IsAuction() bool      { return o.Control.Has(ControlAuction) }
func (o Order) IsReservedFlag() bool { return o.Control.Has(ControlReserved) }
func (o Order) IsBuy() bool          { return o.Side == SideBuy }
func (o Order) IsSell() bool         { return o.Side == SideSell }

func (o Order) String() string {
	return fmt.Sprintf("Order{ID:%d Side:%s Price:%.2f Qty:%d}", o.ID, o.Side, o.Price, o.Quantity)
}

// Accepts reports whether the incoming order's price constraint allows
// a match against a resting price. Market orders accept any price.
func (o Order) Accepts(restingPrice float64) bool {
	if o.IsMarket() {
		return true
	}
	if o.IsBuy() {
		return o.Price >= restingPrice
	}
	return o.Price <= restingPrice
}

// FillOp is one planned execution produced by a matching strategy. It
// does not mutate the resting order; the engine applies it afterward.
type FillOp struct {
	MakerOrderID uint64
	Quantity     uint32
	Price        float64
}

// MatchResult summarizes the outcome of a single match() call.
type MatchResult struct {
	FilledQty  uint32
	AonFailed  bool // true if an FOK order could not be filled entirely
}
