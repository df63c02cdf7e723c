package matching

import (
	"github.com/vamartid/lobsim/internal/orderbook"
	"github.com/vamartid/lobsim/internal/orders"
)

// PriceTimePriority walks the opposite side best price first, FIFO
// within each level. It is the default matching strategy.
//
// Grounded on original_source/src/engine/match/
// PriceTimePriorityStrategy.cpp -- a near-literal translation of its
// FOK-pre-check-then-main-loop algorithm.
type PriceTimePriority struct{}

var _ Strategy = PriceTimePriority{}

// Match implements Strategy.
func (PriceTimePriority) Match(incoming orders.Order, opposite orderbook.BookSideView, out *[]orders.FillOp) orders.MatchResult {
	var result orders.MatchResult
	if incoming.Quantity == 0 {
		return result
	}

	if incoming.IsFOK() {
		var canFill uint64
		target := uint64(incoming.Quantity)
		opposite.ForEachLevelView(func(lvl orderbook.PriceLevelView) {
			if canFill >= target || !incoming.Accepts(lvl.Price) {
				return
			}
			canFill += lvl.AggregateQty
		})
		if canFill < target {
			result.AonFailed = true
			return result
		}
	}

	remaining := incoming.Quantity
	opposite.ForEachLevelView(func(lvl orderbook.PriceLevelView) {
		if remaining == 0 || !incoming.Accepts(lvl.Price) {
			return
		}
		opposite.ForEachOrderAtPrice(lvl.Price, func(resting orders.Order) {
			if remaining == 0 {
				return
			}
			exec := resting.Quantity
			if remaining < exec {
				exec = remaining
			}
			if exec == 0 {
				return
			}
			*out = append(*out, orders.FillOp{
				MakerOrderID: resting.ID,
				Quantity:     exec,
				Price:        lvl.Price,
			})
			remaining -= exec
		})
	})

	result.FilledQty = incoming.Quantity - remaining
	return result
}
