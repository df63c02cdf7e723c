// Package matching implements pluggable matching strategies that plan
// fills against the opposite side's read-only view without mutating any
// resting order. The engine applies the resulting plan.
//
// Grounded on original_source/include/engine/match/{IMatchingStrategy.h,
// MatchResult.h,FillOp.h}; refactored out of the teacher's
// internal/matching/engine.go, whose matchOrder mutated resting orders
// inline -- a shortcut the spec explicitly disallows (spec.md §4.6: "the
// strategy does not mutate the resting side").
package matching

import (
	"github.com/vamartid/lobsim/internal/orderbook"
	"github.com/vamartid/lobsim/internal/orders"
)

// Strategy computes a fill plan for incoming against opposite, appending
// FillOps to out and returning aggregate status. It must not mutate
// opposite's resting orders.
type Strategy interface {
	Match(incoming orders.Order, opposite orderbook.BookSideView, out *[]orders.FillOp) orders.MatchResult
}
