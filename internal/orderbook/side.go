// Package orderbook implements one side of the book: an ordered mapping
// from price to a FIFO price level, parametric over ordering direction
// (descending for bids, ascending for asks).
//
// The ordered map is github.com/emirpasic/gods/trees/redblacktree keyed
// on float64, replacing the teacher's hand-rolled red-black tree
// (internal/orderbook/rbtree.go in the original copy). See DESIGN.md for
// the two independent pack repos confirming this library's real API.
package orderbook

import (
	"github.com/emirpasic/gods/trees/redblacktree"

	"github.com/vamartid/lobsim/internal/orders"
)

func ascendingComparator(a, b interface{}) int {
	x, y := a.(float64), b.(float64)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func descendingComparator(a, b interface{}) int {
	return ascendingComparator(b, a)
}

// BookSide is one side of the book. Bid sides use a descending
// comparator (best = greatest price); ask sides ascending (best =
// least). Because the tree's "leftmost" node is always the minimum
// under its own comparator, Left() yields the best price on either
// side, and Keys() walks best-to-worst on either side, without any
// side-specific logic here.
type BookSide struct {
	side orders.Side
	tree *redblacktree.Tree
}

// NewBookSide creates an empty side ordered appropriately for buys
// (descending) or sells (ascending).
func NewBookSide(side orders.Side) *BookSide {
	cmp := ascendingComparator
	if side == orders.SideBuy {
		cmp = descendingComparator
	}
	return &BookSide{side: side, tree: redblacktree.NewWith(cmp)}
}

// Side reports which side of the book this is.
func (bs *BookSide) Side() orders.Side { return bs.side }

// Add appends o to the FIFO at its price, creating the level if absent,
// and returns a stable position handle.
func (bs *BookSide) Add(o orders.Order) *OrderNode {
	level := bs.levelOrCreate(o.Price)
	return level.append(o)
}

// Erase removes the order at handle n from its level, via its own
// position handle, and removes the level if it becomes empty.
func (bs *BookSide) Erase(n *OrderNode) {
	level := n.level
	if level == nil {
		return
	}
	level.remove(n)
	if level.isEmpty() {
		bs.tree.Remove(level.Price)
	}
}

// ApplyFill deducts qty from n's visible quantity (saturating at zero)
// and, if the order is now fully filled, erases it from its level,
// removing the level if it becomes empty. Returns true if the order was
// removed from the book.
func (bs *BookSide) ApplyFill(n *OrderNode, qty uint32) bool {
	n.level.reduceQty(n, qty)
	if n.Order.Quantity == 0 {
		bs.Erase(n)
		return true
	}
	return false
}

// RemoveLevelIfEmpty is a no-op guard exposed for callers that hold a
// price directly rather than a node handle (e.g. after reduceQty
// already drained a level to zero orders).
func (bs *BookSide) RemoveLevelIfEmpty(price float64) {
	if level, ok := bs.GetLevel(price); ok && level.isEmpty() {
		bs.tree.Remove(price)
	}
}

// GetLevel borrows the FIFO at price, or (nil, false) if absent.
func (bs *BookSide) GetLevel(price float64) (*PriceLevel, bool) {
	v, found := bs.tree.Get(price)
	if !found {
		return nil, false
	}
	return v.(*PriceLevel), true
}

func (bs *BookSide) levelOrCreate(price float64) *PriceLevel {
	if level, ok := bs.GetLevel(price); ok {
		return level
	}
	level := &PriceLevel{Price: price}
	bs.tree.Put(price, level)
	return level
}

// BestPrice returns the best (first) price, or false if the side is
// empty.
func (bs *BookSide) BestPrice() (float64, bool) {
	node := bs.tree.Left()
	if node == nil {
		return 0, false
	}
	return node.Key.(float64), true
}

// NumLevels returns the number of distinct price levels.
func (bs *BookSide) NumLevels() int { return bs.tree.Size() }

// ForEachLevel iterates levels from best to worst.
func (bs *BookSide) ForEachLevel(fn func(level *PriceLevel)) {
	for _, k := range bs.tree.Keys() {
		v, _ := bs.tree.Get(k)
		fn(v.(*PriceLevel))
	}
}

// ForEachOrderAtPrice iterates the FIFO at price head-to-tail. No-op if
// the price has no level.
func (bs *BookSide) ForEachOrderAtPrice(price float64, fn func(orders.Order)) {
	level, ok := bs.GetLevel(price)
	if !ok {
		return
	}
	level.ForEach(func(n *OrderNode) { fn(n.Order) })
}

// View returns a read-only BookSideView over this side, for passing to
// a matching strategy as the opposite side.
func (bs *BookSide) View() BookSideView { return bs }

// compile-time check: *BookSide satisfies BookSideView.
var _ BookSideView = (*BookSide)(nil)
