package orderbook

import "github.com/vamartid/lobsim/internal/orders"

// PriceLevelView is a read-only summary of one price level, exposed to
// matching strategies without revealing the underlying FIFO container.
//
// Grounded on original_source/include/engine/side/PriceLevelView.h.
type PriceLevelView struct {
	Price        float64
	OrderCount   int
	AggregateQty uint64
}

// BookSideView is the read-only abstraction a matching strategy walks
// over the opposite side. It never exposes mutation.
//
// Grounded on original_source/include/engine/side/IOrderBookSideView.h.
type BookSideView interface {
	BestPrice() (float64, bool)
	ForEachLevelView(fn func(PriceLevelView))
	ForEachOrderAtPrice(price float64, fn func(orders.Order))
}

// ForEachLevelView iterates levels best-to-worst as read-only views.
func (bs *BookSide) ForEachLevelView(fn func(PriceLevelView)) {
	bs.ForEachLevel(func(level *PriceLevel) {
		fn(PriceLevelView{Price: level.Price, OrderCount: level.Count, AggregateQty: level.TotalQty})
	})
}
