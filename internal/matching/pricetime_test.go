package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vamartid/lobsim/internal/orderbook"
	"github.com/vamartid/lobsim/internal/orders"
)

func TestPriceTimePriority_SimpleCross(t *testing.T) {
	asks := orderbook.NewBookSide(orders.SideSell)
	asks.Add(orders.Order{ID: 1, Side: orders.SideSell, Price: 100, Quantity: 10})

	incoming := orders.Order{ID: 2, Side: orders.SideBuy, Price: 100, Quantity: 10}
	var fills []orders.FillOp
	result := PriceTimePriority{}.Match(incoming, asks, &fills)

	assert.Equal(t, uint32(10), result.FilledQty)
	assert.False(t, result.AonFailed)
	if assert.Len(t, fills, 1) {
		assert.Equal(t, orders.FillOp{MakerOrderID: 1, Quantity: 10, Price: 100}, fills[0])
	}
}

func TestPriceTimePriority_FIFOWithinLevel(t *testing.T) {
	asks := orderbook.NewBookSide(orders.SideSell)
	asks.Add(orders.Order{ID: 1, Side: orders.SideSell, Price: 100, Quantity: 5})
	asks.Add(orders.Order{ID: 2, Side: orders.SideSell, Price: 100, Quantity: 5})

	incoming := orders.Order{ID: 99, Side: orders.SideBuy, Price: 100, Quantity: 8}
	var fills []orders.FillOp
	result := PriceTimePriority{}.Match(incoming, asks, &fills)

	assert.Equal(t, uint32(8), result.FilledQty)
	if assert.Len(t, fills, 2) {
		assert.Equal(t, uint64(1), fills[0].MakerOrderID)
		assert.Equal(t, uint32(5), fills[0].Quantity)
		assert.Equal(t, uint64(2), fills[1].MakerOrderID)
		assert.Equal(t, uint32(3), fills[1].Quantity)
	}
}

func TestPriceTimePriority_PriceNotAcceptedYieldsNoFill(t *testing.T) {
	asks := orderbook.NewBookSide(orders.SideSell)
	asks.Add(orders.Order{ID: 1, Side: orders.SideSell, Price: 102, Quantity: 10})

	incoming := orders.Order{ID: 2, Side: orders.SideBuy, Price: 100, Quantity: 5}
	var fills []orders.FillOp
	result := PriceTimePriority{}.Match(incoming, asks, &fills)

	assert.Equal(t, uint32(0), result.FilledQty)
	assert.Empty(t, fills)
}

func TestPriceTimePriority_WalksMultipleLevels(t *testing.T) {
	asks := orderbook.NewBookSide(orders.SideSell)
	asks.Add(orders.Order{ID: 1, Side: orders.SideSell, Price: 100, Quantity: 5})
	asks.Add(orders.Order{ID: 2, Side: orders.SideSell, Price: 101, Quantity: 10})

	incoming := orders.Order{ID: 99, Side: orders.SideBuy, Price: 101, Quantity: 12}
	var fills []orders.FillOp
	result := PriceTimePriority{}.Match(incoming, asks, &fills)

	assert.Equal(t, uint32(12), result.FilledQty)
	if assert.Len(t, fills, 2) {
		assert.Equal(t, orders.FillOp{MakerOrderID: 1, Quantity: 5, Price: 100}, fills[0])
		assert.Equal(t, orders.FillOp{MakerOrderID: 2, Quantity: 7, Price: 101}, fills[1])
	}
}

func TestPriceTimePriority_FOKFailsOnInsufficientLiquidity(t *testing.T) {
	asks := orderbook.NewBookSide(orders.SideSell)

	incoming := orders.Order{ID: 1, Side: orders.SideBuy, Price: 101, Quantity: 5, Control: orders.ControlFOK}
	var fills []orders.FillOp
	result := PriceTimePriority{}.Match(incoming, asks, &fills)

	assert.True(t, result.AonFailed)
	assert.Equal(t, uint32(0), result.FilledQty)
	assert.Empty(t, fills, "FOK failure must emit no FillOps")
}

func TestPriceTimePriority_FOKSucceedsAcrossLevels(t *testing.T) {
	asks := orderbook.NewBookSide(orders.SideSell)
	asks.Add(orders.Order{ID: 1, Side: orders.SideSell, Price: 100, Quantity: 5})
	asks.Add(orders.Order{ID: 2, Side: orders.SideSell, Price: 101, Quantity: 10})

	incoming := orders.Order{ID: 99, Side: orders.SideBuy, Price: 101, Quantity: 12, Control: orders.ControlFOK}
	var fills []orders.FillOp
	result := PriceTimePriority{}.Match(incoming, asks, &fills)

	assert.False(t, result.AonFailed)
	assert.Equal(t, uint32(12), result.FilledQty)
	assert.Len(t, fills, 2)
}

func TestPriceTimePriority_MarketAcceptsAnyPrice(t *testing.T) {
	asks := orderbook.NewBookSide(orders.SideSell)
	asks.Add(orders.Order{ID: 1, Side: orders.SideSell, Price: 999, Quantity: 5})

	incoming := orders.Order{ID: 2, Side: orders.SideBuy, Price: 0, Quantity: 5, Control: orders.ControlMarket}
	var fills []orders.FillOp
	result := PriceTimePriority{}.Match(incoming, asks, &fills)

	assert.Equal(t, uint32(5), result.FilledQty)
	assert.Len(t, fills, 1)
}

func TestPriceTimePriority_EmptyOppositeSideYieldsZeroFills(t *testing.T) {
	asks := orderbook.NewBookSide(orders.SideSell)
	incoming := orders.Order{ID: 1, Side: orders.SideBuy, Price: 100, Quantity: 5}
	var fills []orders.FillOp
	result := PriceTimePriority{}.Match(incoming, asks, &fills)

	assert.Equal(t, uint32(0), result.FilledQty)
	assert.Empty(t, fills)
}
