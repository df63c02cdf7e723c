package listeners

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vamartid/lobsim/internal/events"
	"github.com/vamartid/lobsim/internal/orders"
)

func TestOrderBookView_TracksAggregatesAndRemovesEmptyLevels(t *testing.T) {
	v := NewOrderBookView()

	v.OnEvent(events.MakeLevelAgg(0, 0, events.LevelAgg{Side: orders.SideBuy, Price: 100, AggQty: 10}))
	qty, ok := v.QtyAtPrice(orders.SideBuy, 100)
	require.True(t, ok)
	assert.Equal(t, uint32(10), qty)

	v.OnEvent(events.MakeLevelAgg(1, 0, events.LevelAgg{Side: orders.SideBuy, Price: 100, AggQty: 0}))
	_, ok = v.QtyAtPrice(orders.SideBuy, 100)
	assert.False(t, ok, "a zero aggregate removes the level")
}

func TestOrderBookView_TopNOrdersBestFirst(t *testing.T) {
	v := NewOrderBookView()
	v.OnEvent(events.MakeLevelAgg(0, 0, events.LevelAgg{Side: orders.SideSell, Price: 105, AggQty: 5}))
	v.OnEvent(events.MakeLevelAgg(1, 0, events.LevelAgg{Side: orders.SideSell, Price: 101, AggQty: 5}))
	v.OnEvent(events.MakeLevelAgg(2, 0, events.LevelAgg{Side: orders.SideSell, Price: 103, AggQty: 5}))

	top := v.TopN(orders.SideSell, 10)
	require.Len(t, top, 3)
	assert.Equal(t, []float64{101, 103, 105}, []float64{top[0].Price, top[1].Price, top[2].Price})
}

func TestOrderBookView_IgnoresNonLevelAggEvents(t *testing.T) {
	v := NewOrderBookView()
	v.OnEvent(events.MakeFill(0, 0, events.Fill{MakerID: 1, TakerID: 2, Price: 100, Qty: 5}))
	assert.Empty(t, v.TopN(orders.SideBuy, 10))
}

func TestStatsCollector_CountsByKind(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewStatsCollector(reg)

	s.OnEvent(events.MakeOrderAdded(0, 0, events.OrderAdded{ID: 1, Side: orders.SideBuy, Price: 100, Qty: 5}))
	s.OnEvent(events.MakeFill(1, 0, events.Fill{MakerID: 1, TakerID: 2, Price: 100, Qty: 5}))
	s.OnEvent(events.MakeOrderRemoved(2, 0, 1))

	assert.Equal(t, uint64(1), s.TotalOrders())
	assert.Equal(t, uint64(1), s.TotalFills())
	assert.Equal(t, uint64(1), s.TotalCancels())
}

func TestStatsCollector_SpreadRequiresBothSides(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewStatsCollector(reg)

	assert.Equal(t, 0.0, s.AverageSpread())

	s.OnEvent(events.MakeLevelAgg(0, 0, events.LevelAgg{Side: orders.SideBuy, Price: 100, AggQty: 5}))
	assert.Equal(t, 0.0, s.AverageSpread(), "still missing an ask quote")

	s.OnEvent(events.MakeLevelAgg(1, 0, events.LevelAgg{Side: orders.SideSell, Price: 102, AggQty: 5}))
	assert.Equal(t, 2.0, s.AverageSpread())

	bid, ok := s.LastBestBid()
	require.True(t, ok)
	assert.Equal(t, 100.0, bid)
}

func TestOrderTracker_TracksLifecycleThroughEvents(t *testing.T) {
	tr := NewOrderTracker()

	tr.OnEvent(events.MakeOrderAdded(0, 0, events.OrderAdded{ID: 1, Side: orders.SideBuy, Price: 100, Qty: 10}))
	snap := tr.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, uint32(10), snap[0].Quantity)
	assert.True(t, tr.HasUpdates())
	assert.False(t, tr.HasUpdates(), "flag clears after being read")

	tr.OnEvent(events.MakeFill(1, 0, events.Fill{MakerID: 1, TakerID: 2, Price: 100, Qty: 4}))
	snap = tr.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, uint32(6), snap[0].Quantity)

	tr.OnEvent(events.MakeOrderRemoved(2, 0, 1))
	assert.Empty(t, tr.Snapshot())
}

func TestOrderTracker_IgnoresEventsWhenDisabled(t *testing.T) {
	tr := NewOrderTracker()
	tr.Enable(false)

	tr.OnEvent(events.MakeOrderAdded(0, 0, events.OrderAdded{ID: 1, Side: orders.SideBuy, Price: 100, Qty: 10}))
	assert.Empty(t, tr.Snapshot())
}

func TestLogger_DoesNotPanicOnAnyEventKind(t *testing.T) {
	l := NewLogger(nil)
	l.OnEvent(events.MakeOrderAdded(0, 0, events.OrderAdded{ID: 1, Side: orders.SideBuy, Price: 100, Qty: 5}))
	l.OnEvent(events.MakeOrderUpdated(1, 0, events.OrderUpdated{ID: 1, Price: 100, Qty: 4}))
	l.OnEvent(events.MakeOrderRemoved(2, 0, 1))
	l.OnEvent(events.MakeFill(3, 0, events.Fill{MakerID: 1, TakerID: 2, Price: 100, Qty: 5}))
	l.OnEvent(events.MakeLevelAgg(4, 0, events.LevelAgg{Side: orders.SideBuy, Price: 100, AggQty: 0}))
}

func TestRenderer_ProducesNonEmptyLadder(t *testing.T) {
	view := NewOrderBookView()
	view.OnEvent(events.MakeLevelAgg(0, 0, events.LevelAgg{Side: orders.SideBuy, Price: 100, AggQty: 10}))
	view.OnEvent(events.MakeLevelAgg(1, 0, events.LevelAgg{Side: orders.SideSell, Price: 102, AggQty: 7}))

	reg := prometheus.NewRegistry()
	stats := NewStatsCollector(reg)
	stats.OnEvent(events.MakeLevelAgg(0, 0, events.LevelAgg{Side: orders.SideBuy, Price: 100, AggQty: 10}))
	stats.OnEvent(events.MakeLevelAgg(1, 0, events.LevelAgg{Side: orders.SideSell, Price: 102, AggQty: 7}))

	r := NewRenderer(view, stats)
	var buf bytes.Buffer
	lines := r.Render(&buf)

	assert.Greater(t, lines, 0)
	assert.Contains(t, buf.String(), "BID")
	assert.Contains(t, buf.String(), "ASK")
	assert.Contains(t, buf.String(), "Stats")
}
