package listeners

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vamartid/lobsim/internal/events"
	"github.com/vamartid/lobsim/internal/orders"
)

// StatsCollector accumulates live metrics from the event stream and
// mirrors them onto Prometheus collectors for scraping.
//
// Grounded on original_source/include/engine/listeners/StatsCollector.h
// and its .cpp: atomic counters for orders/fills/cancels, a mutex-
// guarded last-best-bid/ask pair, and an average_spread derived from
// them.
type StatsCollector struct {
	totalOrders  atomic.Uint64
	totalFills   atomic.Uint64
	totalCancels atomic.Uint64

	mu       sync.Mutex
	bestBid  float64
	bestAsk  float64
	hasBid   bool
	hasAsk   bool

	ordersTotal  prometheus.Counter
	fillsTotal   prometheus.Counter
	cancelsTotal prometheus.Counter
	bestBidGauge prometheus.Gauge
	bestAskGauge prometheus.Gauge
	spreadGauge  prometheus.Gauge
}

// NewStatsCollector creates a collector and registers its metrics with
// reg. reg may be nil, in which case a private registry is used (handy
// for tests that don't want to pollute the default registry).
func NewStatsCollector(reg prometheus.Registerer) *StatsCollector {
	s := &StatsCollector{
		ordersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lobsim_orders_total",
			Help: "Total OrderAdded events observed.",
		}),
		fillsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lobsim_fills_total",
			Help: "Total Fill events observed.",
		}),
		cancelsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lobsim_cancels_total",
			Help: "Total OrderRemoved events observed.",
		}),
		bestBidGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lobsim_best_bid",
			Help: "Most recently observed best bid price.",
		}),
		bestAskGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lobsim_best_ask",
			Help: "Most recently observed best ask price.",
		}),
		spreadGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lobsim_spread",
			Help: "best_ask - best_bid, 0 until both sides have quoted.",
		}),
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	reg.MustRegister(s.ordersTotal, s.fillsTotal, s.cancelsTotal, s.bestBidGauge, s.bestAskGauge, s.spreadGauge)
	return s
}

// OnEvent is the bus callback.
func (s *StatsCollector) OnEvent(e events.Event) {
	switch e.Kind {
	case events.KindFill:
		s.totalFills.Add(1)
		s.fillsTotal.Inc()
	case events.KindOrderAdded:
		s.totalOrders.Add(1)
		s.ordersTotal.Inc()
	case events.KindOrderRemoved:
		s.totalCancels.Add(1)
		s.cancelsTotal.Inc()
	case events.KindLevelAgg:
		s.observeLevelAgg(e.LevelAgg)
	}
}

func (s *StatsCollector) observeLevelAgg(lvl events.LevelAgg) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lvl.Side == orders.SideBuy {
		s.bestBid = lvl.Price
		s.hasBid = lvl.AggQty > 0
		if s.hasBid {
			s.bestBidGauge.Set(lvl.Price)
		}
	} else {
		s.bestAsk = lvl.Price
		s.hasAsk = lvl.AggQty > 0
		if s.hasAsk {
			s.bestAskGauge.Set(lvl.Price)
		}
	}
	if s.hasBid && s.hasAsk {
		s.spreadGauge.Set(s.bestAsk - s.bestBid)
	}
}

// TotalOrders returns the live OrderAdded count.
func (s *StatsCollector) TotalOrders() uint64 { return s.totalOrders.Load() }

// TotalFills returns the live Fill count.
func (s *StatsCollector) TotalFills() uint64 { return s.totalFills.Load() }

// TotalCancels returns the live OrderRemoved count.
func (s *StatsCollector) TotalCancels() uint64 { return s.totalCancels.Load() }

// LastBestBid returns the price of the most recent bid-side LevelAgg,
// and false if none has been seen or that event reported an emptied
// level (AggQty 0). That level is not necessarily the best bid.
func (s *StatsCollector) LastBestBid() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bestBid, s.hasBid
}

// LastBestAsk returns the price of the most recent ask-side LevelAgg,
// and false if none has been seen or that event reported an emptied
// level (AggQty 0). That level is not necessarily the best ask.
func (s *StatsCollector) LastBestAsk() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bestAsk, s.hasAsk
}

// AverageSpread returns the LastBestAsk price minus the LastBestBid
// price, or 0 while either of them reports false. It is the latest such
// difference, not an average over time.
func (s *StatsCollector) AverageSpread() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasBid || !s.hasAsk {
		return 0
	}
	return s.bestAsk - s.bestBid
}
