// Package simulator wires a matching engine, its ingress queue, a pool
// of synthetic order feeders, and the event bus's optional live-view
// listener bundle into a single start/stop lifecycle.
//
// Grounded on original_source/src/simulator/MarketSimulator.cpp: N
// feeder threads (hardware_concurrency()-1, minimum 1) feed a shared
// queue, a single engine thread drains it, and enable_live_view toggles
// a registered set of listeners plus an OrderTracker's own enable flag.
// This port drops the original's separate live-view render thread (a
// 100ms-polling println loop); the render bundle here is driven by the
// same event-bus listener mechanism every other consumer uses, with
// periodic rendering left to the caller (see cmd/simulator) rather than
// baked into the simulator's own lifecycle.
package simulator

import (
	"runtime"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vamartid/lobsim/internal/bus"
	"github.com/vamartid/lobsim/internal/engine"
	"github.com/vamartid/lobsim/internal/feed"
	"github.com/vamartid/lobsim/internal/ingress"
	"github.com/vamartid/lobsim/internal/listeners"
	"github.com/vamartid/lobsim/internal/matching"
	"github.com/vamartid/lobsim/internal/orders"
)

// LiveViewBundle is the set of listeners registered on the bus while
// live view is enabled, grounded on MarketSimulator's live_view_/stats_/
// publisher_ trio plus the OrderTracker it drives directly.
type LiveViewBundle struct {
	Book    *listeners.OrderBookView
	Stats   *listeners.StatsCollector
	Tracker *listeners.OrderTracker
}

// Config holds the knobs a Simulator needs at construction time; zero
// values select the same defaults the original used.
type Config struct {
	// NumFeeders overrides the feeder count. Zero selects
	// runtime.NumCPU()-1, floored at 1, mirroring
	// hardware_concurrency()-1.
	NumFeeders int
	// BusRingCapacity is forwarded to bus.New; zero selects its default.
	BusRingCapacity int
	// Backpressure governs every listener this simulator registers,
	// including the live-view bundle.
	Backpressure bus.Backpressure
	Strategy     matching.Strategy
	Log          *zap.Logger
}

// Simulator is the run id'd aggregate root of a full run: feeders,
// engine, ingress queue, and bus are all owned and lifecycle-managed
// here.
type Simulator struct {
	RunID uuid.UUID

	queue  *ingress.Queue
	bus    *bus.Bus
	engine *engine.Engine
	log    *zap.Logger

	feeders     []*feed.Feeder
	engineWG    sync.WaitGroup
	backpressure bus.Backpressure

	mu             sync.Mutex
	running        bool
	liveView       *LiveViewBundle
	liveViewHandles []int
}

// New constructs a Simulator with num_feeders RealRNG-backed feeders.
// Each feeder's sleep window is offset by its feeder id (extraDelay is
// 0 for all of them) so they don't all tick in lockstep.
func New(cfg Config) *Simulator {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	numFeeders := cfg.NumFeeders
	if numFeeders <= 0 {
		numFeeders = runtime.NumCPU() - 1
		if numFeeders < 1 {
			numFeeders = 1
		}
	}

	b := bus.New(cfg.BusRingCapacity, log)
	q := ingress.New()
	eng := engine.New(cfg.Strategy, b, log)

	sim := &Simulator{
		RunID:        uuid.New(),
		queue:        q,
		bus:          b,
		engine:       eng,
		log:          log,
		backpressure: cfg.Backpressure,
	}

	for i := 0; i < numFeeders; i++ {
		feederID := uint16(i + 1)
		rng := feed.NewRealRNG(int64(feederID))
		sim.feeders = append(sim.feeders, feed.NewFeeder(q, rng, feederID, 0))
	}

	return sim
}

// Start begins every feeder and the engine's consumer loop. Calling
// Start more than once without an intervening Stop is undefined.
func (s *Simulator) Start() {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	for _, f := range s.feeders {
		f.Start()
	}

	s.engineWG.Add(1)
	go s.engineLoop()
}

func (s *Simulator) engineLoop() {
	defer s.engineWG.Done()
	for {
		o, ok := s.queue.WaitAndPop()
		if !ok {
			return
		}
		s.engine.AddOrder(o)
		s.engine.AdvanceTick()
	}
}

// Stop signals every feeder to exit, joins them, closes the ingress
// queue so the engine loop's WaitAndPop wakes with ok=false, joins the
// engine loop, then tears down the bus. Order matters: feeders must
// stop pushing before the queue closes, and the engine loop must exit
// before the bus's listeners are stopped, or late-published events
// would be silently dropped mid-drain.
func (s *Simulator) Stop() {
	for _, f := range s.feeders {
		f.Stop()
	}
	s.queue.Close()
	s.engineWG.Wait()

	s.bus.StopAll()

	s.mu.Lock()
	s.running = false
	s.liveView = nil
	s.liveViewHandles = nil
	s.mu.Unlock()
}

// EnableLiveView registers (or deregisters) the live-view listener
// bundle -- an OrderBookView, a StatsCollector, and an OrderTracker --
// against the bus, mirroring MarketSimulator::enable_live_view's
// idempotent on/off toggle. Safe to call before or after Start.
func (s *Simulator) EnableLiveView(enable bool) *LiveViewBundle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if enable {
		if s.liveView != nil {
			return s.liveView
		}
		bundle := &LiveViewBundle{
			Book:    listeners.NewOrderBookView(),
			Stats:   listeners.NewStatsCollector(nil),
			Tracker: listeners.NewOrderTracker(),
		}
		bundle.Tracker.Enable(true)

		s.liveViewHandles = []int{
			s.bus.AddListener(bundle.Book.OnEvent, s.backpressure),
			s.bus.AddListener(bundle.Stats.OnEvent, s.backpressure),
			s.bus.AddListener(bundle.Tracker.OnEvent, s.backpressure),
		}
		s.liveView = bundle
		return bundle
	}

	if s.liveView == nil {
		return nil
	}
	for _, h := range s.liveViewHandles {
		if err := s.bus.RemoveListener(h); err != nil {
			s.log.Warn("live view listener already removed", zap.Int("handle", h), zap.Error(err))
		}
	}
	s.liveView.Tracker.Enable(false)
	s.liveView = nil
	s.liveViewHandles = nil
	return nil
}

// AddListener registers an arbitrary callback on the underlying bus,
// mirroring MarketSimulator::add_listener -- the hook cmd/simulator
// uses to attach ad hoc listeners (a logger, a custom dashboard) beyond
// the built-in live-view bundle.
func (s *Simulator) AddListener(cb bus.Callback, bp bus.Backpressure) int {
	return s.bus.AddListener(cb, bp)
}

// RemoveListener undoes AddListener.
func (s *Simulator) RemoveListener(handle int) error {
	return s.bus.RemoveListener(handle)
}

// PushOrder enqueues an externally sourced order (as opposed to one
// generated by a Feeder), for callers wiring in their own order source.
func (s *Simulator) PushOrder(o orders.Order) error {
	return s.queue.Push(o)
}

// BestBid returns the engine's current best bid, if any resting orders
// remain on that side. Not safe to call concurrently with the engine
// loop in a way that expects a consistent snapshot across multiple
// calls; it exists for tests and simple diagnostics rather than a
// hot-path API.
func (s *Simulator) BestBid() (float64, bool) { return s.engine.BestBid() }

// BestAsk mirrors BestBid for the ask side.
func (s *Simulator) BestAsk() (float64, bool) { return s.engine.BestAsk() }
