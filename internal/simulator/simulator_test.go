package simulator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vamartid/lobsim/internal/bus"
	"github.com/vamartid/lobsim/internal/events"
	"github.com/vamartid/lobsim/internal/orders"
)

func TestNew_DerivesFeederCountWhenUnset(t *testing.T) {
	sim := New(Config{NumFeeders: 0})
	assert.GreaterOrEqual(t, len(sim.feeders), 1, "NumFeeders<=0 must floor at one feeder, mirroring hardware_concurrency()-1")
}

func TestNew_HonorsExplicitFeederCount(t *testing.T) {
	sim := New(Config{NumFeeders: 3})
	assert.Len(t, sim.feeders, 3)
}

func TestPushOrder_RejectsZeroQuantity(t *testing.T) {
	sim := New(Config{NumFeeders: 0})
	sim.Start()
	defer sim.Stop()

	err := sim.PushOrder(orders.Order{ID: 1, Side: orders.SideBuy, Price: 100, Quantity: 0})
	require.Error(t, err)
}

func TestEnableLiveView_FalseWithoutPriorEnableIsNoOp(t *testing.T) {
	sim := New(Config{NumFeeders: 0})
	assert.Nil(t, sim.EnableLiveView(false))
}

func TestStop_JoinsFeedersAndEngineLoopPromptly(t *testing.T) {
	sim := New(Config{NumFeeders: 2, BusRingCapacity: 64, Backpressure: bus.Drop})
	sim.Start()
	time.Sleep(10 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		sim.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop did not return; feeders or engine loop failed to join")
	}
}

func TestAddListenerRemoveListener_RoundTrips(t *testing.T) {
	sim := New(Config{NumFeeders: 0, BusRingCapacity: 64, Backpressure: bus.Block})
	sim.Start()
	defer sim.Stop()

	handle := sim.AddListener(func(e events.Event) {}, bus.Block)
	require.NoError(t, sim.RemoveListener(handle))
	assert.Error(t, sim.RemoveListener(handle), "removing an already-removed handle must fail")
}
