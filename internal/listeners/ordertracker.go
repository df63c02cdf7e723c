package listeners

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/vamartid/lobsim/internal/events"
	"github.com/vamartid/lobsim/internal/orders"
)

// OrderTracker keeps a live, queryable view of every resting order,
// for tooling that wants order-level detail rather than OrderBookView's
// aggregated levels.
//
// Grounded on original_source/include/utils/OrderTracker.h, adapted
// from direct add_order/update_order/remove_order calls to an
// event-driven listener: this repo's engine publishes OrderAdded/Fill/
// OrderRemoved rather than handing the tracker live Order references,
// so the tracker derives its state from the same event stream every
// other listener sees.
type OrderTracker struct {
	enabled atomic.Bool
	updated atomic.Bool

	mu     sync.RWMutex
	orders map[uint64]orders.Order
}

// NewOrderTracker creates a tracker, initially enabled.
func NewOrderTracker() *OrderTracker {
	t := &OrderTracker{orders: make(map[uint64]orders.Order)}
	t.enabled.Store(true)
	return t
}

// Enable toggles whether OnEvent updates tracked state.
func (t *OrderTracker) Enable(on bool) { t.enabled.Store(on) }

// Enabled reports the current toggle state.
func (t *OrderTracker) Enabled() bool { return t.enabled.Load() }

// HasUpdates reports whether any order changed since the last call to
// HasUpdates, then clears the flag -- mirrors the original's
// has_updates()/render_live_view() polling idiom.
func (t *OrderTracker) HasUpdates() bool { return t.updated.Swap(false) }

// OnEvent is the bus callback.
func (t *OrderTracker) OnEvent(e events.Event) {
	if !t.enabled.Load() {
		return
	}

	switch e.Kind {
	case events.KindOrderAdded:
		a := e.OrderAdded
		t.mu.Lock()
		t.orders[a.ID] = orders.Order{ID: a.ID, Side: a.Side, Price: a.Price, Quantity: a.Qty}
		t.mu.Unlock()
		t.updated.Store(true)
	case events.KindFill:
		f := e.Fill
		t.mu.Lock()
		if o, ok := t.orders[f.MakerID]; ok {
			if f.Qty >= o.Quantity {
				o.Quantity = 0
			} else {
				o.Quantity -= f.Qty
			}
			t.orders[f.MakerID] = o
		}
		t.mu.Unlock()
		t.updated.Store(true)
	case events.KindOrderRemoved:
		t.mu.Lock()
		delete(t.orders, e.OrderRemoved.ID)
		t.mu.Unlock()
		t.updated.Store(true)
	}
}

// Snapshot returns every currently tracked order, sorted by id for
// stable rendering.
func (t *OrderTracker) Snapshot() []orders.Order {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]orders.Order, 0, len(t.orders))
	for _, o := range t.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
