package orderbook

import "github.com/vamartid/lobsim/internal/orders"

// OrderNode is a stable position handle: the engine keeps *OrderNode
// pointers in its id index so cancellation and fill application are
// O(1). Only Erase invalidates its own handle;
// unrelated modifications to the same level or side never move it.
//
// Grounded on the teacher's internal/orderbook/pricelevel.go doubly-
// linked-list design, kept per spec.md §9's explicit stable-position-
// handle requirement.
type OrderNode struct {
	Order orders.Order
	prev  *OrderNode
	next  *OrderNode
	level *PriceLevel
}

// PriceLevel is a FIFO sequence of orders at one exact price on one
// side. All orders in a level share the same price and side; the level
// is removed from its BookSide the instant it becomes empty.
type PriceLevel struct {
	Price    float64
	head     *OrderNode
	tail     *OrderNode
	Count    int
	TotalQty uint64 // 64-bit accumulator; avoids overflow near uint32 max
}

// append adds o to the tail of the level's FIFO and returns its handle.
func (l *PriceLevel) append(o orders.Order) *OrderNode {
	n := &OrderNode{Order: o, level: l}
	if l.tail == nil {
		l.head = n
		l.tail = n
	} else {
		n.prev = l.tail
		l.tail.next = n
		l.tail = n
	}
	l.Count++
	l.TotalQty += uint64(o.Quantity)
	return n
}

// remove unlinks n from this level's FIFO in O(1).
func (l *PriceLevel) remove(n *OrderNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next, n.level = nil, nil, nil
	l.Count--
	l.TotalQty -= uint64(n.Order.Quantity)
}

// reduceQty deducts delta from n's visible quantity and the level's
// aggregate, saturating at zero.
func (l *PriceLevel) reduceQty(n *OrderNode, delta uint32) {
	if delta > n.Order.Quantity {
		delta = n.Order.Quantity
	}
	n.Order.Quantity -= delta
	l.TotalQty -= uint64(delta)
}

func (l *PriceLevel) isEmpty() bool { return l.Count == 0 }

// Front returns the head of the FIFO, or nil if the level is empty.
func (l *PriceLevel) Front() *OrderNode { return l.head }

// ForEach walks the FIFO head-to-tail.
func (l *PriceLevel) ForEach(fn func(*OrderNode)) {
	for n := l.head; n != nil; {
		next := n.next
		fn(n)
		n = next
	}
}
