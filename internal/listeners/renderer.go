package listeners

import (
	"fmt"
	"io"

	"github.com/vamartid/lobsim/internal/orders"
)

const renderDepth = 10

// Renderer writes a fixed-width, two-column top-of-book view to an
// io.Writer, in the style of a terminal dashboard.
//
// Grounded on original_source/include/engine/views/
// {Dashboard.h,OrderBookViewRenderer.h}: a view list rendered in
// sequence with blank-line separators, and a side-by-side BID/ASK
// ladder for the book view specifically.
type Renderer struct {
	book  *OrderBookView
	stats *StatsCollector
}

// NewRenderer creates a renderer over book and stats. Either may be
// nil to render only the other.
func NewRenderer(book *OrderBookView, stats *StatsCollector) *Renderer {
	return &Renderer{book: book, stats: stats}
}

// Render writes the current book ladder and summary stats to w,
// returning the number of lines written (mirroring Dashboard::
// render_all's line-count return value).
func (r *Renderer) Render(w io.Writer) int {
	lines := 0
	if r.book != nil {
		lines += r.renderBook(w)
		fmt.Fprintln(w)
		lines++
	}
	if r.stats != nil {
		lines += r.renderStats(w)
		fmt.Fprintln(w)
		lines++
	}
	return lines
}

func (r *Renderer) renderBook(w io.Writer) int {
	bids := r.book.TopN(orders.SideBuy, renderDepth)
	asks := r.book.TopN(orders.SideSell, renderDepth)

	fmt.Fprintln(w, "=== Order Book ===")
	lines := 1

	maxRows := len(bids)
	if len(asks) > maxRows {
		maxRows = len(asks)
	}
	for i := 0; i < maxRows; i++ {
		if i < len(bids) {
			fmt.Fprintf(w, "BID %6d @ %.2f", bids[i].AggregateQty, bids[i].Price)
		} else {
			fmt.Fprint(w, "                     ")
		}
		if i < len(asks) {
			fmt.Fprintf(w, "   ASK %6d @ %.2f", asks[i].AggregateQty, asks[i].Price)
		}
		fmt.Fprintln(w)
		lines++
	}
	return lines
}

func (r *Renderer) renderStats(w io.Writer) int {
	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "orders=%d fills=%d cancels=%d spread=%.2f\n",
		r.stats.TotalOrders(), r.stats.TotalFills(), r.stats.TotalCancels(), r.stats.AverageSpread())
	return 2
}
