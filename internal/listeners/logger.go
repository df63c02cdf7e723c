package listeners

import (
	"go.uber.org/zap"

	"github.com/vamartid/lobsim/internal/events"
)

// Logger emits one structured log line per event, grouped by kind. It
// is the simplest possible listener and mostly exists as a wiring
// example -- real deployments would register StatsCollector and
// OrderBookView instead for anything performance sensitive, since
// logging every event at high order rates is expensive.
type Logger struct {
	log *zap.Logger
}

// NewLogger creates a Logger writing through log. Passing nil selects a
// no-op logger.
func NewLogger(log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{log: log.Named("lobsim.events")}
}

// OnEvent is the bus callback.
func (l *Logger) OnEvent(e events.Event) {
	switch e.Kind {
	case events.KindOrderAdded:
		a := e.OrderAdded
		l.log.Info("order added", zap.Uint32("seq", e.Seq), zap.Uint64("id", a.ID),
			zap.String("side", a.Side.String()), zap.Float64("price", a.Price), zap.Uint32("qty", a.Qty))
	case events.KindOrderUpdated:
		u := e.OrderUpdated
		l.log.Info("order updated", zap.Uint32("seq", e.Seq), zap.Uint64("id", u.ID),
			zap.Float64("price", u.Price), zap.Uint32("qty", u.Qty))
	case events.KindOrderRemoved:
		l.log.Info("order removed", zap.Uint32("seq", e.Seq), zap.Uint64("id", e.OrderRemoved.ID))
	case events.KindFill:
		f := e.Fill
		l.log.Info("fill", zap.Uint32("seq", e.Seq), zap.Uint64("maker", f.MakerID),
			zap.Uint64("taker", f.TakerID), zap.Float64("price", f.Price), zap.Uint32("qty", f.Qty))
	case events.KindLevelAgg:
		lv := e.LevelAgg
		l.log.Debug("level agg", zap.Uint32("seq", e.Seq), zap.String("side", lv.Side.String()),
			zap.Float64("price", lv.Price), zap.Uint32("agg_qty", lv.AggQty))
	}
}
