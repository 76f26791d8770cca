// Package perception turns a raw tick stream into fixed-interval candles.
//
// Each builder owns the in-progress candle for one symbol. Strategies only
// ever see sealed candles; the partial interval is private mutable state.
package perception

import (
	"time"

	"oceanview-go/internal/market"
	"oceanview-go/internal/metrics"
)

// Builder aggregates ticks for one symbol into interval candles and invokes
// the close callback whenever an interval seals.
type Builder struct {
	symbol   string
	interval time.Duration
	onClose  func(market.Candle)

	cur      market.Candle
	curStart time.Time
	open     bool
}

// NewBuilder constructs a candle builder for one symbol.
func NewBuilder(symbol string, interval time.Duration, onClose func(market.Candle)) *Builder {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Builder{symbol: symbol, interval: interval, onClose: onClose}
}

// AddTick folds one tick into the current interval. Out-of-order or duplicate
// timestamps inside the interval are absorbed: high/low widen and close takes
// the latest arrival. Crossing an interval boundary seals the current candle
// at the last known price; intervening empty intervals are not synthesized.
// Ticks older than the current interval are dropped.
func (b *Builder) AddTick(price float64, ts time.Time) {
	if price <= 0 || ts.IsZero() {
		return
	}
	bucket := ts.Truncate(b.interval)

	if !b.open {
		b.begin(bucket, price)
		return
	}

	switch {
	case bucket.Equal(b.curStart):
		if price > b.cur.High {
			b.cur.High = price
		}
		if price < b.cur.Low {
			b.cur.Low = price
		}
		b.cur.Close = price
	case bucket.After(b.curStart):
		b.seal()
		b.begin(bucket, price)
	default:
		// stale tick from a prior interval
	}
}

// Flush seals the in-progress candle, if any. Used on shutdown.
func (b *Builder) Flush() {
	if b.open {
		b.seal()
		b.open = false
	}
}

func (b *Builder) begin(start time.Time, price float64) {
	b.cur = market.Candle{
		Symbol: b.symbol,
		Ts:     start,
		Open:   price,
		High:   price,
		Low:    price,
		Close:  price,
	}
	b.curStart = start
	b.open = true
}

func (b *Builder) seal() {
	metrics.CandlesTotal.WithLabelValues(b.symbol).Inc()
	if b.onClose != nil {
		b.onClose(b.cur)
	}
}
