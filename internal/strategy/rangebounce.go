package strategy

import (
	"fmt"

	"oceanview-go/internal/market"
)

// RangeBounce fades oscillator extremes: buys when RSI drops below the
// oversold bound, sells when it rises above the overbought bound. The stop
// sits beyond the recent extreme and the target is the slow MA, so the
// reward-to-risk filter naturally rejects bounces with no room to revert.
type RangeBounce struct{}

// Name returns the identifier used in logs and trade records.
func (r *RangeBounce) Name() string { return "range" }

// OnCandle evaluates the oscillator on the sealed candle.
func (r *RangeBounce) OnCandle(c market.Candle, ctx Context) *market.TradeIdea {
	rsi, ok := ctx.Ind.RSI()
	if !ok {
		return nil
	}
	slow, ok := ctx.Ind.SlowMA()
	if !ok {
		return nil
	}
	if len(ctx.Candles) == 0 {
		return nil
	}

	lo, hi := recentExtremes(ctx.Candles, len(ctx.Candles))

	switch {
	case rsi <= ctx.Params.RSIBuyBelow && slow > c.Close:
		stop := min(lo, c.Low)
		if stop >= c.Close {
			return nil
		}
		return &market.TradeIdea{
			Symbol:   c.Symbol,
			Side:     market.Buy,
			Price:    c.Close,
			Stop:     stop,
			Target:   slow,
			Strategy: r.Name(),
			Reason:   fmt.Sprintf("RSI %.1f oversold, reverting to %.4f", rsi, slow),
			Ts:       c.Ts,
		}
	case rsi >= ctx.Params.RSISellAbove && slow < c.Close:
		stop := max(hi, c.High)
		if stop <= c.Close {
			return nil
		}
		return &market.TradeIdea{
			Symbol:   c.Symbol,
			Side:     market.Sell,
			Price:    c.Close,
			Stop:     stop,
			Target:   slow,
			Strategy: r.Name(),
			Reason:   fmt.Sprintf("RSI %.1f overbought, reverting to %.4f", rsi, slow),
			Ts:       c.Ts,
		}
	}
	return nil
}

// recentExtremes scans the last n candles for the lowest low and highest high.
func recentExtremes(candles []market.Candle, n int) (lo, hi float64) {
	if n > len(candles) {
		n = len(candles)
	}
	window := candles[len(candles)-n:]
	lo, hi = window[0].Low, window[0].High
	for _, c := range window[1:] {
		if c.Low < lo {
			lo = c.Low
		}
		if c.High > hi {
			hi = c.High
		}
	}
	return lo, hi
}
