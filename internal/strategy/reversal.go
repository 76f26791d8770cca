package strategy

import (
	"fmt"

	"oceanview-go/internal/market"
)

// StructuralReversal detects the stop-hunt pattern: price sweeps beyond a
// recent extreme by a configurable margin, then closes back inside the prior
// range having retraced at least a minimum fraction of the sweep candle. The
// idea fires on the opposite side of the sweep.
type StructuralReversal struct{}

// Name returns the identifier used in logs and trade records.
func (s *StructuralReversal) Name() string { return "reversal" }

// OnCandle evaluates the sweep pattern against the prior lookback window.
func (s *StructuralReversal) OnCandle(c market.Candle, ctx Context) *market.TradeIdea {
	lookback := int(ctx.Params.ReversalLookbk)
	if lookback < 2 || len(ctx.Candles) < lookback {
		return nil
	}
	priorLow, priorHigh := recentExtremes(ctx.Candles, lookback)

	candleRange := c.High - c.Low
	if candleRange <= 0 {
		return nil
	}
	retrace := ctx.Params.RetraceMin
	sweep := ctx.Params.SweepPct

	// Sweep below the prior low, close back above it with enough retracement.
	if c.Low < priorLow*(1-sweep) && c.Close > priorLow {
		if (c.Close-c.Low)/candleRange >= retrace {
			return &market.TradeIdea{
				Symbol:   c.Symbol,
				Side:     market.Buy,
				Price:    c.Close,
				Stop:     c.Low,
				Target:   priorHigh,
				Strategy: s.Name(),
				Reason:   fmt.Sprintf("swept low %.4f and reclaimed %.4f", c.Low, priorLow),
				Ts:       c.Ts,
			}
		}
	}

	// Sweep above the prior high, close back below it with enough retracement.
	if c.High > priorHigh*(1+sweep) && c.Close < priorHigh {
		if (c.High-c.Close)/candleRange >= retrace {
			return &market.TradeIdea{
				Symbol:   c.Symbol,
				Side:     market.Sell,
				Price:    c.Close,
				Stop:     c.High,
				Target:   priorLow,
				Strategy: s.Name(),
				Reason:   fmt.Sprintf("swept high %.4f and rejected %.4f", c.High, priorHigh),
				Ts:       c.Ts,
			}
		}
	}
	return nil
}
