package strategy

import (
	"fmt"

	"oceanview-go/internal/market"
)

// TrendFollower trades moving-average alignment: a long when the fast MA sits
// above the slow MA and price confirms above the fast MA, mirrored for shorts.
// Stops and targets are ATR multiples so sizing adapts to volatility.
type TrendFollower struct{}

// Name returns the identifier used in logs and trade records.
func (t *TrendFollower) Name() string { return "trend" }

// OnCandle evaluates MA alignment on the sealed candle.
func (t *TrendFollower) OnCandle(c market.Candle, ctx Context) *market.TradeIdea {
	fast, ok := ctx.Ind.FastMA()
	if !ok {
		return nil
	}
	slow, ok := ctx.Ind.SlowMA()
	if !ok {
		return nil
	}
	atr, ok := ctx.Ind.ATR()
	if !ok || atr <= 0 {
		return nil
	}

	stopDist := atr * ctx.Params.ATRStopMult
	targetDist := atr * ctx.Params.ATRTargetMult
	if stopDist <= 0 {
		return nil
	}

	switch {
	case fast > slow && c.Close > fast:
		return &market.TradeIdea{
			Symbol:   c.Symbol,
			Side:     market.Buy,
			Price:    c.Close,
			Stop:     c.Close - stopDist,
			Target:   c.Close + targetDist,
			Strategy: t.Name(),
			Reason:   fmt.Sprintf("fast %.4f above slow %.4f, close confirms", fast, slow),
			Ts:       c.Ts,
		}
	case fast < slow && c.Close < fast:
		return &market.TradeIdea{
			Symbol:   c.Symbol,
			Side:     market.Sell,
			Price:    c.Close,
			Stop:     c.Close + stopDist,
			Target:   c.Close - targetDist,
			Strategy: t.Name(),
			Reason:   fmt.Sprintf("fast %.4f below slow %.4f, close confirms", fast, slow),
			Ts:       c.Ts,
		}
	}
	return nil
}
