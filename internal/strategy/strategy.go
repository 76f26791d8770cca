// Package strategy holds the pattern detectors that turn sealed candles into
// trade ideas.
package strategy

import (
	"oceanview-go/internal/config"
	"oceanview-go/internal/indicator"
	"oceanview-go/internal/market"
)

// Context exposes everything a strategy may inspect on a candle close: the
// indicator cache, recent sealed candles (oldest first, excluding the candle
// under evaluation), and the live parameter record.
type Context struct {
	Ind     *indicator.Cache
	Candles []market.Candle
	Params  config.Params
}

// Strategy inspects one sealed candle and emits at most one trade idea.
type Strategy interface {
	OnCandle(c market.Candle, ctx Context) *market.TradeIdea
	Name() string
}

// Active returns the enabled strategies in their fixed evaluation order:
// trend, range bounce, structural reversal.
func Active(p config.Params) []Strategy {
	var out []Strategy
	if p.TrendEnabled {
		out = append(out, &TrendFollower{})
	}
	if p.RangeEnabled {
		out = append(out, &RangeBounce{})
	}
	if p.ReversalEnabled {
		out = append(out, &StructuralReversal{})
	}
	return out
}

// Evaluate runs the strategies in order and returns the first idea produced;
// later strategies are not consulted once one fires. The winning idea is then
// discarded unless its reward-to-risk ratio clears the configured minimum.
func Evaluate(c market.Candle, ctx Context, strats []Strategy) *market.TradeIdea {
	for _, s := range strats {
		idea := s.OnCandle(c, ctx)
		if idea == nil {
			continue
		}
		if idea.RewardRisk() < ctx.Params.MinRewardRisk {
			return nil
		}
		return idea
	}
	return nil
}
