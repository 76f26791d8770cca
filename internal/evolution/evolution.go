// Package evolution is the offline parameter search: mutate the live
// strategy parameters, replay historical trades under each candidate, score
// the result, and promote the best candidate atomically. It only ever reads
// completed, persisted trade records, never a live agent's state.
package evolution

import (
	"math"
	"math/rand"
	"reflect"

	"oceanview-go/internal/config"
	"oceanview-go/internal/market"
)

// sharpeSentinel stands in for the infinite sharpe of a zero-volatility,
// all-positive series. Large and finite so comparisons stay well ordered.
const sharpeSentinel = 1e9

// Mutate returns a copy of p with every float64 field scaled by an
// independent uniform multiplier in [0.9, 1.1]. Non-numeric fields pass
// through unchanged. The input is never mutated.
func Mutate(p config.Params, rng *rand.Rand) config.Params {
	out := p
	v := reflect.ValueOf(&out).Elem()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if f.Kind() == reflect.Float64 {
			f.SetFloat(f.Float() * (0.9 + 0.2*rng.Float64()))
		}
	}
	return out
}

// Stats is the score of one candidate over a trade window.
type Stats struct {
	Sharpe   float64
	Drawdown float64
}

// Score computes per-trade sharpe and peak-to-trough drawdown over an
// ordered trade list. An empty list scores {0, 0}. When the pnl series has
// zero variance and positive mean, sharpe is a large positive sentinel
// rather than infinity.
func Score(trades []market.TradeRecord) Stats {
	if len(trades) == 0 {
		return Stats{}
	}

	var sum float64
	for _, t := range trades {
		sum += t.Pnl
	}
	mean := sum / float64(len(trades))

	var variance float64
	for _, t := range trades {
		d := t.Pnl - mean
		variance += d * d
	}
	stdev := math.Sqrt(variance / float64(len(trades)))

	var sharpe float64
	switch {
	case stdev > 0:
		sharpe = mean / stdev
	case mean > 0:
		sharpe = sharpeSentinel
	}

	// Drawdown walks the cumulative pnl curve from 0, not from the first trade.
	var cum, peak, drawdown float64
	for _, t := range trades {
		cum += t.Pnl
		if cum > peak {
			peak = cum
		}
		if dd := peak - cum; dd > drawdown {
			drawdown = dd
		}
	}
	return Stats{Sharpe: sharpe, Drawdown: drawdown}
}

// Replay filters a trade window down to the trades a candidate parameter set
// would have taken: trades from disabled strategies drop out, as do trades
// whose recorded reward-to-risk falls under the candidate's minimum.
func Replay(trades []market.TradeRecord, p config.Params) []market.TradeRecord {
	out := make([]market.TradeRecord, 0, len(trades))
	for _, t := range trades {
		if !strategyEnabled(p, t.Strategy) {
			continue
		}
		if t.RewardRisk > 0 && t.RewardRisk < p.MinRewardRisk {
			continue
		}
		out = append(out, t)
	}
	return out
}

func strategyEnabled(p config.Params, name string) bool {
	switch name {
	case "trend":
		return p.TrendEnabled
	case "range":
		return p.RangeEnabled
	case "reversal":
		return p.ReversalEnabled
	default:
		return true
	}
}
