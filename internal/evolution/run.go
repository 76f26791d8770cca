package evolution

import (
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"oceanview-go/internal/config"
	"oceanview-go/internal/market"
)

// Candidate pairs a mutated parameter set with its replay score.
type Candidate struct {
	Params config.Params
	Stats  Stats
}

// Engine runs one nightly evolution cycle.
type Engine struct {
	candidates int
	rng        *rand.Rand
	log        zerolog.Logger
}

// NewEngine builds an evolution engine generating n candidates per run.
func NewEngine(n int, rng *rand.Rand, log zerolog.Logger) *Engine {
	if n < 1 {
		n = 8
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{candidates: n, rng: rng, log: log}
}

// Run scores the incumbent and every mutated candidate over the trade
// window, returning the winner and whether it beat the incumbent. The
// selection rule: maximize sharpe subject to drawdown not exceeding the
// incumbent's. Candidates with non-finite scores are discarded, so a bad
// window can never promote an undefined configuration.
func (e *Engine) Run(incumbent config.Params, window []market.TradeRecord) (Candidate, bool) {
	incumbentStats := Score(Replay(window, incumbent))
	best := Candidate{Params: incumbent, Stats: incumbentStats}
	improved := false

	for i := 0; i < e.candidates; i++ {
		params := Mutate(incumbent, e.rng)
		stats := Score(Replay(window, params))

		if !finite(stats.Sharpe) || !finite(stats.Drawdown) {
			e.log.Warn().Int("candidate", i).Msg("discarding candidate with invalid score")
			continue
		}
		if stats.Drawdown > incumbentStats.Drawdown {
			continue
		}
		if stats.Sharpe > best.Stats.Sharpe {
			best = Candidate{Params: params, Stats: stats}
			improved = true
		}
	}

	e.log.Info().
		Float64("incumbent_sharpe", incumbentStats.Sharpe).
		Float64("best_sharpe", best.Stats.Sharpe).
		Float64("best_drawdown", best.Stats.Drawdown).
		Bool("improved", improved).
		Msg("evolution cycle complete")
	return best, improved
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
