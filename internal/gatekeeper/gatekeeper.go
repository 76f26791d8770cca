// Package gatekeeper scores trade ideas with a pretrained model and vetoes
// those below a configurable threshold. Every scored feature row is logged
// with a monotonically increasing dataset id so the offline retraining
// pipeline can attach realized outcomes later.
package gatekeeper

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"oceanview-go/internal/market"
	"oceanview-go/internal/metrics"
)

// ErrModelUnavailable marks scoring failures, as opposed to an ordinary
// low-score veto. The caller sees the veto either way: the gatekeeper fails
// safe, never open.
var ErrModelUnavailable = errors.New("gatekeeper model unavailable")

// FeatureLogger persists feature rows and their later outcomes.
type FeatureLogger interface {
	LogFeatures(fv market.FeatureVector, score float64) (int64, error)
	UpdateOutcome(datasetID int64, pnl float64) error
}

// Decision is the result of scoring one trade idea.
type Decision struct {
	Approved  bool
	Score     float64
	DatasetID int64
}

// Gatekeeper applies the model veto ahead of execution.
type Gatekeeper struct {
	scorer Scorer
	thresh float64
	store  FeatureLogger
	log    zerolog.Logger
}

// New assembles a gatekeeper. A nil scorer is legal and vetoes everything,
// keeping the live loop alive when the model failed to load.
func New(scorer Scorer, threshold float64, store FeatureLogger, log zerolog.Logger) *Gatekeeper {
	if threshold <= 0 {
		threshold = 0.55
	}
	return &Gatekeeper{scorer: scorer, thresh: threshold, store: store, log: log}
}

// ScoreIdea scores the feature vector and decides approval. Model failures
// veto and surface ErrModelUnavailable; the feature row is still logged so
// the dataset stays continuous.
func (g *Gatekeeper) ScoreIdea(fv market.FeatureVector) (Decision, error) {
	if g.scorer == nil {
		return g.veto(fv, 0, fmt.Errorf("no scorer loaded: %w", ErrModelUnavailable))
	}
	score, err := g.scorer.Score(featureRow(fv))
	if err != nil {
		return g.veto(fv, 0, fmt.Errorf("score idea: %w: %v", ErrModelUnavailable, err))
	}

	id := g.logRow(fv, float64(score))
	if float64(score) < g.thresh {
		metrics.VetoesTotal.WithLabelValues(fv.Symbol, "low_score").Inc()
		g.log.Info().Str("symbol", fv.Symbol).Float64("score", float64(score)).Float64("thresh", g.thresh).Msg("gatekeeper veto")
		return Decision{Approved: false, Score: float64(score), DatasetID: id}, nil
	}
	return Decision{Approved: true, Score: float64(score), DatasetID: id}, nil
}

// UpdateOutcome retroactively attaches the realized pnl to a logged row.
// Used by the outcome feedback path, never by live scoring.
func (g *Gatekeeper) UpdateOutcome(datasetID int64, pnl float64) error {
	if g.store == nil {
		return nil
	}
	return g.store.UpdateOutcome(datasetID, pnl)
}

func (g *Gatekeeper) veto(fv market.FeatureVector, score float64, err error) (Decision, error) {
	metrics.VetoesTotal.WithLabelValues(fv.Symbol, "model_error").Inc()
	g.log.Error().Err(err).Str("symbol", fv.Symbol).Msg("gatekeeper failing safe")
	return Decision{Approved: false, Score: score, DatasetID: g.logRow(fv, score)}, err
}

func (g *Gatekeeper) logRow(fv market.FeatureVector, score float64) int64 {
	if g.store == nil {
		return 0
	}
	id, err := g.store.LogFeatures(fv, score)
	if err != nil {
		g.log.Warn().Err(err).Msg("failed to log gatekeeper features")
		return 0
	}
	return id
}

func featureRow(fv market.FeatureVector) []float32 {
	return []float32{
		float32(fv.Price),
		float32(fv.RSI),
		float32(fv.TrendPct),
		float32(fv.ATRPct),
		float32(fv.HourOfDay),
		float32(fv.DayOfWeek),
	}
}
