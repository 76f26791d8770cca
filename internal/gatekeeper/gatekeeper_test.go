package gatekeeper

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"oceanview-go/internal/market"
)

type stubScorer struct {
	score float32
	err   error
}

func (s *stubScorer) Score([]float32) (float32, error) { return s.score, s.err }
func (s *stubScorer) Close()                           {}

type memLogger struct {
	next     int64
	rows     map[int64]market.FeatureVector
	outcomes map[int64]float64
}

func newMemLogger() *memLogger {
	return &memLogger{rows: map[int64]market.FeatureVector{}, outcomes: map[int64]float64{}}
}

func (m *memLogger) LogFeatures(fv market.FeatureVector, score float64) (int64, error) {
	m.next++
	m.rows[m.next] = fv
	return m.next, nil
}

func (m *memLogger) UpdateOutcome(id int64, pnl float64) error {
	if _, ok := m.rows[id]; !ok {
		return errors.New("unknown dataset id")
	}
	m.outcomes[id] = pnl
	return nil
}

var fv = market.FeatureVector{Symbol: "BTCUSDT", Price: 100, RSI: 55, TrendPct: 0.01, ATRPct: 0.005, HourOfDay: 10, DayOfWeek: 2}

func TestApprovesAboveThreshold(t *testing.T) {
	g := New(&stubScorer{score: 0.75}, 0.55, newMemLogger(), zerolog.Nop())
	d, err := g.ScoreIdea(fv)
	if err != nil {
		t.Fatalf("ScoreIdea returned error: %v", err)
	}
	if !d.Approved || d.Score != 0.75 {
		t.Fatalf("expected approval at score 0.75, got %+v", d)
	}
	if d.DatasetID == 0 {
		t.Fatalf("expected dataset id assigned")
	}
}

func TestVetoesBelowThreshold(t *testing.T) {
	g := New(&stubScorer{score: 0.3}, 0.55, newMemLogger(), zerolog.Nop())
	d, err := g.ScoreIdea(fv)
	if err != nil {
		t.Fatalf("a low score is a normal veto, not an error: %v", err)
	}
	if d.Approved {
		t.Fatalf("expected veto at score 0.3")
	}
}

func TestModelErrorFailsSafe(t *testing.T) {
	g := New(&stubScorer{err: errors.New("boom")}, 0.55, newMemLogger(), zerolog.Nop())
	d, err := g.ScoreIdea(fv)
	if d.Approved {
		t.Fatalf("model failure must veto, never bypass")
	}
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestNilScorerFailsSafe(t *testing.T) {
	g := New(nil, 0.55, newMemLogger(), zerolog.Nop())
	d, err := g.ScoreIdea(fv)
	if d.Approved || !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("nil scorer must veto with ErrModelUnavailable, got %+v %v", d, err)
	}
}

func TestDatasetIDsMonotonic(t *testing.T) {
	store := newMemLogger()
	g := New(&stubScorer{score: 0.9}, 0.55, store, zerolog.Nop())
	var last int64
	for i := 0; i < 5; i++ {
		d, err := g.ScoreIdea(fv)
		if err != nil {
			t.Fatalf("ScoreIdea returned error: %v", err)
		}
		if d.DatasetID <= last {
			t.Fatalf("dataset ids must increase: %d after %d", d.DatasetID, last)
		}
		last = d.DatasetID
	}
}

func TestUpdateOutcome(t *testing.T) {
	store := newMemLogger()
	g := New(&stubScorer{score: 0.9}, 0.55, store, zerolog.Nop())
	d, _ := g.ScoreIdea(fv)
	if err := g.UpdateOutcome(d.DatasetID, 42.5); err != nil {
		t.Fatalf("UpdateOutcome returned error: %v", err)
	}
	if store.outcomes[d.DatasetID] != 42.5 {
		t.Fatalf("expected outcome attached, got %+v", store.outcomes)
	}
}
