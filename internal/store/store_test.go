package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oceanview-go/internal/config"
	"oceanview-go/internal/market"
)

func TestSettingsLoadDefaultsWhenMissing(t *testing.T) {
	s := NewSettingsStore(filepath.Join(t.TempDir(), "settings.yaml"))
	rec, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Version)
	assert.Equal(t, config.DefaultParams(), rec.Params)
}

func TestSettingsPromoteBumpsVersion(t *testing.T) {
	s := NewSettingsStore(filepath.Join(t.TempDir(), "settings.yaml"))

	p := config.DefaultParams()
	p.FastMAPeriod = 12
	rec, err := s.Promote(p)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Version)

	rec, err = s.Promote(p)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Version)

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Version)
	assert.Equal(t, 12.0, loaded.Params.FastMAPeriod)
}

func TestTradeStoreRoundTripAndWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.jsonl")
	ts, err := NewTradeStore(path)
	require.NoError(t, err)
	defer ts.Close()

	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	old := market.TradeRecord{Symbol: "BTCUSDT", Side: market.Buy, Strategy: "trend", Pnl: 10, CloseTs: now.Add(-48 * time.Hour)}
	recent := market.TradeRecord{Symbol: "BTCUSDT", Side: market.Sell, Strategy: "range", Pnl: -5, CloseTs: now}
	require.NoError(t, ts.Append(old))
	require.NoError(t, ts.Append(recent))

	got, err := ts.LoadSince(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "range", got[0].Strategy)
	assert.Equal(t, -5.0, got[0].Pnl)
}

func TestTradeStoreLoadSinceMissingFile(t *testing.T) {
	ts := &TradeStore{path: filepath.Join(t.TempDir(), "nope.jsonl")}
	got, err := ts.LoadSince(time.Now())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFeatureStoreMonotonicIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gatekeeper.jsonl")
	fs, err := NewFeatureStore(path)
	require.NoError(t, err)

	fv := market.FeatureVector{Symbol: "BTCUSDT", Price: 100, RSI: 60}
	id1, err := fs.LogFeatures(fv, 0.7)
	require.NoError(t, err)
	id2, err := fs.LogFeatures(fv, 0.4)
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	require.NoError(t, fs.UpdateOutcome(id1, 12.5))
	assert.Error(t, fs.UpdateOutcome(999, 1), "unknown ids must be rejected")
	require.NoError(t, fs.Close())

	// Reopening resumes the sequence past the highest persisted id.
	fs2, err := NewFeatureStore(path)
	require.NoError(t, err)
	defer fs2.Close()
	id3, err := fs2.LogFeatures(fv, 0.9)
	require.NoError(t, err)
	assert.Greater(t, id3, id2)
}
