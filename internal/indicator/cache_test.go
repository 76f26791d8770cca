package indicator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oceanview-go/internal/market"
)

func candle(close float64) market.Candle {
	return market.Candle{
		Symbol: "BTCUSDT",
		Ts:     time.Now(),
		Open:   close,
		High:   close + 1,
		Low:    close - 1,
		Close:  close,
	}
}

func TestAccessorsUndefinedUntilWarm(t *testing.T) {
	c := NewCache(Periods{Fast: 3, Slow: 5, RSI: 3, ATR: 3})

	_, ok := c.FastMA()
	require.False(t, ok, "fast MA must be undefined before warmup")
	_, ok = c.RSI()
	require.False(t, ok, "RSI must be undefined before warmup")
	_, ok = c.ATR()
	require.False(t, ok, "ATR must be undefined before warmup")

	for _, px := range []float64{10, 11, 12, 13, 14, 15} {
		c.UpdateOnClose(candle(px))
	}

	fast, ok := c.FastMA()
	require.True(t, ok)
	assert.InDelta(t, 14.0, fast, 1e-9) // mean of 13,14,15

	slow, ok := c.SlowMA()
	require.True(t, ok)
	assert.InDelta(t, 13.0, slow, 1e-9) // mean of 11..15
}

func TestRSIBounds(t *testing.T) {
	c := NewCache(Periods{Fast: 2, Slow: 2, RSI: 3, ATR: 2})
	for _, px := range []float64{10, 11, 12, 13, 14} {
		c.UpdateOnClose(candle(px))
	}
	rsi, ok := c.RSI()
	require.True(t, ok)
	assert.Equal(t, 100.0, rsi, "monotonic rises give RSI 100")

	c2 := NewCache(Periods{Fast: 2, Slow: 2, RSI: 3, ATR: 2})
	for _, px := range []float64{14, 13, 12, 11, 10} {
		c2.UpdateOnClose(candle(px))
	}
	rsi, ok = c2.RSI()
	require.True(t, ok)
	assert.Less(t, rsi, 1.0, "monotonic falls give RSI near 0")
}

func TestATRUsesTrueRange(t *testing.T) {
	c := NewCache(Periods{Fast: 1, Slow: 1, RSI: 1, ATR: 2})
	c.UpdateOnClose(market.Candle{Open: 100, High: 101, Low: 99, Close: 100})
	// Gap up: true range must span prev close, not just high-low.
	c.UpdateOnClose(market.Candle{Open: 110, High: 111, Low: 109, Close: 110})
	c.UpdateOnClose(market.Candle{Open: 110, High: 111, Low: 109, Close: 110})

	atr, ok := c.ATR()
	require.True(t, ok)
	// TRs: |111-100|=11 then max(2, |111-110|, |109-110|)=2
	assert.InDelta(t, 6.5, atr, 1e-9)
}

func TestIncrementalMatchesRecompute(t *testing.T) {
	c := NewCache(Periods{Fast: 4, Slow: 8, RSI: 4, ATR: 4})
	closes := []float64{50, 52, 51, 53, 55, 54, 56, 58, 57, 59, 61, 60}
	for _, px := range closes {
		c.UpdateOnClose(candle(px))
	}

	var sum float64
	for _, px := range closes[len(closes)-4:] {
		sum += px
	}
	fast, ok := c.FastMA()
	require.True(t, ok)
	assert.InDelta(t, sum/4, fast, 1e-9)
}

func TestRingEviction(t *testing.T) {
	r := NewRing(3)
	for i := 1; i <= 5; i++ {
		r.Push(float64(i))
	}
	require.Equal(t, 3, r.Len())
	oldest, ok := r.At(0)
	require.True(t, ok)
	assert.Equal(t, 3.0, oldest)
	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, 5.0, last)
}
