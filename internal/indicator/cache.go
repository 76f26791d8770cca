// Package indicator maintains technical indicators over a candle series using
// O(1) amortized incremental updates: running sums over ring buffers instead
// of rescans, and Wilder smoothing for RSI. Accessors report ok=false until
// enough history has accumulated.
package indicator

import (
	"math"

	"oceanview-go/internal/market"
)

// Cache incrementally tracks fast/slow SMA, RSI, and ATR for one symbol.
// It never sees strategies; it only consumes sealed candles.
type Cache struct {
	fastPeriod int
	slowPeriod int
	rsiPeriod  int
	atrPeriod  int

	fastRing *Ring
	slowRing *Ring
	fastSum  float64
	slowSum  float64

	avgGain   float64
	avgLoss   float64
	rsiSeeded bool
	seedGain  float64
	seedLoss  float64
	changes   int

	atrRing *Ring
	atrSum  float64

	prevClose float64
	hasPrev   bool
}

// Periods groups the integer lookbacks the cache tracks.
type Periods struct {
	Fast int
	Slow int
	RSI  int
	ATR  int
}

// NewCache allocates a cache for the given periods, clamping each to 1.
func NewCache(p Periods) *Cache {
	clamp := func(n int) int {
		if n < 1 {
			return 1
		}
		return n
	}
	c := &Cache{
		fastPeriod: clamp(p.Fast),
		slowPeriod: clamp(p.Slow),
		rsiPeriod:  clamp(p.RSI),
		atrPeriod:  clamp(p.ATR),
	}
	c.fastRing = NewRing(c.fastPeriod)
	c.slowRing = NewRing(c.slowPeriod)
	c.atrRing = NewRing(c.atrPeriod)
	return c
}

// UpdateOnClose folds one sealed candle into every tracked indicator.
func (c *Cache) UpdateOnClose(candle market.Candle) {
	close := candle.Close

	if evicted, full := c.fastRing.Push(close); full {
		c.fastSum -= evicted
	}
	c.fastSum += close
	if evicted, full := c.slowRing.Push(close); full {
		c.slowSum -= evicted
	}
	c.slowSum += close

	if c.hasPrev {
		c.updateRSI(close - c.prevClose)
		tr := trueRange(candle, c.prevClose)
		if evicted, full := c.atrRing.Push(tr); full {
			c.atrSum -= evicted
		}
		c.atrSum += tr
	}

	c.prevClose = close
	c.hasPrev = true
}

func (c *Cache) updateRSI(change float64) {
	gain, loss := 0.0, 0.0
	if change > 0 {
		gain = change
	} else {
		loss = -change
	}
	c.changes++

	if !c.rsiSeeded {
		c.seedGain += gain
		c.seedLoss += loss
		if c.changes == c.rsiPeriod {
			c.avgGain = c.seedGain / float64(c.rsiPeriod)
			c.avgLoss = c.seedLoss / float64(c.rsiPeriod)
			c.rsiSeeded = true
		}
		return
	}
	n := float64(c.rsiPeriod)
	c.avgGain = (c.avgGain*(n-1) + gain) / n
	c.avgLoss = (c.avgLoss*(n-1) + loss) / n
}

// FastMA returns the fast simple moving average.
func (c *Cache) FastMA() (float64, bool) {
	if c.fastRing.Len() < c.fastPeriod {
		return 0, false
	}
	return c.fastSum / float64(c.fastPeriod), true
}

// SlowMA returns the slow simple moving average.
func (c *Cache) SlowMA() (float64, bool) {
	if c.slowRing.Len() < c.slowPeriod {
		return 0, false
	}
	return c.slowSum / float64(c.slowPeriod), true
}

// RSI returns the Wilder-smoothed relative strength index.
func (c *Cache) RSI() (float64, bool) {
	if !c.rsiSeeded {
		return 0, false
	}
	if c.avgLoss == 0 {
		if c.avgGain == 0 {
			return 50, true
		}
		return 100, true
	}
	rs := c.avgGain / c.avgLoss
	return 100 - 100/(1+rs), true
}

// ATR returns the average true range.
func (c *Cache) ATR() (float64, bool) {
	if c.atrRing.Len() < c.atrPeriod {
		return 0, false
	}
	return c.atrSum / float64(c.atrPeriod), true
}

func trueRange(c market.Candle, prevClose float64) float64 {
	hl := c.High - c.Low
	hc := math.Abs(c.High - prevClose)
	lc := math.Abs(c.Low - prevClose)
	return math.Max(hl, math.Max(hc, lc))
}
