package perception

import (
	"testing"
	"time"

	"oceanview-go/internal/market"
)

var t0 = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func collect(interval time.Duration) (*Builder, *[]market.Candle) {
	var sealed []market.Candle
	b := NewBuilder("BTCUSDT", interval, func(c market.Candle) { sealed = append(sealed, c) })
	return b, &sealed
}

func TestSealsOnBoundary(t *testing.T) {
	b, sealed := collect(time.Minute)

	b.AddTick(100, t0)
	b.AddTick(103, t0.Add(20*time.Second))
	b.AddTick(99, t0.Add(40*time.Second))
	b.AddTick(101, t0.Add(time.Minute)) // crosses the boundary

	if len(*sealed) != 1 {
		t.Fatalf("expected one sealed candle, got %d", len(*sealed))
	}
	c := (*sealed)[0]
	if c.Open != 100 || c.High != 103 || c.Low != 99 || c.Close != 99 {
		t.Fatalf("unexpected OHLC: %+v", c)
	}
	if !c.Ts.Equal(t0) {
		t.Fatalf("unexpected candle start: %s", c.Ts)
	}
}

func TestAbsorbsOutOfOrderWithinInterval(t *testing.T) {
	b, sealed := collect(time.Minute)

	b.AddTick(100, t0.Add(30*time.Second))
	b.AddTick(106, t0.Add(10*time.Second)) // earlier arrival, same interval
	b.AddTick(97, t0.Add(30*time.Second))  // duplicate timestamp
	b.AddTick(101, t0.Add(time.Minute))

	c := (*sealed)[0]
	if c.High != 106 || c.Low != 97 || c.Close != 97 {
		t.Fatalf("expected high/low widened and close overwritten, got %+v", c)
	}
}

func TestGapDoesNotSynthesizeEmptyIntervals(t *testing.T) {
	b, sealed := collect(time.Minute)

	b.AddTick(100, t0)
	b.AddTick(105, t0.Add(5*time.Minute)) // skips four intervals

	if len(*sealed) != 1 {
		t.Fatalf("expected exactly one sealed candle across the gap, got %d", len(*sealed))
	}
	if (*sealed)[0].Close != 100 {
		t.Fatalf("gap candle must seal at last known price, got %.2f", (*sealed)[0].Close)
	}

	b.Flush()
	if len(*sealed) != 2 {
		t.Fatalf("expected flushed candle, got %d", len(*sealed))
	}
	next := (*sealed)[1]
	if !next.Ts.Equal(t0.Add(5 * time.Minute)) {
		t.Fatalf("new candle must start on the tick's interval, got %s", next.Ts)
	}
	if next.Open != 105 {
		t.Fatalf("new candle must open at the crossing tick price, got %.2f", next.Open)
	}
}

func TestStaleTickDropped(t *testing.T) {
	b, sealed := collect(time.Minute)

	b.AddTick(100, t0.Add(time.Minute))
	b.AddTick(500, t0) // belongs to an already-passed interval
	b.Flush()

	if len(*sealed) != 1 {
		t.Fatalf("expected one candle, got %d", len(*sealed))
	}
	if (*sealed)[0].High != 100 {
		t.Fatalf("stale tick must not touch the current candle, got high %.2f", (*sealed)[0].High)
	}
}

func TestMalformedTickSkipped(t *testing.T) {
	b, sealed := collect(time.Minute)
	b.AddTick(0, t0)
	b.AddTick(-5, t0)
	b.AddTick(100, time.Time{})
	b.Flush()
	if len(*sealed) != 0 {
		t.Fatalf("expected no candles from malformed ticks, got %d", len(*sealed))
	}
}
