package execution

import (
	"context"
	"math"
	"testing"

	"oceanview-go/internal/market"
)

func TestSimEngineBuyThenSellRealizesPnl(t *testing.T) {
	s := NewSimEngine(10000, 0, 0)

	if _, err := s.Place(context.Background(), market.Order{Symbol: "BTCUSDT", Side: market.Buy, Qty: 2, Price: 100}); err != nil {
		t.Fatalf("buy returned error: %v", err)
	}
	if got := s.Position("BTCUSDT"); got != 2 {
		t.Fatalf("expected position 2, got %.4f", got)
	}
	if got := s.Cash(); got != 9800 {
		t.Fatalf("expected cash 9800, got %.2f", got)
	}

	if _, err := s.Place(context.Background(), market.Order{Symbol: "BTCUSDT", Side: market.Sell, Qty: 2, Price: 110}); err != nil {
		t.Fatalf("sell returned error: %v", err)
	}
	if got := s.Position("BTCUSDT"); got != 0 {
		t.Fatalf("expected flat position, got %.4f", got)
	}
	if got := s.RealizedPnL(); got != 20 {
		t.Fatalf("expected realized pnl 20, got %.2f", got)
	}
	if got := s.Cash(); got != 10020 {
		t.Fatalf("expected cash 10020, got %.2f", got)
	}
}

func TestSimEngineShortSide(t *testing.T) {
	s := NewSimEngine(1000, 0, 0)
	s.Place(context.Background(), market.Order{Symbol: "ETHUSDT", Side: market.Sell, Qty: 1, Price: 50})
	if got := s.Position("ETHUSDT"); got != -1 {
		t.Fatalf("expected short position, got %.4f", got)
	}
	s.Place(context.Background(), market.Order{Symbol: "ETHUSDT", Side: market.Buy, Qty: 1, Price: 40})
	if got := s.RealizedPnL(); got != 10 {
		t.Fatalf("expected pnl 10 on covered short, got %.2f", got)
	}
}

func TestSimEngineAppliesSlippageAndFee(t *testing.T) {
	s := NewSimEngine(10000, 10, 10) // 10 bps each

	fill, err := s.Place(context.Background(), market.Order{Symbol: "BTCUSDT", Side: market.Buy, Qty: 1, Price: 100})
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}
	if math.Abs(fill.Price-100.1) > 1e-9 {
		t.Fatalf("expected buy slipped to 100.1, got %.6f", fill.Price)
	}
	if math.Abs(fill.Fee-0.1001) > 1e-9 {
		t.Fatalf("expected fee 0.1001, got %.6f", fill.Fee)
	}
	if !fill.Simulated || fill.ID == "" {
		t.Fatalf("expected tagged simulated fill with id, got %+v", fill)
	}
}

func TestSimEngineRejectsInvalidOrders(t *testing.T) {
	s := NewSimEngine(1000, 0, 0)
	if _, err := s.Place(context.Background(), market.Order{Symbol: "X", Side: market.Buy, Qty: 0, Price: 10}); err == nil {
		t.Fatalf("expected error for zero qty")
	}
	if _, err := s.Place(context.Background(), market.Order{Symbol: "X", Side: market.Buy, Qty: 1, Price: 0}); err == nil {
		t.Fatalf("expected error for zero price")
	}
}
