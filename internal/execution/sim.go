package execution

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"oceanview-go/internal/market"
)

// SimEngine fills orders locally against a virtual ledger. It backs paper
// trading and serves as the router's fallback when live execution is down,
// so risk and PnL bookkeeping stay consistent either way.
//
// Ledger math runs on decimals: fees and slippage on small-priced symbols
// fall below float noise otherwise.
type SimEngine struct {
	mu          sync.Mutex
	cash        decimal.Decimal
	positions   map[string]decimal.Decimal // signed qty per symbol
	avgCost     map[string]decimal.Decimal
	realizedPnL decimal.Decimal

	slippageBps decimal.Decimal
	feeBps      decimal.Decimal
}

// NewSimEngine builds a simulator with the given starting cash and
// execution friction in basis points.
func NewSimEngine(startingCash, slippageBps, feeBps float64) *SimEngine {
	return &SimEngine{
		cash:        decimal.NewFromFloat(startingCash),
		positions:   make(map[string]decimal.Decimal),
		avgCost:     make(map[string]decimal.Decimal),
		slippageBps: decimal.NewFromFloat(slippageBps),
		feeBps:      decimal.NewFromFloat(feeBps),
	}
}

// Name identifies the engine in fill metrics and logs.
func (s *SimEngine) Name() string { return "sim" }

var tenThousand = decimal.NewFromInt(10000)

// Place fills the order at the requested price adjusted for slippage, always
// succeeding. Buys pay up, sells receive less.
func (s *SimEngine) Place(_ context.Context, o market.Order) (market.Fill, error) {
	if o.Qty <= 0 || o.Price <= 0 {
		return market.Fill{}, errors.New("sim engine requires positive qty and price")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	price := decimal.NewFromFloat(o.Price)
	qty := decimal.NewFromFloat(o.Qty)

	slip := price.Mul(s.slippageBps).Div(tenThousand)
	if o.Side == market.Buy {
		price = price.Add(slip)
	} else {
		price = price.Sub(slip)
	}
	notional := price.Mul(qty)
	fee := notional.Mul(s.feeBps).Div(tenThousand)

	s.apply(o.Symbol, o.Side, qty, price)
	s.cash = s.cash.Sub(fee)

	fillPrice, _ := price.Float64()
	feeF, _ := fee.Float64()
	return market.Fill{
		ID:        uuid.NewString(),
		OrderID:   o.ID,
		Symbol:    o.Symbol,
		Side:      o.Side,
		Qty:       o.Qty,
		Price:     fillPrice,
		Fee:       feeF,
		Ts:        time.Now().UTC(),
		Simulated: true,
	}, nil
}

// apply updates the signed position, average cost, cash, and realized PnL.
func (s *SimEngine) apply(symbol string, side market.Side, qty, price decimal.Decimal) {
	signed := qty
	if side == market.Sell {
		signed = qty.Neg()
	}
	pos := s.positions[symbol]
	cost := s.avgCost[symbol]

	s.cash = s.cash.Sub(signed.Mul(price))

	switch {
	case pos.IsZero() || pos.Sign() == signed.Sign():
		// opening or adding: blend average cost
		newPos := pos.Add(signed)
		if !newPos.IsZero() {
			s.avgCost[symbol] = pos.Abs().Mul(cost).Add(qty.Mul(price)).Div(newPos.Abs())
		}
		s.positions[symbol] = newPos
	default:
		// reducing or flipping: realize PnL on the closed portion
		closed := decimal.Min(qty, pos.Abs())
		pnl := price.Sub(cost).Mul(closed)
		if pos.Sign() < 0 {
			pnl = pnl.Neg()
		}
		s.realizedPnL = s.realizedPnL.Add(pnl)
		newPos := pos.Add(signed)
		s.positions[symbol] = newPos
		if newPos.IsZero() {
			delete(s.positions, symbol)
			delete(s.avgCost, symbol)
		} else if newPos.Sign() != pos.Sign() {
			s.avgCost[symbol] = price
		}
	}
}

// Cash returns the current virtual cash balance.
func (s *SimEngine) Cash() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, _ := s.cash.Float64()
	return f
}

// Position returns the signed position for a symbol.
func (s *SimEngine) Position(symbol string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, _ := s.positions[symbol].Float64()
	return f
}

// RealizedPnL returns total realized profit and loss.
func (s *SimEngine) RealizedPnL() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, _ := s.realizedPnL.Float64()
	return f
}
