// Package market standardizes the domain payloads shared between the feed,
// perception, strategy, risk, and execution layers.
package market

import (
	"math"
	"time"
)

// Tick models the essential pieces of market data delivered by a price feed.
type Tick struct {
	Symbol string
	Price  float64
	Size   float64
	Ts     time.Time
}

// Candle is an OHLC summary of one fixed interval. A candle is immutable once
// sealed; only the perception layer mutates the in-progress interval.
type Candle struct {
	Symbol string
	Ts     time.Time // interval start
	Open   float64
	High   float64
	Low    float64
	Close  float64
}

// Side enumerates order directions.
type Side string

const (
	// Buy indicates a long order.
	Buy Side = "BUY"
	// Sell indicates a short order.
	Sell Side = "SELL"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// TradeIdea is an ephemeral trade proposal produced by a strategy. It is
// consumed immediately by the risk and gatekeeper layers and never persisted.
type TradeIdea struct {
	Symbol   string
	Side     Side
	Price    float64
	Stop     float64
	Target   float64
	Strategy string
	Reason   string
	Ts       time.Time
}

// RewardRisk returns |target-entry| / |entry-stop|, or 0 when the stop sits
// on the entry price.
func (i TradeIdea) RewardRisk() float64 {
	risk := math.Abs(i.Price - i.Stop)
	if risk == 0 {
		return 0
	}
	return math.Abs(i.Target-i.Price) / risk
}

// FeatureVector is the numeric snapshot scored by the gatekeeper model.
type FeatureVector struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	RSI       float64 `json:"rsi"`
	TrendPct  float64 `json:"trend_pct"` // fast/slow MA spread as fraction of price
	ATRPct    float64 `json:"atr_pct"`   // ATR as fraction of price
	HourOfDay float64 `json:"hour_of_day"`
	DayOfWeek float64 `json:"day_of_week"`
}

// Order represents a placement request the execution layer can process.
type Order struct {
	ID          string
	Symbol      string
	Side        Side
	Qty         float64
	Price       float64
	Type        string // "market" or "limit"
	TimeInForce string
}

// Fill is the result of an order submission. One order may fan out into
// several fills when the router chunks it.
type Fill struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	Symbol    string    `json:"symbol"`
	Side      Side      `json:"side"`
	Qty       float64   `json:"qty"`
	Price     float64   `json:"price"`
	Fee       float64   `json:"fee"`
	Ts        time.Time `json:"ts"`
	Simulated bool      `json:"simulated"`
}

// TradeRecord is the persisted outcome of one completed round trip. The
// evolution loop replays these to score candidate parameter sets.
type TradeRecord struct {
	Symbol     string    `json:"symbol"`
	Side       Side      `json:"side"`
	Strategy   string    `json:"strategy"`
	Qty        float64   `json:"qty"`
	Entry      float64   `json:"entry"`
	Exit       float64   `json:"exit"`
	Pnl        float64   `json:"pnl"`
	RewardRisk float64   `json:"reward_risk"`
	DatasetID  int64     `json:"dataset_id"`
	OpenTs     time.Time `json:"open_ts"`
	CloseTs    time.Time `json:"close_ts"`
}
