// Package agent runs one isolated trading unit per symbol. Units own their
// perception, indicator, and risk state privately and talk to the host only
// through typed messages, so no locking crosses unit boundaries.
package agent

import (
	"time"

	"oceanview-go/internal/market"
)

// MsgType tags inbound messages. Only ticks and order results flow in.
type MsgType string

const (
	// MsgTick delivers new price data.
	MsgTick MsgType = "tick"
	// MsgOrderResult delivers the outcome of an order request.
	MsgOrderResult MsgType = "orderResult"
)

// Message is the envelope delivered to a unit's inbox. Messages for a symbol
// are processed strictly in arrival order.
type Message struct {
	Type   MsgType
	Tick   market.Tick
	Result OrderResult
}

// OrderRequest is the single outbound message class: a request for the host
// to execute an order on the unit's behalf.
type OrderRequest struct {
	Order        market.Order
	Idea         market.TradeIdea
	DatasetID    int64
	StopDistance float64
	Exit         bool
	EntryPrice   float64
	OpenTs       time.Time
}

// OrderResult echoes the request back with the fills (or failure) obtained.
type OrderResult struct {
	Request OrderRequest
	Fills   []market.Fill
	Err     error
}
