// Package execution converts approved trade ideas into orders: chunking,
// retry with backoff, and a simulated fallback engine.
package execution

import (
	"context"

	"oceanview-go/internal/market"
)

// Engine places one order and returns its fill. Implementations are
// interchangeable: a live exchange connector or the local simulator.
type Engine interface {
	Place(ctx context.Context, o market.Order) (market.Fill, error)
	Name() string
}
