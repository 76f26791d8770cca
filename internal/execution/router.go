package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"oceanview-go/internal/market"
	"oceanview-go/internal/metrics"
)

// Event reports one chunk attempt or outcome for observability.
type Event struct {
	Chunk    int
	Attempt  int
	Order    market.Order
	Fill     *market.Fill
	Err      error
	Fallback bool
}

// Router splits large orders into equal chunks, retries transient failures
// with exponential backoff, and falls back to the simulator once live
// retries are exhausted. Each chunk carries its own order id, so an
// abandoned in-flight chunk never collides with a later submission.
type Router struct {
	live    Engine // may be nil: simulation-only deployments
	sim     *SimEngine
	chunks  int
	retries int
	backoff time.Duration
	log     zerolog.Logger
}

// NewRouter wires a router. Chunk count, retry bound, and base backoff come
// from configuration rather than being baked in.
func NewRouter(live Engine, sim *SimEngine, chunks, retries int, backoff time.Duration, log zerolog.Logger) *Router {
	if chunks < 1 {
		chunks = 3
	}
	if retries < 1 {
		retries = 3
	}
	if backoff <= 0 {
		backoff = 250 * time.Millisecond
	}
	return &Router{live: live, sim: sim, chunks: chunks, retries: retries, backoff: backoff, log: log}
}

// Execute fans the order out into chunks and returns every fill obtained.
// The error return is non-nil only when the context dies mid-flight; live
// failures degrade to simulated fills instead of failing the order.
func (r *Router) Execute(ctx context.Context, o market.Order, onEvent func(Event)) ([]market.Fill, error) {
	if o.Qty <= 0 {
		return nil, fmt.Errorf("execute: non-positive quantity %.8f", o.Qty)
	}
	metrics.OrdersTotal.WithLabelValues(o.Symbol, string(o.Side)).Inc()

	chunkQty := o.Qty / float64(r.chunks)
	fills := make([]market.Fill, 0, r.chunks)

	for chunk := 1; chunk <= r.chunks; chunk++ {
		co := o
		co.ID = uuid.NewString()
		co.Qty = chunkQty

		fill, err := r.placeChunk(ctx, co, chunk, onEvent)
		if err != nil {
			return fills, err
		}
		fills = append(fills, fill)
	}
	return fills, nil
}

// placeChunk tries the live engine with backoff, then the simulator.
func (r *Router) placeChunk(ctx context.Context, o market.Order, chunk int, onEvent func(Event)) (market.Fill, error) {
	emit := func(ev Event) {
		if onEvent != nil {
			onEvent(ev)
		}
	}

	if r.live != nil {
		delay := r.backoff
		for attempt := 1; attempt <= r.retries; attempt++ {
			fill, err := r.live.Place(ctx, o)
			if err == nil {
				metrics.FillsTotal.WithLabelValues(o.Symbol, r.live.Name()).Inc()
				emit(Event{Chunk: chunk, Attempt: attempt, Order: o, Fill: &fill})
				return fill, nil
			}
			emit(Event{Chunk: chunk, Attempt: attempt, Order: o, Err: err})
			r.log.Warn().Err(err).Int("chunk", chunk).Int("attempt", attempt).Str("symbol", o.Symbol).Msg("live placement failed")

			if attempt == r.retries {
				break
			}
			metrics.ExecRetriesTotal.WithLabelValues(o.Symbol).Inc()
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return market.Fill{}, ctx.Err()
			}
			delay *= 2
		}
	}

	fill, err := r.sim.Place(ctx, o)
	if err != nil {
		return market.Fill{}, fmt.Errorf("sim fallback: %w", err)
	}
	fellBack := r.live != nil
	metrics.FillsTotal.WithLabelValues(o.Symbol, r.sim.Name()).Inc()
	if fellBack {
		metrics.SimFallbacksTotal.WithLabelValues(o.Symbol).Inc()
		r.log.Info().Int("chunk", chunk).Str("symbol", o.Symbol).Msg("live retries exhausted, filled by simulator")
	}
	emit(Event{Chunk: chunk, Attempt: r.retries + 1, Order: o, Fill: &fill, Fallback: fellBack})
	return fill, nil
}
