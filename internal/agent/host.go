package agent

import (
	"context"

	"github.com/rs/zerolog"

	"oceanview-go/internal/execution"
	"oceanview-go/internal/market"
)

// Host fans ticks out to the registered units and relays their order
// requests to the execution router. It owns no trading state of its own.
type Host struct {
	router *execution.Router
	agents map[string]*Agent
	orders chan OrderRequest
	log    zerolog.Logger
}

// NewHost wires a host around the router.
func NewHost(router *execution.Router, log zerolog.Logger) *Host {
	return &Host{
		router: router,
		agents: make(map[string]*Agent),
		orders: make(chan OrderRequest, 256),
		log:    log,
	}
}

// Orders returns the channel agents send their requests on. Pass it to New
// when constructing each agent.
func (h *Host) Orders() chan<- OrderRequest { return h.orders }

// Register adds a unit to the tick fan-out.
func (h *Host) Register(a *Agent) {
	h.agents[a.Symbol()] = a
}

// Run starts every registered unit and routes messages until the context
// dies. Ticks for unknown symbols are dropped silently.
func (h *Host) Run(ctx context.Context, ticks <-chan market.Tick) {
	for _, a := range h.agents {
		go a.Run(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case tk := <-ticks:
			a, ok := h.agents[tk.Symbol]
			if !ok {
				continue
			}
			select {
			case a.Inbox() <- Message{Type: MsgTick, Tick: tk}:
			case <-ctx.Done():
				return
			}
		case req := <-h.orders:
			// Execution involves network waits and backoff sleeps; run it off
			// the routing loop so ticks keep flowing.
			go h.execute(ctx, req)
		}
	}
}

func (h *Host) execute(ctx context.Context, req OrderRequest) {
	fills, err := h.router.Execute(ctx, req.Order, func(ev execution.Event) {
		if ev.Err != nil {
			h.log.Debug().Err(ev.Err).Int("chunk", ev.Chunk).Int("attempt", ev.Attempt).Msg("chunk attempt failed")
		}
	})
	a, ok := h.agents[req.Order.Symbol]
	if !ok {
		return
	}
	select {
	case a.Inbox() <- Message{Type: MsgOrderResult, Result: OrderResult{Request: req, Fills: fills, Err: err}}:
	case <-ctx.Done():
	}
}
