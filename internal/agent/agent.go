package agent

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"oceanview-go/internal/config"
	"oceanview-go/internal/gatekeeper"
	"oceanview-go/internal/indicator"
	"oceanview-go/internal/market"
	"oceanview-go/internal/metrics"
	"oceanview-go/internal/perception"
	"oceanview-go/internal/risk"
	"oceanview-go/internal/strategy"
)

// Vetoer is the slice of the gatekeeper a unit depends on.
type Vetoer interface {
	ScoreIdea(fv market.FeatureVector) (gatekeeper.Decision, error)
	UpdateOutcome(datasetID int64, pnl float64) error
}

// TradeLogger records completed round trips for the evolution window.
type TradeLogger interface {
	Append(rec market.TradeRecord) error
}

const maxHistory = 256

// position is the unit's single open position, if any.
type position struct {
	side         market.Side
	qty          float64
	entry        float64
	stop         float64
	target       float64
	stopDistance float64
	datasetID    int64
	strategy     string
	rewardRisk   float64
	openTs       time.Time
	closing      bool
}

// Agent pipes ticks through perception, strategies, risk, and the
// gatekeeper, emitting order requests to the host. All fields are private to
// the unit's goroutine.
type Agent struct {
	symbol string
	inbox  chan Message
	orders chan<- OrderRequest

	params  *config.ParamStore
	riskMgr *risk.Manager
	gate    Vetoer
	trades  TradeLogger
	log     zerolog.Logger

	builder *perception.Builder
	cache   *indicator.Cache
	history []market.Candle

	pos          *position
	entryPending bool
}

// New assembles a unit for one symbol. Indicator periods are fixed for the
// agent's lifetime; threshold-style parameters are re-read from the live
// record on every candle close.
func New(symbol string, cfg *config.Config, params *config.ParamStore, gate Vetoer, trades TradeLogger, orders chan<- OrderRequest, log zerolog.Logger) *Agent {
	p := params.Current()
	a := &Agent{
		symbol:  symbol,
		inbox:   make(chan Message, 1024),
		orders:  orders,
		params:  params,
		riskMgr: risk.NewManager(symbol, cfg.Risk, log),
		gate:    gate,
		trades:  trades,
		log:     log.With().Str("symbol", symbol).Logger(),
	}
	a.cache = indicator.NewCache(indicator.Periods{
		Fast: int(p.FastMAPeriod),
		Slow: int(p.SlowMAPeriod),
		RSI:  int(p.RSIPeriod),
		ATR:  int(p.ATRPeriod),
	})
	interval := time.Duration(cfg.Feed.CandleIntervalMs) * time.Millisecond
	a.builder = perception.NewBuilder(symbol, interval, a.onCandleClose)
	return a
}

// Inbox returns the channel the host delivers messages on.
func (a *Agent) Inbox() chan<- Message { return a.inbox }

// Symbol returns the traded symbol this unit owns.
func (a *Agent) Symbol() string { return a.symbol }

// Run processes the inbox until the context dies. Terminating the unit
// simply stops message delivery; in-flight chunks are safe to abandon
// because each carries its own order id.
func (a *Agent) Run(ctx context.Context) {
	a.log.Info().Msg("agent started")
	for {
		select {
		case <-ctx.Done():
			a.log.Info().Msg("agent stopped")
			return
		case msg := <-a.inbox:
			switch msg.Type {
			case MsgTick:
				a.onTick(msg.Tick)
			case MsgOrderResult:
				a.onOrderResult(msg.Result)
			}
		}
	}
}

func (a *Agent) onTick(tk market.Tick) {
	if tk.Symbol != a.symbol || tk.Price <= 0 {
		return
	}
	a.builder.AddTick(tk.Price, tk.Ts)
}

// onCandleClose is the decision cycle: indicators, exits, then at most one
// new idea.
func (a *Agent) onCandleClose(c market.Candle) {
	a.riskMgr.RollDay(c.Ts)
	a.cache.UpdateOnClose(c)

	if a.pos != nil && !a.pos.closing {
		a.checkExit(c)
	}

	if a.pos == nil && !a.entryPending {
		a.evaluate(c)
	}

	a.history = append(a.history, c)
	if len(a.history) > maxHistory {
		a.history = a.history[len(a.history)-maxHistory:]
	}
}

// checkExit closes the position when the candle touches the stop or target.
// The stop wins when a candle spans both.
func (a *Agent) checkExit(c market.Candle) {
	pos := a.pos
	var exitPrice float64
	switch pos.side {
	case market.Buy:
		if c.Low <= pos.stop {
			exitPrice = pos.stop
		} else if c.High >= pos.target {
			exitPrice = pos.target
		}
	case market.Sell:
		if c.High >= pos.stop {
			exitPrice = pos.stop
		} else if c.Low <= pos.target {
			exitPrice = pos.target
		}
	}
	if exitPrice == 0 {
		return
	}
	pos.closing = true
	sent := a.send(OrderRequest{
		Order: market.Order{
			Symbol:      a.symbol,
			Side:        pos.side.Opposite(),
			Qty:         pos.qty,
			Price:       exitPrice,
			Type:        "market",
			TimeInForce: "IOC",
		},
		Exit:         true,
		StopDistance: pos.stopDistance,
		EntryPrice:   pos.entry,
		OpenTs:       pos.openTs,
	})
	if !sent {
		// Retry on the next candle; abandoning the flag here would strand
		// the position past its stop.
		pos.closing = false
	}
}

func (a *Agent) evaluate(c market.Candle) {
	p := a.params.Current()
	sctx := strategy.Context{Ind: a.cache, Candles: a.history, Params: p}

	idea := strategy.Evaluate(c, sctx, strategy.Active(p))
	if idea == nil {
		return
	}
	metrics.IdeasTotal.WithLabelValues(a.symbol, idea.Strategy).Inc()

	if !a.riskMgr.CanTrade() {
		metrics.VetoesTotal.WithLabelValues(a.symbol, "risk_limit").Inc()
		a.log.Debug().Str("strategy", idea.Strategy).Msg("idea suppressed by risk limits")
		return
	}

	stopDistance := math.Abs(idea.Price - idea.Stop)
	qty := a.riskMgr.SizeTrade(idea.Price, stopDistance)
	if qty <= 0 {
		return
	}

	decision, err := a.gate.ScoreIdea(a.features(c, idea))
	if err != nil {
		a.log.Error().Err(err).Msg("gatekeeper error, idea vetoed")
		return
	}
	if !decision.Approved {
		return
	}

	a.entryPending = true
	sent := a.send(OrderRequest{
		Order: market.Order{
			Symbol:      a.symbol,
			Side:        idea.Side,
			Qty:         qty,
			Price:       idea.Price,
			Type:        "market",
			TimeInForce: "GTC",
		},
		Idea:         *idea,
		DatasetID:    decision.DatasetID,
		StopDistance: stopDistance,
		OpenTs:       c.Ts,
	})
	if !sent {
		// No result will ever arrive for a dropped request.
		a.entryPending = false
	}
}

func (a *Agent) onOrderResult(res OrderResult) {
	if res.Request.Exit {
		a.settleExit(res)
		return
	}

	a.entryPending = false
	if res.Err != nil || len(res.Fills) == 0 {
		a.log.Warn().Err(res.Err).Msg("entry order failed, no position opened")
		return
	}

	qty, avg := aggregateFills(res.Fills)
	a.riskMgr.RegisterOrder(qty, res.Request.StopDistance)
	idea := res.Request.Idea
	a.pos = &position{
		side:         idea.Side,
		qty:          qty,
		entry:        avg,
		stop:         idea.Stop,
		target:       idea.Target,
		stopDistance: res.Request.StopDistance,
		datasetID:    res.Request.DatasetID,
		strategy:     idea.Strategy,
		rewardRisk:   idea.RewardRisk(),
		openTs:       res.Request.OpenTs,
	}
	a.log.Info().Str("side", string(idea.Side)).Float64("qty", qty).Float64("entry", avg).Msg("position opened")
}

func (a *Agent) settleExit(res OrderResult) {
	pos := a.pos
	if pos == nil {
		return
	}
	if res.Err != nil || len(res.Fills) == 0 {
		// Try again on the next candle.
		pos.closing = false
		a.log.Warn().Err(res.Err).Msg("exit order failed, will retry")
		return
	}

	qty, exit := aggregateFills(res.Fills)
	pnl := (exit - pos.entry) * qty
	if pos.side == market.Sell {
		pnl = -pnl
	}
	a.riskMgr.ClosePosition(qty, pos.stopDistance, pnl)

	if pos.datasetID > 0 {
		if err := a.gate.UpdateOutcome(pos.datasetID, pnl); err != nil {
			a.log.Warn().Err(err).Msg("failed to feed outcome back to gatekeeper")
		}
	}
	if a.trades != nil {
		rec := market.TradeRecord{
			Symbol:     a.symbol,
			Side:       pos.side,
			Strategy:   pos.strategy,
			Qty:        qty,
			Entry:      pos.entry,
			Exit:       exit,
			Pnl:        pnl,
			RewardRisk: pos.rewardRisk,
			DatasetID:  pos.datasetID,
			OpenTs:     pos.openTs,
			CloseTs:    time.Now().UTC(),
		}
		if err := a.trades.Append(rec); err != nil {
			a.log.Warn().Err(err).Msg("failed to record trade")
		}
	}
	a.log.Info().Float64("pnl", pnl).Float64("exit", exit).Msg("position closed")
	a.pos = nil
}

func (a *Agent) features(c market.Candle, idea *market.TradeIdea) market.FeatureVector {
	rsi, _ := a.cache.RSI()
	fast, _ := a.cache.FastMA()
	slow, _ := a.cache.SlowMA()
	atr, _ := a.cache.ATR()

	var trendPct, atrPct float64
	if idea.Price > 0 {
		trendPct = (fast - slow) / idea.Price
		atrPct = atr / idea.Price
	}
	return market.FeatureVector{
		Symbol:    a.symbol,
		Price:     idea.Price,
		RSI:       rsi,
		TrendPct:  trendPct,
		ATRPct:    atrPct,
		HourOfDay: float64(c.Ts.Hour()),
		DayOfWeek: float64(c.Ts.Weekday()),
	}
}

// send hands the request to the host without blocking the decision cycle.
// Returns false when the channel is full so callers can roll back their
// pending state and retry on a later candle.
func (a *Agent) send(req OrderRequest) bool {
	select {
	case a.orders <- req:
		return true
	default:
		a.log.Error().Str("side", string(req.Order.Side)).Msg("order channel full, request dropped")
		return false
	}
}

func aggregateFills(fills []market.Fill) (qty, avgPrice float64) {
	var notional float64
	for _, f := range fills {
		qty += f.Qty
		notional += f.Qty * f.Price
	}
	if qty > 0 {
		avgPrice = notional / qty
	}
	return qty, avgPrice
}
