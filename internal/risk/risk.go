// Package risk sizes trades and gates further trading once open-risk or
// daily-loss limits are breached. Each agent owns exactly one Manager; state
// is never shared across agents.
package risk

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"oceanview-go/internal/config"
	"oceanview-go/internal/metrics"
)

// Manager tracks aggregate open risk and realized daily PnL for one agent.
type Manager struct {
	symbol       string
	equity       float64
	riskPct      float64 // percent of equity risked per trade
	maxOpenRisk  float64 // fraction of equity
	maxDailyLoss float64 // fraction of equity
	stopPct      float64 // fallback stop distance as fraction of price

	openRiskPct float64
	dayPnl      float64
	day         time.Time

	log zerolog.Logger
}

// NewManager builds a risk manager from the config block.
func NewManager(symbol string, cfg config.Risk, log zerolog.Logger) *Manager {
	return &Manager{
		symbol:       symbol,
		equity:       cfg.Equity,
		riskPct:      cfg.RiskPct,
		maxOpenRisk:  cfg.MaxOpenRisk,
		maxDailyLoss: cfg.MaxDailyLoss,
		stopPct:      cfg.StopPct,
		log:          log,
	}
}

// StopDistance resolves the stop distance for an entry at the given price:
// an ATR-derived distance when the indicator is warm, otherwise the
// configured fraction of price.
func (m *Manager) StopDistance(price, atr, atrMult float64) float64 {
	if atr > 0 && atrMult > 0 {
		return atr * atrMult
	}
	return price * m.stopPct
}

// SizeTrade returns the quantity that puts riskPct% of equity at risk for the
// given stop distance. The result is never negative, NaN, or infinite.
func (m *Manager) SizeTrade(price, stopDistance float64) float64 {
	if price <= 0 || stopDistance <= 0 || m.equity <= 0 {
		return 0
	}
	qty := m.equity * m.riskPct / 100 / stopDistance
	if math.IsNaN(qty) || math.IsInf(qty, 0) || qty < 0 {
		return 0
	}
	return qty
}

// RegisterOrder adds a filled entry's risk to the open aggregate.
func (m *Manager) RegisterOrder(qty, stopDistance float64) {
	if qty <= 0 || stopDistance <= 0 || m.equity <= 0 {
		return
	}
	riskUSD := qty * stopDistance
	m.openRiskPct += riskUSD / m.equity * 100
	metrics.OpenRiskPct.WithLabelValues(m.symbol).Set(m.openRiskPct)
	m.log.Debug().Float64("open_risk_pct", m.openRiskPct).Msg("registered order risk")
}

// ClosePosition realizes pnl into the daily total and releases the closed
// quantity's share of open risk. Open risk never drops below zero.
func (m *Manager) ClosePosition(qty, stopDistance, pnl float64) {
	m.dayPnl += pnl
	if qty > 0 && stopDistance > 0 && m.equity > 0 {
		m.openRiskPct -= qty * stopDistance / m.equity * 100
	}
	if m.openRiskPct < 0 {
		m.openRiskPct = 0
	}
	metrics.OpenRiskPct.WithLabelValues(m.symbol).Set(m.openRiskPct)
	m.log.Debug().Float64("pnl", pnl).Float64("day_pnl", m.dayPnl).Float64("open_risk_pct", m.openRiskPct).Msg("closed position")
}

// CanTrade reports whether new entries are allowed. A false return is a
// normal signal, not an error.
func (m *Manager) CanTrade() bool {
	if m.openRiskPct >= m.maxOpenRisk*100 {
		return false
	}
	if m.dayPnl <= -m.maxDailyLoss*m.equity {
		return false
	}
	return true
}

// RollDay resets the daily PnL when the candle timestamp crosses into a new
// calendar day. Open risk carries over: positions do not close at midnight.
func (m *Manager) RollDay(ts time.Time) {
	d := ts.Truncate(24 * time.Hour)
	if m.day.IsZero() {
		m.day = d
		return
	}
	if d.After(m.day) {
		m.log.Info().Float64("day_pnl", m.dayPnl).Time("day", m.day).Msg("daily risk reset")
		m.dayPnl = 0
		m.day = d
	}
}

// OpenRiskPct returns the aggregate percent of equity currently at risk.
func (m *Manager) OpenRiskPct() float64 { return m.openRiskPct }

// DayPnl returns realized PnL for the current day.
func (m *Manager) DayPnl() float64 { return m.dayPnl }

// Equity returns the configured account equity.
func (m *Manager) Equity() float64 { return m.equity }
