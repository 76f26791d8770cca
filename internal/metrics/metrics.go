// Package metrics registers the engine's Prometheus instruments and serves
// the scrape endpoint.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ticks_total", Help: "Count of market ticks ingested"},
		[]string{"symbol"},
	)
	CandlesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "candles_total", Help: "Sealed candles emitted"},
		[]string{"symbol"},
	)
	IdeasTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ideas_total", Help: "Trade ideas produced by strategies"},
		[]string{"symbol", "strategy"},
	)
	VetoesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "vetoes_total", Help: "Trade ideas suppressed before execution"},
		[]string{"symbol", "reason"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Orders submitted"},
		[]string{"symbol", "side"},
	)
	FillsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fills_total", Help: "Fills received per engine"},
		[]string{"symbol", "engine"},
	)
	ExecRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "exec_retries_total", Help: "Chunk submissions retried after transient failure"},
		[]string{"symbol"},
	)
	SimFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sim_fallbacks_total", Help: "Chunks filled by the simulated engine after live retries were exhausted"},
		[]string{"symbol"},
	)
	OpenRiskPct = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "open_risk_pct", Help: "Aggregate percent of equity at risk across open positions"},
		[]string{"symbol"},
	)
)

func init() {
	prometheus.MustRegister(
		TicksTotal, CandlesTotal, IdeasTotal, VetoesTotal,
		OrdersTotal, FillsTotal, ExecRetriesTotal, SimFallbacksTotal, OpenRiskPct,
	)
}

// Serve exposes /metrics on the given address in a background goroutine.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
