package main

import (
	"context"
	"flag"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"oceanview-go/internal/agent"
	"oceanview-go/internal/config"
	"oceanview-go/internal/execution"
	"oceanview-go/internal/feed"
	"oceanview-go/internal/gatekeeper"
	"oceanview-go/internal/market"
	"oceanview-go/internal/metrics"
	"oceanview-go/internal/store"
	"oceanview-go/internal/util"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log := util.NewLogger("info")
		log.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger(cfg.App.LogLevel)

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Strategy parameters come from the promoted settings record, falling
	// back to defaults when no evolution cycle has run yet.
	settings := store.NewSettingsStore(cfg.Evolution.SettingsPath)
	rec, err := settings.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load settings")
	}
	params := config.NewParamStore(rec.Params)
	log.Info().Int("version", rec.Version).Msg("strategy parameters loaded")

	featureStore, err := store.NewFeatureStore(cfg.Gatekeeper.DatasetPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open feature store")
	}
	defer featureStore.Close()

	// A missing or broken model means the gatekeeper vetoes everything.
	var scorer gatekeeper.Scorer
	if cfg.Gatekeeper.ModelPath != "" {
		onnx, err := gatekeeper.NewONNXScorer(cfg.Gatekeeper.ModelPath)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.Gatekeeper.ModelPath).Msg("model unavailable, all ideas will be vetoed")
		} else {
			scorer = onnx
			defer onnx.Close()
		}
	}
	gate := gatekeeper.New(scorer, cfg.Gatekeeper.Threshold, featureStore, log)

	trades, err := store.NewTradeStore(cfg.Evolution.TradesPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open trade store")
	}
	defer trades.Close()

	sim := execution.NewSimEngine(cfg.Risk.Equity, cfg.Execution.SlippageBps, cfg.Execution.FeeBps)
	router := execution.NewRouter(nil, sim,
		cfg.Execution.Chunks, cfg.Execution.MaxRetries,
		time.Duration(cfg.Execution.BackoffMs)*time.Millisecond, log)

	host := agent.NewHost(router, log)
	for _, symbol := range cfg.Feed.Symbols {
		host.Register(agent.New(symbol, cfg, params, gate, trades, host.Orders(), log))
	}

	src := feed.New(cfg.Feed.Provider, cfg.Feed.Symbols, log)
	ticks := make(chan market.Tick, 1024)
	go func() {
		if err := src.Run(ctx, ticks); err != nil {
			log.Error().Err(err).Msg("feed stopped")
			cancel()
		}
	}()

	log.Info().Strs("symbols", cfg.Feed.Symbols).Str("provider", cfg.Feed.Provider).Msg("engine started")
	host.Run(ctx, ticks)
	log.Info().Float64("sim_cash", sim.Cash()).Float64("sim_pnl", sim.RealizedPnL()).Msg("shutdown complete")
}
