package main

import (
	"flag"
	"time"

	"github.com/joho/godotenv"

	"oceanview-go/internal/config"
	"oceanview-go/internal/evolution"
	"oceanview-go/internal/store"
	"oceanview-go/internal/util"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config")
	dryRun := flag.Bool("dry-run", false, "score candidates without promoting the winner")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log := util.NewLogger("info")
		log.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger(cfg.App.LogLevel)

	settings := store.NewSettingsStore(cfg.Evolution.SettingsPath)
	rec, err := settings.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load settings")
	}

	trades, err := store.NewTradeStore(cfg.Evolution.TradesPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open trade store")
	}
	defer trades.Close()

	cutoff := time.Now().UTC().AddDate(0, 0, -cfg.Evolution.WindowDays)
	window, err := trades.LoadSince(cutoff)
	if err != nil {
		log.Fatal().Err(err).Msg("load trade window")
	}
	log.Info().Int("trades", len(window)).Time("cutoff", cutoff).Int("incumbent_version", rec.Version).Msg("window loaded")

	engine := evolution.NewEngine(cfg.Evolution.Candidates, nil, log)
	best, improved := engine.Run(rec.Params, window)

	if !improved {
		log.Info().Msg("incumbent retained")
		return
	}
	if *dryRun {
		log.Info().Float64("sharpe", best.Stats.Sharpe).Float64("drawdown", best.Stats.Drawdown).Msg("dry run, winner not promoted")
		return
	}

	promoted, err := settings.Promote(best.Params)
	if err != nil {
		log.Fatal().Err(err).Msg("promote settings")
	}
	log.Info().
		Int("version", promoted.Version).
		Float64("sharpe", best.Stats.Sharpe).
		Float64("drawdown", best.Stats.Drawdown).
		Msg("candidate promoted")
}
