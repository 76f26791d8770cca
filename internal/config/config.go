// Package config exposes strongly typed application configuration structs
// loaded from YAML, plus the shared strategy parameter record that the
// evolution loop promotes atomically.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Feed describes the market data source the agents subscribe to.
type Feed struct {
	Provider         string   `yaml:"provider"`
	Symbols          []string `yaml:"symbols"`
	CandleIntervalMs int      `yaml:"candle_interval_ms"`
}

// Risk encodes the guard-rails each agent's risk manager enforces.
type Risk struct {
	Equity       float64 `yaml:"equity"`
	RiskPct      float64 `yaml:"risk_pct"`       // percent of equity risked per trade
	MaxOpenRisk  float64 `yaml:"max_open_risk"`  // fraction of equity, e.g. 0.03
	MaxDailyLoss float64 `yaml:"max_daily_loss"` // fraction of equity, e.g. 0.02
	StopPct      float64 `yaml:"stop_pct"`       // fallback stop distance as fraction of price
}

// Gatekeeper configures the ML veto layer.
type Gatekeeper struct {
	ModelPath   string  `yaml:"model_path"`
	Threshold   float64 `yaml:"threshold"`
	DatasetPath string  `yaml:"dataset_path"`
}

// Execution tunes order routing: chunk fan-out and retry backoff.
type Execution struct {
	Chunks      int     `yaml:"chunks"`
	MaxRetries  int     `yaml:"max_retries"`
	BackoffMs   int     `yaml:"backoff_ms"`
	SlippageBps float64 `yaml:"slippage_bps"`
	FeeBps      float64 `yaml:"fee_bps"`
}

// Evolution configures the nightly parameter search.
type Evolution struct {
	Candidates   int    `yaml:"candidates"`
	WindowDays   int    `yaml:"window_days"`
	TradesPath   string `yaml:"trades_path"`
	SettingsPath string `yaml:"settings_path"`
}

// Params groups every tunable strategy knob. Numeric knobs are float64 on
// purpose: the evolution mutator perturbs each one by a uniform multiplier
// and integer periods are derived at the point of use.
type Params struct {
	FastMAPeriod   float64 `yaml:"fast_ma_period"`
	SlowMAPeriod   float64 `yaml:"slow_ma_period"`
	RSIPeriod      float64 `yaml:"rsi_period"`
	RSIBuyBelow    float64 `yaml:"rsi_buy_below"`
	RSISellAbove   float64 `yaml:"rsi_sell_above"`
	ATRPeriod      float64 `yaml:"atr_period"`
	ATRStopMult    float64 `yaml:"atr_stop_mult"`
	ATRTargetMult  float64 `yaml:"atr_target_mult"`
	SweepPct       float64 `yaml:"sweep_pct"`       // min pierce beyond prior extreme, fraction of price
	RetraceMin     float64 `yaml:"retrace_min"`     // min close-back fraction of the sweep candle range
	ReversalLookbk float64 `yaml:"reversal_lookbk"` // candles scanned for the prior extreme
	MinRewardRisk  float64 `yaml:"min_reward_risk"`

	TrendEnabled    bool `yaml:"trend_enabled"`
	RangeEnabled    bool `yaml:"range_enabled"`
	ReversalEnabled bool `yaml:"reversal_enabled"`
}

// DefaultParams returns the baseline parameter record used before any
// evolution cycle has promoted a candidate.
func DefaultParams() Params {
	return Params{
		FastMAPeriod:    9,
		SlowMAPeriod:    21,
		RSIPeriod:       14,
		RSIBuyBelow:     30,
		RSISellAbove:    70,
		ATRPeriod:       14,
		ATRStopMult:     1.0,
		ATRTargetMult:   2.2,
		SweepPct:        0.001,
		RetraceMin:      0.5,
		ReversalLookbk:  10,
		MinRewardRisk:   2.0,
		TrendEnabled:    true,
		RangeEnabled:    true,
		ReversalEnabled: true,
	}
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App        App        `yaml:"app"`
	Feed       Feed       `yaml:"feed"`
	Risk       Risk       `yaml:"risk"`
	Gatekeeper Gatekeeper `yaml:"gatekeeper"`
	Execution  Execution  `yaml:"execution"`
	Evolution  Evolution  `yaml:"evolution"`
	Strategy   Params     `yaml:"strategy"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
