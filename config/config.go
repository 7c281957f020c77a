package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jinhyuklee/leadstock/internal/backtest"
	"github.com/jinhyuklee/leadstock/internal/strategy"
)

// UniverseModeStock ranks the broad market by capitalization;
// UniverseModeETF runs over the curated whitelist with a lower
// liquidity floor.
const (
	UniverseModeStock = "stock"
	UniverseModeETF   = "etf"
)

// Config is the full configuration of a backtest run.
type Config struct {
	Backtest BacktestConfig  `yaml:"backtest"`
	Strategy strategy.Config `yaml:"strategy"`
	Universe UniverseConfig  `yaml:"universe"`
	Risk     RiskConfig      `yaml:"risk"`
	Data     DataConfig      `yaml:"data"`
	Storage  StorageConfig   `yaml:"storage"`
	Log      LogConfig       `yaml:"log"`
}

// BacktestConfig sets the simulated range and starting capital.
type BacktestConfig struct {
	StartDate      string  `yaml:"start_date"` // YYYY-MM-DD
	EndDate        string  `yaml:"end_date"`   // YYYY-MM-DD
	InitialCapital float64 `yaml:"initial_capital"`
	// WarmupDays of extra history loaded before the start date so rolling
	// indicators are valid from day one.
	WarmupDays int `yaml:"warmup_days"`
}

// UniverseConfig selects the tradable set.
type UniverseConfig struct {
	Mode                string            `yaml:"mode"` // stock | etf
	KospiTop            int               `yaml:"kospi_top"`
	KosdaqTop           int               `yaml:"kosdaq_top"`
	LiquidityFloorStock float64           `yaml:"liquidity_floor_stock"`
	LiquidityFloorETF   float64           `yaml:"liquidity_floor_etf"`
	PoolSize            int               `yaml:"pool_size"`
	Whitelist           map[string]string `yaml:"whitelist"` // etf mode: ticker → name
}

// LiquidityFloor returns the mode-dependent minimum 20-day turnover.
func (u UniverseConfig) LiquidityFloor() float64 {
	if u.Mode == UniverseModeETF {
		return u.LiquidityFloorETF
	}
	return u.LiquidityFloorStock
}

// RiskConfig sets position limits and fees.
type RiskConfig struct {
	MaxPositions    int     `yaml:"max_positions"`
	RiskPerTradePct float64 `yaml:"risk_per_trade_pct"`
	MaxPositionPct  float64 `yaml:"max_position_pct"`
	BuyFeeRate      float64 `yaml:"buy_fee_rate"`
	SellFeeRate     float64 `yaml:"sell_fee_rate"`
}

// DataConfig points at the market-data API and bounds the preload.
type DataConfig struct {
	APIBase             string `yaml:"api_base"`
	APIKey              string `yaml:"-"` // from MARKETDATA_API_KEY, never the YAML
	Workers             int    `yaml:"workers"`
	FetchTimeoutSeconds int    `yaml:"fetch_timeout_seconds"`
}

// StorageConfig locates the SQLite file.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // path to the SQLite file, or ":memory:"
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load reads the YAML config and the .env file if present. Strategy
// defaults are applied before unmarshal so omitted fields keep the
// published parameter set (including use_trend_break=true); env values
// override YAML for the keys they cover.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	cfg := Config{Strategy: strategy.DefaultConfig()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the cross-field constraints the run depends on.
func (c *Config) Validate() error {
	if _, err := c.StartDate(); err != nil {
		return err
	}
	if _, err := c.EndDate(); err != nil {
		return err
	}
	if err := c.Strategy.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Universe.Mode != UniverseModeStock && c.Universe.Mode != UniverseModeETF {
		return fmt.Errorf("config: unknown universe mode %q", c.Universe.Mode)
	}
	if c.Universe.Mode == UniverseModeETF && len(c.Universe.Whitelist) == 0 {
		return fmt.Errorf("config: etf mode requires a whitelist")
	}
	return c.BacktestParams().Validate()
}

// StartDate parses the configured start date.
func (c *Config) StartDate() (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", c.Backtest.StartDate, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("config: bad start_date %q: %w", c.Backtest.StartDate, err)
	}
	return t, nil
}

// EndDate parses the configured end date.
func (c *Config) EndDate() (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", c.Backtest.EndDate, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("config: bad end_date %q: %w", c.Backtest.EndDate, err)
	}
	return t, nil
}

// WarmupStart returns the date data loading begins: warmup_days of
// calendar time before the simulation start.
func (c *Config) WarmupStart() (time.Time, error) {
	start, err := c.StartDate()
	if err != nil {
		return time.Time{}, err
	}
	return start.AddDate(0, 0, -c.Backtest.WarmupDays), nil
}

// FetchTimeout returns the overall preload deadline.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Data.FetchTimeoutSeconds) * time.Second
}

// BacktestParams assembles the engine config from the universe, risk, and
// backtest sections.
func (c *Config) BacktestParams() backtest.Config {
	start, _ := c.StartDate()
	end, _ := c.EndDate()
	return backtest.Config{
		StartDate:      start,
		EndDate:        end,
		InitialCapital: c.Backtest.InitialCapital,
		LiquidityFloor: c.Universe.LiquidityFloor(),
		PoolSize:       c.Universe.PoolSize,
		MaxPositions:   c.Risk.MaxPositions,
		RiskPerTrade:   c.Risk.RiskPerTradePct,
		MaxPositionPct: c.Risk.MaxPositionPct,
		BuyFeeRate:     c.Risk.BuyFeeRate,
		SellFeeRate:    c.Risk.SellFeeRate,
	}
}

// applyEnvOverrides overrides values from environment variables when set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("MARKETDATA_API_KEY"); v != "" {
		cfg.Data.APIKey = v
	}
	if v := os.Getenv("MARKETDATA_API_BASE"); v != "" {
		cfg.Data.APIBase = v
	}
}

// setDefaults fills required values with sensible production defaults.
func setDefaults(cfg *Config) {
	def := backtest.DefaultConfig()

	if cfg.Backtest.InitialCapital <= 0 {
		cfg.Backtest.InitialCapital = def.InitialCapital
	}
	if cfg.Backtest.WarmupDays <= 0 {
		cfg.Backtest.WarmupDays = 365
	}
	if cfg.Universe.Mode == "" {
		cfg.Universe.Mode = UniverseModeStock
	}
	if cfg.Universe.KospiTop <= 0 {
		cfg.Universe.KospiTop = 200
	}
	if cfg.Universe.KosdaqTop <= 0 {
		cfg.Universe.KosdaqTop = 50
	}
	if cfg.Universe.LiquidityFloorStock <= 0 {
		cfg.Universe.LiquidityFloorStock = 10_000_000_000
	}
	if cfg.Universe.LiquidityFloorETF <= 0 {
		cfg.Universe.LiquidityFloorETF = 1_000_000_000
	}
	if cfg.Universe.PoolSize <= 0 {
		cfg.Universe.PoolSize = def.PoolSize
	}
	if cfg.Risk.MaxPositions <= 0 {
		cfg.Risk.MaxPositions = def.MaxPositions
	}
	if cfg.Risk.RiskPerTradePct <= 0 {
		cfg.Risk.RiskPerTradePct = def.RiskPerTrade
	}
	if cfg.Risk.MaxPositionPct <= 0 {
		cfg.Risk.MaxPositionPct = def.MaxPositionPct
	}
	if cfg.Risk.BuyFeeRate <= 0 {
		cfg.Risk.BuyFeeRate = def.BuyFeeRate
	}
	if cfg.Risk.SellFeeRate <= 0 {
		cfg.Risk.SellFeeRate = def.SellFeeRate
	}
	if cfg.Data.Workers <= 0 {
		cfg.Data.Workers = 10
	}
	if cfg.Data.FetchTimeoutSeconds <= 0 {
		cfg.Data.FetchTimeoutSeconds = 300
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "leadstock.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
