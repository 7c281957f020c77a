package backtest

import (
	"fmt"
	"time"
)

// Config holds the universe, risk, and run parameters of a simulation.
// Strategy parameters live in strategy.Config; this covers everything else.
type Config struct {
	StartDate      time.Time
	EndDate        time.Time
	InitialCapital float64

	// LiquidityFloor is the minimum 20-day average turnover for universe
	// membership. Mode-dependent: ~10B KRW for the broad-stock mode, ~1B
	// for the curated ETF mode.
	LiquidityFloor float64
	// PoolSize caps the day's ranked target pool. Deliberately a pool, not
	// a strict top-N buy gate: eligibility is further filtered by the buy
	// signal itself.
	PoolSize int

	MaxPositions   int
	RiskPerTrade   float64 // fraction of total equity risked per position
	MaxPositionPct float64 // max notional as a fraction of total equity
	BuyFeeRate     float64
	SellFeeRate    float64
}

// DefaultConfig returns the production parameter set.
func DefaultConfig() Config {
	return Config{
		InitialCapital: 100_000_000,
		LiquidityFloor: 10_000_000_000,
		PoolSize:       50,
		MaxPositions:   10,
		RiskPerTrade:   0.01,
		MaxPositionPct: 0.10,
		BuyFeeRate:     0.00015,
		SellFeeRate:    0.0025,
	}
}

// Validate checks the run parameters.
func (c Config) Validate() error {
	if !c.EndDate.After(c.StartDate) {
		return fmt.Errorf("backtest: end date %s not after start date %s",
			c.EndDate.Format("2006-01-02"), c.StartDate.Format("2006-01-02"))
	}
	if c.InitialCapital <= 0 {
		return fmt.Errorf("backtest: initial capital must be positive, got %g", c.InitialCapital)
	}
	if c.MaxPositions < 1 {
		return fmt.Errorf("backtest: max_positions must be >= 1, got %d", c.MaxPositions)
	}
	if c.RiskPerTrade <= 0 || c.RiskPerTrade > 1 {
		return fmt.Errorf("backtest: risk_per_trade_pct out of (0,1]: %g", c.RiskPerTrade)
	}
	if c.MaxPositionPct <= 0 || c.MaxPositionPct > 1 {
		return fmt.Errorf("backtest: max_position_pct out of (0,1]: %g", c.MaxPositionPct)
	}
	if c.PoolSize < 1 {
		return fmt.Errorf("backtest: pool_size must be >= 1, got %d", c.PoolSize)
	}
	return nil
}
