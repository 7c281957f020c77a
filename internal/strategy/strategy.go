package strategy

import "fmt"

// RSWeights are the momentum-blend weights in configuration order:
// 3-month, 6-month, 12-month, 1-month.
type RSWeights struct {
	M3  float64 `yaml:"m3"`
	M6  float64 `yaml:"m6"`
	M12 float64 `yaml:"m12"`
	M1  float64 `yaml:"m1"`
}

// Config holds the strategy parameters. Zero values are filled by
// DefaultConfig; Validate rejects combinations the signal math cannot
// handle.
type Config struct {
	MAShort             int       `yaml:"ma_short"`
	MALong              int       `yaml:"ma_long"`
	SellSlopeMultiplier float64   `yaml:"sell_slope_multiplier"`
	RSWeights           RSWeights `yaml:"rs_weights"`
	SlopeLookback       int       `yaml:"slope_lookback"`
	UseTrendBreak       bool      `yaml:"use_trend_break"`
}

// DefaultConfig returns the published parameter set of the leading-stock
// strategy: 20/60 MAs, 1.5× slope multiplier, RS weights 0.4/0.3/0.2/0.1
// for 3m/6m/12m/1m, 60-day slope lookback, trend break on.
func DefaultConfig() Config {
	return Config{
		MAShort:             20,
		MALong:              60,
		SellSlopeMultiplier: 1.5,
		RSWeights:           RSWeights{M3: 0.4, M6: 0.3, M12: 0.2, M1: 0.1},
		SlopeLookback:       60,
		UseTrendBreak:       true,
	}
}

// Validate checks the parameter ranges.
func (c Config) Validate() error {
	if c.MAShort < 2 {
		return fmt.Errorf("strategy: ma_short must be >= 2, got %d", c.MAShort)
	}
	if c.MALong <= c.MAShort {
		return fmt.Errorf("strategy: ma_long (%d) must exceed ma_short (%d)", c.MALong, c.MAShort)
	}
	if c.SellSlopeMultiplier <= 0 {
		return fmt.Errorf("strategy: sell_slope_multiplier must be positive, got %g", c.SellSlopeMultiplier)
	}
	if c.SlopeLookback < 1 {
		return fmt.Errorf("strategy: slope_lookback must be >= 1, got %d", c.SlopeLookback)
	}
	w := c.RSWeights
	if w.M3 < 0 || w.M6 < 0 || w.M12 < 0 || w.M1 < 0 {
		return fmt.Errorf("strategy: rs_weights must be non-negative, got %+v", w)
	}
	return nil
}
