package strategy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jinhyuklee/leadstock/internal/domain"
	"github.com/jinhyuklee/leadstock/internal/strategy"
)

// evalSeries builds a 5-bar series with every derived column defined and
// neutral: no buy, no sell. Tests then override the columns they exercise.
func evalSeries() *domain.Series {
	s := domain.NewSeries("T", 5)
	base := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s.SetDate(i, base.AddDate(0, 0, i))
		s.Close[i] = 100
		s.MAShort[i] = 90
		s.MALong[i] = 95
		s.SlopePct[i] = 1
		s.MaxUpSlope[i] = 2
	}
	return s
}

func TestBuyReversalConfirmation(t *testing.T) {
	eval := strategy.NewEvaluator(strategy.DefaultConfig())

	// Short MA dips then turns: slope ≤ 0 at i−1, > 0 at i.
	s := evalSeries()
	s.MAShort[2] = 90
	s.MAShort[3] = 89
	s.MAShort[4] = 91
	assert.True(t, eval.Buy(s, 4))

	// Already rising at i−1: momentum is not fresh, no entry.
	s = evalSeries()
	s.MAShort[2] = 88
	s.MAShort[3] = 89
	s.MAShort[4] = 91
	assert.False(t, eval.Buy(s, 4))

	// Turn present but close at or below the long MA.
	s = evalSeries()
	s.MAShort[3] = 89
	s.Close[4] = 95
	assert.False(t, eval.Buy(s, 4))

	// Flat short MA never turns.
	assert.False(t, eval.Buy(evalSeries(), 4))
}

func TestBuyUndefinedIsFalse(t *testing.T) {
	eval := strategy.NewEvaluator(strategy.DefaultConfig())

	s := evalSeries()
	s.MAShort[3] = 89
	s.MALong[4] = domain.Undefined
	assert.False(t, eval.Buy(s, 4))

	s = evalSeries()
	s.MAShort[3] = 89
	s.MAShort[2] = domain.Undefined
	assert.False(t, eval.Buy(s, 4))

	// Too little history for the three-point window.
	assert.False(t, eval.Buy(evalSeries(), 1))
}

func TestSellTrendBreak(t *testing.T) {
	eval := strategy.NewEvaluator(strategy.DefaultConfig())

	s := evalSeries()
	s.Close[4] = 85 // below the short MA at 90
	ok, reason := eval.Sell(s, 4)
	assert.True(t, ok)
	assert.Contains(t, reason, "trend break")

	// Disabled by config: the same bar no longer exits.
	cfg := strategy.DefaultConfig()
	cfg.UseTrendBreak = false
	ok, _ = strategy.NewEvaluator(cfg).Sell(s, 4)
	assert.False(t, ok)

	// Close at the MA is not a break.
	s.Close[4] = 90
	ok, _ = eval.Sell(s, 4)
	assert.False(t, ok)
}

func TestSellSlopeProtection(t *testing.T) {
	eval := strategy.NewEvaluator(strategy.DefaultConfig())

	// Down slope 4% against a 2% historical ceiling: 4 > 2×1.5.
	s := evalSeries()
	s.SlopePct[4] = -4
	s.MaxUpSlope[4] = 2
	ok, reason := eval.Sell(s, 4)
	assert.True(t, ok)
	assert.Contains(t, reason, "deep correction")

	// Exactly at the threshold does not fire.
	s.SlopePct[4] = -3
	ok, _ = eval.Sell(s, 4)
	assert.False(t, ok)

	// Positive slope never triggers protection.
	s.SlopePct[4] = 4
	ok, _ = eval.Sell(s, 4)
	assert.False(t, ok)
}

func TestSellNoPriorUptrend(t *testing.T) {
	// Max up-slope of 0 would make any down day "deeper than the best
	// rally": the rule must stay silent no matter how steep the drop.
	eval := strategy.NewEvaluator(strategy.DefaultConfig())
	s := evalSeries()
	s.SlopePct[4] = -50
	s.MaxUpSlope[4] = 0
	ok, _ := eval.Sell(s, 4)
	assert.False(t, ok)
}

func TestSellUndefinedIsFalse(t *testing.T) {
	eval := strategy.NewEvaluator(strategy.DefaultConfig())

	s := evalSeries()
	s.SlopePct[4] = domain.Undefined
	ok, _ := eval.Sell(s, 4)
	assert.False(t, ok)

	s = evalSeries()
	s.SlopePct[4] = -50
	s.MaxUpSlope[4] = domain.Undefined
	ok, _ = eval.Sell(s, 4)
	assert.False(t, ok)

	// Trend break still works when the slope columns are undefined.
	s = evalSeries()
	s.SlopePct[4] = domain.Undefined
	s.Close[4] = 85
	ok, _ = eval.Sell(s, 4)
	assert.True(t, ok)
}

func TestConfigValidate(t *testing.T) {
	cfg := strategy.DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.MAShort = 60
	cfg.MALong = 20
	assert.Error(t, cfg.Validate())

	cfg = strategy.DefaultConfig()
	cfg.SellSlopeMultiplier = 0
	assert.Error(t, cfg.Validate())

	cfg = strategy.DefaultConfig()
	cfg.RSWeights.M1 = -0.1
	assert.Error(t, cfg.Validate())
}
