package backtest_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinhyuklee/leadstock/internal/backtest"
	"github.com/jinhyuklee/leadstock/internal/domain"
	"github.com/jinhyuklee/leadstock/internal/indicator"
	"github.com/jinhyuklee/leadstock/internal/strategy"
)

var simDay0 = time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)

func simDate(i int) time.Time { return simDay0.AddDate(0, 0, i) }

func simBars(closes []float64) []domain.Bar {
	bars := make([]domain.Bar, len(closes))
	for i, c := range closes {
		bars[i] = domain.Bar{
			Date:   simDate(i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1_000_000,
		}
	}
	return bars
}

// vShapeCloses models a leader's lifecycle over 400 bars: a long low base,
// a run-up, a pullback to a trough, a flat bottom, then a sharp recovery.
// The short-MA slope first turns positive at bar 375, with the close back
// above the long MA, so the entry fires there and only there.
func vShapeCloses() []float64 {
	closes := make([]float64, 400)
	for i := range closes {
		switch {
		case i < 250:
			closes[i] = 70
		case i < 300:
			closes[i] = 70 + 0.6*float64(i-249)
		case i < 350:
			closes[i] = 100 - 0.3*float64(i-299)
		case i < 375:
			closes[i] = 85
		default:
			closes[i] = 85 + 4*float64(i-374)
		}
	}
	return closes
}

func flatCloses(n int, v float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = v
	}
	return closes
}

func decliningCloses(n int, start, step float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start - step*float64(i)
	}
	return closes
}

func simConfig() backtest.Config {
	cfg := backtest.DefaultConfig()
	cfg.StartDate = simDate(300)
	cfg.EndDate = simDate(399)
	cfg.LiquidityFloor = 1_000_000
	return cfg
}

func TestDriverVShapeRecovery(t *testing.T) {
	strat := strategy.DefaultConfig()
	closes := vShapeCloses()
	series := map[string]*domain.Series{
		"AAA": indicator.Compute("AAA", simBars(closes), strat),
		"BBB": indicator.Compute("BBB", simBars(flatCloses(400, 50)), strat),
		"CCC": indicator.Compute("CCC", simBars(decliningCloses(400, 200, 0.2)), strat),
	}
	cfg := simConfig()

	driver := backtest.NewDriver(cfg, strat, series, map[string]string{"AAA": "Alpha Corp"}, []string{"ZZZ"})
	result, err := driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, simDate(300), result.StartDate)
	assert.Equal(t, simDate(399), result.EndDate)
	assert.Equal(t, []string{"ZZZ"}, result.FailedTickers)

	// One entry at the confirmed reversal, no exit during the recovery.
	require.Len(t, result.Trades, 1)
	buy := result.Trades[0]
	assert.Equal(t, domain.ActionBuy, buy.Action)
	assert.Equal(t, "AAA", buy.Ticker)
	assert.Equal(t, "Alpha Corp", buy.Name)
	assert.Equal(t, simDate(375), buy.Date)
	assert.InDelta(t, 89, buy.Price, 1e-9)

	// ATR sizing overshoots the exposure cap here, so the quantity is the
	// 10%-of-equity notional cap.
	wantQty := int64(cfg.MaxPositionPct * cfg.InitialCapital / buy.Price)
	assert.Equal(t, wantQty, buy.Quantity)

	require.Len(t, result.Positions, 1)
	pos := result.Positions[0]
	assert.Equal(t, "AAA", pos.Ticker)
	assert.Equal(t, buy.Quantity, pos.Quantity)
	assert.InDelta(t, float64(buy.Quantity)*buy.Price, pos.CostBasis, 1e-6)

	// The equity curve is cash plus mark-to-market at every step: flat at
	// the initial capital until the fill, then tracking the close.
	require.Len(t, result.Equity, 100)
	notional := float64(buy.Quantity) * buy.Price
	cashAfter := cfg.InitialCapital - notional - buy.Fee
	assert.InDelta(t, cashAfter, result.FinalCash, 1e-6)
	assert.GreaterOrEqual(t, result.FinalCash, 0.0)

	for k, p := range result.Equity {
		assert.Equal(t, simDate(300+k), p.Date)
		want := cfg.InitialCapital
		if k >= 75 {
			want = cashAfter + float64(buy.Quantity)*closes[300+k]
		}
		assert.InDeltaf(t, want, p.TotalValue, 1e-6, "day %d", k)
	}
	assert.InDelta(t, cashAfter+float64(buy.Quantity)*closes[399], result.FinalValue(), 1e-6)
}

func TestDriverMaxPositionsAndRankOrder(t *testing.T) {
	// Three identical leaders, two slots: the fills must go to the first
	// two tickers in ascending order, every run.
	strat := strategy.DefaultConfig()
	closes := vShapeCloses()
	series := map[string]*domain.Series{
		"T3": indicator.Compute("T3", simBars(closes), strat),
		"T1": indicator.Compute("T1", simBars(closes), strat),
		"T2": indicator.Compute("T2", simBars(closes), strat),
	}
	cfg := simConfig()
	cfg.MaxPositions = 2

	result, err := backtest.NewDriver(cfg, strat, series, nil, nil).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Trades, 2)
	assert.Equal(t, "T1", result.Trades[0].Ticker)
	assert.Equal(t, "T2", result.Trades[1].Ticker)
	assert.Len(t, result.Positions, 2)
}

func TestDriverFatalPreconditions(t *testing.T) {
	strat := strategy.DefaultConfig()
	cfg := simConfig()

	_, err := backtest.NewDriver(cfg, strat, nil, nil, nil).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tickers")

	// Bars exist, but none inside the configured range.
	series := map[string]*domain.Series{
		"AAA": indicator.Compute("AAA", simBars(flatCloses(10, 50)), strat),
	}
	cfg.StartDate = simDate(500)
	cfg.EndDate = simDate(600)
	_, err = backtest.NewDriver(cfg, strat, series, nil, nil).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no trading days")
}

func TestDriverContextCancellation(t *testing.T) {
	strat := strategy.DefaultConfig()
	series := map[string]*domain.Series{
		"AAA": indicator.Compute("AAA", simBars(vShapeCloses()), strat),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := backtest.NewDriver(simConfig(), strat, series, nil, nil).Run(ctx)
	assert.Error(t, err)
}
