package report_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinhyuklee/leadstock/internal/adapters/report"
	"github.com/jinhyuklee/leadstock/internal/domain"
)

func TestConsoleReport(t *testing.T) {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 12, 28, 0, 0, 0, 0, time.UTC)
	result := &domain.SimulationResult{
		ID:             "abcdef1234567890",
		StartDate:      start,
		EndDate:        end,
		InitialCapital: 100_000_000,
		FinalCash:      30_000_000,
		Equity: []domain.EquityPoint{
			{Date: start, TotalValue: 100_000_000},
			{Date: end, TotalValue: 112_000_000},
		},
		Trades: []domain.TradeRecord{
			{Date: start, Ticker: "005930", Name: "Samsung Electronics", Action: domain.ActionBuy, Price: 70_000, Quantity: 100, Fee: 1050, Note: "rs 41.2, atr 1800.0"},
			{Date: end, Ticker: "005930", Name: "Samsung Electronics", Action: domain.ActionSell, Price: 81_000, Quantity: 100, Fee: 20_250, Note: "trend break (close < 20MA) (profit 15.71%)"},
		},
		Positions: []domain.Position{
			{Ticker: "000660", Quantity: 50, AvgEntryPrice: 130_000, EntryDate: end, CostBasis: 6_500_000},
		},
		FailedTickers: []string{"123456"},
	}

	var buf bytes.Buffer
	require.NoError(t, report.NewConsoleWriter(&buf).Report(context.Background(), result))

	out := buf.String()
	assert.Contains(t, out, "2023-01-02 ~ 2023-12-28")
	assert.Contains(t, out, "12.00%") // total return
	assert.Contains(t, out, "005930")
	assert.Contains(t, out, "Samsung Electronics")
	assert.Contains(t, out, "trend break")
	assert.Contains(t, out, "open positions (1)")
	assert.Contains(t, out, "000660")
	assert.Contains(t, out, "dropped tickers (fetch failed): 1")
}

func TestConsoleReportNoTrades(t *testing.T) {
	var buf bytes.Buffer
	result := &domain.SimulationResult{
		StartDate:      time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
		InitialCapital: 100_000_000,
		FinalCash:      100_000_000,
	}
	require.NoError(t, report.NewConsoleWriter(&buf).Report(context.Background(), result))
	assert.Contains(t, buf.String(), "no trades executed")
}

func TestConsolePrintHistory(t *testing.T) {
	var buf bytes.Buffer
	report.NewConsoleWriter(&buf).PrintHistory(nil)
	assert.Contains(t, buf.String(), "no stored simulations")

	buf.Reset()
	report.NewConsoleWriter(&buf).PrintHistory([]domain.SimulationMeta{
		{
			ID:         "abcdef1234567890",
			CreatedAt:  time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
			StartDate:  time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
			EndDate:    time.Date(2023, 12, 28, 0, 0, 0, 0, time.UTC),
			TradeCount: 14,
			FinalValue: 112_000_000,
		},
	})
	out := buf.String()
	assert.Contains(t, out, "abcdef12") // shortened id
	assert.Contains(t, out, "2023-01-02 ~ 2023-12-28")
	assert.Contains(t, out, "14")
}
