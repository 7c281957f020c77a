package ports

import (
	"context"
	"time"

	"github.com/jinhyuklee/leadstock/internal/domain"
)

// BarProvider fetches daily OHLCV bars from the remote market-data source.
type BarProvider interface {
	// FetchDailyBars returns the bars for ticker between from and to,
	// ascending by date, pre-filtered to open > 0 and close > 0.
	FetchDailyBars(ctx context.Context, ticker string, from, to time.Time) ([]domain.Bar, error)
}

// BarSchemaVersion identifies the cached bar layout. Bumping it
// invalidates every cached range on the next staleness check.
const BarSchemaVersion = 1

// Coverage describes what a store holds for one ticker.
type Coverage struct {
	FirstDate     time.Time
	LastDate      time.Time
	SchemaVersion int
}

// BarStore is the local bar cache. Cached ranges carry coverage metadata
// so the loader can apply an explicit staleness policy instead of guessing.
type BarStore interface {
	// LoadBars bulk-loads cached bars for the tickers within [from, to].
	// Tickers with nothing cached are simply absent from the result.
	LoadBars(ctx context.Context, tickers []string, from, to time.Time) (map[string][]domain.Bar, error)

	// SaveBars upserts a ticker's bars and records the fetched range as
	// its coverage.
	SaveBars(ctx context.Context, ticker string, bars []domain.Bar, from, to time.Time) error

	// BarCoverage returns the stored coverage for ticker, or ok=false if
	// nothing is cached.
	BarCoverage(ctx context.Context, ticker string) (Coverage, bool, error)
}
