package dataload

// loader.go: combines the local bar cache with the remote provider.
//
// Flow: bulk-read the cache, decide per ticker whether the cached range
// covers the requested warm-up+simulation window (explicit staleness
// policy), then fetch the stale/missing tickers with a bounded worker
// pool under an overall deadline. Fetch failures are isolated: the loader
// returns whatever it has plus the list of tickers it had to drop.

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/jinhyuklee/leadstock/internal/domain"
	"github.com/jinhyuklee/leadstock/internal/ports"
)

// Coverage slack: a cached range still counts as covering the window if
// it starts within a week after the requested start (listing gaps) and
// ends within five days before the requested end (weekends, holidays).
const (
	headSlack = 7 * 24 * time.Hour
	tailSlack = 5 * 24 * time.Hour
)

// Config controls fetch parallelism and the overall deadline.
type Config struct {
	Workers      int
	FetchTimeout time.Duration
}

// Loader loads bar histories for a universe of tickers.
type Loader struct {
	store    ports.BarStore
	provider ports.BarProvider
	cfg      Config
}

// New creates a Loader. store may be nil, in which case every ticker is
// fetched from the provider and nothing is cached.
func New(store ports.BarStore, provider ports.BarProvider, cfg Config) *Loader {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU() * 2
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 5 * time.Minute
	}
	return &Loader{store: store, provider: provider, cfg: cfg}
}

// Preload returns bars for as many of the tickers as possible over
// [from, to], plus the sorted list of tickers that could not be loaded.
// On deadline it proceeds with whatever data is available rather than
// aborting the run.
func (l *Loader) Preload(ctx context.Context, tickers []string, from, to time.Time) (map[string][]domain.Bar, []string, error) {
	data := make(map[string][]domain.Bar, len(tickers))
	var missing []string

	if l.store != nil {
		cached, err := l.store.LoadBars(ctx, tickers, from, to)
		if err != nil {
			return nil, nil, err
		}
		for _, ticker := range tickers {
			bars := cached[ticker]
			if len(bars) > 0 && l.covers(ctx, ticker, from, to) {
				data[ticker] = bars
				continue
			}
			missing = append(missing, ticker)
		}
	} else {
		missing = append(missing, tickers...)
	}

	if len(missing) == 0 {
		return data, nil, nil
	}

	slog.Info("fetching bars for stale or missing tickers",
		"missing", len(missing),
		"cached", len(data),
		"workers", l.cfg.Workers,
	)

	fetched, failed := l.fetchAll(ctx, missing, from, to)
	for ticker, bars := range fetched {
		data[ticker] = bars
	}
	sort.Strings(failed)
	return data, failed, nil
}

// covers reports whether the stored coverage of ticker spans [from, to]
// within the slack windows and matches the current schema version.
func (l *Loader) covers(ctx context.Context, ticker string, from, to time.Time) bool {
	cov, ok, err := l.store.BarCoverage(ctx, ticker)
	if err != nil || !ok {
		return false
	}
	if cov.SchemaVersion != ports.BarSchemaVersion {
		return false
	}
	if cov.FirstDate.After(from.Add(headSlack)) {
		return false
	}
	if cov.LastDate.Before(to.Add(-tailSlack)) {
		return false
	}
	return true
}

// fetchAll downloads bars for the given tickers with a bounded worker
// pool under the configured overall deadline. Per-ticker failures (and
// empty responses) land in the failed list; the run continues without
// those tickers.
func (l *Loader) fetchAll(parent context.Context, tickers []string, from, to time.Time) (map[string][]domain.Bar, []string) {
	ctx, cancel := context.WithTimeout(parent, l.cfg.FetchTimeout)
	defer cancel()

	type result struct {
		ticker string
		bars   []domain.Bar
		err    error
	}

	workCh := make(chan string, len(tickers))
	resultCh := make(chan result, len(tickers))

	var wg sync.WaitGroup
	for i := 0; i < l.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ticker := range workCh {
				if err := ctx.Err(); err != nil {
					resultCh <- result{ticker: ticker, err: err}
					continue
				}
				bars, err := l.provider.FetchDailyBars(ctx, ticker, from, to)
				resultCh <- result{ticker: ticker, bars: bars, err: err}
			}
		}()
	}

	for _, t := range tickers {
		workCh <- t
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	fetched := make(map[string][]domain.Bar)
	var failed []string
	for r := range resultCh {
		if r.err != nil || len(r.bars) == 0 {
			if r.err != nil {
				slog.Warn("bar fetch failed, dropping ticker", "ticker", r.ticker, "err", r.err)
			}
			failed = append(failed, r.ticker)
			continue
		}
		fetched[r.ticker] = r.bars
		if l.store != nil {
			if err := l.store.SaveBars(parent, r.ticker, r.bars, from, to); err != nil {
				slog.Warn("bar cache write failed", "ticker", r.ticker, "err", err)
			}
		}
	}
	return fetched, failed
}
