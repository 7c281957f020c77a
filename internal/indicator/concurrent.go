package indicator

// concurrent.go: worker pool for per-ticker series computation.
//
// Indicator derivation is embarrassingly parallel across tickers and runs
// once, before the sequential day loop starts. The resulting map is
// read-only for the rest of the simulation.

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/jinhyuklee/leadstock/internal/domain"
	"github.com/jinhyuklee/leadstock/internal/strategy"
)

// ComputeAll derives series for every ticker using a bounded worker pool.
// Tickers with no bars are skipped. If workers <= 0 it uses NumCPU.
func ComputeAll(ctx context.Context, data map[string][]domain.Bar, cfg strategy.Config, workers int) map[string]*domain.Series {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	type work struct {
		ticker string
		bars   []domain.Bar
	}

	workCh := make(chan work, len(data))
	resultCh := make(chan *domain.Series, len(data))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for w := range workCh {
				if ctx.Err() != nil {
					continue
				}
				resultCh <- Compute(w.ticker, w.bars, cfg)
			}
		}()
	}

	queued := 0
	for ticker, bars := range data {
		if len(bars) == 0 {
			continue
		}
		workCh <- work{ticker: ticker, bars: bars}
		queued++
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	series := make(map[string]*domain.Series, queued)
	for s := range resultCh {
		series[s.Ticker] = s
	}

	slog.Debug("indicator computation complete",
		"tickers", len(series),
		"workers", workers,
	)
	return series
}
