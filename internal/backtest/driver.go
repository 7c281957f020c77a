package backtest

// driver.go: the daily simulation cycle. One state per trading day,
// executed strictly in order: universe → sells → buys → mark-to-market.
// Days cannot be parallelized; each day's decisions depend on the prior
// day's ledger state.

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jinhyuklee/leadstock/internal/domain"
	"github.com/jinhyuklee/leadstock/internal/strategy"
)

// Driver orchestrates a full simulation run over precomputed series.
type Driver struct {
	cfg      Config
	eval     *strategy.Evaluator
	selector *Selector
	sizer    *Sizer
	series   map[string]*domain.Series
	names    map[string]string // ticker → display name, for the trade log
	failed   []string
}

// NewDriver creates a Driver. series must be fully computed and is treated
// as read-only for the lifetime of the run. names may be nil; failed lists
// tickers dropped during data loading, carried through to the result.
func NewDriver(cfg Config, strat strategy.Config, series map[string]*domain.Series, names map[string]string, failed []string) *Driver {
	return &Driver{
		cfg:      cfg,
		eval:     strategy.NewEvaluator(strat),
		selector: NewSelector(cfg.LiquidityFloor, cfg.PoolSize),
		sizer:    NewSizer(cfg),
		series:   series,
		names:    names,
		failed:   failed,
	}
}

// Run executes the simulation and returns its result. Fatal preconditions
// (no tickers with data, or zero trading days in the configured range)
// abort with an error and no partial result.
func (d *Driver) Run(ctx context.Context) (*domain.SimulationResult, error) {
	if len(d.series) == 0 {
		return nil, fmt.Errorf("backtest: no tickers with usable data, cannot run")
	}
	days := d.tradingDays()
	if len(days) == 0 {
		return nil, fmt.Errorf("backtest: no trading days between %s and %s",
			d.cfg.StartDate.Format("2006-01-02"), d.cfg.EndDate.Format("2006-01-02"))
	}

	slog.Info("backtest starting",
		"tickers", len(d.series),
		"days", len(days),
		"initial_capital", d.cfg.InitialCapital,
	)

	ledger := NewLedger(d.cfg.InitialCapital, d.cfg.BuyFeeRate, d.cfg.SellFeeRate)
	equity := make([]domain.EquityPoint, 0, len(days))

	for _, day := range days {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("backtest: aborted at %s: %w", day.Format("2006-01-02"), err)
		}

		snapshot := d.selector.Snapshot(day, d.series)
		d.checkSells(ledger, day)
		d.checkBuys(ledger, day, snapshot)

		equity = append(equity, domain.EquityPoint{
			Date:       day,
			TotalValue: ledger.MarkToMarket(day, d.series),
		})
	}

	result := &domain.SimulationResult{
		ID:             uuid.New().String(),
		StartDate:      days[0],
		EndDate:        days[len(days)-1],
		InitialCapital: d.cfg.InitialCapital,
		FinalCash:      ledger.Cash(),
		Equity:         equity,
		Trades:         ledger.Trades(),
		Positions:      ledger.Positions(),
		FailedTickers:  d.failed,
	}

	slog.Info("backtest complete",
		"trades", len(result.Trades),
		"open_positions", len(result.Positions),
		"final_value", result.FinalValue(),
	)
	return result, nil
}

// checkSells evaluates the sell signal for every held position over a
// stable pre-iteration snapshot of holdings. Evaluation uses the latest
// bar at or before the day, so a halted ticker still exits when it prints
// again.
func (d *Driver) checkSells(ledger *Ledger, day time.Time) {
	for _, ticker := range ledger.HeldTickers() {
		s, ok := d.series[ticker]
		if !ok {
			continue
		}
		i, ok := s.AsOf(day)
		if !ok {
			continue
		}
		if sell, reason := d.eval.Sell(s, i); sell {
			ledger.FillSell(ticker, d.name(ticker), day, s.Close[i], reason)
		}
	}
}

// checkBuys walks the day's target pool in rank order while position slots
// remain, buying each not-already-held ticker whose buy signal fires and
// whose sized quantity is positive.
func (d *Driver) checkBuys(ledger *Ledger, day time.Time, snapshot domain.UniverseSnapshot) {
	for _, cand := range snapshot.Candidates {
		if ledger.PositionCount() >= d.cfg.MaxPositions {
			return
		}
		if ledger.Holds(cand.Ticker) {
			continue
		}
		s := d.series[cand.Ticker]
		i, ok := s.At(day)
		if !ok {
			continue
		}
		if !d.eval.Buy(s, i) {
			continue
		}
		qty, atr := d.sizer.Quantity(s, i, ledger.TotalEquityAtCost(), ledger.Cash())
		if qty <= 0 {
			continue
		}
		note := fmt.Sprintf("rs %.1f, atr %.1f", cand.Score, atr)
		if err := ledger.FillBuy(cand.Ticker, d.name(cand.Ticker), day, s.Close[i], qty, note); err != nil {
			slog.Warn("buy fill rejected", "ticker", cand.Ticker, "err", err)
		}
	}
}

// tradingDays returns the sorted union of all tickers' bar dates within
// the configured range. Using the union rather than a single ticker's
// calendar keeps late-listed tickers from erasing earlier history.
func (d *Driver) tradingDays() []time.Time {
	seen := make(map[int64]time.Time)
	startKey := domain.DayKey(d.cfg.StartDate)
	endKey := domain.DayKey(d.cfg.EndDate)
	for _, s := range d.series {
		for _, dt := range s.Dates {
			key := domain.DayKey(dt)
			if key < startKey || key > endKey {
				continue
			}
			if _, ok := seen[key]; !ok {
				seen[key] = dt
			}
		}
	}
	days := make([]time.Time, 0, len(seen))
	for _, dt := range seen {
		days = append(days, dt)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

func (d *Driver) name(ticker string) string {
	if n, ok := d.names[ticker]; ok && n != "" {
		return n
	}
	return ticker
}
