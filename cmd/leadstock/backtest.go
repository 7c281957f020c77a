package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jinhyuklee/leadstock/config"
	"github.com/jinhyuklee/leadstock/internal/adapters/marketdata"
	"github.com/jinhyuklee/leadstock/internal/adapters/report"
	"github.com/jinhyuklee/leadstock/internal/adapters/storage"
	"github.com/jinhyuklee/leadstock/internal/backtest"
	"github.com/jinhyuklee/leadstock/internal/dataload"
	"github.com/jinhyuklee/leadstock/internal/domain"
	"github.com/jinhyuklee/leadstock/internal/indicator"
	"github.com/jinhyuklee/leadstock/internal/ports"
)

var flagMaxTrades int

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run the simulation over the configured range",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		store, err := storage.NewSQLiteStore(cfg.Storage.DSN)
		if err != nil {
			return err
		}
		defer store.Close()

		names, series, failed, err := prepareSeries(ctx, cfg, store)
		if err != nil {
			return err
		}

		driver := backtest.NewDriver(cfg.BacktestParams(), cfg.Strategy, series, names, failed)
		result, err := driver.Run(ctx)
		if err != nil {
			return err
		}

		reporter := report.NewConsole(flagMaxTrades)
		if err := reporter.Report(ctx, result); err != nil {
			slog.Warn("report failed", "err", err)
		}

		params, err := json.Marshal(struct {
			Backtest config.BacktestConfig `json:"backtest"`
			Strategy any                   `json:"strategy"`
			Universe string                `json:"universe_mode"`
			Risk     config.RiskConfig     `json:"risk"`
		}{cfg.Backtest, cfg.Strategy, cfg.Universe.Mode, cfg.Risk})
		if err != nil {
			return fmt.Errorf("marshal params: %w", err)
		}
		if err := store.SaveSimulation(ctx, result, string(params)); err != nil {
			slog.Warn("persist failed", "err", err)
		} else {
			slog.Info("simulation stored", "id", result.ID)
		}
		return nil
	},
}

func init() {
	backtestCmd.Flags().IntVar(&flagMaxTrades, "max-trades", 0, "limit trade rows printed (0 = all)")
}

// prepareSeries resolves the universe, loads bar histories (warm-up
// included), and derives the indicator series.
func prepareSeries(ctx context.Context, cfg *config.Config, store ports.BarStore) (map[string]string, map[string]*domain.Series, []string, error) {
	names, err := fetchUniverse(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	tickers := make([]string, 0, len(names))
	for t := range names {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	warmStart, err := cfg.WarmupStart()
	if err != nil {
		return nil, nil, nil, err
	}
	end, err := cfg.EndDate()
	if err != nil {
		return nil, nil, nil, err
	}

	slog.Info("loading bars",
		"tickers", len(tickers),
		"from", warmStart.Format("2006-01-02"),
		"to", end.Format("2006-01-02"),
	)

	loader := dataload.New(store, marketdata.NewClient(cfg.Data.APIBase, cfg.Data.APIKey), dataload.Config{
		Workers:      cfg.Data.Workers,
		FetchTimeout: cfg.FetchTimeout(),
	})
	data, failed, err := loader.Preload(ctx, tickers, warmStart, end)
	if err != nil {
		return nil, nil, nil, err
	}

	start := time.Now()
	series := indicator.ComputeAll(ctx, data, cfg.Strategy, cfg.Data.Workers)
	slog.Info("indicators ready",
		"tickers", len(series),
		"failed", len(failed),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return names, series, failed, nil
}

func fetchUniverse(ctx context.Context, cfg *config.Config) (map[string]string, error) {
	var provider ports.UniverseProvider
	if cfg.Universe.Mode == config.UniverseModeETF {
		provider = marketdata.StaticUniverse(cfg.Universe.Whitelist)
	} else {
		client := marketdata.NewClient(cfg.Data.APIBase, cfg.Data.APIKey)
		provider = marketdata.NewRankedUniverse(client, cfg.Universe.KospiTop, cfg.Universe.KosdaqTop)
	}
	names, err := provider.FetchUniverse(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch universe: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("universe is empty, cannot run")
	}
	return names, nil
}
