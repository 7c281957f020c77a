package main

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jinhyuklee/leadstock/internal/adapters/storage"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Warm the local bar cache without running a simulation",
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

		_, series, failed, err := prepareSeries(ctx, cfg, store)
		if err != nil {
			return err
		}

		slog.Info("cache warm", "tickers", len(series), "failed", len(failed))
		return nil
	},
}
