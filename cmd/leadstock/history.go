package main

import (
	"github.com/spf13/cobra"

	"github.com/jinhyuklee/leadstock/internal/adapters/report"
	"github.com/jinhyuklee/leadstock/internal/adapters/storage"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored simulations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := storage.NewSQLiteStore(cfg.Storage.DSN)
		if err != nil {
			return err
		}
		defer store.Close()

		metas, err := store.ListSimulations(cmd.Context())
		if err != nil {
			return err
		}
		report.NewConsole(0).PrintHistory(metas)
		return nil
	},
}
