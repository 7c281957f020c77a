package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jinhyuklee/leadstock/config"
)

var (
	flagConfig  string
	flagVerbose bool
	flagFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "leadstock",
	Short: "Leading-stock momentum strategy backtester",
	Long: `leadstock simulates the leading-stock momentum strategy day by day
over cached daily bars: multi-horizon momentum ranking, MA-reversal
entries, trend-break and slope-protection exits, ATR-scaled sizing.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "config/config.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "set log level to debug")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "", "log format: text|json (overrides config)")

	rootCmd.AddCommand(backtestCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(historyCmd)
}

// loadConfig loads the config file and applies logging flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagVerbose {
		cfg.Log.Level = "debug"
	}
	if flagFormat != "" {
		cfg.Log.Format = flagFormat
	}
	setupLogger(cfg.Log)
	return cfg, nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
