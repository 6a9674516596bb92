// Package cmd holds the novels command line.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kevinaaaquil/novels/config"
)

var (
	envFile string

	cfg    *config.Config
	logger *slog.Logger
)

func init() {
	RootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	RootCmd.AddCommand(serveCmd, indexesCmd)
}

var RootCmd = &cobra.Command{
	Use:           "novels",
	Short:         "Novel catalog and accounts API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// a missing .env is normal outside development
		_ = godotenv.Load(envFile)

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		logger = newLogger(cfg)
		slog.SetDefault(logger)
		return nil
	},
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(h).With(slog.String("app", "novels"), slog.String("env", cfg.Environment))
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
