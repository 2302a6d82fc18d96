package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coverscan/coverscan/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "coverscan",
	Short: "Term insurance plan aggregator and advisor",
	Long:  "Scrapes Indian term insurance comparison sites, normalizes plans into a single store, and ranks them for a user profile via Gemini/Claude with a deterministic fallback.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
