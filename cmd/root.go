package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/srs-capital/fii-screener/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "fii-screener",
	Short: "Score real-estate fund reports against the Método SRS FI",
	Long:  "Extracts financial metrics from uploaded fund reports (PDF), applies the four SRS FI screening criteria, and renders the verdict as JSON or a printable report.",
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
