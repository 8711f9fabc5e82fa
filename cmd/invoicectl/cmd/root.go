// Package cmd provides the invoicectl commands.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"invoicedesk/internal/app"
	"invoicedesk/internal/config"
	"invoicedesk/internal/logger"
)

var (
	cfgFile string
	debug   bool
	mode    string
)

var rootCmd = &cobra.Command{
	Use:   "invoicectl",
	Short: "Ingest, reconcile and report on invoices",
	Long: `invoicectl drives the invoicedesk pipeline from the command line.

It uses the same configuration as the server (INVOICEDESK_* environment
variables, .env, or a config file) and the same persistence store.

Example:
  invoicectl ingest --commit scans/*.pdf
  invoicectl seed --count 25
  invoicectl stats
  invoicectl export --format xlsx --out invoices.xlsx`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			if err := os.Setenv("INVOICEDESK_CONFIG", cfgFile); err != nil {
				return err
			}
		}
		if mode != "" {
			if err := os.Setenv("INVOICEDESK_PERSISTENCE_MODE", mode); err != nil {
				return err
			}
		}
		if debug {
			if err := os.Setenv("INVOICEDESK_LOG_LEVEL", "debug"); err != nil {
				return err
			}
		}
		return nil
	},
}

// Execute runs the root command under ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: environment and .env)")
	rootCmd.PersistentFlags().StringVar(&mode, "mode", "", "persistence mode override (remote, local, postgres)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(exportCmd)
}

// openApp loads configuration, wires the services and syncs the repository.
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Setup(cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Sync(ctx)
	log.Debug().Str("mode", cfg.Persistence.Mode).Msg("invoicectl ready")
	return a, nil
}
