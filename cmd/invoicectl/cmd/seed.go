package cmd

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"invoicedesk/internal/config"
	"invoicedesk/internal/service"
)

var (
	seedCount int
	seedValue int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create demo invoices",
	Long: `Create demo invoices for the demo clients through the configured
persistence store. Intended for local and postgres modes.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", 12, "number of invoices to create")
	seedCmd.Flags().Int64Var(&seedValue, "seed", 0, "random seed (default: current time)")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if a.Config.Persistence.Mode == config.ModeRemote {
		log.Warn().Msg("seeding the remote backend")
	}
	if seedValue == 0 {
		seedValue = time.Now().UnixNano()
	}

	inputs := service.DemoInvoices(seedCount, rand.New(rand.NewSource(seedValue)), time.Now())
	for i := range inputs {
		if _, err := a.Invoices.Create(ctx, &inputs[i]); err != nil {
			return fmt.Errorf("failed to create %s: %w", inputs[i].InvoiceNumber, err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %d invoices for %d clients\n", len(inputs), len(a.Repo.Clients()))
	return nil
}
