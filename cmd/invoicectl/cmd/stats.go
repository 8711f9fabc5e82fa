package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display dashboard statistics",
	Long: `Display the dashboard snapshot: total revenue, processed invoices,
active clients, the share of paid invoices, daily revenue for the configured
window and the top clients by billed value.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	snap, err := a.Stats.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute stats: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Total revenue\t%.2f\n", snap.TotalRevenue)
	fmt.Fprintf(w, "Processed invoices\t%d\n", snap.ProcessedInvoices)
	fmt.Fprintf(w, "Active clients\t%d\n", snap.ActiveClients)
	fmt.Fprintf(w, "Processing rate\t%.1f%%\n", snap.ProcessingRate)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Date\tRevenue")
	for _, d := range snap.RevenuePerDay {
		fmt.Fprintf(w, "%s\t%.2f\n", d.Date, d.Total)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Client\tBilled")
	for _, c := range snap.TopClients {
		fmt.Fprintf(w, "%s\t%.2f\n", c.Name, c.TotalValue)
	}
	return w.Flush()
}
