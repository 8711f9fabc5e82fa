package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/export"
)

var (
	exportFormat string
	exportOut    string
	exportStatus string
	exportQuery  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export invoices to CSV or XLSX",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", export.FormatCSV, "csv or xlsx")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default: generated name; - for stdout)")
	exportCmd.Flags().StringVar(&exportStatus, "status", "", "only invoices with this status")
	exportCmd.Flags().StringVarP(&exportQuery, "query", "q", "", "search text")
}

func runExport(cmd *cobra.Command, _ []string) error {
	filter := domain.InvoiceFilter{Query: exportQuery}
	if exportStatus != "" {
		status, ok := domain.ParseInvoiceStatus(exportStatus)
		if !ok {
			return fmt.Errorf("invalid status %q", exportStatus)
		}
		filter.Status = status
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if exportOut == "-" {
		return a.Invoices.Export(ctx, exportFormat, filter, cmd.OutOrStdout())
	}

	path := exportOut
	if path == "" {
		path = export.BuildFilename("invoices", exportFormat, time.Now())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := a.Invoices.Export(ctx, exportFormat, filter, f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
	return nil
}
