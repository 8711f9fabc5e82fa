package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"invoicedesk/internal/service"
)

var (
	ingestCommit      bool
	ingestConcurrency int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest FILE...",
	Short: "Extract invoice documents",
	Long: `Extract one or more invoice documents (PDF, JPG, PNG) through the
extraction backend. Without --commit the extracted drafts are printed for
review; with --commit each draft is validated and saved in argument order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestCommit, "commit", false, "commit each extracted draft")
	ingestCmd.Flags().IntVar(&ingestConcurrency, "concurrency", 0, "parallel extractions (default from config)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if ingestConcurrency > 0 {
		a.Config.Ingest.Concurrency = ingestConcurrency
	}

	docs := make([]service.Document, len(args))
	for i, path := range args {
		docs[i] = service.Document{
			Name: filepath.Base(path),
			Open: func() (io.ReadCloser, error) { return os.Open(path) },
		}
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, res := range a.NewBatchWorker(ingestCommit).Run(ctx, docs) {
		switch {
		case res.Err != nil:
			failed++
			fmt.Fprintf(out, "FAIL  %s: %v\n", res.Name, res.Err)
		case res.Invoice != nil:
			fmt.Fprintf(out, "SAVED %s: %s %s %.2f (%s)\n",
				res.Name, res.Invoice.ID, res.Invoice.ClientName, res.Invoice.Amount, res.Invoice.Status)
		default:
			d := res.Draft
			fmt.Fprintf(out, "DRAFT %s: invoice_id=%q client=%q amount=%.2f due=%s status=%s\n",
				res.Name, d.ExtractionID, d.ClientName, d.Amount, d.DueDate, d.Status)
			for _, f := range d.InvalidFields() {
				fmt.Fprintf(out, "      invalid %s: %q\n", f, d.Invalid[f])
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(docs))
	}
	return nil
}
