// Package export renders invoice listings as CSV or XLSX files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"invoicedesk/internal/domain"
)

// Supported formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

var columns = []string{
	"Invoice ID",
	"Invoice Number",
	"Client ID",
	"Client Name",
	"Client Email",
	"Issue Date",
	"Due Date",
	"Amount",
	"Status",
	"Created At",
}

// Columns returns the header row shared by every format.
func Columns() []string {
	return append([]string(nil), columns...)
}

// CSVWriter wraps csv.Writer for exporting invoices.
type CSVWriter struct {
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{csv: csv.NewWriter(w)}
}

func (w *CSVWriter) WriteHeader() error {
	return w.csv.Write(columns)
}

func (w *CSVWriter) WriteInvoices(invoices []domain.Invoice) error {
	for i := range invoices {
		if err := w.csv.Write(invoiceToRow(&invoices[i])); err != nil {
			return err
		}
	}
	return nil
}

func (w *CSVWriter) Flush() {
	w.csv.Flush()
}

func (w *CSVWriter) Error() error {
	return w.csv.Error()
}

// WriteCSV writes a BOM, the header and every invoice to out.
func WriteCSV(out io.Writer, invoices []domain.Invoice) error {
	if _, err := out.Write(BOM); err != nil {
		return fmt.Errorf("export.WriteCSV: %w", err)
	}
	w := NewCSVWriter(out)
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("export.WriteCSV: %w", err)
	}
	if err := w.WriteInvoices(invoices); err != nil {
		return fmt.Errorf("export.WriteCSV: %w", err)
	}
	w.Flush()
	return w.Error()
}

func invoiceToRow(inv *domain.Invoice) []string {
	created := ""
	if !inv.CreatedAt.IsZero() {
		created = inv.CreatedAt.UTC().Format(time.RFC3339)
	}
	return []string{
		inv.ID,
		inv.InvoiceNumber,
		inv.ClientID,
		inv.ClientName,
		inv.ClientEmail,
		inv.IssueDate,
		inv.DueDate,
		formatMoney(inv.Amount),
		string(inv.Status),
		created,
	}
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename replaces characters other than letters, digits, - and _
// with _, collapses runs of _, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {name}_{YYYY-MM-DD}.{format} for Content-Disposition.
func BuildFilename(name, format string, now time.Time) string {
	sanitized := SanitizeFilename(name)
	if sanitized == "" {
		sanitized = "invoices"
	}
	return fmt.Sprintf("%s_%s.%s", sanitized, now.Format(domain.DateLayout), format)
}

// ContentType returns the MIME type for format.
func ContentType(format string) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Write renders invoices in the named format.
func Write(out io.Writer, format string, invoices []domain.Invoice) error {
	switch strings.ToLower(format) {
	case "", FormatCSV:
		return WriteCSV(out, invoices)
	case FormatXLSX:
		return WriteXLSX(out, invoices)
	}
	return fmt.Errorf("%w: %q", domain.ErrUnsupportedExport, format)
}
