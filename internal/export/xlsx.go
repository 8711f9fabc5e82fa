package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"invoicedesk/internal/domain"
)

const sheetName = "Invoices"

// WriteXLSX writes a single-sheet workbook. Amounts are stored as numbers.
func WriteXLSX(out io.Writer, invoices []domain.Invoice) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}

	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	for i := range invoices {
		row := i + 2
		values := invoiceToRow(&invoices[i])
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if columns[col] == "Amount" {
				_ = f.SetCellValue(sheetName, cell, invoices[i].Amount)
				continue
			}
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "C", 40)
	_ = f.SetColWidth(sheetName, "D", "E", 28)
	_ = f.SetColWidth(sheetName, "F", "I", 14)
	_ = f.SetColWidth(sheetName, "J", "J", 24)

	if err := f.Write(out); err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}
	return nil
}
