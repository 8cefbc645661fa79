package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/MrSnakeDoc/addressbook/internal/domain"
)

// SheetName is the single worksheet of an xlsx export.
const SheetName = "Contacts"

// columnWidths are in characters, one per domain.ExportHeaders column.
var columnWidths = []float64{20, 30, 30, 25, 10, 40, 15}

// XLSX writes a spreadsheet with a header row and one row per contact.
type XLSX struct{}

func (XLSX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (XLSX) FileName() string { return "contacts.xlsx" }

func (XLSX) Write(w io.Writer, src Source) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", col, err)
		}
	}

	// multi-value cells are newline separated
	wrap, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return fmt.Errorf("failed to create cell style: %w", err)
	}

	if err := setRow(f, 1, domain.ExportHeaders); err != nil {
		return err
	}

	rows := src.ExportView()
	for i, r := range rows {
		if err := setRow(f, i+2, r.Values()); err != nil {
			return err
		}
	}

	if len(rows) > 0 {
		last, err := excelize.CoordinatesToCellName(len(columnWidths), len(rows)+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetName, "A2", last, wrap); err != nil {
			return fmt.Errorf("failed to style rows: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
