package bodymetrics

import (
	"fmt"
	"io"

	"github.com/2beens/gymplan/internal/sheets"

	"github.com/xuri/excelize/v2"
	"go.uber.org/multierr"
)

// ExportXLSX writes the history as a workbook with a single Bioimpedancia
// sheet. Missing values stay as empty cells.
func ExportXLSX(history History, w io.Writer) (err error) {
	f := excelize.NewFile()
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	if err := f.SetSheetName(f.GetSheetName(0), sheets.SheetBodyMetrics); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	setCell := func(col, row int, value any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheets.SheetBodyMetrics, cell, value)
	}

	for i, header := range []string{ColumnDate, ColumnWeight, ColumnMuscleMass} {
		if err := setCell(i+1, 1, header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, p := range history.Points {
		row := i + 2
		if err := setCell(1, row, p.Date.String()); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		if p.Weight.Valid {
			if err := setCell(2, row, p.Weight.Value); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
		}
		if p.MuscleMass.Valid {
			if err := setCell(3, row, p.MuscleMass.Value); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
