package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
)

// SheetName is the single worksheet of the spreadsheet export.
const SheetName = "Customers"

// XLSX renders records as a one-sheet workbook.
func XLSX(records []domain.CustomerRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeRow(f, 1, xlsxHeader); err != nil {
		return nil, err
	}
	for i, row := range Rows(records) {
		if err := writeRow(f, i+2, row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}
