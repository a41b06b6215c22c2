package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/jackzampolin/batchlabel/internal/batch"
)

// ResultsXLSX returns an XLSX workbook (as bytes) with one sheet of
// reconciled rows and, when failures are present, a second sheet of
// content failures.
func ResultsXLSX(rows []batch.ReconciledRow, failures []batch.FailureRow) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Classifications"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range resultHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, i+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, row.CorrelationID)
		write(2, row.Quote)
		write(3, row.Label)
		if row.Confidence != nil {
			write(4, *row.Confidence)
		} else {
			write(4, "")
		}
		write(5, row.RepairNote)
	}

	_ = f.SetColWidth(sheet, "A", "A", 14) // custom_id
	_ = f.SetColWidth(sheet, "B", "B", 60) // text
	_ = f.SetColWidth(sheet, "C", "C", 22) // label
	_ = f.SetColWidth(sheet, "D", "D", 12) // confidence
	_ = f.SetColWidth(sheet, "E", "E", 28) // repair note

	if len(failures) > 0 {
		const failSheet = "Failures"
		if _, err := f.NewSheet(failSheet); err != nil {
			return nil, err
		}
		for i, h := range failureHeader {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			_ = f.SetCellValue(failSheet, cell, h)
		}
		for i, row := range failures {
			base := i + 2
			cell, _ := excelize.CoordinatesToCellName(1, base)
			_ = f.SetCellValue(failSheet, cell, row.CorrelationID)
			cell, _ = excelize.CoordinatesToCellName(2, base)
			_ = f.SetCellValue(failSheet, cell, row.Quote)
			cell, _ = excelize.CoordinatesToCellName(3, base)
			_ = f.SetCellValue(failSheet, cell, row.RawText)
		}
		_ = f.SetColWidth(failSheet, "A", "A", 14)
		_ = f.SetColWidth(failSheet, "B", "C", 60)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// ResultsFileName returns the export file name for the given format.
func ResultsFileName(format string) (string, error) {
	switch format {
	case "csv":
		return ClassificationsFileName, nil
	case "xlsx":
		return "classifications.xlsx", nil
	default:
		return "", fmt.Errorf("unknown export format: %s", strconv.Quote(format))
	}
}
