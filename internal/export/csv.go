// Package export renders reconciled batch results to CSV and XLSX files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jackzampolin/batchlabel/internal/batch"
)

const (
	// ClassificationsFileName is the default name for reconciled result exports.
	ClassificationsFileName = "classifications.csv"

	// ErrorsFileName is the default name for content failure exports.
	ErrorsFileName = "errors.csv"
)

var resultHeader = []string{"custom_id", "text", "label", "confidence", "repair_note"}

var failureHeader = []string{"custom_id", "text", "raw_output"}

// WriteResultsCSV writes reconciled rows as CSV.
func WriteResultsCSV(w io.Writer, rows []batch.ReconciledRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(resultHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		confidence := ""
		if row.Confidence != nil {
			confidence = strconv.FormatFloat(*row.Confidence, 'f', -1, 64)
		}
		record := []string{row.CorrelationID, row.Quote, row.Label, confidence, row.RepairNote}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %s: %w", row.CorrelationID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFailuresCSV writes content failures as CSV.
func WriteFailuresCSV(w io.Writer, rows []batch.FailureRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(failureHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		record := []string{row.CorrelationID, row.Quote, row.RawText}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %s: %w", row.CorrelationID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
