// package formatter renders import reports to various formats (plain text, CSV, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/desertthunder/lbx/internal/importer"
	"github.com/desertthunder/lbx/internal/models"
)

const timeFormat = "02 Jan 2006 15:04"

// RenderDryRunReport converts a DryRunReport to the plain-text report shown
// after a dry-run.
func RenderDryRunReport(report *importer.DryRunReport) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Total valid listens: %d\n", report.Total))

	if report.Total == 0 && report.WouldFail == 0 {
		buf.WriteString("No listens found.\n")
		return buf.Bytes()
	}

	if report.Total > 0 {
		buf.WriteString(fmt.Sprintf("Date range: %s UTC  ->  %s UTC\n",
			report.Earliest.Format(timeFormat), report.Latest.Format(timeFormat)))
		buf.WriteString(fmt.Sprintf("Batches needed: %d (batch size: %d)\n", report.Batches, report.BatchSize))
	}

	if report.WouldFail > 0 {
		buf.WriteString(fmt.Sprintf("\nRows that would fail: %d\n", report.WouldFail))
		for _, rowErr := range report.RowErrors {
			buf.WriteString(fmt.Sprintf("  %v\n", rowErr))
		}
	}

	writePreview(&buf, "First", report.First)
	writePreview(&buf, "Last", report.Last)

	if report.WouldFail > 0 {
		buf.WriteString("\nFix the rows above before submitting (or submit with --skip-invalid).\n")
	} else {
		buf.WriteString("\nDry run complete. Run 'import submit' to import.\n")
	}

	return buf.Bytes()
}

func writePreview(buf *bytes.Buffer, label string, listens []models.Listen) {
	if len(listens) == 0 {
		return
	}
	buf.WriteString(fmt.Sprintf("\n--- %s %d listens ---\n", label, len(listens)))
	for _, listen := range listens {
		buf.WriteString(fmt.Sprintf("  %s\n", listen))
	}
}

// RenderRowErrorsCSV converts rejected rows to CSV with columns: Row, Error, Value
func RenderRowErrorsCSV(rowErrors []*importer.RowError) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Row", "Error", "Value"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, rowErr := range rowErrors {
		record := []string{
			strconv.Itoa(rowErr.Row),
			rowErr.Err.Error(),
			rowErr.Value,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// RenderSubmitSummary converts a SubmitResult to the plain-text summary shown
// after a submit run.
func RenderSubmitSummary(result *importer.SubmitResult) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Job: %s\n", result.JobID))
	buf.WriteString(fmt.Sprintf("Confirmed submitted: %d/%d listens\n", result.Confirmed, result.Total))
	buf.WriteString(fmt.Sprintf("Submitted this run: %d listens in %d batches\n", result.SubmittedNow, result.BatchesSubmitted))

	if result.AlreadyConfirmed > 0 {
		buf.WriteString(fmt.Sprintf("Previously confirmed: %d listens\n", result.AlreadyConfirmed))
	}
	if result.SkippedRows > 0 {
		buf.WriteString(fmt.Sprintf("Skipped invalid rows: %d\n", result.SkippedRows))
	}

	return buf.Bytes()
}

// MarshalJSON marshals any report value for --json output.
func MarshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
