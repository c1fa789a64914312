package dataprocessing

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v2"

	"datacli/internal/errors"
)

// ReportFormat selects the encoding of the statistics file
type ReportFormat string

const (
	FormatJSON ReportFormat = "json"
	FormatYAML ReportFormat = "yaml"
)

// Fixed output file names
const (
	StatisticsBaseName = "statistics"
	ProcessedDataFile  = "processed_data.csv"
	ExcelReportFile    = "statistics.xlsx"
)

const (
	summarySheet = "summary"
	numericSheet = "numeric_stats"
)

// WriterOptions configures a Writer
type WriterOptions struct {
	Format ReportFormat
	// WriteProcessedData re-serializes a table next to its statistics.
	WriteProcessedData bool
	// ExcelReport additionally writes statistics.xlsx.
	ExcelReport bool
}

// DefaultWriterOptions returns JSON statistics plus the processed data copy
func DefaultWriterOptions() WriterOptions {
	return WriterOptions{Format: FormatJSON, WriteProcessedData: true}
}

// Writer persists reports and datasets into an output directory. Each file
// is written independently; a failure leaves earlier files in place.
type Writer struct {
	opts WriterOptions
}

// NewWriter creates a writer
func NewWriter(opts WriterOptions) *Writer {
	if opts.Format == "" {
		opts.Format = FormatJSON
	}
	return &Writer{opts: opts}
}

// StatisticsFile returns the statistics file name for the configured format
func (w *Writer) StatisticsFile() string {
	return StatisticsBaseName + "." + string(w.opts.Format)
}

// Write persists report and, for tables, the dataset. It returns the paths
// written so far, also on error.
func (w *Writer) Write(dir string, report Report, ds Dataset) ([]string, error) {
	switch r := report.(type) {
	case *TableReport:
		table, _ := ds.(*Table)
		return w.WriteTable(dir, r, table)
	case *LineReport:
		return w.WriteLines(dir, r)
	default:
		return nil, errors.NewInvalidStateError("no report to write")
	}
}

// WriteTable writes the table statistics and, when enabled and table is not
// nil, processed_data.csv.
func (w *Writer) WriteTable(dir string, report *TableReport, table *Table) ([]string, error) {
	var written []string

	path, err := w.writeStatistics(dir, report)
	if err != nil {
		return written, err
	}
	written = append(written, path)

	if w.opts.WriteProcessedData && table != nil {
		path := filepath.Join(dir, ProcessedDataFile)
		if err := writeTableCSV(path, table); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if w.opts.ExcelReport {
		path := filepath.Join(dir, ExcelReportFile)
		if err := writeTableWorkbook(path, report); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	return written, nil
}

// WriteLines writes the line statistics
func (w *Writer) WriteLines(dir string, report *LineReport) ([]string, error) {
	var written []string

	path, err := w.writeStatistics(dir, report)
	if err != nil {
		return written, err
	}
	written = append(written, path)

	if w.opts.ExcelReport {
		path := filepath.Join(dir, ExcelReportFile)
		if err := writeLinesWorkbook(path, report); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	return written, nil
}

func (w *Writer) writeStatistics(dir string, report Report) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.NewIOError("failed to create output directory", err).WithContext("path", dir)
	}

	var (
		data []byte
		err  error
	)
	switch w.opts.Format {
	case FormatYAML:
		data, err = yaml.Marshal(report)
	case FormatJSON:
		data, err = json.MarshalIndent(report, "", "  ")
		data = append(data, '\n')
	default:
		return "", errors.NewAppValidationError(fmt.Sprintf("unsupported report format %q", w.opts.Format))
	}
	if err != nil {
		// the report itself is unusable; nothing was written
		return "", errors.NewAppError(errors.ErrTypeInvalidState, "failed to encode statistics", err)
	}

	path := filepath.Join(dir, w.StatisticsFile())
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.NewIOError("failed to write statistics file", err).WithContext("path", path)
	}
	return path, nil
}

// writeTableCSV re-serializes the table from the raw cell text
func writeTableCSV(path string, table *Table) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.NewIOError("failed to create processed data file", err).WithContext("path", path)
	}

	buf := bufio.NewWriter(file)
	writer := csv.NewWriter(buf)

	writeErr := func() error {
		if err := writer.Write(table.Columns()); err != nil {
			return err
		}
		record := make([]string, len(table.schema.columns))
		for _, rec := range table.records {
			for i, v := range rec.values {
				record[i] = v.Raw()
			}
			// encoding/csv renders a lone empty field as a blank line, which
			// readers skip; quote it so the row survives a reload.
			if len(record) == 1 && record[0] == "" {
				writer.Flush()
				if _, err := buf.WriteString("\"\"\n"); err != nil {
					return err
				}
				continue
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return err
		}
		return buf.Flush()
	}()

	closeErr := file.Close()
	if writeErr != nil {
		return errors.NewIOError("failed to write processed data", writeErr).WithContext("path", path)
	}
	if closeErr != nil {
		return errors.NewIOError("failed to close processed data file", closeErr).WithContext("path", path)
	}
	return nil
}

func writeTableWorkbook(path string, report *TableReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return errors.NewIOError("failed to prepare workbook", err)
	}

	columns := make([]string, 0, len(report.MissingValues))
	for name := range report.MissingValues {
		columns = append(columns, name)
	}
	sort.Strings(columns)

	rows := [][]interface{}{
		{"metric", "value"},
		{"row_count", report.RowCount},
		{"column_count", report.ColumnCount},
		{},
		{"column", "type", "missing_values"},
	}
	for _, name := range columns {
		rows = append(rows, []interface{}{name, report.ColumnTypes[name], report.MissingValues[name]})
	}
	if err := setRows(f, summarySheet, rows); err != nil {
		return errors.NewIOError("failed to fill summary sheet", err)
	}

	if _, err := f.NewSheet(numericSheet); err != nil {
		return errors.NewIOError("failed to add numeric sheet", err)
	}
	numeric := [][]interface{}{{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}}
	for _, name := range columns {
		s, ok := report.NumericStats[name]
		if !ok {
			continue
		}
		var std interface{}
		if s.Std != nil {
			std = *s.Std
		}
		numeric = append(numeric, []interface{}{name, s.Count, s.Mean, std, s.Min, s.P25, s.P50, s.P75, s.Max})
	}
	if err := setRows(f, numericSheet, numeric); err != nil {
		return errors.NewIOError("failed to fill numeric sheet", err)
	}

	if err := f.SaveAs(path); err != nil {
		return errors.NewIOError("failed to save workbook", err).WithContext("path", path)
	}
	return nil
}

func writeLinesWorkbook(path string, report *LineReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return errors.NewIOError("failed to prepare workbook", err)
	}
	rows := [][]interface{}{
		{"metric", "value"},
		{"total_lines", report.TotalLines},
		{"empty_lines", report.EmptyLines},
		{"avg_length", report.AvgLength},
	}
	if err := setRows(f, summarySheet, rows); err != nil {
		return errors.NewIOError("failed to fill summary sheet", err)
	}

	if err := f.SaveAs(path); err != nil {
		return errors.NewIOError("failed to save workbook", err).WithContext("path", path)
	}
	return nil
}

func setRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
