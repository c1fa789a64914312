package dataprocessing

import (
	"unicode/utf8"

	"datacli/internal/errors"
)

// Report is the computed statistics for one dataset
type Report interface {
	Kind() DatasetKind
}

// NumericSummary describes one numeric column. Std is nil when fewer than
// two values exist.
type NumericSummary struct {
	Count int      `json:"count" yaml:"count"`
	Mean  float64  `json:"mean" yaml:"mean"`
	Std   *float64 `json:"std" yaml:"std"`
	Min   float64  `json:"min" yaml:"min"`
	P25   float64  `json:"25%" yaml:"25%"`
	P50   float64  `json:"50%" yaml:"50%"`
	P75   float64  `json:"75%" yaml:"75%"`
	Max   float64  `json:"max" yaml:"max"`
}

// TableReport holds the statistics of a tabular dataset
type TableReport struct {
	RowCount      int                       `json:"row_count" yaml:"row_count"`
	ColumnCount   int                       `json:"column_count" yaml:"column_count"`
	MissingValues map[string]int            `json:"missing_values" yaml:"missing_values"`
	NumericStats  map[string]NumericSummary `json:"numeric_stats" yaml:"numeric_stats"`
	ColumnTypes   map[string]string         `json:"column_types" yaml:"column_types"`
}

// Kind implements Report
func (r *TableReport) Kind() DatasetKind { return DatasetTable }

// LineReport holds the statistics of a line-oriented dataset
type LineReport struct {
	TotalLines int     `json:"total_lines" yaml:"total_lines"`
	EmptyLines int     `json:"empty_lines" yaml:"empty_lines"`
	AvgLength  float64 `json:"avg_length" yaml:"avg_length"`
}

// Kind implements Report
func (r *LineReport) Kind() DatasetKind { return DatasetLines }

// Analyze dispatches to the analyzer matching the dataset kind
func Analyze(ds Dataset) (Report, error) {
	switch d := ds.(type) {
	case *Table:
		if d == nil {
			break
		}
		return AnalyzeTable(d), nil
	case *Text:
		if d == nil {
			break
		}
		return AnalyzeLines(d), nil
	}
	return nil, errors.NewInvalidStateError("no dataset loaded")
}

// AnalyzeTable computes row/column counts, missing values per column and a
// numeric summary for every column whose non-null cells are all numeric.
func AnalyzeTable(t *Table) *TableReport {
	columns := t.schema.columns
	report := &TableReport{
		RowCount:      len(t.records),
		ColumnCount:   len(columns),
		MissingValues: make(map[string]int, len(columns)),
		NumericStats:  make(map[string]NumericSummary),
		ColumnTypes:   make(map[string]string, len(columns)),
	}

	for i, name := range columns {
		missing := 0
		numeric := true
		kinds := make(map[Kind]bool, 2)
		samples := make([]float64, 0, len(t.records))

		for _, rec := range t.records {
			v := rec.values[i]
			if v.IsNull() {
				missing++
				continue
			}
			kinds[v.Kind()] = true
			if f, ok := v.Float(); ok {
				samples = append(samples, f)
			} else {
				numeric = false
			}
		}

		report.MissingValues[name] = missing
		report.ColumnTypes[name] = columnType(kinds)
		if numeric && len(samples) > 0 {
			report.NumericStats[name] = summarize(samples)
		}
	}

	return report
}

// columnType names the dominant kind of a column
func columnType(kinds map[Kind]bool) string {
	switch {
	case len(kinds) == 0:
		return "empty"
	case kinds[KindString]:
		if len(kinds) > 1 {
			return "mixed"
		}
		return KindString.String()
	case kinds[KindFloat]:
		return KindFloat.String()
	default:
		return KindInteger.String()
	}
}

// AnalyzeLines counts lines and averages their length in characters. The
// average of an empty dataset is 0.
func AnalyzeLines(t *Text) *LineReport {
	report := &LineReport{
		TotalLines: len(t.Lines),
		EmptyLines: t.EmptyLines,
	}
	if len(t.Lines) == 0 {
		return report
	}

	total := 0
	for _, line := range t.Lines {
		total += utf8.RuneCountInString(line)
	}
	report.AvgLength = float64(total) / float64(len(t.Lines))
	return report
}
