package dataprocessing

import (
	"bufio"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"datacli/internal/errors"
)

// Mode selects how an input file is decoded
type Mode string

const (
	ModeAuto  Mode = "auto"
	ModeCSV   Mode = "csv"
	ModeTSV   Mode = "tsv"
	ModeXLSX  Mode = "xlsx"
	ModeLines Mode = "lines"
)

// RowPolicy decides what happens to a row whose width differs from the header
type RowPolicy string

const (
	// RowPolicyStrict rejects the file with a parsing error.
	RowPolicyStrict RowPolicy = "strict"
	// RowPolicyPad pads short rows with nulls and truncates long ones.
	RowPolicyPad RowPolicy = "pad"
)

// DefaultNAValues are the cell texts read as missing by default
var DefaultNAValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None", "#N/A"}

// maxLineSize bounds a single text line
const maxLineSize = 16 * 1024 * 1024

// LoaderOptions configures a Loader
type LoaderOptions struct {
	// Delimiter overrides the field separator; zero picks it from the extension.
	Delimiter rune
	RowPolicy RowPolicy
	// NAValues are the cell texts read as missing. The empty string always is.
	NAValues []string
	// Sheet names the xlsx worksheet; empty means the first sheet.
	Sheet string
}

// DefaultLoaderOptions returns strict loading with the pandas-like NA set
func DefaultLoaderOptions() LoaderOptions {
	return LoaderOptions{
		RowPolicy: RowPolicyStrict,
		NAValues:  append([]string(nil), DefaultNAValues...),
	}
}

// Loader reads one file into a Dataset. It keeps no state between calls.
type Loader struct {
	opts LoaderOptions
	na   naSet
}

// NewLoader creates a loader
func NewLoader(opts LoaderOptions) *Loader {
	if opts.RowPolicy == "" {
		opts.RowPolicy = RowPolicyStrict
	}
	return &Loader{opts: opts, na: newNASet(opts.NAValues)}
}

// ResolveMode turns ModeAuto into a concrete mode using the file extension
func ResolveMode(path string, mode Mode) Mode {
	if mode != "" && mode != ModeAuto {
		return mode
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ModeCSV
	case ".tsv", ".tab":
		return ModeTSV
	case ".xlsx", ".xlsm":
		return ModeXLSX
	default:
		return ModeLines
	}
}

// SupportedExtensions lists the extensions picked up from a directory input
func SupportedExtensions(mode Mode) []string {
	switch mode {
	case ModeCSV:
		return []string{".csv"}
	case ModeTSV:
		return []string{".tsv", ".tab"}
	case ModeXLSX:
		return []string{".xlsx", ".xlsm"}
	case ModeLines:
		return []string{".txt", ".log"}
	default:
		return []string{".csv", ".tsv", ".tab", ".xlsx", ".xlsm", ".txt", ".log"}
	}
}

// Load reads path according to mode
func (l *Loader) Load(path string, mode Mode) (Dataset, error) {
	switch ResolveMode(path, mode) {
	case ModeLines:
		return l.LoadLines(path)
	case ModeXLSX:
		return l.loadWorkbook(path)
	case ModeTSV:
		return l.loadDelimited(path, '\t')
	default:
		return l.loadDelimited(path, ',')
	}
}

// LoadTable reads a delimited or xlsx file into a Table. The first row is
// the header; every later row becomes a record.
func (l *Loader) LoadTable(path string) (*Table, error) {
	switch ResolveMode(path, ModeAuto) {
	case ModeXLSX:
		return l.loadWorkbook(path)
	case ModeTSV:
		return l.loadDelimited(path, '\t')
	default:
		return l.loadDelimited(path, ',')
	}
}

// LoadLines reads a text file. Lines are trimmed; blank lines are dropped
// and counted in EmptyLines.
func (l *Loader) LoadLines(path string) (*Text, error) {
	file, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(decodeUTF8(file))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	text := &Text{Lines: []string{}}
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if !utf8.ValidString(line) {
			return nil, errors.NewParsingError(fmt.Sprintf("invalid UTF-8 on line %d", lineNo), nil).
				WithContext("path", path).
				WithContext("line", lineNo)
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			text.EmptyLines++
			continue
		}
		text.Lines = append(text.Lines, trimmed)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewParsingError("failed to read text file", err).WithContext("path", path)
	}

	return text, nil
}

func (l *Loader) loadDelimited(path string, defaultDelimiter rune) (*Table, error) {
	file, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(decodeUTF8(file))
	reader.Comma = defaultDelimiter
	if l.opts.Delimiter != 0 {
		reader.Comma = l.opts.Delimiter
	}
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewParsingError("file has no header row", nil).WithContext("path", path)
	}
	if err != nil {
		return nil, wrapCSVError(path, err)
	}
	columns, headerErr := normalizeHeader(header)
	if headerErr != nil {
		return nil, headerErr.WithContext("path", path)
	}

	var rows [][]Value
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wrapCSVError(path, err)
		}
		line, _ := reader.FieldPos(0)
		row, rowErr := l.buildRow(fields, len(columns), line)
		if rowErr != nil {
			return nil, rowErr.WithContext("path", path)
		}
		rows = append(rows, row)
	}

	return newLoadedTable(columns, rows, path)
}

// loadWorkbook reads the configured sheet of an xlsx workbook. excelize drops
// trailing empty cells, so short rows are always padded with nulls.
func (l *Loader) loadWorkbook(path string) (*Table, error) {
	if _, err := statInput(path); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewParsingError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheet := l.opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.NewParsingError("workbook has no sheets", nil).WithContext("path", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err).WithContext("path", path)
	}

	rows = dropBlankRows(rows)
	if len(rows) == 0 {
		return nil, errors.NewParsingError(fmt.Sprintf("sheet %q has no header row", sheet), nil).WithContext("path", path)
	}

	columns, headerErr := normalizeHeader(rows[0])
	if headerErr != nil {
		return nil, headerErr.WithContext("path", path)
	}

	values := make([][]Value, 0, len(rows)-1)
	for i, fields := range rows[1:] {
		if len(fields) > len(columns) && l.opts.RowPolicy != RowPolicyPad {
			return nil, errRowWidth(i+2, len(fields), len(columns)).WithContext("path", path)
		}
		values = append(values, l.padRow(fields, len(columns)))
	}

	return newLoadedTable(columns, values, path)
}

// buildRow converts one delimited row, applying the row policy
func (l *Loader) buildRow(fields []string, width, line int) ([]Value, *errors.AppError) {
	if len(fields) != width && l.opts.RowPolicy != RowPolicyPad {
		return nil, errRowWidth(line, len(fields), width)
	}
	for i, field := range fields {
		if !utf8.ValidString(field) {
			return nil, errors.NewParsingError(fmt.Sprintf("invalid UTF-8 on line %d, field %d", line, i+1), nil).
				WithContext("line", line)
		}
	}
	return l.padRow(fields, width), nil
}

// padRow pads with nulls or truncates fields to width and infers kinds
func (l *Loader) padRow(fields []string, width int) []Value {
	row := make([]Value, width)
	for i := range row {
		if i < len(fields) {
			row[i] = parseValue(fields[i], l.na)
		} else {
			row[i] = NewNull("")
		}
	}
	return row
}

func newLoadedTable(columns []string, rows [][]Value, path string) (*Table, error) {
	table, err := NewTable(columns, rows)
	if err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return nil, appErr.WithContext("path", path)
		}
		return nil, err
	}
	return table, nil
}

// normalizeHeader names blank columns "Unnamed: <i>" and rejects duplicates
func normalizeHeader(header []string) ([]string, *errors.AppError) {
	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		if !utf8.ValidString(name) {
			return nil, errors.NewParsingError("invalid UTF-8 in header", nil)
		}
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if seen[name] {
			return nil, errDuplicateColumn(header)
		}
		seen[name] = true
		columns[i] = name
	}
	return columns, nil
}

func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0:0]
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// openInput opens path for reading, mapping absence to a not found error
func openInput(path string) (*os.File, error) {
	if _, err := statInput(path); err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.NewNotFoundError("input file " + path)
		}
		return nil, errors.NewIOError("failed to open input file", err).WithContext("path", path)
	}
	return file, nil
}

func statInput(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.NewNotFoundError("input file " + path)
		}
		return nil, errors.NewIOError("failed to stat input file", err).WithContext("path", path)
	}
	if info.IsDir() {
		return nil, errors.NewNotFoundError("input file " + path + " (path is a directory)")
	}
	return info, nil
}

// decodeUTF8 strips a UTF-8 byte-order mark and transcodes UTF-16 input
// announced by a BOM; other bytes pass through for later validation.
func decodeUTF8(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(transform.Nop))
}

func wrapCSVError(path string, err error) *errors.AppError {
	appErr := errors.NewParsingError("malformed delimited content", err).WithContext("path", path)
	var parseErr *csv.ParseError
	if stderrors.As(err, &parseErr) {
		appErr.WithContext("line", parseErr.Line)
	}
	return appErr
}

func errRowWidth(line, got, want int) *errors.AppError {
	return errors.NewParsingError(
		fmt.Sprintf("row on line %d has %d fields, header has %d", line, got, want), nil).
		WithContext("line", line)
}

func errDuplicateColumn(columns []string) *errors.AppError {
	return errors.NewParsingError("duplicate column name in header", nil).
		WithContext("columns", columns)
}
