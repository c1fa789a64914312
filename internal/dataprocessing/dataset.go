package dataprocessing

import (
	"math"
	"strconv"
	"strings"
)

// Kind tags the type of a single cell value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInteger
	KindFloat
)

// String returns the lowercase kind name used in reports
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	default:
		return "null"
	}
}

// Value is one cell: Null, String, Integer or Float. The original text is
// kept so a dataset re-serializes unchanged.
type Value struct {
	kind Kind
	raw  string
	i    int64
	f    float64
}

// NewNull returns a missing value carrying its original text
func NewNull(raw string) Value { return Value{kind: KindNull, raw: raw} }

// NewString returns a string value
func NewString(s string) Value { return Value{kind: KindString, raw: s} }

// NewInteger returns an integer value rendered in base 10
func NewInteger(i int64) Value {
	return Value{kind: KindInteger, raw: strconv.FormatInt(i, 10), i: i}
}

// NewFloat returns a float value rendered in its shortest form
func NewFloat(f float64) Value {
	return Value{kind: KindFloat, raw: strconv.FormatFloat(f, 'g', -1, 64), f: f}
}

// Kind returns the cell kind
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the cell is missing
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsNumeric reports whether the cell holds an Integer or Float
func (v Value) IsNumeric() bool { return v.kind == KindInteger || v.kind == KindFloat }

// Raw returns the cell text exactly as it was read
func (v Value) Raw() string { return v.raw }

// String implements fmt.Stringer and returns the raw text
func (v Value) String() string { return v.raw }

// Int returns the integer payload
func (v Value) Int() (int64, bool) {
	return v.i, v.kind == KindInteger
}

// Float returns the numeric payload, widening integers
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInteger:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// naSet is the set of cell texts read as missing
type naSet map[string]struct{}

func newNASet(values []string) naSet {
	set := make(naSet, len(values)+1)
	set[""] = struct{}{}
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// parseValue infers the kind of a raw cell. Inference looks at the trimmed
// text; the raw text is preserved untouched.
func parseValue(raw string, na naSet) Value {
	s := strings.TrimSpace(raw)
	if _, missing := na[s]; missing {
		return Value{kind: KindNull, raw: raw}
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Value{kind: KindInteger, raw: raw, i: i}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return Value{kind: KindFloat, raw: raw, f: f}
	}
	return Value{kind: KindString, raw: raw}
}

// DatasetKind distinguishes tabular from line-oriented datasets
type DatasetKind string

const (
	DatasetTable DatasetKind = "table"
	DatasetLines DatasetKind = "lines"
)

// Dataset is the in-memory representation of one loaded input file
type Dataset interface {
	Kind() DatasetKind
}

// schema is shared by every record of a table
type schema struct {
	columns []string
	index   map[string]int
}

func newSchema(columns []string) *schema {
	s := &schema{columns: columns, index: make(map[string]int, len(columns))}
	for i, c := range columns {
		s.index[c] = i
	}
	return s
}

// Record is one row of a table, addressable by column name.
type Record struct {
	schema *schema
	values []Value
}

// Get returns the value of the named column
func (r Record) Get(column string) (Value, bool) {
	if r.schema == nil {
		return Value{}, false
	}
	i, ok := r.schema.index[column]
	if !ok {
		return Value{}, false
	}
	return r.values[i], true
}

// At returns the value at a column position
func (r Record) At(i int) Value { return r.values[i] }

// Len returns the number of values in the record
func (r Record) Len() int { return len(r.values) }

// Values returns a copy of the record's values in column order
func (r Record) Values() []Value {
	return append([]Value(nil), r.values...)
}

// Table is a tabular dataset: a header plus records sharing its column set.
type Table struct {
	schema  *schema
	records []Record
}

// NewTable builds a table from column names and rows of values. Every row
// must have exactly one value per column.
func NewTable(columns []string, rows [][]Value) (*Table, error) {
	s := newSchema(append([]string(nil), columns...))
	if len(s.index) != len(columns) {
		return nil, errDuplicateColumn(columns)
	}
	t := &Table{schema: s, records: make([]Record, 0, len(rows))}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, errRowWidth(i+1, len(row), len(columns))
		}
		t.records = append(t.records, Record{schema: s, values: append([]Value(nil), row...)})
	}
	return t, nil
}

// Kind implements Dataset
func (t *Table) Kind() DatasetKind { return DatasetTable }

// Columns returns a copy of the column names in header order
func (t *Table) Columns() []string {
	return append([]string(nil), t.schema.columns...)
}

// Records returns the records in file order
func (t *Table) Records() []Record { return t.records }

// Len returns the number of records
func (t *Table) Len() int { return len(t.records) }

// Column returns every value of the named column in record order
func (t *Table) Column(name string) ([]Value, bool) {
	i, ok := t.schema.index[name]
	if !ok {
		return nil, false
	}
	out := make([]Value, len(t.records))
	for r, rec := range t.records {
		out[r] = rec.values[i]
	}
	return out, true
}

// Text is a line-oriented dataset. Lines holds the trimmed non-empty lines;
// EmptyLines counts the lines that were blank and therefore dropped.
type Text struct {
	Lines      []string
	EmptyLines int
}

// Kind implements Dataset
func (t *Text) Kind() DatasetKind { return DatasetLines }
