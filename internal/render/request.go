// Package render turns prepared tables into chart and table artifacts.
//
// The chart stage only builds Requests and hands them to a WriteFunc. Writer is
// the default WriteFunc; tests substitute a Recorder.
package render

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/covid19trackerph/tracker/internal/period"
)

// Kind selects the chart type
type Kind string

const (
	KindLine      Kind = "line"
	KindArea      Kind = "area"
	KindBar       Kind = "bar"
	KindPie       Kind = "pie"
	KindHistogram Kind = "histogram"
	KindTable     Kind = "table"
)

// Marker is a vertical reference line at X = Value
type Marker struct {
	Value string
	Label string
}

// Options are the recognized chart options. The zero value is a plain chart.
type Options struct {
	// CategoryOrder fixes the order of color series and XOrder the order of
	// x categories. Values not listed follow in order of appearance.
	CategoryOrder []string
	XOrder        []string
	// SortByTotal orders x categories by their total over all series, ascending
	SortByTotal bool
	Horizontal  bool
	Markers     []Marker
	LogX        bool
	// XStart and XEnd bound the x axis; "" leaves it automatic
	XStart string
	XEnd   string
	XLabel string
	YLabel string
	// BinWidth is the histogram bin width, default 1
	BinWidth float64
}

// Request asks for one artifact. X, Y and Color name columns of Table;
// Color may be empty for a single series.
type Request struct {
	Kind    Kind
	Name    string // file name stem, unique per run
	Title   string
	Table   *Table
	X       string
	Y       string
	Color   string
	Options Options
}

// WriteFunc persists one artifact
type WriteFunc func(ctx context.Context, req Request) error

// Table is a column-named table of formatted cells
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable returns an empty table with the given columns
func NewTable(columns ...string) *Table {
	return &Table{Columns: columns}
}

// AddRow appends a row. Values are formatted with FormatValue; missing trailing
// values are empty.
func (t *Table) AddRow(values ...interface{}) {
	row := make([]string, len(t.Columns))
	for i, v := range values {
		if i >= len(row) {
			break
		}
		row[i] = FormatValue(v)
	}
	t.Rows = append(t.Rows, row)
}

// Column returns the index of a column, or -1
func (t *Table) Column(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Len is the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// FormatValue renders a cell. Null dates, nil pointers and NaN are empty.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.NewReplacer("\t", " ", "\n", " ").Replace(x)
	case time.Time:
		return period.Format(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case *int:
		if x == nil {
			return ""
		}
		return strconv.Itoa(*x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
