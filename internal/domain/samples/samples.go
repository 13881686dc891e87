// Package samples holds posterior draw tables produced by ensemble sampling.
package samples

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Sentinel kinds for sample table errors.
var (
	ErrUnknownColumn = errors.New("unknown sample column")
	ErrShape         = errors.New("sample table shape mismatch")
)

// Table is an immutable table of posterior draws: one row per sampler
// iteration x walker, one column per parameter name.
type Table struct {
	names []string
	index map[string]int
	cols  [][]float64
	nrows int
}

// New builds a Table from named columns of equal length.
func New(names []string, cols [][]float64) (*Table, error) {
	if len(names) != len(cols) {
		return nil, fmt.Errorf("%w: %d names, %d columns", ErrShape, len(names), len(cols))
	}
	nrows := 0
	if len(cols) > 0 {
		nrows = len(cols[0])
	}
	index := make(map[string]int, len(names))
	for i, name := range names {
		if len(cols[i]) != nrows {
			return nil, fmt.Errorf("%w: column %s has %d rows, want %d", ErrShape, name, len(cols[i]), nrows)
		}
		index[name] = i
	}
	return &Table{names: names, index: index, cols: cols, nrows: nrows}, nil
}

// FromFlatChain reshapes a flattened draw history (one row per draw, one
// entry per parameter) into a Table.
func FromFlatChain(names []string, chain [][]float64) (*Table, error) {
	cols := make([][]float64, len(names))
	for i := range cols {
		cols[i] = make([]float64, len(chain))
	}
	for r, row := range chain {
		if len(row) != len(names) {
			return nil, fmt.Errorf("%w: draw %d has %d entries, want %d", ErrShape, r, len(row), len(names))
		}
		for c, v := range row {
			cols[c][r] = v
		}
	}
	return New(names, cols)
}

// Names returns the column names in order.
func (t *Table) Names() []string { return append([]string(nil), t.names...) }

// Len returns the number of draws.
func (t *Table) Len() int { return t.nrows }

// Column returns a copy of the named column.
func (t *Table) Column(name string) ([]float64, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	return append([]float64(nil), t.cols[i]...), nil
}

// Row returns a copy of draw i.
func (t *Table) Row(i int) []float64 {
	row := make([]float64, len(t.cols))
	for c := range t.cols {
		row[c] = t.cols[c][i]
	}
	return row
}

// Mean returns the mean of the named column.
func (t *Table) Mean(name string) (float64, error) {
	col, err := t.Column(name)
	if err != nil {
		return 0, err
	}
	return stat.Mean(col, nil), nil
}

// StdDev returns the sample standard deviation of the named column.
func (t *Table) StdDev(name string) (float64, error) {
	col, err := t.Column(name)
	if err != nil {
		return 0, err
	}
	return stat.StdDev(col, nil), nil
}

// Quantile returns the q-quantile of the named column, 0 <= q <= 1.
func (t *Table) Quantile(name string, q float64) (float64, error) {
	col, err := t.Column(name)
	if err != nil {
		return 0, err
	}
	sort.Float64s(col)
	return stat.Quantile(q, stat.Empirical, col, nil), nil
}

// Equal reports whether two tables have identical names and values.
func (t *Table) Equal(o *Table) bool {
	if o == nil || t.nrows != o.nrows || len(t.names) != len(o.names) {
		return false
	}
	for i, name := range t.names {
		if o.names[i] != name {
			return false
		}
		for r := 0; r < t.nrows; r++ {
			if t.cols[i][r] != o.cols[i][r] {
				return false
			}
		}
	}
	return true
}
