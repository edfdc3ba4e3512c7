package query

import (
	"fmt"
	"strconv"
	"sync/atomic"
)

// Row exposes typed column accessors by projection index.
type Row interface {
	Int64(col int) int64
	Int(col int) int
	Float64(col int) float64
	String(col int) string
}

// ResultSet is an ordered, randomly positionable sequence of rows.
// A closed result set is empty and refuses to seek.
type ResultSet interface {
	Len() int
	Row(position int) (Row, bool)
	Close() error
}

// SliceResultSet is a ResultSet over rows materialized in memory.
type SliceResultSet struct {
	rows   [][]any
	closed atomic.Bool
}

// NewSliceResultSet wraps rows; each row holds values in projection order.
func NewSliceResultSet(rows [][]any) *SliceResultSet {
	return &SliceResultSet{rows: rows}
}

// Len returns the number of rows, or zero once closed.
func (rs *SliceResultSet) Len() int {
	if rs.closed.Load() {
		return 0
	}
	return len(rs.rows)
}

// Row seeks to position.
func (rs *SliceResultSet) Row(position int) (Row, bool) {
	if rs.closed.Load() || position < 0 || position >= len(rs.rows) {
		return nil, false
	}
	return sliceRow(rs.rows[position]), true
}

// Close releases the rows. Closing twice is harmless.
func (rs *SliceResultSet) Close() error {
	if rs.closed.CompareAndSwap(false, true) {
		rs.rows = nil
	}
	return nil
}

// Closed reports whether Close was called.
func (rs *SliceResultSet) Closed() bool {
	return rs.closed.Load()
}

type sliceRow []any

func (r sliceRow) value(col int) any {
	if col < 0 || col >= len(r) {
		return nil
	}
	return r[col]
}

func (r sliceRow) Int64(col int) int64 {
	switch v := r.value(col).(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	case []byte:
		n, _ := strconv.ParseInt(string(v), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

func (r sliceRow) Int(col int) int {
	return int(r.Int64(col))
}

func (r sliceRow) Float64(col int) float64 {
	switch v := r.value(col).(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case []byte:
		f, _ := strconv.ParseFloat(string(v), 64)
		return f
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

func (r sliceRow) String(col int) string {
	switch v := r.value(col).(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
