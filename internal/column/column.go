// Package column holds the in-memory form of shredded columns and the codec
// for their on-disk segments.
//
// A nested field is stored as one flat data array plus one flat size array
// per nesting level. Segments are raw little-endian arrays with no header;
// the item width and role come from the catalog.
package column

import (
	"encoding/binary"
	"errors"
	"math"
)

var (
	// ErrTruncated is returned when a segment's byte length is not a whole
	// number of items.
	ErrTruncated = errors.New("column segment truncated mid-item")

	// ErrItemBytes is returned for non-positive item widths.
	ErrItemBytes = errors.New("item width must be at least 1 byte")

	// ErrCountMismatch is returned when a data column's length does not
	// match the fully summed repeat counts of its size column.
	ErrCountMismatch = errors.New("data column length does not match size column total")
)

// SizeColumn is a flat array of repeat counts for one nesting level.
type SizeColumn []uint64

// Total returns the fully summed repeat count.
func (s SizeColumn) Total() uint64 {
	var total uint64
	for _, v := range s {
		total += v
	}
	return total
}

// DataColumn is a flat array of fixed-width leaf items, kept as raw bytes.
type DataColumn struct {
	Bytes     []byte
	ItemBytes int
}

// NewDataColumn wraps raw bytes as a column of the given item width.
func NewDataColumn(raw []byte, itemBytes int) (*DataColumn, error) {
	if itemBytes < 1 {
		return nil, ErrItemBytes
	}
	if len(raw)%itemBytes != 0 {
		return nil, ErrTruncated
	}
	return &DataColumn{Bytes: raw, ItemBytes: itemBytes}, nil
}

// Items returns the number of whole items in the column.
func (d *DataColumn) Items() int {
	return len(d.Bytes) / d.ItemBytes
}

// CheckAgainst verifies that the column holds exactly as many items as the
// fully summed repeat counts of the given size column.
func (d *DataColumn) CheckAgainst(sizes SizeColumn) error {
	if uint64(d.Items()) != sizes.Total() {
		return ErrCountMismatch
	}
	return nil
}

// Int64s decodes the column as little-endian signed 64-bit integers.
func (d *DataColumn) Int64s() ([]int64, error) {
	if d.ItemBytes != 8 {
		return nil, ErrItemBytes
	}
	out := make([]int64, d.Items())
	for i := range out {
		out[i] = int64(binary.LittleEndian.Uint64(d.Bytes[i*8:]))
	}
	return out, nil
}

// Float64s decodes the column as little-endian IEEE-754 binary64 values.
func (d *DataColumn) Float64s() ([]float64, error) {
	if d.ItemBytes != 8 {
		return nil, ErrItemBytes
	}
	out := make([]float64, d.Items())
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(d.Bytes[i*8:]))
	}
	return out, nil
}

// BytesFromInt64s encodes integers as a little-endian data segment.
func BytesFromInt64s(values []int64) []byte {
	out := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(out[i*8:], uint64(v))
	}
	return out
}

// BytesFromFloat64s encodes floats as a little-endian data segment.
func BytesFromFloat64s(values []float64) []byte {
	out := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(v))
	}
	return out
}
