// Package testutil provides shared fixtures for runtime tests: canonical
// jagged datasets with known exploded forms.
package testutil

import (
	"encoding/binary"
	"math"

	"github.com/diana-hep/femtocode/pkg/model"
)

// SizeSegment encodes repeat counts as a raw size segment.
func SizeSegment(counts ...uint64) []byte {
	out := make([]byte, len(counts)*8)
	for i, v := range counts {
		binary.LittleEndian.PutUint64(out[i*8:], v)
	}
	return out
}

// Int64Segment encodes integers as a raw data segment.
func Int64Segment(values ...int64) []byte {
	out := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(out[i*8:], uint64(v))
	}
	return out
}

// Float64Segment encodes floats as a raw data segment.
func Float64Segment(values ...float64) []byte {
	out := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(v))
	}
	return out
}

// NestedDataset is a three-record dataset with one doubly nested byte field
// governed by a single shared size column:
//
//	record 1: []           (outer repeat 0)
//	record 2: [['a']]      (outer 1, inner 1)
//	record 3: [[], [b c]]  (outer 2, inners 0 and 2)
//
// Its shape explosion is the size column itself and its data explosion is
// exactly "abc".
func NestedDataset() (*model.Dataset, map[string][]byte) {
	ds := &model.Dataset{
		Name:       "nested",
		NumEntries: 3,
		Columns: []model.Column{
			{Name: "xs@size", Role: model.RoleSize, ItemBytes: 8, Items: 6},
			{Name: "xs", Role: model.RoleData, Kind: model.KindRaw, ItemBytes: 1, SizeColumn: "xs@size", Items: 3},
		},
	}
	segments := map[string][]byte{
		model.SegmentKey("nested", "xs@size"): SizeSegment(0, 1, 1, 2, 0, 2),
		model.SegmentKey("nested", "xs"):      []byte("abc"),
	}
	return ds, segments
}

// PairDataset is a one-record dataset with two independent flat fields of
// four numeric items each, the shape that broadcasts to a full Cartesian
// product.
func PairDataset() (*model.Dataset, map[string][]byte) {
	ds := &model.Dataset{
		Name:       "pairs",
		NumEntries: 1,
		Columns: []model.Column{
			{Name: "xs@size", Role: model.RoleSize, ItemBytes: 8, Items: 1},
			{Name: "ys@size", Role: model.RoleSize, ItemBytes: 8, Items: 1},
			{Name: "xs", Role: model.RoleData, Kind: model.KindInt64, ItemBytes: 8, SizeColumn: "xs@size", Items: 4},
			{Name: "ys", Role: model.RoleData, Kind: model.KindFloat64, ItemBytes: 8, SizeColumn: "ys@size", Items: 4},
		},
	}
	segments := map[string][]byte{
		model.SegmentKey("pairs", "xs@size"): SizeSegment(4),
		model.SegmentKey("pairs", "ys@size"): SizeSegment(4),
		model.SegmentKey("pairs", "xs"):      Int64Segment(1, 2, 3, 4),
		model.SegmentKey("pairs", "ys"):      Float64Segment(0.5, 0.25, 0.125, 0.0625),
	}
	return ds, segments
}

// FlatDataset is a dataset of unnested numeric fields of equal length, the
// pre-aligned input of the elementwise kernels.
func FlatDataset() (*model.Dataset, map[string][]byte) {
	ds := &model.Dataset{
		Name:       "flat",
		NumEntries: 3,
		Columns: []model.Column{
			{Name: "a", Role: model.RoleData, Kind: model.KindInt64, ItemBytes: 8, Items: 3},
			{Name: "b", Role: model.RoleData, Kind: model.KindInt64, ItemBytes: 8, Items: 3},
			{Name: "c", Role: model.RoleData, Kind: model.KindFloat64, ItemBytes: 8, Items: 3},
		},
	}
	segments := map[string][]byte{
		model.SegmentKey("flat", "a"): Int64Segment(1, 2, 3),
		model.SegmentKey("flat", "b"): Int64Segment(10, 20, 30),
		model.SegmentKey("flat", "c"): Float64Segment(0.5, 0.25, 0.125),
	}
	return ds, segments
}
