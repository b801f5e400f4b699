package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// explodeCase is one shape scenario shared by the size, data, and iterative
// kernel tests.
type explodeCase struct {
	name          string
	numEntries    int
	levelToColumn []int
	sizeColumns   [][]uint64
	wantSizes     []uint64
	wantLeaves    int
}

func explodeCases() []explodeCase {
	return []explodeCase{
		{
			// Three records of a doubly nested list sharing one size column;
			// the empty outer list consumes nothing below it.
			name:          "shared column two levels",
			numEntries:    3,
			levelToColumn: []int{0, 0},
			sizeColumns:   [][]uint64{{0, 1, 1, 2, 0, 2}},
			wantSizes:     []uint64{0, 1, 1, 2, 0, 2},
			wantLeaves:    3,
		},
		{
			// Cartesian pair of two independent flat lists: the inner column
			// is re-read from its checkpoint for every outer sibling.
			name:          "cartesian pair",
			numEntries:    1,
			levelToColumn: []int{0, 1},
			sizeColumns:   [][]uint64{{4}, {4}},
			wantSizes:     []uint64{4, 4, 4, 4, 4},
			wantLeaves:    16,
		},
		{
			// Nested list crossed with a flat list.
			name:          "nested cross flat",
			numEntries:    1,
			levelToColumn: []int{0, 0, 1},
			sizeColumns:   [][]uint64{{3, 2, 2, 2}, {4}},
			wantSizes:     []uint64{3, 2, 4, 4, 2, 4, 4, 2, 4, 4},
			wantLeaves:    24,
		},
		{
			// A column controlling non-adjacent levels is consumed serially
			// across the whole traversal, not per branch.
			name:          "interleaved column",
			numEntries:    1,
			levelToColumn: []int{0, 1, 0},
			sizeColumns:   [][]uint64{{3, 2, 2, 2}, {4}},
			wantSizes:     []uint64{3, 4, 2, 2, 2, 2, 4, 2, 2, 2, 2, 4, 2, 2, 2, 2},
			wantLeaves:    24,
		},
	}
}

func TestExplodeSize(t *testing.T) {
	for _, tc := range explodeCases() {
		t.Run(tc.name, func(t *testing.T) {
			dry, err := ExplodeSize(tc.numEntries, tc.levelToColumn, tc.sizeColumns, nil)
			require.NoError(t, err)
			assert.Equal(t, len(tc.wantSizes), dry)

			out := make([]uint64, dry)
			filled, err := ExplodeSize(tc.numEntries, tc.levelToColumn, tc.sizeColumns, out)
			require.NoError(t, err)
			assert.Equal(t, dry, filled)
			assert.Equal(t, tc.wantSizes, out)
		})
	}
}

func TestExplodeSizeIterative(t *testing.T) {
	for _, tc := range explodeCases() {
		t.Run(tc.name, func(t *testing.T) {
			dry, err := ExplodeSizeIterative(tc.numEntries, tc.levelToColumn, tc.sizeColumns, nil)
			require.NoError(t, err)
			require.Equal(t, len(tc.wantSizes), dry)

			out := make([]uint64, dry)
			_, err = ExplodeSizeIterative(tc.numEntries, tc.levelToColumn, tc.sizeColumns, out)
			require.NoError(t, err)
			assert.Equal(t, tc.wantSizes, out)
		})
	}
}

func TestExplodeData_LeafCounts(t *testing.T) {
	for _, tc := range explodeCases() {
		t.Run(tc.name, func(t *testing.T) {
			// Generously sized backing column; only the dry-run count is
			// under test here.
			data := make([]uint64, 64)
			n, err := ExplodeData(tc.numEntries, tc.levelToColumn, tc.sizeColumns, 0, data, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.wantLeaves, n)
		})
	}
}

func TestExplodeData_SharedColumn(t *testing.T) {
	// The zero-repeat outer lists must not advance the data cursor: three
	// leaves consume exactly the three backing items.
	levels := []int{0, 0}
	sizes := [][]uint64{{0, 1, 1, 2, 0, 2}}
	data := []byte{'a', 'b', 'c'}

	dry, err := ExplodeData(3, levels, sizes, 0, data, nil)
	require.NoError(t, err)
	require.Equal(t, 3, dry)

	out := make([]byte, dry)
	filled, err := ExplodeData(3, levels, sizes, 0, data, out)
	require.NoError(t, err)
	assert.Equal(t, dry, filled)
	assert.Equal(t, []byte{'a', 'b', 'c'}, out)
}

func TestExplodeData_CursorFollowsDataColumn(t *testing.T) {
	// Same shape, different data column: the broadcast replays different
	// stretches of the backing data depending on which size column the data
	// cursor follows.
	levels := []int{0, 1, 0}
	sizes := [][]uint64{{3, 2, 2, 2}, {4}}
	data := []int64{10, 11, 12, 13, 14, 15}

	t.Run("data follows outer column", func(t *testing.T) {
		out := make([]int64, 24)
		n, err := ExplodeData(1, levels, sizes, 0, data, out)
		require.NoError(t, err)
		require.Equal(t, 24, n)

		want := []int64{
			10, 11, 10, 11, 10, 11, 10, 11,
			12, 13, 12, 13, 12, 13, 12, 13,
			14, 15, 14, 15, 14, 15, 14, 15,
		}
		assert.Equal(t, want, out)
	})

	t.Run("data follows middle column", func(t *testing.T) {
		out := make([]int64, 24)
		n, err := ExplodeData(1, levels, sizes, 1, data, out)
		require.NoError(t, err)
		require.Equal(t, 24, n)

		want := []int64{
			10, 10, 11, 11, 12, 12, 13, 13,
			10, 10, 11, 11, 12, 12, 13, 13,
			10, 10, 11, 11, 12, 12, 13, 13,
		}
		assert.Equal(t, want, out)
	})
}

func TestExplodeData_NoLevels(t *testing.T) {
	// Without nesting each entry is its own leaf: one item copied per entry.
	data := []float64{1.5, 2.5, 4.0}
	out := make([]float64, 3)

	n, err := ExplodeData(3, nil, [][]uint64{{}}, 0, data, out)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, data, out)

	n, err = ExplodeSize(3, nil, [][]uint64{{}}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestExplodeDataBytes(t *testing.T) {
	levels := []int{0, 1}
	sizes := [][]uint64{{2}, {3}}

	t.Run("four byte items", func(t *testing.T) {
		// Three 4-byte items; the data cursor follows the inner column, so
		// each outer sibling replays the full inner stretch.
		data := []byte{
			4, 3, 2, 1,
			8, 7, 6, 5,
			12, 11, 10, 9,
		}

		dry, err := ExplodeDataBytes(1, levels, sizes, 1, 4, data, nil)
		require.NoError(t, err)
		require.Equal(t, 6, dry)

		out := make([]byte, dry*4)
		filled, err := ExplodeDataBytes(1, levels, sizes, 1, 4, data, out)
		require.NoError(t, err)
		require.Equal(t, dry, filled)

		want := []byte{
			4, 3, 2, 1, 8, 7, 6, 5, 12, 11, 10, 9,
			4, 3, 2, 1, 8, 7, 6, 5, 12, 11, 10, 9,
		}
		assert.Equal(t, want, out)
	})

	t.Run("single byte items take the typed path", func(t *testing.T) {
		data := []byte{'x', 'y', 'z'}
		out := make([]byte, 6)

		n, err := ExplodeDataBytes(1, levels, sizes, 1, 1, data, out)
		require.NoError(t, err)
		assert.Equal(t, 6, n)
		assert.Equal(t, []byte("xyzxyz"), out)
	})

	t.Run("zero width rejected", func(t *testing.T) {
		_, err := ExplodeDataBytes(1, levels, sizes, 1, 0, nil, nil)
		assert.ErrorIs(t, err, ErrDatumBytes)
	})
}

func TestExplode_Validation(t *testing.T) {
	sizes := [][]uint64{{1}, {1}}

	t.Run("levels without size columns", func(t *testing.T) {
		_, err := ExplodeSize(1, []int{0}, nil, nil)
		assert.ErrorIs(t, err, ErrNoSizeColumns)
	})

	t.Run("level map out of range", func(t *testing.T) {
		_, err := ExplodeSize(1, []int{0, 2}, sizes, nil)
		assert.ErrorIs(t, err, ErrLevelOutOfRange)
	})

	t.Run("unreferenced size column", func(t *testing.T) {
		_, err := ExplodeSize(1, []int{0, 0}, sizes, nil)
		assert.ErrorIs(t, err, ErrColumnUnreferenced)
	})

	t.Run("negative entry count", func(t *testing.T) {
		_, err := ExplodeSize(-1, []int{0, 1}, sizes, nil)
		assert.ErrorIs(t, err, ErrNegativeEntries)
	})

	t.Run("data column out of range", func(t *testing.T) {
		_, err := ExplodeData(1, []int{0, 1}, sizes, 2, []byte{0}, nil)
		assert.ErrorIs(t, err, ErrDataColumnOutOfRange)
	})

	t.Run("scratch bound", func(t *testing.T) {
		_, err := NewScratch(1<<16, 1<<16)
		assert.ErrorIs(t, err, ErrScratchTooLarge)
	})
}

func TestExplodeSize_RoundTrip(t *testing.T) {
	// An emitted size sequence used as a single flat size column under an
	// identity level map reproduces itself.
	emitted := []uint64{0, 1, 1, 2, 0, 2}

	dry, err := ExplodeSize(len(emitted), []int{0}, [][]uint64{emitted}, nil)
	require.NoError(t, err)
	require.Equal(t, len(emitted), dry)

	out := make([]uint64, dry)
	_, err = ExplodeSize(len(emitted), []int{0}, [][]uint64{emitted}, out)
	require.NoError(t, err)
	assert.Equal(t, emitted, out)
}

func TestDataConsumption(t *testing.T) {
	t.Run("shared column consumes by leaf", func(t *testing.T) {
		// The size column sums to 6 across both levels, but only 3 leaves
		// draw items.
		n, err := DataConsumption(3, []int{0, 0}, [][]uint64{{0, 1, 1, 2, 0, 2}}, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("cartesian pair", func(t *testing.T) {
		levels := []int{0, 1}
		sizes := [][]uint64{{4}, {4}}

		outer, err := DataConsumption(1, levels, sizes, 0)
		require.NoError(t, err)
		inner, err := DataConsumption(1, levels, sizes, 1)
		require.NoError(t, err)

		// 16 leaves either way, but each operand only needs its own 4 items.
		assert.Equal(t, 4, outer)
		assert.Equal(t, 4, inner)
	})

	t.Run("interleaved column", func(t *testing.T) {
		levels := []int{0, 1, 0}
		sizes := [][]uint64{{3, 2, 2, 2}, {4}}

		n, err := DataConsumption(1, levels, sizes, 0)
		require.NoError(t, err)
		assert.Equal(t, 6, n)

		n, err = DataConsumption(1, levels, sizes, 1)
		require.NoError(t, err)
		assert.Equal(t, 4, n)
	})
}

// benchPattern is a 30-count block describing five nesting levels of one
// shared size column; repeated per entry it exercises the deep descent path.
var benchPattern = []uint64{
	5, 0, 1, 1, 1, 1, 2, 0, 2, 0, 2, 0, 1, 2, 2,
	2, 3, 0, 0, 0, 2, 2, 2, 3, 1, 0, 1, 2, 3, 1,
}

func BenchmarkExplodeSize(b *testing.B) {
	const entries = 10000
	sizes := make([]uint64, 0, entries*len(benchPattern))
	for i := 0; i < entries; i++ {
		sizes = append(sizes, benchPattern...)
	}
	levels := []int{0, 0, 0, 0, 0}
	columns := [][]uint64{sizes}

	scratch, err := NewScratch(len(levels), 1)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ExplodeSizeWith(scratch, entries, levels, columns, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkExplodeSizeIterative(b *testing.B) {
	const entries = 10000
	sizes := make([]uint64, 0, entries*len(benchPattern))
	for i := 0; i < entries; i++ {
		sizes = append(sizes, benchPattern...)
	}
	levels := []int{0, 0, 0, 0, 0}
	columns := [][]uint64{sizes}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ExplodeSizeIterative(entries, levels, columns, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func TestExplode_ScratchReuse(t *testing.T) {
	levels := []int{0, 0, 1}
	sizes := [][]uint64{{3, 2, 2, 2}, {4}}

	scratch, err := NewScratch(3, 2)
	require.NoError(t, err)

	// Repeated calls on one scratch are independent: the second run must
	// see fully rewound cursors.
	first, err := ExplodeSizeWith(scratch, 1, levels, sizes, nil)
	require.NoError(t, err)
	second, err := ExplodeSizeWith(scratch, 1, levels, sizes, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := ExplodeSizeWith(scratch, 1, []int{0, 1}, sizes, nil)
		assert.ErrorIs(t, err, ErrScratchMismatch)
	})
}
