// Package kernel implements the explosion kernels that materialize the
// Cartesian-product structure of nested columnar data, plus the elementwise
// arithmetic kernels that consume their output.
//
// Nested collections are stored shredded: a flat data array per field and a
// flat size array per nesting level. Exploding walks the nesting levels depth
// first and either emits the repeat count at every level (shape explosion) or
// emits one data item per leaf, duplicated as dictated by the broadcast
// (data explosion). Size columns advance independently of each other; a
// column mapped to several levels is consumed serially across the whole
// traversal.
//
// All kernels are pure over their inputs and deterministic. Output buffers
// may be nil, in which case the kernel performs the identical traversal and
// only counts what it would have written (the dry-run phase of the two-phase
// calling convention). Output buffers must not alias any input buffer.
package kernel

// ExplodeSize walks numEntries records of the nesting described by
// levelToColumn and emits the repeat count read at every level, depth first.
// levelToColumn assigns each nesting level (outermost first) the index of the
// size column that controls it.
//
// If exploded is nil the traversal still runs in full and the emitted length
// is returned; with a non-nil buffer the caller must have sized it from a
// preceding nil-buffer call. Cursor movement is identical in both modes.
func ExplodeSize(numEntries int, levelToColumn []int, sizeColumns [][]uint64, exploded []uint64) (int, error) {
	scratch, err := NewScratch(len(levelToColumn), len(sizeColumns))
	if err != nil {
		return 0, err
	}
	return ExplodeSizeWith(scratch, numEntries, levelToColumn, sizeColumns, exploded)
}

// ExplodeSizeWith is ExplodeSize reusing a caller-provided scratch, avoiding
// the per-call allocation. The scratch dimensions must match the shape.
func ExplodeSizeWith(s *Scratch, numEntries int, levelToColumn []int, sizeColumns [][]uint64, exploded []uint64) (int, error) {
	if err := validateShape(numEntries, levelToColumn, len(sizeColumns)); err != nil {
		return 0, err
	}
	if err := s.reset(levelToColumn, len(sizeColumns)); err != nil {
		return 0, err
	}

	e := &sizeExploder{
		scratch:     s,
		sizeColumns: sizeColumns,
		out:         exploded,
	}
	for entry := 0; entry < numEntries; entry++ {
		e.entry(0)
	}
	return e.n, nil
}

// sizeExploder carries the traversal state of one ExplodeSize call.
type sizeExploder struct {
	scratch     *Scratch
	sizeColumns [][]uint64
	out         []uint64 // nil while dry-running
	n           int
}

// entry descends one level. The cursor of the controlling column is left to
// advance across sibling iterations; every other cursor is rewound to the
// checkpoint taken when the level was entered, so each sibling re-reads its
// subordinate columns from the same position.
func (e *sizeExploder) entry(levi int) {
	s := e.scratch
	if levi == s.numLevels {
		return
	}

	coli := s.levelToColumn[levi]
	repeat := e.sizeColumns[coli][s.si[coli]]
	s.si[coli]++

	if e.out != nil {
		e.out[e.n] = repeat
	}
	e.n++

	s.checkpoint(levi)

	for i := uint64(0); i < repeat; i++ {
		s.rewind(levi, coli)
		e.entry(levi + 1)
	}
}
