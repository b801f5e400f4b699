package kernel

// ExplodeData walks the same descent as ExplodeSize and emits one item per
// leaf, drawn from data. dataColumn names the size column whose consumption
// the data cursor follows: at a level controlled by that column the cursor
// advances serially with the siblings, at every other level it is rewound to
// the level's checkpoint so the items replay for each sibling.
//
// data is a typed slice of whole items; the inner loop is monomorphic in the
// item type. A nil exploded buffer selects the dry-run phase, which returns
// the exact item count without writing.
func ExplodeData[T any](numEntries int, levelToColumn []int, sizeColumns [][]uint64, dataColumn int, data []T, exploded []T) (int, error) {
	scratch, err := NewScratch(len(levelToColumn), len(sizeColumns))
	if err != nil {
		return 0, err
	}
	return ExplodeDataWith(scratch, numEntries, levelToColumn, sizeColumns, dataColumn, data, exploded)
}

// ExplodeDataWith is ExplodeData reusing a caller-provided scratch.
func ExplodeDataWith[T any](s *Scratch, numEntries int, levelToColumn []int, sizeColumns [][]uint64, dataColumn int, data []T, exploded []T) (int, error) {
	if err := validateShape(numEntries, levelToColumn, len(sizeColumns)); err != nil {
		return 0, err
	}
	if dataColumn < 0 || dataColumn >= len(sizeColumns) {
		return 0, ErrDataColumnOutOfRange
	}
	if err := s.reset(levelToColumn, len(sizeColumns)); err != nil {
		return 0, err
	}

	e := &dataExploder[T]{
		scratch:     s,
		sizeColumns: sizeColumns,
		dataColumn:  dataColumn,
		data:        data,
		out:         exploded,
	}
	for entry := 0; entry < numEntries; entry++ {
		e.entry(0)
	}
	return e.n, nil
}

// ExplodeDataBytes is the opaque-buffer form of ExplodeData for callers that
// hold items as raw bytes of a fixed width. Single-byte items take the
// monomorphic path; wider items go through a bytewise copy of datumBytes per
// leaf.
func ExplodeDataBytes(numEntries int, levelToColumn []int, sizeColumns [][]uint64, dataColumn int, datumBytes int, data []byte, exploded []byte) (int, error) {
	if datumBytes < 1 {
		return 0, ErrDatumBytes
	}
	if datumBytes == 1 {
		return ExplodeData(numEntries, levelToColumn, sizeColumns, dataColumn, data, exploded)
	}

	scratch, err := NewScratch(len(levelToColumn), len(sizeColumns))
	if err != nil {
		return 0, err
	}
	if err := validateShape(numEntries, levelToColumn, len(sizeColumns)); err != nil {
		return 0, err
	}
	if dataColumn < 0 || dataColumn >= len(sizeColumns) {
		return 0, ErrDataColumnOutOfRange
	}
	if err := scratch.reset(levelToColumn, len(sizeColumns)); err != nil {
		return 0, err
	}

	e := &byteExploder{
		scratch:     scratch,
		sizeColumns: sizeColumns,
		dataColumn:  dataColumn,
		datumBytes:  datumBytes,
		data:        data,
		out:         exploded,
	}
	for entry := 0; entry < numEntries; entry++ {
		e.entry(0)
	}
	return e.n, nil
}

// DataConsumption walks the shape without emitting and returns the number
// of backing items the matching ExplodeData call would read: the final
// position of the data cursor. Callers use it to validate a data column's
// length before the fill phase; a column controlled at several levels
// consumes by leaf, not by its fully summed counts, so the length cannot be
// derived from the size column alone.
func DataConsumption(numEntries int, levelToColumn []int, sizeColumns [][]uint64, dataColumn int) (int, error) {
	scratch, err := NewScratch(len(levelToColumn), len(sizeColumns))
	if err != nil {
		return 0, err
	}
	if err := validateShape(numEntries, levelToColumn, len(sizeColumns)); err != nil {
		return 0, err
	}
	if dataColumn < 0 || dataColumn >= len(sizeColumns) {
		return 0, ErrDataColumnOutOfRange
	}
	if err := scratch.reset(levelToColumn, len(sizeColumns)); err != nil {
		return 0, err
	}

	e := &dataExploder[struct{}]{
		scratch:     scratch,
		sizeColumns: sizeColumns,
		dataColumn:  dataColumn,
	}
	for entry := 0; entry < numEntries; entry++ {
		e.entry(0)
	}
	return e.di, nil
}

// dataExploder carries the traversal state of one typed ExplodeData call.
// Compared to the shape walk it additionally tracks the data cursor di and
// its per-level checkpoints.
type dataExploder[T any] struct {
	scratch     *Scratch
	sizeColumns [][]uint64
	dataColumn  int
	data        []T
	out         []T // nil while dry-running
	di          int
	n           int
}

func (e *dataExploder[T]) entry(levi int) {
	s := e.scratch
	if levi == s.numLevels {
		if e.out != nil {
			e.out[e.n] = e.data[e.di]
		}
		e.n++
		e.di++
		return
	}

	coli := s.levelToColumn[levi]
	repeat := e.sizeColumns[coli][s.si[coli]]
	s.si[coli]++

	s.checkpoint(levi)
	s.startdi[levi] = e.di

	for i := uint64(0); i < repeat; i++ {
		s.rewind(levi, coli)
		if e.dataColumn != coli {
			e.di = s.startdi[levi]
		}
		e.entry(levi + 1)
	}
}

// byteExploder is the descent for opaque items of arbitrary width. Identical
// cursor motion to dataExploder; only the leaf copy differs.
type byteExploder struct {
	scratch     *Scratch
	sizeColumns [][]uint64
	dataColumn  int
	datumBytes  int
	data        []byte
	out         []byte // nil while dry-running
	di          int
	n           int
}

func (e *byteExploder) entry(levi int) {
	s := e.scratch
	if levi == s.numLevels {
		if e.out != nil {
			w := e.datumBytes
			copy(e.out[e.n*w:(e.n+1)*w], e.data[e.di*w:(e.di+1)*w])
		}
		e.n++
		e.di++
		return
	}

	coli := s.levelToColumn[levi]
	repeat := e.sizeColumns[coli][s.si[coli]]
	s.si[coli]++

	s.checkpoint(levi)
	s.startdi[levi] = e.di

	for i := uint64(0); i < repeat; i++ {
		s.rewind(levi, coli)
		if e.dataColumn != coli {
			e.di = s.startdi[levi]
		}
		e.entry(levi + 1)
	}
}
