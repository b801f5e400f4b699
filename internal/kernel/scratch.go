package kernel

import "github.com/diana-hep/femtocode/pkg/collections"

// MaxScratchCells bounds the checkpoint table at numLevels x numSizeColumns
// cells. Realistic analytical nesting stays in single digits of levels; the
// bound exists so that a corrupt shape surfaces as an error instead of an
// unbounded allocation.
const MaxScratchCells = 1 << 28

// Scratch is the per-call working state of an explosion: a defensive copy of
// the level map, one read cursor per size column, and the checkpoint table of
// cursor positions taken on entry to each level. A Scratch may be reused
// across calls of the same shape but never shared between concurrent calls.
type Scratch struct {
	levelToColumn []int
	si            []int // next read position per size column
	startsi       []int // numLevels x numSizeColumns checkpoints
	startdi       []int // data cursor checkpoint per level
	numLevels     int
	numColumns    int
}

// NewScratch allocates scratch state for a shape of the given dimensions.
// A shape whose checkpoint table would exceed MaxScratchCells is rejected
// with ErrScratchTooLarge; this is the one runtime failure the kernels
// surface, distinct from any zero-length result.
func NewScratch(numLevels, numSizeColumns int) (*Scratch, error) {
	if numLevels < 0 || numSizeColumns < 0 {
		return nil, ErrScratchTooLarge
	}
	if numSizeColumns > 0 && numLevels > MaxScratchCells/max(numSizeColumns, 1) {
		return nil, ErrScratchTooLarge
	}

	return &Scratch{
		levelToColumn: make([]int, numLevels),
		si:            make([]int, numSizeColumns),
		startsi:       make([]int, numLevels*numSizeColumns),
		startdi:       make([]int, numLevels),
		numLevels:     numLevels,
		numColumns:    numSizeColumns,
	}, nil
}

// reset zeroes all cursors and re-copies the level map. Callers may mutate
// their levelToColumn slice after the call returns; the kernel only ever
// reads its own copy.
func (s *Scratch) reset(levelToColumn []int, numSizeColumns int) error {
	if len(levelToColumn) != s.numLevels || numSizeColumns != s.numColumns {
		return ErrScratchMismatch
	}
	copy(s.levelToColumn, levelToColumn)
	for i := range s.si {
		s.si[i] = 0
	}
	return nil
}

// checkpoint records every cursor on entry to a level. The checkpoints are
// rewound once per sibling iteration; their contents never escape the call.
func (s *Scratch) checkpoint(levi int) {
	copy(s.startsi[levi*s.numColumns:(levi+1)*s.numColumns], s.si)
}

// rewind restores every cursor except the controlling column's to the
// checkpoint taken at levi. The controlling column is consumed serially, so
// its cursor keeps advancing across siblings.
func (s *Scratch) rewind(levi, coli int) {
	base := levi * s.numColumns
	for j := 0; j < s.numColumns; j++ {
		if j != coli {
			s.si[j] = s.startsi[base+j]
		}
	}
}

// validateShape rejects the malformed inputs that are cheap to detect up
// front. Deeper contract violations (undersized size columns, undersized
// fill-phase output) are programming errors on the caller's side and panic
// on the out-of-range access.
func validateShape(numEntries int, levelToColumn []int, numSizeColumns int) error {
	if numEntries < 0 {
		return ErrNegativeEntries
	}
	if len(levelToColumn) == 0 {
		return nil
	}
	if numSizeColumns == 0 {
		return ErrNoSizeColumns
	}

	referenced := collections.NewBitset(numSizeColumns)
	for _, coli := range levelToColumn {
		if coli < 0 || coli >= numSizeColumns {
			return ErrLevelOutOfRange
		}
		referenced.Set(coli)
	}
	if referenced.Count() != numSizeColumns {
		return ErrColumnUnreferenced
	}
	return nil
}
