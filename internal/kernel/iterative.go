package kernel

// sizeFrame is one level of the explicit descent stack: the controlling
// column and the sibling iterations still to run under it.
type sizeFrame struct {
	coli      int
	remaining uint64
}

// ExplodeSizeIterative is ExplodeSize on an explicit frame stack instead of
// call recursion. It produces byte-identical output and identical cursor
// motion; it exists for shapes whose nesting depth would be unreasonable for
// the goroutine stack.
func ExplodeSizeIterative(numEntries int, levelToColumn []int, sizeColumns [][]uint64, exploded []uint64) (int, error) {
	scratch, err := NewScratch(len(levelToColumn), len(sizeColumns))
	if err != nil {
		return 0, err
	}
	if err := validateShape(numEntries, levelToColumn, len(sizeColumns)); err != nil {
		return 0, err
	}
	if err := scratch.reset(levelToColumn, len(sizeColumns)); err != nil {
		return 0, err
	}

	numLevels := scratch.numLevels
	stack := make([]sizeFrame, 0, numLevels)
	n := 0

	for entry := 0; entry < numEntries; entry++ {
		levi := 0
		for {
			if levi < numLevels {
				coli := scratch.levelToColumn[levi]
				repeat := sizeColumns[coli][scratch.si[coli]]
				scratch.si[coli]++

				if exploded != nil {
					exploded[n] = repeat
				}
				n++

				scratch.checkpoint(levi)
				stack = append(stack, sizeFrame{coli: coli, remaining: repeat})
			}

			// Unwind to the deepest level with sibling iterations left,
			// then descend from there.
			descended := false
			for len(stack) > 0 {
				f := &stack[len(stack)-1]
				if f.remaining > 0 {
					f.remaining--
					levi = len(stack)
					scratch.rewind(levi-1, f.coli)
					descended = true
					break
				}
				stack = stack[:len(stack)-1]
			}
			if !descended {
				break
			}
		}
	}
	return n, nil
}
