package kernel

import "errors"

var (
	// ErrNegativeEntries is returned when the entry count is negative.
	ErrNegativeEntries = errors.New("negative entry count")

	// ErrNoSizeColumns is returned when levels exist but no size column does.
	ErrNoSizeColumns = errors.New("nesting levels with no size columns")

	// ErrLevelOutOfRange is returned when the level map references a size
	// column index that does not exist.
	ErrLevelOutOfRange = errors.New("level map references size column out of range")

	// ErrColumnUnreferenced is returned when a size column is passed but no
	// nesting level is controlled by it.
	ErrColumnUnreferenced = errors.New("size column referenced by no level")

	// ErrDataColumnOutOfRange is returned when the data size column index
	// does not name one of the size columns.
	ErrDataColumnOutOfRange = errors.New("data size column out of range")

	// ErrDatumBytes is returned when the item width is not positive.
	ErrDatumBytes = errors.New("item width must be at least 1 byte")

	// ErrScratchTooLarge is returned when the scratch state for a shape
	// would exceed MaxScratchCells.
	ErrScratchTooLarge = errors.New("scratch state exceeds size bound")

	// ErrScratchMismatch is returned when a reused scratch was allocated
	// for different shape dimensions.
	ErrScratchMismatch = errors.New("scratch dimensions do not match shape")
)
