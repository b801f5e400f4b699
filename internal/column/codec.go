package column

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ReadSizeColumn reads a size segment: consecutive little-endian unsigned
// 64-bit repeat counts until EOF.
func ReadSizeColumn(r io.Reader) (SizeColumn, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read size segment: %w", err)
	}
	if len(raw)%8 != 0 {
		return nil, ErrTruncated
	}

	sizes := make(SizeColumn, len(raw)/8)
	for i := range sizes {
		sizes[i] = binary.LittleEndian.Uint64(raw[i*8:])
	}
	return sizes, nil
}

// WriteSizeColumn writes a size segment.
func WriteSizeColumn(w io.Writer, sizes SizeColumn) error {
	buf := make([]byte, len(sizes)*8)
	for i, v := range sizes {
		binary.LittleEndian.PutUint64(buf[i*8:], v)
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("failed to write size segment: %w", err)
	}
	return nil
}

// ReadDataColumn reads a data segment of the given item width.
func ReadDataColumn(r io.Reader, itemBytes int) (*DataColumn, error) {
	if itemBytes < 1 {
		return nil, ErrItemBytes
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data segment: %w", err)
	}
	return NewDataColumn(raw, itemBytes)
}

// WriteDataColumn writes a data segment.
func WriteDataColumn(w io.Writer, d *DataColumn) error {
	if _, err := w.Write(d.Bytes); err != nil {
		return fmt.Errorf("failed to write data segment: %w", err)
	}
	return nil
}
