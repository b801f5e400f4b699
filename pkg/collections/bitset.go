// Package collections provides the small data structures shared by the
// explosion runtime.
package collections

import "math/bits"

// Bitset is a memory-efficient boolean set using one bit per element. The
// runtime uses it to track which size columns a level map references.
type Bitset struct {
	words []uint64
	size  int
}

// NewBitset creates a bitset holding at least size bits.
func NewBitset(size int) *Bitset {
	if size < 0 {
		size = 0
	}
	return &Bitset{
		words: make([]uint64, (size+63)/64),
		size:  size,
	}
}

// Set sets the bit at index i, growing the set if needed.
func (b *Bitset) Set(i int) {
	if i < 0 {
		return
	}
	if i/64 >= len(b.words) {
		b.grow(i + 1)
	}
	b.words[i/64] |= 1 << (i % 64)
	if i >= b.size {
		b.size = i + 1
	}
}

// Clear clears the bit at index i.
func (b *Bitset) Clear(i int) {
	if i < 0 || i/64 >= len(b.words) {
		return
	}
	b.words[i/64] &^= 1 << (i % 64)
}

// Test reports whether the bit at index i is set.
func (b *Bitset) Test(i int) bool {
	if i < 0 || i/64 >= len(b.words) {
		return false
	}
	return b.words[i/64]&(1<<(i%64)) != 0
}

// Count returns the number of set bits.
func (b *Bitset) Count() int {
	count := 0
	for _, w := range b.words {
		count += bits.OnesCount64(w)
	}
	return count
}

// Size returns the number of addressable bits.
func (b *Bitset) Size() int {
	return b.size
}

// ClearAll clears every bit.
func (b *Bitset) ClearAll() {
	for i := range b.words {
		b.words[i] = 0
	}
}

func (b *Bitset) grow(newSize int) {
	numWords := (newSize + 63) / 64
	if numWords <= len(b.words) {
		return
	}
	newCap := len(b.words) * 2
	if newCap < numWords {
		newCap = numWords
	}
	words := make([]uint64, newCap)
	copy(words, b.words)
	b.words = words
}
