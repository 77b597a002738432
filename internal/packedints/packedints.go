// Package packedints implements a fixed-width unsigned integer sequence
// packed bit-tight into a []uint64 buffer, the same sub-byte packing idiom
// the teacher uses to fit 4-bit codes two-per-byte in its int4 quantizer,
// generalized here to an arbitrary bit width chosen at construction time.
package packedints

import (
	"fmt"
	"io"
	"math/bits"

	"github.com/succinctgo/uxdict/persistence"
)

const wordBits = 64

// Vector is a random-access sequence of fixed-width unsigned integers.
// Width must be in [1, 64]; values are truncated to width bits on Push.
type Vector struct {
	words []uint64
	width int
	n     int
}

// New returns an empty Vector with the given per-element bit width.
func New(width int) *Vector {
	if width <= 0 || width > 64 {
		panic("packedints: width out of range")
	}
	return &Vector{width: width}
}

// Width returns the fixed bit width of each element.
func (v *Vector) Width() int { return v.width }

// Len returns the number of elements pushed.
func (v *Vector) Len() int { return v.n }

// BitWidth returns the minimum bit width needed to represent values in
// [0, maxValue] inclusive, i.e. ceil(log2(maxValue+1)), with a floor of 1
// so a vector of all-zero values still has a well-defined width.
//
// spec.md's open question on tail-ID width (floor vs. ceil of log2 of the
// tail count) is resolved here in favor of the ceiling: BitWidth(M-1)
// always has room to represent every id in [0, M).
func BitWidth(maxValue uint64) int {
	if maxValue == 0 {
		return 1
	}
	return bits.Len64(maxValue)
}

// Push appends v, truncated to the vector's bit width.
func (v *Vector) Push(val uint64) {
	if v.width < 64 {
		val &= (uint64(1) << uint(v.width)) - 1
	}
	bitPos := v.n * v.width
	wordIdx := bitPos / wordBits
	bitOff := uint(bitPos % wordBits)

	for wordIdx >= len(v.words) {
		v.words = append(v.words, 0)
	}
	v.words[wordIdx] |= val << bitOff

	if spill := int(bitOff) + v.width - wordBits; spill > 0 {
		for wordIdx+1 >= len(v.words) {
			v.words = append(v.words, 0)
		}
		v.words[wordIdx+1] |= val >> uint(v.width-spill)
	}
	v.n++
}

// Get returns the value at index i.
func (v *Vector) Get(i int) uint64 {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("packedints: index %d out of range [0, %d)", i, v.n))
	}
	bitPos := i * v.width
	wordIdx := bitPos / wordBits
	bitOff := uint(bitPos % wordBits)

	mask := uint64(1)<<uint(v.width) - 1
	if v.width == 64 {
		mask = ^uint64(0)
	}
	val := (v.words[wordIdx] >> bitOff) & mask

	if spill := int(bitOff) + v.width - wordBits; spill > 0 {
		val |= (v.words[wordIdx+1] & (uint64(1)<<uint(spill) - 1)) << uint(v.width-spill)
	}
	return val
}

// AllocSize returns the approximate number of bytes retained.
func (v *Vector) AllocSize() int {
	return len(v.words)*8 + 16
}

// Save writes the vector as: width, element count, word count, raw words.
func (v *Vector) Save(w io.Writer) error {
	bw := persistence.NewBinaryIndexWriter(w)
	if err := bw.WriteUint32(uint32(v.width)); err != nil {
		return fmt.Errorf("packedints: write width: %w", err)
	}
	if err := bw.WriteUint64(uint64(v.n)); err != nil {
		return fmt.Errorf("packedints: write length: %w", err)
	}
	if err := bw.WriteUint64(uint64(len(v.words))); err != nil {
		return fmt.Errorf("packedints: write word count: %w", err)
	}
	if err := bw.WriteUint64Slice(v.words); err != nil {
		return fmt.Errorf("packedints: write words: %w", err)
	}
	return nil
}

// Load reads a Vector previously written by Save.
func Load(r io.Reader) (*Vector, error) {
	br := persistence.NewBinaryIndexReader(r)
	width, err := br.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("packedints: read width: %w", err)
	}
	n, err := br.ReadUint64()
	if err != nil {
		return nil, fmt.Errorf("packedints: read length: %w", err)
	}
	wordCount, err := br.ReadUint64()
	if err != nil {
		return nil, fmt.Errorf("packedints: read word count: %w", err)
	}
	words, err := br.ReadUint64Slice(int(wordCount))
	if err != nil {
		return nil, fmt.Errorf("packedints: read words: %w", err)
	}
	return &Vector{words: words, width: int(width), n: int(n)}, nil
}
