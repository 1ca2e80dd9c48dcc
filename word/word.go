// Package word provides a fixed-width bit vector. It is the payload type
// that flows through channel pipelines: wide enough for a packed AXI beat,
// cheap to copy, and comparable bit by bit.
package word

import (
	"fmt"
	"strings"
)

const limbWidth = 64

// A Word is a fixed-width vector of bits, stored as little-endian 64-bit
// limbs. The zero value is a zero-width word; use New to create a word of a
// given width.
type Word struct {
	width int
	limbs []uint64
}

// New creates an all-zero word of the given width in bits.
func New(width int) Word {
	if width < 0 {
		panic(fmt.Sprintf("word width must be non-negative, got %d", width))
	}

	return Word{
		width: width,
		limbs: make([]uint64, (width+limbWidth-1)/limbWidth),
	}
}

// FromUint64 creates a word of the given width holding the low bits of v.
func FromUint64(width int, v uint64) Word {
	w := New(width)
	w.SetSlice(0, min(width, limbWidth), v)

	return w
}

// Width returns the width of the word in bits.
func (w Word) Width() int {
	return w.width
}

// Clone returns an independent copy of the word.
func (w Word) Clone() Word {
	c := Word{width: w.width, limbs: make([]uint64, len(w.limbs))}
	copy(c.limbs, w.limbs)

	return c
}

// IsZero reports whether every bit of the word is zero.
func (w Word) IsZero() bool {
	for _, l := range w.limbs {
		if l != 0 {
			return false
		}
	}

	return true
}

// Equal reports whether two words have the same width and the same bits.
func (w Word) Equal(o Word) bool {
	if w.width != o.width {
		return false
	}

	for i := range w.limbs {
		if w.limbs[i] != o.limbs[i] {
			return false
		}
	}

	return true
}

// Slice returns the n-bit field starting at bit position lo. n must be at
// most 64.
func (w Word) Slice(lo, n int) uint64 {
	w.sliceMustBeValid(lo, n)

	if n == 0 {
		return 0
	}

	limb := lo / limbWidth
	shift := lo % limbWidth

	v := w.limbs[limb] >> shift
	if shift+n > limbWidth {
		v |= w.limbs[limb+1] << (limbWidth - shift)
	}

	return v & mask(n)
}

// SetSlice stores the low n bits of v into the field starting at bit
// position lo. n must be at most 64. Bits of v above n are ignored.
func (w *Word) SetSlice(lo, n int, v uint64) {
	w.sliceMustBeValid(lo, n)

	if n == 0 {
		return
	}

	v &= mask(n)

	limb := lo / limbWidth
	shift := lo % limbWidth

	w.limbs[limb] = w.limbs[limb]&^(mask(n)<<shift) | v<<shift
	if shift+n > limbWidth {
		spill := shift + n - limbWidth
		w.limbs[limb+1] = w.limbs[limb+1]&^mask(spill) |
			v>>(limbWidth-shift)
	}
}

// Extract returns the n-bit sub-word starting at bit position lo.
func (w Word) Extract(lo, n int) Word {
	sub := New(n)
	for off := 0; off < n; off += limbWidth {
		chunk := min(limbWidth, n-off)
		sub.SetSlice(off, chunk, w.Slice(lo+off, chunk))
	}

	return sub
}

// Insert stores the sub-word v into the field starting at bit position lo.
func (w *Word) Insert(lo int, v Word) {
	for off := 0; off < v.width; off += limbWidth {
		chunk := min(limbWidth, v.width-off)
		w.SetSlice(lo+off, chunk, v.Slice(off, chunk))
	}
}

// Uint64 returns the low 64 bits of the word.
func (w Word) Uint64() uint64 {
	if len(w.limbs) == 0 {
		return 0
	}

	return w.limbs[0] & mask(min(w.width, limbWidth))
}

// String renders the word as a fixed-width hexadecimal literal.
func (w Word) String() string {
	if w.width == 0 {
		return "0x0"
	}

	var sb strings.Builder
	sb.WriteString("0x")

	digits := (w.width + 3) / 4
	for i := digits - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "%x", w.nibble(i*4))
	}

	return sb.String()
}

func (w Word) nibble(lo int) uint64 {
	n := min(4, w.width-lo)
	return w.Slice(lo, n)
}

func (w Word) sliceMustBeValid(lo, n int) {
	if lo < 0 || n < 0 || n > limbWidth || lo+n > w.width {
		panic(fmt.Sprintf(
			"bit slice [%d:%d) out of range for %d-bit word", lo, lo+n, w.width))
	}
}

func mask(n int) uint64 {
	if n >= limbWidth {
		return ^uint64(0)
	}

	return (uint64(1) << n) - 1
}
