package video

import (
	"fmt"
	"io"
)

const (
	FramebufferWidth  = 64
	FramebufferHeight = 32
	FramebufferSize   = FramebufferWidth * FramebufferHeight
)

// FrameBuffer is the monochrome 64x32 display. Cells are addressed linearly,
// index = x + y*64, and every write marks the buffer dirty until a sink takes it.
type FrameBuffer struct {
	cells [FramebufferSize]bool
	dirty bool
}

func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// Index maps a coordinate to a cell index, wrapping around the buffer.
func Index(x, y int) int {
	return wrap(x + y*FramebufferWidth)
}

func wrap(index int) int {
	index %= FramebufferSize
	if index < 0 {
		index += FramebufferSize
	}
	return index
}

// Clear turns every cell off.
func (fb *FrameBuffer) Clear() {
	fb.cells = [FramebufferSize]bool{}
	fb.dirty = true
}

// Get returns the cell at index, wrapping out-of-range indexes.
func (fb *FrameBuffer) Get(index int) bool {
	return fb.cells[wrap(index)]
}

// Pixel returns the cell at (x, y).
func (fb *FrameBuffer) Pixel(x, y int) bool {
	return fb.cells[Index(x, y)]
}

// XorSet flips the cell at index when value is true and marks the buffer dirty.
// It reports whether a lit cell was turned off.
func (fb *FrameBuffer) XorSet(index int, value bool) (erased bool) {
	i := wrap(index)
	erased = fb.cells[i] && value
	fb.cells[i] = fb.cells[i] != value
	fb.dirty = true
	return erased
}

// IsDirty reports whether the buffer changed since the last TakeDirty.
func (fb *FrameBuffer) IsDirty() bool {
	return fb.dirty
}

// MarkDirty forces the next TakeDirty to report a change.
func (fb *FrameBuffer) MarkDirty() {
	fb.dirty = true
}

// TakeDirty returns the dirty flag and clears it.
func (fb *FrameBuffer) TakeDirty() bool {
	d := fb.dirty
	fb.dirty = false
	return d
}

// ToSlice returns a copy of the cells in row-major order.
func (fb *FrameBuffer) ToSlice() []bool {
	out := make([]bool, FramebufferSize)
	copy(out, fb.cells[:])
	return out
}

// Packed returns the frame as 256 bytes, 8 bytes per row, most significant bit leftmost.
func (fb *FrameBuffer) Packed() []byte {
	out := make([]byte, FramebufferSize/8)
	for i, on := range fb.cells {
		if on {
			out[i/8] |= 0x80 >> (i % 8)
		}
	}
	return out
}

// Dump writes the frame as a grid of '#' and '.' characters.
func (fb *FrameBuffer) Dump(w io.Writer) error {
	row := make([]byte, FramebufferWidth+1)
	row[FramebufferWidth] = '\n'
	for y := 0; y < FramebufferHeight; y++ {
		for x := 0; x < FramebufferWidth; x++ {
			row[x] = '.'
			if fb.cells[x+y*FramebufferWidth] {
				row[x] = '#'
			}
		}
		if _, err := w.Write(row); err != nil {
			return fmt.Errorf("writing display row %d: %w", y, err)
		}
	}
	return nil
}
