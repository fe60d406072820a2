package video

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameBuffer_XorSet(t *testing.T) {
	fb := NewFrameBuffer()
	assert.False(t, fb.IsDirty())

	assert.False(t, fb.XorSet(10, true), "lighting an unlit cell is not an erase")
	assert.True(t, fb.Get(10))
	assert.True(t, fb.TakeDirty())
	assert.False(t, fb.TakeDirty())

	assert.False(t, fb.XorSet(10, false))
	assert.True(t, fb.Get(10), "xor with false keeps the cell")
	assert.True(t, fb.TakeDirty(), "every write marks dirty")

	assert.True(t, fb.XorSet(10, true))
	assert.False(t, fb.Get(10))
}

func TestFrameBuffer_Wrap(t *testing.T) {
	fb := NewFrameBuffer()

	fb.XorSet(FramebufferSize+3, true)
	assert.True(t, fb.Get(3))
	assert.True(t, fb.Pixel(3, 0))

	assert.Equal(t, 0, Index(64, 31))
	assert.Equal(t, 1, Index(1, 32))
	assert.Equal(t, 63+31*64, Index(63, 31))
}

func TestFrameBuffer_Clear(t *testing.T) {
	fb := NewFrameBuffer()
	fb.XorSet(0, true)
	fb.XorSet(2047, true)
	fb.TakeDirty()

	fb.Clear()

	assert.True(t, fb.IsDirty())
	for _, on := range fb.ToSlice() {
		require.False(t, on)
	}
}

func TestFrameBuffer_Packed(t *testing.T) {
	fb := NewFrameBuffer()
	fb.XorSet(Index(0, 0), true)
	fb.XorSet(Index(9, 0), true)
	fb.XorSet(Index(63, 31), true)

	packed := fb.Packed()

	require.Len(t, packed, 256)
	assert.Equal(t, byte(0x80), packed[0])
	assert.Equal(t, byte(0x40), packed[1])
	assert.Equal(t, byte(0x01), packed[255])
}

func TestFrameBuffer_Dump(t *testing.T) {
	fb := NewFrameBuffer()
	fb.XorSet(Index(1, 0), true)
	fb.TakeDirty()

	var buf bytes.Buffer
	require.NoError(t, fb.Dump(&buf))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, FramebufferHeight)
	assert.Equal(t, ".#"+strings.Repeat(".", 62), lines[0])
	assert.False(t, fb.IsDirty(), "dumping does not touch the dirty flag")
}
