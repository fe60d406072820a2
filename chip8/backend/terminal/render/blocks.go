package render

import "github.com/valerio/go-chip8/chip8/video"

// Terminal cells are roughly twice as tall as wide, so each cell shows two
// vertically stacked pixels using half-block characters.
const (
	blockFull  = '█'
	blockUpper = '▀'
	blockLower = '▄'
	blockEmpty = ' '
)

// HalfBlock returns the character showing a top and bottom pixel pair.
func HalfBlock(top, bottom bool) rune {
	switch {
	case top && bottom:
		return blockFull
	case top:
		return blockUpper
	case bottom:
		return blockLower
	default:
		return blockEmpty
	}
}

// FrameRows renders the frame as FramebufferHeight/2 rows of half-block characters.
func FrameRows(fb *video.FrameBuffer) []string {
	rows := make([]string, 0, video.FramebufferHeight/2)
	line := make([]rune, video.FramebufferWidth)
	for y := 0; y < video.FramebufferHeight; y += 2 {
		for x := 0; x < video.FramebufferWidth; x++ {
			line[x] = HalfBlock(fb.Pixel(x, y), fb.Pixel(x, y+1))
		}
		rows = append(rows, string(line))
	}
	return rows
}
