package debug

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/valerio/go-chip8/chip8/video"
)

var (
	pixelOn  = color.Gray{Y: 0xFF}
	pixelOff = color.Gray{Y: 0x00}
)

// TakeSnapshot saves the frame to the working directory, used by interactive backends.
func TakeSnapshot(frame *video.FrameBuffer) {
	if frame == nil {
		slog.Warn("No frame data available for snapshot")
		return
	}

	if _, err := SaveFramePNGToDir(frame, "chip8_snapshot", ""); err != nil {
		slog.Error("Failed to save snapshot", "error", err)
	}
}

// FrameImage renders the frame as a 64x32 grayscale image.
func FrameImage(frame *video.FrameBuffer) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, video.FramebufferWidth, video.FramebufferHeight))
	for y := 0; y < video.FramebufferHeight; y++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			c := pixelOff
			if frame.Pixel(x, y) {
				c = pixelOn
			}
			img.SetGray(x, y, c)
		}
	}
	return img
}

// SaveFramePNGToDir saves a frame as a timestamped PNG in directory, or the
// working directory when directory is empty. It returns the written path.
func SaveFramePNGToDir(frame *video.FrameBuffer, baseName, directory string) (string, error) {
	outputDir := directory
	if outputDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		outputDir = cwd
	}

	timestamp := time.Now().Format("20060102_150405")
	filePath := filepath.Join(outputDir, fmt.Sprintf("%s_%s.png", baseName, timestamp))

	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	defer file.Close()

	if err := png.Encode(file, FrameImage(frame)); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}

	slog.Info("Snapshot saved", "path", filePath, "size", fmt.Sprintf("%dx%d", video.FramebufferWidth, video.FramebufferHeight), "format", "PNG")
	return filePath, nil
}
