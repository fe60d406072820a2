package headless

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/video"
)

// Backend implements the Backend interface for automated testing and batch processing.
// A frame is one 60Hz tick; the backend requests quit once maxFrames have elapsed.
type Backend struct {
	config         backend.BackendConfig
	frameCount     int
	maxFrames      int
	renderedFrames int
	snapshotConfig SnapshotConfig
	currentFrame   *video.FrameBuffer

	keypad   *input.Keypad
	schedule map[int][]KeyEvent
	quit     bool

	beeping    bool
	beepStarts int
}

// KeyEvent presses or releases a keypad key at the start of a given frame.
type KeyEvent struct {
	Frame   int
	Key     uint8
	Pressed bool
}

// SnapshotConfig holds configuration for frame snapshots
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // Save snapshot every N frames
	Directory string // Directory to save snapshots
	ROMName   string // ROM name for snapshot filenames
}

// New returns a headless backend. maxFrames <= 0 runs until the program stops on its own.
func New(maxFrames int, snapshotConfig SnapshotConfig) *Backend {
	return &Backend{
		maxFrames:      maxFrames,
		snapshotConfig: snapshotConfig,
		keypad:         input.NewKeypad(0, nil),
		schedule:       make(map[int][]KeyEvent),
	}
}

func (h *Backend) Init(config backend.BackendConfig) error {
	h.config = config

	slog.Info("Running headless mode",
		"frames", h.maxFrames,
		"snapshot_interval", h.snapshotConfig.Interval,
		"snapshot_dir", h.snapshotConfig.Directory)

	return nil
}

// Schedule queues key events to be applied when their frame starts.
func (h *Backend) Schedule(events ...KeyEvent) {
	for _, e := range events {
		h.schedule[e.Frame] = append(h.schedule[e.Frame], e)
	}
}

// Press holds key down until Release.
func (h *Backend) Press(key uint8) { h.keypad.Press(key) }

// Release lets go of key.
func (h *Backend) Release(key uint8) { h.keypad.Release(key) }

// Draw keeps a reference to the frame for snapshots and counts changed frames.
func (h *Backend) Draw(fb *video.FrameBuffer) {
	h.currentFrame = fb
	if fb.TakeDirty() {
		h.renderedFrames++
	}
}

func (h *Backend) StartBeep() {
	if !h.beeping {
		h.beepStarts++
		slog.Debug("Beep started", "frame", h.frameCount)
	}
	h.beeping = true
}

func (h *Backend) StopBeep() {
	if h.beeping {
		slog.Debug("Beep stopped", "frame", h.frameCount)
	}
	h.beeping = false
}

// Refresh advances the frame counter, applies scheduled key events and
// handles snapshots and the frame limit.
func (h *Backend) Refresh() {
	h.frameCount++

	for _, e := range h.schedule[h.frameCount] {
		if e.Pressed {
			h.keypad.Press(e.Key)
		} else {
			h.keypad.Release(e.Key)
		}
	}
	delete(h.schedule, h.frameCount)

	if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval == 0 {
		h.saveSnapshot()
	}

	if h.frameCount%60 == 0 {
		slog.Debug("Frame progress", "completed", h.frameCount, "total", h.maxFrames)
	}

	if h.maxFrames > 0 && h.frameCount >= h.maxFrames && !h.quit {
		// Save final snapshot if enabled and we haven't just saved one
		if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval != 0 {
			h.saveSnapshot()
		}
		slog.Info("Headless execution completed", "frames", h.frameCount, "rendered", h.renderedFrames)
		h.quit = true
	}
}

func (h *Backend) IsKeyPressed(key uint8) bool {
	return h.keypad.IsPressed(key)
}

func (h *Backend) IsQuitRequested() bool {
	return h.quit
}

func (h *Backend) Cleanup() error {
	return nil
}

// Frames returns the number of ticks seen so far.
func (h *Backend) Frames() int { return h.frameCount }

// RenderedFrames returns how many ticks carried a changed frame.
func (h *Backend) RenderedFrames() int { return h.renderedFrames }

// Beeping reports whether the tone is currently on.
func (h *Backend) Beeping() bool { return h.beeping }

// BeepCount returns how many times the tone was switched on.
func (h *Backend) BeepCount() int { return h.beepStarts }

// CreateSnapshotConfig creates a snapshot configuration from CLI parameters
func CreateSnapshotConfig(interval int, directory, romPath string) (SnapshotConfig, error) {
	config := SnapshotConfig{
		Enabled:  interval > 0,
		Interval: interval,
	}

	if !config.Enabled {
		return config, nil
	}

	if directory == "" {
		tempDir, err := os.MkdirTemp("", "chip8-snapshots-*")
		if err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = tempDir
	} else {
		if err := os.MkdirAll(directory, 0755); err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = directory
	}

	config.ROMName = filepath.Base(romPath)
	config.ROMName = strings.TrimSuffix(config.ROMName, filepath.Ext(config.ROMName))

	return config, nil
}

// saveSnapshot saves a PNG snapshot for the current frame
func (h *Backend) saveSnapshot() {
	if h.currentFrame == nil {
		return
	}

	pngBaseName := fmt.Sprintf("%s_frame_%d", h.snapshotConfig.ROMName, h.frameCount)
	if _, err := debug.SaveFramePNGToDir(h.currentFrame, pngBaseName, h.snapshotConfig.Directory); err != nil {
		slog.Error("Failed to save PNG snapshot", "frame", h.frameCount, "error", err)
	}
}
