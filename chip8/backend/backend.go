package backend

import (
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/video"
)

// Display receives the frame buffer once per 60Hz tick. Implementations
// render only when fb.TakeDirty() reports a change.
type Display interface {
	Draw(fb *video.FrameBuffer)
}

// Audio turns the single beep tone on and off. Both calls are idempotent.
type Audio interface {
	StartBeep()
	StopBeep()
}

// Input exposes the 16-key hex keypad and the host's quit request.
// Refresh is called once per tick before any query.
type Input interface {
	Refresh()
	IsKeyPressed(key uint8) bool
	IsQuitRequested() bool
}

// Backend represents a complete platform (rendering + input + audio).
// Backends are responsible for:
// - Rendering frames to their specific output (terminal, SDL window, etc.)
// - Translating platform-specific key events to CHIP-8 keys via the Keymap
// - Handling backend-specific features (snapshots, debug panels)
type Backend interface {
	Display
	Audio
	Input

	// Init configures the backend. It is called once, after the interpreter
	// is constructed and before the first cycle.
	Init(config BackendConfig) error

	// Cleanup releases resources when shutting down
	Cleanup() error
}

// StateProvider exposes interpreter registers to debug views.
type StateProvider interface {
	State() debug.CPUState
}

// BackendConfig holds configuration for backends
type BackendConfig struct {
	Title     string
	Scale     int
	ShowDebug bool // Backends may ignore unsupported features
	Keymap    input.Keymap
	State     StateProvider
}

// KeymapOrDefault returns the configured keymap, falling back to input.DefaultKeymap.
func (c BackendConfig) KeymapOrDefault() input.Keymap {
	if len(c.Keymap) == 0 {
		return input.DefaultKeymap()
	}
	return c.Keymap
}
