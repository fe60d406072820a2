//go:build !sdl2

package sdl2

import (
	"fmt"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/video"
)

// Backend stub for when SDL2 is not available
type Backend struct{}

// New creates a stub SDL2 backend whose Init returns an error
func New() *Backend {
	return &Backend{}
}

// Init returns an error indicating SDL2 is not available
func (s *Backend) Init(config backend.BackendConfig) error {
	return fmt.Errorf("SDL2 backend not available - build with -tags sdl2 to enable")
}

func (s *Backend) Draw(*video.FrameBuffer) {}

func (s *Backend) StartBeep() {}

func (s *Backend) StopBeep() {}

func (s *Backend) Refresh() {}

func (s *Backend) IsKeyPressed(uint8) bool { return false }

// IsQuitRequested is always true so a loop driving the stub stops immediately.
func (s *Backend) IsQuitRequested() bool { return true }

// Cleanup does nothing
func (s *Backend) Cleanup() error {
	return nil
}
