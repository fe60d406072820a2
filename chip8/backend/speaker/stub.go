//go:build !beep

package speaker

import (
	"errors"

	"github.com/valerio/go-chip8/chip8/backend"
)

// Speaker stub for builds without audio support
type Speaker struct {
	backend.Silent
}

// New always fails; build with -tags beep to enable the speaker.
func New(backend.Tone) (*Speaker, error) {
	return nil, errors.New("speaker not available - build with -tags beep to enable")
}

func (s *Speaker) Close() error { return nil }
