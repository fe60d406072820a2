//go:build !sdl2

package sdl2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-chip8/chip8/backend"
)

func TestStub(t *testing.T) {
	var b backend.Backend = New()

	err := b.Init(backend.BackendConfig{})
	assert.ErrorContains(t, err, "-tags sdl2")
	assert.True(t, b.IsQuitRequested())
	assert.NoError(t, b.Cleanup())
}
