package headless_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/headless"
	"github.com/valerio/go-chip8/chip8/video"
)

func TestHeadlessBackend(t *testing.T) {
	t.Run("normal operation", func(t *testing.T) {
		h := headless.New(3, headless.SnapshotConfig{})
		require.NoError(t, h.Init(backend.BackendConfig{Title: "Test"}))

		frame := video.NewFrameBuffer()
		frame.XorSet(0, true)

		for i := 0; i < 3; i++ {
			h.Draw(frame)
			h.Refresh()

			if i < 2 {
				assert.False(t, h.IsQuitRequested())
			} else {
				assert.True(t, h.IsQuitRequested())
			}
		}

		assert.Equal(t, 3, h.Frames())
		assert.Equal(t, 1, h.RenderedFrames(), "only the first frame was dirty")
		assert.NoError(t, h.Cleanup())
	})

	t.Run("unlimited frames", func(t *testing.T) {
		h := headless.New(0, headless.SnapshotConfig{})
		for i := 0; i < 1000; i++ {
			h.Refresh()
		}
		assert.False(t, h.IsQuitRequested())
	})
}

func TestHeadlessBackend_Keys(t *testing.T) {
	h := headless.New(0, headless.SnapshotConfig{})
	h.Schedule(
		headless.KeyEvent{Frame: 2, Key: 0x5, Pressed: true},
		headless.KeyEvent{Frame: 4, Key: 0x5, Pressed: false},
	)

	h.Refresh()
	assert.False(t, h.IsKeyPressed(0x5))
	h.Refresh()
	assert.True(t, h.IsKeyPressed(0x5))
	h.Refresh()
	assert.True(t, h.IsKeyPressed(0x5))
	h.Refresh()
	assert.False(t, h.IsKeyPressed(0x5))

	h.Press(0xC)
	assert.True(t, h.IsKeyPressed(0xC))
	h.Release(0xC)
	assert.False(t, h.IsKeyPressed(0xC))
	assert.False(t, h.IsKeyPressed(0x10))
}

func TestHeadlessBackend_Beep(t *testing.T) {
	h := headless.New(0, headless.SnapshotConfig{})

	h.StartBeep()
	h.StartBeep()
	assert.True(t, h.Beeping())
	h.StopBeep()
	h.StopBeep()
	assert.False(t, h.Beeping())
	h.StartBeep()

	assert.Equal(t, 2, h.BeepCount())
}

func TestHeadlessBackend_Snapshots(t *testing.T) {
	dir := t.TempDir()
	cfg, err := headless.CreateSnapshotConfig(2, dir, "/roms/PONG.ch8")
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "PONG", cfg.ROMName)

	h := headless.New(3, cfg)
	frame := video.NewFrameBuffer()
	for i := 0; i < 3; i++ {
		h.Draw(frame)
		h.Refresh()
	}

	frame2, _ := filepath.Glob(filepath.Join(dir, "PONG_frame_2_*.png"))
	frame3, _ := filepath.Glob(filepath.Join(dir, "PONG_frame_3_*.png"))
	assert.Len(t, frame2, 1)
	assert.Len(t, frame3, 1, "final frame is always captured")
}

func TestCreateSnapshotConfig(t *testing.T) {
	cfg, err := headless.CreateSnapshotConfig(0, "", "rom.ch8")
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)

	cfg, err = headless.CreateSnapshotConfig(5, "", "rom.ch8")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(cfg.Directory) })
	assert.DirExists(t, cfg.Directory)
}

func TestHeadlessImplementsBackend(t *testing.T) {
	var _ backend.Backend = (*headless.Backend)(nil)
}
