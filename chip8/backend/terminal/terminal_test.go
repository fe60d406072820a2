package terminal

import (
	"log/slog"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/video"
)

type fixedState debug.CPUState

func (f fixedState) State() debug.CPUState { return debug.CPUState(f) }

func newSimBackend(t *testing.T, config backend.BackendConfig) (*Backend, tcell.SimulationScreen) {
	t.Helper()

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	screen := tcell.NewSimulationScreen("UTF-8")
	b := NewWithScreen(screen)
	require.NoError(t, b.Init(config))
	screen.SetSize(120, 30)
	t.Cleanup(func() { _ = b.Cleanup() })

	return b, screen
}

func cellRune(screen tcell.SimulationScreen, x, y int) rune {
	cells, width, _ := screen.GetContents()
	runes := cells[y*width+x].Runes
	if len(runes) == 0 {
		return ' '
	}
	return runes[0]
}

func TestTerminal_Draw(t *testing.T) {
	b, screen := newSimBackend(t, backend.BackendConfig{Title: "PONG"})

	fb := video.NewFrameBuffer()
	fb.XorSet(video.Index(0, 0), true)
	fb.XorSet(video.Index(1, 0), true)
	fb.XorSet(video.Index(1, 1), true)

	b.Draw(fb)

	assert.False(t, fb.IsDirty())
	assert.Equal(t, '▀', cellRune(screen, 0, 1))
	assert.Equal(t, '█', cellRune(screen, 1, 1))
	assert.Equal(t, '│', cellRune(screen, dividerX, 1))
	assert.Equal(t, 'C', cellRune(screen, 2, 0))
}

func TestTerminal_Keys(t *testing.T) {
	b, screen := newSimBackend(t, backend.BackendConfig{})

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'V', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'p', tcell.ModNone)
	b.Refresh()

	assert.True(t, b.IsKeyPressed(0x4))
	assert.True(t, b.IsKeyPressed(0xF))
	assert.False(t, b.IsKeyPressed(0x0))
	assert.False(t, b.IsQuitRequested())

	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	b.Refresh()
	assert.True(t, b.IsQuitRequested())
}

func TestTerminal_CtrlCQuits(t *testing.T) {
	b, screen := newSimBackend(t, backend.BackendConfig{})

	screen.InjectKey(tcell.KeyCtrlC, 0, tcell.ModNone)
	b.Refresh()

	assert.True(t, b.IsQuitRequested())
}

func TestTerminal_Beep(t *testing.T) {
	b, _ := newSimBackend(t, backend.BackendConfig{})

	b.StartBeep()
	assert.True(t, b.beeping)
	b.StartBeep()
	b.StopBeep()
	assert.False(t, b.beeping)
}

func TestTerminal_RegisterPanel(t *testing.T) {
	state := debug.CPUState{PC: 0x2A4, I: 0x300}
	b, screen := newSimBackend(t, backend.BackendConfig{ShowDebug: true, State: fixedState(state)})

	b.Draw(video.NewFrameBuffer())

	line := make([]rune, 0, 20)
	for x := dividerX + 2; x < dividerX+22; x++ {
		line = append(line, cellRune(screen, x, 1))
	}
	assert.Equal(t, "PC: 0x02A4  I: 0x030", string(line))
}

func TestTerminal_LogFilter(t *testing.T) {
	b, screen := newSimBackend(t, backend.BackendConfig{})
	require.Equal(t, slog.LevelInfo, b.logLevel.Level())

	screen.InjectKey(tcell.KeyRune, '-', tcell.ModNone)
	b.Refresh()
	assert.Equal(t, slog.LevelWarn, b.logLevel.Level())

	screen.InjectKey(tcell.KeyRune, '+', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, '+', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, '+', tcell.ModNone)
	b.Refresh()
	assert.Equal(t, slog.LevelDebug, b.logLevel.Level(), "clamped at debug")
}

func TestTerminalImplementsBackend(t *testing.T) {
	var _ backend.Backend = (*Backend)(nil)
}

func TestTerminal_CleanupRestoresLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	b := NewWithScreen(tcell.NewSimulationScreen("UTF-8"))
	require.NoError(t, b.Init(backend.BackendConfig{}))
	assert.NotSame(t, prev, slog.Default())

	require.NoError(t, b.Cleanup())
	assert.Same(t, prev, slog.Default())
}
