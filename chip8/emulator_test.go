package chip8

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/headless"
	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/timing"
)

// trackingBackend records the lifecycle calls made on a headless backend.
type trackingBackend struct {
	*headless.Backend
	config   backend.BackendConfig
	inits    int
	cleanups int
}

func (b *trackingBackend) Init(config backend.BackendConfig) error {
	b.inits++
	b.config = config
	return b.Backend.Init(config)
}

func (b *trackingBackend) Cleanup() error {
	b.cleanups++
	return b.Backend.Cleanup()
}

func newTracking(frames int) *trackingBackend {
	return &trackingBackend{Backend: headless.New(frames, headless.SnapshotConfig{})}
}

func manualClock() Option {
	return WithCPUOptions(cpu.WithClock(timing.NewManualClock()))
}

func TestEmulator_Run(t *testing.T) {
	rom := []byte{
		0x60, 0x05, // V0 = 5
		0x61, 0x03, // V1 = 3
		0x80, 0x14, // V0 += V1
		0x12, 0x06, // jump to self
	}
	b := newTracking(3)

	emu, err := New(rom, b, manualClock())
	require.NoError(t, err)
	require.NoError(t, emu.Run())

	state := emu.State()
	assert.Equal(t, uint8(8), state.V[0])
	assert.Equal(t, uint8(0), state.V[0xF])
	assert.Equal(t, uint16(0x206), state.PC)
	assert.False(t, state.On)

	assert.Equal(t, 3, b.Frames())
	assert.Equal(t, 1, b.inits)
	assert.Equal(t, 1, b.cleanups)
	assert.NotNil(t, b.config.State, "interpreter is handed to the backend")
}

func TestEmulator_FatalErrorDumps(t *testing.T) {
	b := newTracking(0)
	var dump bytes.Buffer

	emu, err := New([]byte{0x01, 0x23}, b, manualClock(), WithDumpWriter(&dump))
	require.NoError(t, err)

	err = emu.Run()
	var unimplemented cpu.UnimplementedOpcodeError
	require.ErrorAs(t, err, &unimplemented)
	assert.Equal(t, uint16(0x0123), unimplemented.Opcode)

	assert.Equal(t, 1, b.cleanups)
	assert.Contains(t, dump.String(), "fatal: ")
	assert.Contains(t, dump.String(), "PC: 0200")
	assert.Contains(t, dump.String(), "memory:")
}

func TestEmulator_OversizeROM(t *testing.T) {
	b := newTracking(0)

	_, err := New(make([]byte, memory.MaxRomSize+1), b)

	assert.ErrorIs(t, err, memory.ErrInvalidRomSize)
	assert.Zero(t, b.inits, "backend untouched when the ROM does not load")
}

func TestEmulator_Stop(t *testing.T) {
	b := newTracking(0)
	emu, err := New([]byte{0x12, 0x00}, b, manualClock())
	require.NoError(t, err)

	emu.Stop()

	require.NoError(t, emu.Run())
	assert.Equal(t, 1, b.cleanups)
	assert.Zero(t, b.Frames())
}

func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pong.ch8")
	require.NoError(t, os.WriteFile(path, []byte{0x00, 0xE0}, 0o644))

	t.Run("title from file name", func(t *testing.T) {
		b := newTracking(1)
		_, err := NewWithFile(path, b)
		require.NoError(t, err)
		assert.Equal(t, "pong", b.config.Title)
	})

	t.Run("explicit title wins", func(t *testing.T) {
		b := newTracking(1)
		_, err := NewWithFile(path, b, WithBackendConfig(backend.BackendConfig{Title: "Pong!"}))
		require.NoError(t, err)
		assert.Equal(t, "Pong!", b.config.Title)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewWithFile(filepath.Join(t.TempDir(), "missing.ch8"), newTracking(1))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
