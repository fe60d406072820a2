// Package chip8 wires the interpreter to a backend and drives the main loop.
package chip8

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/debug"
)

// Emulator owns an interpreter and the backend it runs against.
type Emulator struct {
	cpu     *cpu.CPU
	backend backend.Backend
	dump    io.Writer
}

type options struct {
	cpu    []cpu.Option
	config backend.BackendConfig
	dump   io.Writer
}

// Option customizes an Emulator at construction.
type Option func(*options)

// WithCPUOptions forwards options to the interpreter.
func WithCPUOptions(opts ...cpu.Option) Option {
	return func(o *options) { o.cpu = append(o.cpu, opts...) }
}

// WithBackendConfig sets the config passed to the backend's Init.
// The State field is always replaced by the interpreter.
func WithBackendConfig(config backend.BackendConfig) Option {
	return func(o *options) { o.config = config }
}

// WithDumpWriter sets where the machine dump goes on a fatal error. Defaults to stderr.
func WithDumpWriter(w io.Writer) Option {
	return func(o *options) { o.dump = w }
}

// New loads rom into a fresh interpreter and initializes the backend.
// Nothing is initialized when the ROM does not fit.
func New(rom []byte, b backend.Backend, opts ...Option) (*Emulator, error) {
	o := options{dump: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	c := cpu.New(b, b, b, o.cpu...)
	if err := c.Load(rom); err != nil {
		return nil, err
	}

	o.config.State = c
	if err := b.Init(o.config); err != nil {
		return nil, fmt.Errorf("initializing backend: %w", err)
	}

	return &Emulator{cpu: c, backend: b, dump: o.dump}, nil
}

// NewWithFile reads the ROM at path. The window title defaults to the file name.
func NewWithFile(path string, b backend.Backend, opts ...Option) (*Emulator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	slog.Debug("Loaded ROM file", "path", path, "bytes", len(data))

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	opts = append(opts, func(o *options) {
		if o.config.Title == "" {
			o.config.Title = title
		}
	})
	return New(data, b, opts...)
}

// Run executes cycles until the interpreter is switched off. On a fatal
// error the backend is cleaned up first, so the dump lands on a restored terminal.
func (e *Emulator) Run() error {
	for e.cpu.IsOn() {
		if err := e.cpu.ExecuteCycle(); err != nil {
			if cerr := e.backend.Cleanup(); cerr != nil {
				slog.Warn("Backend cleanup failed", "error", cerr)
			}
			fmt.Fprintf(e.dump, "fatal: %v\n", err)
			if derr := e.cpu.Dump(e.dump); derr != nil {
				slog.Warn("Failed to write machine dump", "error", derr)
			}
			return err
		}
	}

	return e.backend.Cleanup()
}

// Stop switches the interpreter off; Run returns after the current cycle.
func (e *Emulator) Stop() {
	e.cpu.Shutdown()
}

// State returns a copy of the interpreter registers.
func (e *Emulator) State() debug.CPUState {
	return e.cpu.State()
}
