package cpu

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/timing"
	"github.com/valerio/go-chip8/chip8/video"
)

const stackSize = 16

// CPU is the interpreter state: registers, stack, timers, memory and display,
// plus the injected peripherals it talks to once per 60Hz tick.
type CPU struct {
	// registers
	v          Registers
	i          uint16
	pc         uint16
	sp         uint8
	stack      [stackSize]uint16
	delayTimer uint8
	soundTimer uint8

	// metadata
	currentOpcode uint16
	on            bool

	mem *memory.Memory
	gfx *video.FrameBuffer

	display backend.Display
	audio   backend.Audio
	input   backend.Input

	clock       timing.Clock
	cyclePeriod time.Duration
	pacer       *timing.Pacer
	random      func() uint8
}

// Option customizes a CPU at construction.
type Option func(*CPU)

// WithClock sets the time source used for pacing. Defaults to the system clock.
func WithClock(clock timing.Clock) Option {
	return func(c *CPU) { c.clock = clock }
}

// WithCyclePeriod sets the minimum time between instructions.
func WithCyclePeriod(d time.Duration) Option {
	return func(c *CPU) { c.cyclePeriod = d }
}

// WithRandom sets the byte source used by CXNN.
func WithRandom(fn func() uint8) Option {
	return func(c *CPU) { c.random = fn }
}

// New returns a powered-on CPU with the font loaded and PC at the program start.
func New(display backend.Display, audio backend.Audio, input backend.Input, opts ...Option) *CPU {
	c := &CPU{
		pc:          memory.ProgramStart,
		on:          true,
		mem:         memory.New(),
		gfx:         video.NewFrameBuffer(),
		display:     display,
		audio:       audio,
		input:       input,
		clock:       timing.SystemClock{},
		cyclePeriod: timing.DefaultCyclePeriod,
		random:      func() uint8 { return uint8(rand.Intn(256)) },
	}

	for _, opt := range opts {
		opt(c)
	}

	c.pacer = timing.NewPacer(c.clock, c.cyclePeriod)
	return c
}

// Load copies a ROM into program memory.
func (c *CPU) Load(rom []byte) error {
	if err := c.mem.Load(rom); err != nil {
		return err
	}
	slog.Debug("ROM loaded", "bytes", len(rom))
	return nil
}

// ExecuteCycle runs one iteration of the paced loop: it services the 60Hz
// tick when due, then executes one instruction if a cycle is due or idles briefly otherwise.
func (c *CPU) ExecuteCycle() error {
	c.pacer.Update()

	if c.pacer.TickDue() {
		c.tick()
	}

	if !c.pacer.CycleDue() {
		c.pacer.Idle()
		return nil
	}

	return c.Step()
}

// Step fetches, decodes and executes the instruction at PC, then advances PC by 2.
func (c *CPU) Step() error {
	opcode, err := c.mem.ReadWord(c.pc)
	if err != nil {
		return fmt.Errorf("fetching opcode: %w", err)
	}
	c.currentOpcode = opcode

	instruction, ok := Decode(opcode)
	if !ok {
		return UnimplementedOpcodeError{Opcode: opcode, PC: c.pc}
	}

	if err := instruction(c, opcode); err != nil {
		return err
	}

	c.pc += 2
	return nil
}

// tick runs the 60Hz services: timers, beeper, display and input.
func (c *CPU) tick() {
	if c.delayTimer > 0 {
		c.delayTimer--
	}

	if c.soundTimer > 1 {
		c.audio.StartBeep()
	} else {
		c.audio.StopBeep()
	}
	if c.soundTimer > 0 {
		c.soundTimer--
	}

	c.display.Draw(c.gfx)

	c.input.Refresh()
	if c.input.IsQuitRequested() {
		c.Shutdown()
	}
}

// Shutdown turns the interpreter off. The run loop stops after the current cycle.
func (c *CPU) Shutdown() {
	if !c.on {
		return
	}
	c.on = false
	slog.Info("Interpreter shutting down", "pc", fmt.Sprintf("0x%04X", c.pc))
}

func (c *CPU) IsOn() bool {
	return c.on
}

// FrameBuffer returns the display buffer.
func (c *CPU) FrameBuffer() *video.FrameBuffer {
	return c.gfx
}

// Memory returns the address space.
func (c *CPU) Memory() *memory.Memory {
	return c.mem
}

// State returns a copy of the registers, stack and timers.
func (c *CPU) State() debug.CPUState {
	return debug.CPUState{
		Opcode:     c.currentOpcode,
		PC:         c.pc,
		I:          c.i,
		V:          c.v,
		SP:         c.sp,
		Stack:      c.stack,
		DelayTimer: c.delayTimer,
		SoundTimer: c.soundTimer,
		On:         c.on,
	}
}

// Dump writes the full machine state, display and memory included.
func (c *CPU) Dump(w io.Writer) error {
	return debug.Dump(w, c.State(), c.mem, c.gfx)
}

func (c *CPU) push(addr uint16) error {
	if int(c.sp) >= stackSize {
		return fmt.Errorf("%w: call at 0x%04X", ErrStackOverflow, c.pc)
	}
	c.stack[c.sp] = addr
	c.sp++
	return nil
}

func (c *CPU) pop() (uint16, error) {
	if c.sp == 0 {
		return 0, fmt.Errorf("%w: return at 0x%04X", ErrStackUnderflow, c.pc)
	}
	c.sp--
	addr := c.stack[c.sp]
	c.stack[c.sp] = 0
	return addr, nil
}

// waitForKey blocks until a key in 0x0..0xE is down, keeping the 60Hz
// services running so timers, display and quit requests stay live.
// VX is left untouched when the interpreter shuts down first.
func (c *CPU) waitForKey(x uint8) {
	for c.on {
		c.pacer.Update()
		if c.pacer.TickDue() {
			c.tick()
		}

		for key := uint8(0); key < 0xF; key++ {
			if c.input.IsKeyPressed(key) {
				c.v.Set(x, key)
				return
			}
		}

		c.pacer.Idle()
	}

	slog.Debug("Key wait interrupted by shutdown", "register", fmt.Sprintf("V%X", x))
}
