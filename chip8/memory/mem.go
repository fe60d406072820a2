package memory

import (
	"errors"
	"fmt"
	"io"

	"github.com/valerio/go-chip8/chip8/bit"
)

const (
	// Size is the amount of addressable memory, 4KB.
	Size = 0x1000
	// MaxAddress is the highest valid address.
	MaxAddress uint16 = Size - 1
	// ProgramStart is where ROMs are loaded and execution begins.
	ProgramStart uint16 = 0x200
	// MaxRomSize is the largest ROM that fits between ProgramStart and the end of memory.
	MaxRomSize = Size - int(ProgramStart)
	// FontStart is the address of the first built-in glyph.
	FontStart uint16 = 0x000
	// GlyphSize is the number of bytes (rows) in each built-in glyph.
	GlyphSize = 5
)

// ErrInvalidRomSize is returned when a ROM does not fit in program memory.
var ErrInvalidRomSize = errors.New("invalid ROM size")

// InvalidAddressError reports an access outside of the 4KB address space.
type InvalidAddressError struct {
	Address uint16
}

func (e InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid memory address 0x%04X", e.Address)
}

// font holds the 16 hexadecimal digit sprites, 5 bytes each.
var font = [16 * GlyphSize]uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Memory is the interpreter's flat 4KB address space.
type Memory struct {
	data [Size]uint8
}

// New returns a zeroed memory with the font table installed.
func New() *Memory {
	m := &Memory{}
	copy(m.data[FontStart:], font[:])
	return m
}

// Load copies a ROM image to ProgramStart.
// The memory is left untouched if the ROM is too large.
func (m *Memory) Load(rom []byte) error {
	if len(rom) > MaxRomSize {
		return fmt.Errorf("%w: %d bytes exceeds the %d byte limit", ErrInvalidRomSize, len(rom), MaxRomSize)
	}

	copy(m.data[ProgramStart:], rom)
	return nil
}

// Read returns the byte at addr.
func (m *Memory) Read(addr uint16) (uint8, error) {
	if addr > MaxAddress {
		return 0, InvalidAddressError{Address: addr}
	}
	return m.data[addr], nil
}

// Write stores value at addr.
func (m *Memory) Write(addr uint16, value uint8) error {
	if addr > MaxAddress {
		return InvalidAddressError{Address: addr}
	}
	m.data[addr] = value
	return nil
}

// ReadWord returns the big-endian 16 bit value stored at addr and addr+1.
func (m *Memory) ReadWord(addr uint16) (uint16, error) {
	if addr >= MaxAddress {
		return 0, InvalidAddressError{Address: addr}
	}
	return bit.Combine(m.data[addr], m.data[addr+1]), nil
}

// Bytes returns a copy of the whole address space.
func (m *Memory) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, m.data[:])
	return out
}

// GlyphAddress returns the address of the built-in sprite for digit.
// Values above 0xF are not masked and point past the font table.
func GlyphAddress(digit uint8) uint16 {
	return FontStart + uint16(digit)*GlyphSize
}

// Dump writes a hex table of the whole memory, 16 bytes per row.
func (m *Memory) Dump(w io.Writer) error {
	for row := 0; row < Size; row += 16 {
		if _, err := fmt.Fprintf(w, "%04X:", row); err != nil {
			return err
		}
		for _, b := range m.data[row : row+16] {
			if _, err := fmt.Fprintf(w, " %02X", b); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
