package cpu

import (
	"github.com/valerio/go-chip8/chip8/bit"
	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/video"
)

// Opcode executes one decoded instruction. Instructions that transfer
// control set PC two bytes before their target, since Step always advances by 2 afterwards.
type Opcode func(c *CPU, opcode uint16) error

// Decode resolves an opcode word to its instruction.
func Decode(opcode uint16) (Opcode, bool) {
	var instr Opcode

	switch bit.Nibble(opcode, 3) {
	case 0x0:
		switch opcode {
		case 0x00E0:
			instr = opcode00E0
		case 0x00EE:
			instr = opcode00EE
		}
	case 0x8:
		instr = aluOpcodes[bit.Nibble(opcode, 0)]
	case 0xE:
		switch bit.Low(opcode) {
		case 0x9E:
			instr = opcodeEX9E
		case 0xA1:
			instr = opcodeEXA1
		}
	case 0xF:
		instr = miscOpcodes[bit.Low(opcode)]
	default:
		instr = opcodes[bit.Nibble(opcode, 3)]
	}

	return instr, instr != nil
}

var opcodes = [16]Opcode{
	0x1: opcode1NNN,
	0x2: opcode2NNN,
	0x3: opcode3XNN,
	0x4: opcode4XNN,
	0x5: opcode5XY0,
	0x6: opcode6XNN,
	0x7: opcode7XNN,
	0x9: opcode9XY0,
	0xA: opcodeANNN,
	0xB: opcodeBNNN,
	0xC: opcodeCXNN,
	0xD: opcodeDXYN,
}

var aluOpcodes = [16]Opcode{
	0x0: opcode8XY0,
	0x1: opcode8XY1,
	0x2: opcode8XY2,
	0x3: opcode8XY3,
	0x4: opcode8XY4,
	0x5: opcode8XY5,
	0x6: opcode8XY6,
	0x7: opcode8XY7,
	0xE: opcode8XYE,
}

var miscOpcodes = map[uint8]Opcode{
	0x07: opcodeFX07,
	0x0A: opcodeFX0A,
	0x15: opcodeFX15,
	0x18: opcodeFX18,
	0x1E: opcodeFX1E,
	0x29: opcodeFX29,
	0x33: opcodeFX33,
	0x55: opcodeFX55,
	0x65: opcodeFX65,
}

func regX(opcode uint16) uint8 { return bit.Nibble(opcode, 2) }
func regY(opcode uint16) uint8 { return bit.Nibble(opcode, 1) }

func (c *CPU) skipIf(cond bool) {
	if cond {
		c.pc += 2
	}
}

// CLS
func opcode00E0(c *CPU, _ uint16) error {
	c.gfx.Clear()
	return nil
}

// RET
func opcode00EE(c *CPU, _ uint16) error {
	addr, err := c.pop()
	if err != nil {
		return err
	}
	c.pc = addr
	return nil
}

// JP addr
func opcode1NNN(c *CPU, opcode uint16) error {
	c.pc = bit.Addr(opcode) - 2
	return nil
}

// CALL addr
func opcode2NNN(c *CPU, opcode uint16) error {
	if err := c.push(c.pc); err != nil {
		return err
	}
	c.pc = bit.Addr(opcode) - 2
	return nil
}

// SE Vx, byte
func opcode3XNN(c *CPU, opcode uint16) error {
	c.skipIf(c.v.Get(regX(opcode)) == bit.Low(opcode))
	return nil
}

// SNE Vx, byte
func opcode4XNN(c *CPU, opcode uint16) error {
	c.skipIf(c.v.Get(regX(opcode)) != bit.Low(opcode))
	return nil
}

// SE Vx, Vy
func opcode5XY0(c *CPU, opcode uint16) error {
	c.skipIf(c.v.Get(regX(opcode)) == c.v.Get(regY(opcode)))
	return nil
}

// LD Vx, byte
func opcode6XNN(c *CPU, opcode uint16) error {
	c.v.Set(regX(opcode), bit.Low(opcode))
	return nil
}

// ADD Vx, byte. VF is not affected.
func opcode7XNN(c *CPU, opcode uint16) error {
	x := regX(opcode)
	c.v.Set(x, c.v.Get(x)+bit.Low(opcode))
	return nil
}

// LD Vx, Vy
func opcode8XY0(c *CPU, opcode uint16) error {
	c.v.Set(regX(opcode), c.v.Get(regY(opcode)))
	return nil
}

// OR Vx, Vy
func opcode8XY1(c *CPU, opcode uint16) error {
	x := regX(opcode)
	c.v.Set(x, c.v.Get(x)|c.v.Get(regY(opcode)))
	return nil
}

// AND Vx, Vy
func opcode8XY2(c *CPU, opcode uint16) error {
	x := regX(opcode)
	c.v.Set(x, c.v.Get(x)&c.v.Get(regY(opcode)))
	return nil
}

// XOR Vx, Vy
func opcode8XY3(c *CPU, opcode uint16) error {
	x := regX(opcode)
	c.v.Set(x, c.v.Get(x)^c.v.Get(regY(opcode)))
	return nil
}

// ADD Vx, Vy. VF = carry.
func opcode8XY4(c *CPU, opcode uint16) error {
	x := regX(opcode)
	sum, carry := bit.CheckedAdd(c.v.Get(x), c.v.Get(regY(opcode)))
	c.v.Set(x, sum)
	c.v.setFlag(carry)
	return nil
}

// SUB Vx, Vy. VF = 1 when Vx >= Vy.
func opcode8XY5(c *CPU, opcode uint16) error {
	x := regX(opcode)
	diff, borrow := bit.CheckedSub(c.v.Get(x), c.v.Get(regY(opcode)))
	c.v.Set(x, diff)
	c.v.setFlag(!borrow)
	return nil
}

// SHR Vx. VF = bit shifted out.
func opcode8XY6(c *CPU, opcode uint16) error {
	x := regX(opcode)
	vx := c.v.Get(x)
	c.v.Set(x, vx>>1)
	c.v.setFlag(bit.IsSet(0, vx))
	return nil
}

// SUBN Vx, Vy. Vx = Vy - Vx, VF = 1 when Vx <= Vy.
func opcode8XY7(c *CPU, opcode uint16) error {
	x := regX(opcode)
	diff, borrow := bit.CheckedSub(c.v.Get(regY(opcode)), c.v.Get(x))
	c.v.Set(x, diff)
	c.v.setFlag(!borrow)
	return nil
}

// SHL Vx. VF takes the least significant bit of Vx, not the one shifted out;
// ROMs written against this interpreter depend on it.
func opcode8XYE(c *CPU, opcode uint16) error {
	x := regX(opcode)
	vx := c.v.Get(x)
	c.v.Set(x, vx<<1)
	c.v.setFlag(bit.IsSet(0, vx))
	return nil
}

// SNE Vx, Vy
func opcode9XY0(c *CPU, opcode uint16) error {
	c.skipIf(c.v.Get(regX(opcode)) != c.v.Get(regY(opcode)))
	return nil
}

// LD I, addr
func opcodeANNN(c *CPU, opcode uint16) error {
	c.i = bit.Addr(opcode)
	return nil
}

// JP V0, addr
func opcodeBNNN(c *CPU, opcode uint16) error {
	c.pc = bit.Addr(opcode) + uint16(c.v.Get(0)) - 2
	return nil
}

// RND Vx, byte
func opcodeCXNN(c *CPU, opcode uint16) error {
	c.v.Set(regX(opcode), c.random()&bit.Low(opcode))
	return nil
}

// DRW Vx, Vy, nibble. XORs an 8xN sprite read from I onto the display,
// wrapping around the buffer. VF = 1 if any lit pixel was erased.
func opcodeDXYN(c *CPU, opcode uint16) error {
	x := int(c.v.Get(regX(opcode)))
	y := int(c.v.Get(regY(opcode)))
	height := uint16(bit.Nibble(opcode, 0))

	collision := false
	for row := uint16(0); row < height; row++ {
		sprite, err := c.mem.Read(c.i + row)
		if err != nil {
			return err
		}
		for col := 0; col < 8; col++ {
			if !bit.IsSet(uint8(7-col), sprite) {
				continue
			}
			if c.gfx.XorSet(video.Index(x+col, y+int(row)), true) {
				collision = true
			}
		}
	}

	c.v.setFlag(collision)
	return nil
}

// SKP Vx
func opcodeEX9E(c *CPU, opcode uint16) error {
	c.skipIf(c.input.IsKeyPressed(c.v.Get(regX(opcode))))
	return nil
}

// SKNP Vx
func opcodeEXA1(c *CPU, opcode uint16) error {
	c.skipIf(!c.input.IsKeyPressed(c.v.Get(regX(opcode))))
	return nil
}

// LD Vx, DT
func opcodeFX07(c *CPU, opcode uint16) error {
	c.v.Set(regX(opcode), c.delayTimer)
	return nil
}

// LD Vx, K
func opcodeFX0A(c *CPU, opcode uint16) error {
	c.waitForKey(regX(opcode))
	return nil
}

// LD DT, Vx
func opcodeFX15(c *CPU, opcode uint16) error {
	c.delayTimer = c.v.Get(regX(opcode))
	return nil
}

// LD ST, Vx
func opcodeFX18(c *CPU, opcode uint16) error {
	c.soundTimer = c.v.Get(regX(opcode))
	return nil
}

// ADD I, Vx. VF is set when I leaves the address space and left alone otherwise.
func opcodeFX1E(c *CPU, opcode uint16) error {
	c.i += uint16(c.v.Get(regX(opcode)))
	if c.i > memory.MaxAddress {
		c.v.setFlag(true)
	}
	return nil
}

// LD F, Vx
func opcodeFX29(c *CPU, opcode uint16) error {
	c.i = memory.GlyphAddress(c.v.Get(regX(opcode)))
	return nil
}

// LD B, Vx. Stores the decimal digits of Vx at I, I+1 and I+2.
func opcodeFX33(c *CPU, opcode uint16) error {
	vx := c.v.Get(regX(opcode))
	digits := [3]uint8{vx / 100, (vx / 10) % 10, vx % 10}
	for n, d := range digits {
		if err := c.mem.Write(c.i+uint16(n), d); err != nil {
			return err
		}
	}
	return nil
}

// LD [I], Vx. Stores V0..Vx inclusive; I is unchanged.
func opcodeFX55(c *CPU, opcode uint16) error {
	last := regX(opcode)
	for r := uint8(0); r <= last; r++ {
		if err := c.mem.Write(c.i+uint16(r), c.v.Get(r)); err != nil {
			return err
		}
	}
	return nil
}

// LD Vx, [I]. Loads V0..Vx inclusive; I is unchanged.
func opcodeFX65(c *CPU, opcode uint16) error {
	last := regX(opcode)
	for r := uint8(0); r <= last; r++ {
		value, err := c.mem.Read(c.i + uint16(r))
		if err != nil {
			return err
		}
		c.v.Set(r, value)
	}
	return nil
}
