package bit

// Combine combines two 8 bit values into a single 16 bit value.
// The high byte will be the most significant one.
func Combine(high, low uint8) uint16 {
	return (uint16(high) << 8) | uint16(low)
}

// CheckedAdd adds two 8 bit unsigned values and reports whether the sum carried past 0xFF.
func CheckedAdd(a, b uint8) (result uint8, carry bool) {
	sum := uint16(a) + uint16(b)
	return uint8(sum), sum > 0xFF
}

// CheckedSub subtracts b from a and reports whether the subtraction borrowed.
func CheckedSub(a, b uint8) (result uint8, borrow bool) {
	return a - b, b > a
}

// IsSet will check if the bit at the specified index is set to 1 or not.
func IsSet(index, value uint8) bool {
	return ((value >> index) & 1) == 1
}

// Low returns the low (LSB) part of a 16 bit number.
func Low(value uint16) uint8 {
	return uint8(value)
}

// High returns the high (MSB) part of a 16 bit number.
func High(value uint16) uint8 {
	return uint8(value >> 8)
}

// Nibble returns the 4 bit group at position index of a 16 bit word,
// where index 0 is the least significant nibble.
func Nibble(value uint16, index uint8) uint8 {
	return uint8(value>>(index*4)) & 0xF
}

// Addr returns the low 12 bits of an opcode, the NNN operand.
func Addr(opcode uint16) uint16 {
	return opcode & 0x0FFF
}
