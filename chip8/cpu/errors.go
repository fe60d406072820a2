package cpu

import (
	"errors"
	"fmt"
)

var (
	// ErrStackOverflow is returned when a call is made with all 16 stack slots in use.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is returned when returning with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")
)

// UnimplementedOpcodeError is returned for any word that does not decode to an instruction.
type UnimplementedOpcodeError struct {
	Opcode uint16
	PC     uint16
}

func (e UnimplementedOpcodeError) Error() string {
	return fmt.Sprintf("unimplemented opcode 0x%04X at 0x%04X", e.Opcode, e.PC)
}
