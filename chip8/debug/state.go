package debug

import (
	"fmt"
	"io"

	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/video"
)

// CPUState is a point-in-time copy of the interpreter registers.
type CPUState struct {
	Opcode     uint16
	PC         uint16
	I          uint16
	V          [16]uint8
	SP         uint8
	Stack      [16]uint16
	DelayTimer uint8
	SoundTimer uint8
	On         bool
}

// Dump writes a full machine report: registers, stack, timers, display and memory.
// mem and fb may be nil, in which case their sections are skipped.
func Dump(w io.Writer, state CPUState, mem *memory.Memory, fb *video.FrameBuffer) error {
	dw := &dumpWriter{w: w}

	dw.printf("opcode: %04X  PC: %04X  I: %04X\n", state.Opcode, state.PC, state.I)
	dw.printf("registers:\n")
	for row := 0; row < len(state.V); row += 8 {
		for i := row; i < row+8; i++ {
			dw.printf("  V%X=%02X", i, state.V[i])
		}
		dw.printf("\n")
	}

	dw.printf("stack (SP=%d):\n", state.SP)
	for row := 0; row < len(state.Stack); row += 8 {
		for i := row; i < row+8; i++ {
			marker := ' '
			if uint8(i) == state.SP {
				marker = '>'
			}
			dw.printf(" %c%04X", marker, state.Stack[i])
		}
		dw.printf("\n")
	}

	dw.printf("timers: DT=%d ST=%d\n", state.DelayTimer, state.SoundTimer)

	if fb != nil && dw.err == nil {
		dw.printf("display:\n")
		if err := fb.Dump(w); err != nil {
			return err
		}
	}

	if mem != nil && dw.err == nil {
		dw.printf("memory:\n")
		if err := mem.Dump(w); err != nil {
			return err
		}
	}

	return dw.err
}

type dumpWriter struct {
	w   io.Writer
	err error
}

func (d *dumpWriter) printf(format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, format, args...)
}
