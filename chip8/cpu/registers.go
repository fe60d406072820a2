package cpu

const flagRegister uint8 = 0xF

// Registers is the V0..VF register file. VF doubles as the flag register.
type Registers [16]uint8

func (r *Registers) Get(x uint8) uint8 {
	return r[x&0xF]
}

func (r *Registers) Set(x uint8, value uint8) {
	r[x&0xF] = value
}

func (r *Registers) setFlag(on bool) {
	if on {
		r[flagRegister] = 1
	} else {
		r[flagRegister] = 0
	}
}
