package asm

// Mem is a base+displacement memory operand: [Base + Disp]. Every address
// the emitters compute (spec §4.2/§4.3/§4.4's offset formulas) resolves to
// one of these — the kernel never uses indexed or RIP-relative
// addressing, mirroring the original's `ptr[reg + sizeof(float)*offset]`
// convention.
type Mem struct {
	Base GPReg
	Disp int32
}

// Plus returns a copy of m with byteOffset added to the displacement.
func (m Mem) Plus(byteOffset int) Mem {
	return Mem{Base: m.Base, Disp: m.Disp + int32(byteOffset)}
}

// FloatSize is sizeof(float) in the byte-address arithmetic the planner
// and emitters use throughout (spec §4.2, "all addresses are expressed in
// bytes using float size 4").
const FloatSize = 4
