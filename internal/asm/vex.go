package asm

// AVX2/FMA (VEX-encoded) vector instruction encoders. Only the handful of
// forms the three emitters actually need are implemented — this is not a
// general assembler, it is the minimal substrate spec §9 calls for:
// "a small IR... lowered afterward" collapsed to direct byte emission
// since every instruction here has a single fixed operand shape.
//
// VEX opcode-map (mmmmm) and prefix (pp) values used below:
//
//	mmmmm: 1 = 0F, 2 = 0F38, 3 = 0F3A
//	pp:    0 = none, 1 = 66, 2 = F3, 3 = F2
const (
	mmOF   = 1
	mmOF38 = 2
	mmOF3A = 3

	ppNone = 0
	pp66   = 1

	vecL256 = 1
)

// emitVEX3 writes the 3-byte VEX prefix (C4 byte1 byte2). rExt/xExt/bExt
// are the extension bits (pre-inversion) for the ModRM.reg, SIB.index,
// and ModRM.rm/SIB.base fields respectively; vvvv is the non-destructive
// source register (0 when unused, which correctly encodes to all-ones).
func (b *Buffer) emitVEX3(rExt, xExt, bExt byte, mmmmm, w, vvvv, l, pp byte) {
	byte1 := (^rExt&1)<<7 | (^xExt&1)<<6 | (^bExt&1)<<5 | mmmmm
	byte2 := w<<7 | (^vvvv&0xF)<<3 | l<<2 | pp
	b.emitBytes(0xC4, byte1, byte2)
}

// emitModRMYmmReg writes a register-direct ModRM byte (mod=11) selecting
// rm as a vector register.
func (b *Buffer) emitModRMYmmReg(regField byte, rm Ymm) {
	b.emitByte(0xC0 | regField<<3 | rm.low3())
}

// VBROADCASTSS emits `vbroadcastss dst, [mem]` (VEX.256.66.0F38.W0 18 /r):
// splats a scalar float across all 8 lanes of dst.
func (b *Buffer) VBROADCASTSS(dst Ymm, mem Mem) {
	b.emitVEX3(dst.ext(), 0, mem.Base.ext(), mmOF38, 0, 0, vecL256, pp66)
	b.emitByte(0x18)
	b.emitModRMMem(dst.low3(), mem.Base, mem.Disp)
}

// VMOVUPSLoad emits `vmovups dst, [mem]` (VEX.256.0F.WIG 10 /r).
func (b *Buffer) VMOVUPSLoad(dst Ymm, mem Mem) {
	b.emitVEX3(dst.ext(), 0, mem.Base.ext(), mmOF, 0, 0, vecL256, ppNone)
	b.emitByte(0x10)
	b.emitModRMMem(dst.low3(), mem.Base, mem.Disp)
}

// VMOVUPSStore emits `vmovups [mem], src` (VEX.256.0F.WIG 11 /r).
func (b *Buffer) VMOVUPSStore(mem Mem, src Ymm) {
	b.emitVEX3(src.ext(), 0, mem.Base.ext(), mmOF, 0, 0, vecL256, ppNone)
	b.emitByte(0x11)
	b.emitModRMMem(src.low3(), mem.Base, mem.Disp)
}

// VFMADD231PSReg emits `vfmadd231ps dst, src1, src2`
// (dst += src1*src2; VEX.DDS.256.66.0F38.W0 B8 /r) — the reduction's
// inner accumulation op, used for every K_W/K_H step in all three
// directions.
func (b *Buffer) VFMADD231PSReg(dst, src1, src2 Ymm) {
	b.emitVEX3(dst.ext(), 0, src2.ext(), mmOF38, 0, byte(src1), vecL256, pp66)
	b.emitByte(0xB8)
	b.emitModRMYmmReg(dst.low3(), src2)
}

// VPXORReg emits `vpxor dst, src1, src2` (VEX.256.66.0F.WIG EF /r). Called
// with dst==src1==src2 as the zero-accumulator idiom.
func (b *Buffer) VPXORReg(dst, src1, src2 Ymm) {
	b.emitVEX3(dst.ext(), 0, src2.ext(), mmOF, 0, byte(src1), vecL256, pp66)
	b.emitByte(0xEF)
	b.emitModRMYmmReg(dst.low3(), src2)
}

// VXORPSReg emits `vxorps dst, src1, src2` (VEX.256.0F.WIG 57 /r).
func (b *Buffer) VXORPSReg(dst, src1, src2 Ymm) {
	b.emitVEX3(dst.ext(), 0, src2.ext(), mmOF, 0, byte(src1), vecL256, ppNone)
	b.emitByte(0x57)
	b.emitModRMYmmReg(dst.low3(), src2)
}

// cmpGTOS is the VCMPPS predicate immediate for the pseudo-op vcmpgtps
// (greater-than, ordered, signaling).
const cmpGTOS = 0x0E

// VCMPGTPSReg emits `vcmpgtps dst, src1, src2` (dst = src1 > src2 ? -1 :
// 0; VEX.256.0F.WIG C2 /r ib with imm8=cmpGTOS).
func (b *Buffer) VCMPGTPSReg(dst, src1, src2 Ymm) {
	b.emitVEX3(dst.ext(), 0, src2.ext(), mmOF, 0, byte(src1), vecL256, ppNone)
	b.emitByte(0xC2)
	b.emitModRMYmmReg(dst.low3(), src2)
	b.emitByte(cmpGTOS)
}

// VBLENDVPSReg emits `vblendvps dst, src1, src2, selector`
// (dst = selector_lane_msb ? src2 : src1; VEX.256.66.0F3A.W0 4A /r /is4).
func (b *Buffer) VBLENDVPSReg(dst, src1, src2, selector Ymm) {
	b.emitVEX3(dst.ext(), 0, src2.ext(), mmOF3A, 0, byte(src1), vecL256, pp66)
	b.emitByte(0x4A)
	b.emitModRMYmmReg(dst.low3(), src2)
	b.emitByte(byte(selector) << 4)
}

// ZeroYmm emits the zero-register idiom `vpxor dst, dst, dst`.
func (b *Buffer) ZeroYmm(dst Ymm) { b.VPXORReg(dst, dst, dst) }
