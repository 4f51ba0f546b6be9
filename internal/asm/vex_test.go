package asm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepteams/convjit/internal/asm"
)

func TestVFMADD231PSRegEncodesThreeByteVEXPrefix(t *testing.T) {
	b := asm.NewBuffer(16)
	b.VFMADD231PSReg(asm.Ymm(0), asm.Ymm(1), asm.Ymm(2))
	code, _ := b.Seal()

	require.Equal(t, byte(0xC4), code[0], "VEX 3-byte prefix escape")
	require.Equal(t, byte(0xB8), code[3], "vfmadd231ps opcode")
	require.Equal(t, byte(1), code[2]&0x3, "pp field encodes the 66 prefix")
}

func TestZeroYmmIsSelfXorIdiom(t *testing.T) {
	b := asm.NewBuffer(16)
	b.ZeroYmm(asm.Ymm(3))
	code, _ := b.Seal()

	require.Equal(t, byte(0xEF), code[3], "vpxor opcode")
	modrm := code[4]
	require.Equal(t, byte(0xC0|3<<3|3), modrm, "dst and rm both encode ymm3")
}
