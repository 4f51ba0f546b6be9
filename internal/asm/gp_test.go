package asm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepteams/convjit/internal/asm"
)

func TestPrologueEpilogueBalancePushPop(t *testing.T) {
	b := asm.NewBuffer(32)
	saved := []asm.GPReg{asm.RBX, asm.R12}
	b.Prologue(saved)
	b.Epilogue(saved)
	code, _ := b.Seal()

	// 2 pushes (1 byte each, R12 needs a REX prefix byte too) + 2 pops + 1 ret.
	require.Equal(t, byte(0x53), code[0], "push rbx")
	require.Equal(t, byte(0x41), code[1], "REX.B prefix for push r12")
	require.Equal(t, byte(0x54), code[2], "push r12 opcode")
	require.Equal(t, byte(0xC3), code[len(code)-1], "ret")
}

func TestMOVRegImm32EncodesSignExtendedImmediate(t *testing.T) {
	b := asm.NewBuffer(16)
	b.MOVRegImm32(asm.RAX, 42)
	code, _ := b.Seal()

	require.Equal(t, byte(0xC7), code[1])
	require.Equal(t, int32(42), int32(uint32(code[3])|uint32(code[4])<<8|uint32(code[5])<<16|uint32(code[6])<<24))
}
