package jcp_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepteams/convjit/internal/jcp"
)

func TestFwdAccRegNoCollisionAcrossBlockAndColumn(t *testing.T) {
	seen := map[int]bool{}
	nbBlocking, urW := 4, 3
	for ii := 0; ii < nbBlocking; ii++ {
		for jj := 0; jj < urW; jj++ {
			r := jcp.FwdAccReg(ii, jj, urW)
			require.False(t, seen[r], "register %d reused by (ii=%d,jj=%d)", r, ii, jj)
			seen[r] = true
		}
	}
}

func TestFwdRegisterBudgetRejectsOverflow(t *testing.T) {
	_, ok := jcp.FwdRegisterBudget(4, 3, false)
	require.True(t, ok) // 4*3 + 3 = 15, fits under the 15-register limit... exactly at it

	_, ok = jcp.FwdRegisterBudget(4, 4, false)
	require.False(t, ok) // 4*4 + 4 = 20, overflows
}

func TestFwdRegisterBudgetReservesReluMask(t *testing.T) {
	hw, ok := jcp.FwdRegisterBudget(4, 3, true)
	require.Equal(t, 15, hw)
	require.True(t, ok) // accumulators 0..11 leave register 14 free for the epilogue mask
}

func TestBWAccRegNoCollision(t *testing.T) {
	seen := map[int]bool{}
	kw, icBlockStep := 3, 4
	for i := 0; i < kw; i++ {
		for j := 0; j < icBlockStep; j++ {
			r := jcp.BWAccReg(i, j, icBlockStep)
			require.False(t, seen[r])
			seen[r] = true
		}
	}
	out := jcp.BWOutputScratch(kw, icBlockStep)
	in := jcp.BWInputScratch(kw, icBlockStep)
	require.False(t, seen[out], "output scratch register collides with an accumulator")
	require.NotEqual(t, out, in)
}

func TestBWRegisterBudget(t *testing.T) {
	hw, ok := jcp.BWRegisterBudget(3, 4)
	require.Equal(t, 13, hw)
	require.True(t, ok)

	_, ok = jcp.BWRegisterBudget(7, 2)
	require.True(t, ok) // 7*2+1 = 15, still under 16
}
