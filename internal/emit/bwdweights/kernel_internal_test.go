package bwdweights

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepteams/convjit/internal/desc"
	"github.com/deepteams/convjit/internal/jcp"
)

func wideICConf() *jcp.ConvConf {
	return &jcp.ConvConf{
		Direction:    jcp.BackwardWeights,
		IC:           64,
		OC:           64,
		IH:           14,
		IW:           14,
		OH:           14,
		OW:           14,
		KH:           3,
		KW:           3,
		StrideH:      1,
		StrideW:      1,
		TPad:         1,
		LPad:         1,
		SrcFmt:       desc.NChw8c,
		WeightsFmt:   desc.OIhw8i8o,
		DstFmt:       desc.NChw8c,
		ICBlock:      8,
		OCBlock:      8,
		NBIC:         8,
		NBOC:         8,
		NBICBlocking: 1,
		NBOCBlocking: 1,
		ICBlockStep:  4, // kw=3 -> step 4, two chunks per ICBlock=8
	}
}

// TestICChunkLoopCoversFullICBlock guards the fix restoring the original
// runtime b_ic loop (spec §4.4's compute_ic_block_step): stepping icChunk
// by ICBlockStep up to ICBlock, as Emit's chunk loop does, must visit
// every channel of the IC block. The test replays that loop arithmetic
// for wideICConf; it does not call Emit.
func TestICChunkLoopCoversFullICBlock(t *testing.T) {
	conf := wideICConf()

	seen := make(map[int]bool)
	for icChunk := 0; icChunk < conf.ICBlock; icChunk += conf.ICBlockStep {
		for ic := 0; ic < conf.ICBlockStep; ic++ {
			seen[icChunk+ic] = true
		}
	}

	for ic := 0; ic < conf.ICBlock; ic++ {
		require.Truef(t, seen[ic], "channel %d of the IC block was never visited", ic)
	}
	require.Len(t, seen, conf.ICBlock)
}

// TestFiltMemAddressesSpanFullICBlock checks that the filter addresses
// computed across every (icChunk, kw, ic) triple the chunk loop visits at
// kh=0 are all distinct and number kw*ic_block,
// confirming the chunked loop reaches memory the single-chunk version
// never touched (channels icBlockStep..ICBlock-1).
func TestFiltMemAddressesSpanFullICBlock(t *testing.T) {
	conf := wideICConf()

	disps := make(map[int32]bool)
	for icChunk := 0; icChunk < conf.ICBlock; icChunk += conf.ICBlockStep {
		for kw := 0; kw < conf.KW; kw++ {
			for ic := 0; ic < conf.ICBlockStep; ic++ {
				m := filtMem(conf, 0, kw, icChunk+ic)
				require.False(t, disps[m.Disp], "duplicate filter displacement %d", m.Disp)
				disps[m.Disp] = true
			}
		}
	}
	require.Len(t, disps, conf.KW*conf.ICBlock)

	// The last channel of the second chunk must be reachable; before the
	// fix, icChunk never advanced past 0 and this address was never
	// computed by Emit at all.
	last := filtMem(conf, 0, conf.KW-1, conf.ICBlock-1)
	require.True(t, disps[last.Disp])
}
