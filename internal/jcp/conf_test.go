package jcp_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepteams/convjit/internal/desc"
	"github.com/deepteams/convjit/internal/jcp"
)

func TestFlatDetectsThreeChannelInput(t *testing.T) {
	c := jcp.ConvConf{IC: 3}
	require.True(t, c.Flat())

	c.IC = 64
	require.False(t, c.Flat())
}

func TestInpMultMatchesLayout(t *testing.T) {
	c := jcp.ConvConf{IC: 3, ICBlock: 3, SrcFmt: desc.NCHW}
	require.Equal(t, 1, c.InpMult())

	c = jcp.ConvConf{IC: 64, ICBlock: 8, SrcFmt: desc.NChw8c}
	require.Equal(t, 8, c.InpMult())
}
