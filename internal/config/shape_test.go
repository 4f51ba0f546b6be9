package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepteams/convjit"
	"github.com/deepteams/convjit/internal/config"
)

func TestBuildShapeFromDefaults(t *testing.T) {
	shape, err := config.BuildShape(config.DefaultConfig().Problem)
	require.NoError(t, err)
	require.Equal(t, convjit.Forward, shape.Direction)
	require.Equal(t, 64, shape.Src.Dim(1))
}

func TestParseFormatIsCaseInsensitive(t *testing.T) {
	f, err := config.ParseFormat("NChw8c")
	require.NoError(t, err)
	require.Equal(t, convjit.NChw8c, f)
}

func TestParseFormatRejectsUnknown(t *testing.T) {
	_, err := config.ParseFormat("bogus")
	require.Error(t, err)
}

func TestParseDirectionRejectsUnknown(t *testing.T) {
	_, err := config.ParseDirection("sideways")
	require.Error(t, err)
}

func TestBuildShapeRejectsBadFormat(t *testing.T) {
	p := config.DefaultConfig().Problem
	p.SrcFormat = "bogus"
	_, err := config.BuildShape(p)
	require.Error(t, err)
}
