package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSliceIndex(t *testing.T) {
	tests := []struct {
		in   string
		want SliceIndex
	}{
		{"source", AtBoundary(Source)},
		{"target", AtBoundary(Target)},
		{"r0", AtHeight(Regular(0))},
		{"s12", AtHeight(Singular(12))},
	}
	for _, tt := range tests {
		got, err := ParseSliceIndex(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.in, got.String())
	}

	for _, bad := range []string{"", "s", "x1", "r-1", "sideways"} {
		_, err := ParseSliceIndex(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseEnums(t *testing.T) {
	b, err := ParseBias("higher")
	require.NoError(t, err)
	assert.Equal(t, BiasHigher, b)
	_, err = ParseBias("sideways")
	assert.Error(t, err)

	d, err := ParseDirection("backward")
	require.NoError(t, err)
	assert.Equal(t, Backward, d)
	_, err = ParseDirection("up")
	assert.Error(t, err)
}
