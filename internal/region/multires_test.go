package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiResolutionTagsCoarseRoom(t *testing.T) {
	segs := squareSegments(0, 0, 20, "muro") // 400 m^2: coarse tier
	regions, _ := MultiResolution(segs, 0.5, 1_000_000)
	require.NotEmpty(t, regions)
	found := false
	for _, r := range regions {
		if r.Resolution == "coarse" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestMultiResolutionTagsFineRoom(t *testing.T) {
	segs := squareSegments(0, 0, 0.5, "muro") // 0.25 m^2: fine tier
	regions, _ := MultiResolution(segs, 0.1, 1_000_000)
	require.NotEmpty(t, regions)
	for _, r := range regions {
		assert.Equal(t, "fine", string(r.Resolution))
	}
}

func TestMultiResolutionRespectsGlobalMinArea(t *testing.T) {
	segs := squareSegments(0, 0, 0.5, "muro") // 0.25 m^2, below the default floor
	regions, _ := MultiResolution(segs, 0.5, 1_000_000)
	assert.Empty(t, regions)
}
