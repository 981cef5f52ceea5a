package layerfilter

import (
	"testing"

	"github.com/arxos/boqtakeoff/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsArchitecturalLayer(t *testing.T) {
	assert.True(t, IsArchitecturalLayer("A-ARQ-MUROS"))
	assert.True(t, IsArchitecturalLayer("mb-elev 2"))
	assert.False(t, IsArchitecturalLayer("dimensions"))
	assert.False(t, IsArchitecturalLayer("hvac"))
}

func TestFilterDropsNonArchitectural(t *testing.T) {
	segs := []model.Segment{
		{Layer: "a-arq-tabiques"},
		{Layer: "hvac-duct"},
		{Layer: "mb-auxiliar"},
	}
	res := Filter(segs, 0)
	require.Len(t, res.Segments, 2)
	require.Empty(t, res.Warnings)
}

func TestFilterEnforcesSegmentCap(t *testing.T) {
	segs := make([]model.Segment, 1000)
	for i := range segs {
		segs[i] = model.Segment{Layer: "muro"}
	}
	res := Filter(segs, 100)
	require.LessOrEqual(t, len(res.Segments), 100)
	require.NotEmpty(t, res.Warnings)
}
