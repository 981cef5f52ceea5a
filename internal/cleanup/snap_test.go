package cleanup

import (
	"testing"

	"github.com/arxos/boqtakeoff/internal/config"
	"github.com/arxos/boqtakeoff/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapMergesEndpointsWithinTolerance(t *testing.T) {
	segs := []model.Segment{
		{A: model.NewPoint(0, 0), B: model.NewPoint(10, 0), Layer: "muro"},
		{A: model.NewPoint(10, 0.005), B: model.NewPoint(10, 10), Layer: "muro"},
	}
	out := Snap(segs, 0.01)
	require.Len(t, out, 2)
	assert.Equal(t, out[0].B, out[1].A)
}

func TestSnapDropsCollapsedSegments(t *testing.T) {
	segs := []model.Segment{
		{A: model.NewPoint(0, 0), B: model.NewPoint(0.004, 0), Layer: "muro"},
	}
	out := Snap(segs, 0.01)
	assert.Empty(t, out)
}

// Running the snap pass twice with the same tolerance must produce
// identical output the second time: every cluster has already been
// replaced by its centroid, so there is nothing left to move.
func TestSnapIdempotent(t *testing.T) {
	segs := []model.Segment{
		{A: model.NewPoint(0, 0), B: model.NewPoint(10, 0.002), Layer: "muro"},
		{A: model.NewPoint(10, 0), B: model.NewPoint(10, 10), Layer: "muro"},
		{A: model.NewPoint(10.003, 10.001), B: model.NewPoint(0, 10), Layer: "tabiques"},
	}
	once := Snap(segs, 0.01)
	twice := Snap(once, 0.01)
	assert.Equal(t, once, twice)
}

// Cleanup never grows the segment set beyond the bridges gap-closing
// added, and never lets a zero-length segment through.
func TestRunContractionInvariant(t *testing.T) {
	segs := []model.Segment{
		{A: model.NewPoint(0, 0), B: model.NewPoint(10, 0.002), Layer: "muro"},
		{A: model.NewPoint(10, 0), B: model.NewPoint(10, 10), Layer: "muro"},
		{A: model.NewPoint(10, 10), B: model.NewPoint(0, 10), Layer: "muro"},
		{A: model.NewPoint(0, 10), B: model.NewPoint(0, 0.03), Layer: "muro"},
		{A: model.NewPoint(5, 5), B: model.NewPoint(5.001, 5), Layer: "muro"},
	}
	res := Run(segs, config.Default(), nil)

	bridges := 0
	for _, s := range res.Segments {
		assert.False(t, s.IsZeroLength())
		if s.Type == model.EntityBridge {
			bridges++
		}
	}
	assert.LessOrEqual(t, len(res.Segments), len(segs)+bridges)
}

func TestMergeCollinearJoinsChainAcrossLayers(t *testing.T) {
	segs := []model.Segment{
		{A: model.NewPoint(0, 0), B: model.NewPoint(5, 0), Layer: "muro"},
		{A: model.NewPoint(5, 0), B: model.NewPoint(10, 0), Layer: "tabiques"},
	}
	out := MergeCollinear(segs)
	require.Len(t, out, 1)
	assert.Equal(t, model.EntityMerged, out[0].Type)
	assert.InDelta(t, 10.0, out[0].Length(), 1e-9)
	assert.ElementsMatch(t, []string{"muro", "tabiques"}, out[0].ContributorLayers)
}

func TestMergeCollinearLeavesCornersAlone(t *testing.T) {
	segs := []model.Segment{
		{A: model.NewPoint(0, 0), B: model.NewPoint(5, 0), Layer: "muro"},
		{A: model.NewPoint(5, 0), B: model.NewPoint(5, 5), Layer: "muro"},
	}
	out := MergeCollinear(segs)
	assert.Len(t, out, 2)
}
