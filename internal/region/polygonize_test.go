package region

import (
	"testing"

	"github.com/arxos/boqtakeoff/internal/cleanup"
	"github.com/arxos/boqtakeoff/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squareSegments(x0, y0, size float64, layer string) []model.Segment {
	p := func(x, y float64) model.Point { return model.NewPoint(x, y) }
	corners := []model.Point{
		p(x0, y0), p(x0+size, y0), p(x0+size, y0+size), p(x0, y0+size),
	}
	var segs []model.Segment
	for i := range corners {
		j := (i + 1) % len(corners)
		segs = append(segs, model.Segment{A: corners[i], B: corners[j], Layer: layer})
	}
	return segs
}

func TestExtractSingleClosedSquare(t *testing.T) {
	segs := squareSegments(0, 0, 10, "muro")
	regions, _ := Extract(segs, 0.5, 1_000_000)
	require.Len(t, regions, 1)
	assert.InDelta(t, 100, regions[0].Area, 1e-6)
	assert.Equal(t, "muro", regions[0].Layer)
	assert.Equal(t, model.RegionExtracted, regions[0].Kind)
}

func TestExtractTwoAdjacentSquaresYieldsTwoInteriorRegions(t *testing.T) {
	var segs []model.Segment
	segs = append(segs, squareSegments(0, 0, 10, "muro")...)
	segs = append(segs, squareSegments(10, 0, 10, "muro")...)
	regions, _ := Extract(segs, 0.5, 1_000_000)
	// The exterior face (largest) is discarded; both 10x10 rooms remain.
	require.Len(t, regions, 2)
	for _, r := range regions {
		assert.InDelta(t, 100, r.Area, 1e-6)
	}
}

func TestExtractDiscardsAreaOutsideRange(t *testing.T) {
	segs := squareSegments(0, 0, 1, "muro") // 1 m^2
	regions, _ := Extract(segs, 5, 1_000_000)
	assert.Empty(t, regions)
}

// An open square with a 3cm corner gap only becomes a region once
// gap-closing has bridged the gap; at a 1cm tolerance the bridge is
// never built and no region forms.
func TestExtractOpenSquareRequiresGapBridge(t *testing.T) {
	segs := []model.Segment{
		{A: model.NewPoint(0, 0), B: model.NewPoint(10, 0), Layer: "muro"},
		{A: model.NewPoint(10, 0), B: model.NewPoint(10, 10), Layer: "muro"},
		{A: model.NewPoint(10, 10), B: model.NewPoint(0, 10), Layer: "muro"},
		{A: model.NewPoint(0, 10), B: model.NewPoint(0, 0.03), Layer: "muro"},
	}

	closed, _ := cleanup.CloseGaps(segs, 0.05)
	regions, _ := Extract(closed, 0.5, 1_000_000)
	require.Len(t, regions, 1)
	assert.InDelta(t, 100, regions[0].Area, 0.5)

	still, _ := cleanup.CloseGaps(segs, 0.01)
	regions, _ = Extract(still, 0.5, 1_000_000)
	assert.Empty(t, regions)
}

func TestExtractEmptyInput(t *testing.T) {
	regions, warnings := Extract(nil, 0.5, 1_000_000)
	assert.Nil(t, regions)
	assert.Empty(t, warnings)
}

func TestPromoteHatchesPrefixesID(t *testing.T) {
	hatches := []model.HatchRegion{
		{
			Ring:    squareRing(0, 0, 5),
			Layer:   "FA_0.20",
			Area:    25,
			IsHatch: true,
		},
	}
	regions := PromoteHatches(hatches)
	require.Len(t, regions, 1)
	assert.Equal(t, model.RegionHatch, regions[0].Kind)
	assert.Equal(t, 25.0, regions[0].Area)
	assert.Contains(t, regions[0].ID, "hatch_")
}

func squareRing(x0, y0, size float64) []model.Point {
	return []model.Point{
		{X: x0, Y: y0}, {X: x0 + size, Y: y0},
		{X: x0 + size, Y: y0 + size}, {X: x0, Y: y0 + size},
	}
}

func TestDedupRegionsKeepsFirstPerLayerAndArea(t *testing.T) {
	regions := []*model.Region{
		{ID: "a", Layer: "muro", Area: 10.001},
		{ID: "b", Layer: "muro", Area: 10.004}, // rounds to same 10.00 key
		{ID: "c", Layer: "tabiques", Area: 10.001},
	}
	out := dedupRegions(regions)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "c", out[1].ID)
}
