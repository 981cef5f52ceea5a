package region

import (
	"fmt"
	"math"
	"sort"

	"github.com/arxos/boqtakeoff/internal/cleanup"
	"github.com/arxos/boqtakeoff/internal/model"
)

type resTier struct {
	resolution model.Resolution
	tolerance  float64
	minArea    float64
	maxArea    float64
}

var resolutionTiers = []resTier{
	{model.ResolutionCoarse, 0.1, 10, math.Inf(1)},
	{model.ResolutionMedium, 0.01, 1, 10},
	{model.ResolutionFine, 0.001, 0, 1},
}

// MultiResolution re-polygonizes each layer at three tolerances and
// keeps a region if its area falls in that tier's bucket, intersected
// with the pipeline's global [minArea, maxArea] admission range.
// There is no polygon-buffer/offset primitive in the wired geometry
// stack, so "polygonize at buffer tolerance" is approximated by
// re-running vertex snap at that tolerance before polygonizing — a
// coarser snap merges more nearby vertices, which is the same
// "simplify small features away" effect a buffer-then-erode pass
// achieves.
func MultiResolution(segments []model.Segment, minArea, maxArea float64) ([]*model.Region, []string) {
	byLayer := map[string][]model.Segment{}
	for _, s := range segments {
		for _, l := range s.Layers() {
			byLayer[l] = append(byLayer[l], s)
		}
	}

	var all []*model.Region
	var warnings []string
	layers := make([]string, 0, len(byLayer))
	for l := range byLayer {
		layers = append(layers, l)
	}
	sort.Strings(layers)

	for _, layer := range layers {
		segs := byLayer[layer]
		for _, tier := range resolutionTiers {
			tierMin := math.Max(tier.minArea, minArea)
			tierMax := math.Min(tier.maxArea, maxArea)
			if tierMin >= tierMax {
				continue
			}
			snapped := cleanup.Snap(segs, tier.tolerance)
			candidates, w := Extract(snapped, 0, math.Inf(1))
			warnings = append(warnings, w...)
			for _, r := range candidates {
				if r.Area < tierMin || r.Area >= tierMax {
					continue
				}
				r.ID = fmt.Sprintf("region_%s_%s_%d", layer, tier.resolution, len(all)+1)
				r.Resolution = tier.resolution
				r.Layer = layer
				all = append(all, r)
			}
		}
	}

	return dedupRegions(all), warnings
}
