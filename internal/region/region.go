package region

import (
	"github.com/arxos/boqtakeoff/internal/model"
)

// Run produces the single region pool later stages consume: the
// graph-based face extraction, its multi-resolution supplement, and
// first-class hatch promotion, merged through the (layer, area) dedup
// rule with the graph extraction taking priority (it runs at the
// geometry's native precision, neither coarsened nor refined) and
// coarse → medium → fine supplementing it. Hatch-derived regions are
// never deduped away; they are first-class, independent of the
// polygonized set.
func Run(segments []model.Segment, hatches []model.HatchRegion, minArea, maxArea float64) ([]*model.Region, []string) {
	var warnings []string

	base, w := Extract(segments, minArea, maxArea)
	warnings = append(warnings, w...)
	for _, r := range base {
		r.Resolution = model.ResolutionMedium
	}

	multi, w := MultiResolution(segments, minArea, maxArea)
	warnings = append(warnings, w...)

	merged := dedupRegions(append(append([]*model.Region{}, base...), multi...))
	merged = append(merged, PromoteHatches(hatches)...)

	return merged, warnings
}
