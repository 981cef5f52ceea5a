package region

import (
	"fmt"

	"github.com/arxos/boqtakeoff/internal/model"
)

// PromoteHatches accepts hatch boundaries as first-class Regions:
// each becomes a Region with its own centroid/perimeter computed from
// the ring, bypassing polygonization entirely, id-prefixed "hatch_".
func PromoteHatches(hatches []model.HatchRegion) []*model.Region {
	var out []*model.Region
	for _, h := range hatches {
		if len(h.Ring) < 3 {
			continue
		}
		_, centroid := ringAreaAndCentroid(h.Ring)
		out = append(out, &model.Region{
			ID:        fmt.Sprintf("hatch_%d", len(out)+1),
			Kind:      model.RegionHatch,
			Ring:      h.Ring,
			Area:      h.Area,
			Perimeter: perimeterOf(h.Ring),
			Centroid:  centroid,
			Layer:     h.Layer,
		})
	}
	return out
}
