package region

import (
	"github.com/arxos/boqtakeoff/internal/model"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// toOrbRing converts a ring in our own Point representation to orb's,
// the boundary at which the planar-graph code (which works entirely in
// model.Point so it can share rounding/equality with the rest of the
// pipeline) hands off to paulmach/orb for the area/centroid primitives.
func toOrbRing(ring []model.Point) orb.Ring {
	out := make(orb.Ring, len(ring))
	for i, p := range ring {
		out[i] = orb.Point{p.X, p.Y}
	}
	return out
}

// ringAreaAndCentroid returns the unsigned area and centroid of ring
// via paulmach/orb/planar.
func ringAreaAndCentroid(ring []model.Point) (float64, model.Point) {
	if len(ring) < 3 {
		return 0, model.Point{}
	}
	c, a := planar.CentroidArea(toOrbRing(ring))
	if a < 0 {
		a = -a
	}
	return a, model.NewPoint(c[0], c[1])
}
