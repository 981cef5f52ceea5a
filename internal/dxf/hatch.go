package dxf

import (
	"math"

	"github.com/arxos/boqtakeoff/internal/model"
)

// convertHatch reads a HATCH's polyline boundary loop(s) (group 92/93
// boundary-path headers, 72 edge-is-polyline flag, 10/20 vertices, 42
// bulge) into a HatchRegion ring, densifying any bulge arcs to
// chords.
//
// Only the first boundary loop is promoted to a ring; additional
// loops would be holes, which this pipeline does not model.
func convertHatch(ent *rawEntity, t transform2D, layer string, out *extracted) {
	xs := ent.floats(10)
	ys := ent.floats(20)
	bulges := ent.floats(42)
	n := len(xs)
	if n > len(ys) {
		n = len(ys)
	}
	if n < 3 {
		return
	}

	ring := make([]model.Point, 0, n)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		bulge := 0.0
		if i < len(bulges) {
			bulge = bulges[i]
		}
		ring = append(ring, txPoint(t, xs[i], ys[i]))
		if bulge != 0 {
			for _, p := range bulgeToChords(xs[i], ys[i], xs[j], ys[j], bulge) {
				ring = append(ring, txPoint(t, p.X, p.Y))
			}
		}
	}

	shoelaceArea := math.Abs(shoelace(ring))

	// No group code reliably carries the hatch's own filled-area figure
	// across writer variants (91 is a loop vertex count in the common
	// ones), so the area always comes from the boundary ring; a
	// self-intersecting ring makes that figure unreliable, hence the
	// warning below.
	area := shoelaceArea
	if isSelfIntersecting(ring) {
		out.Warnings = append(out.Warnings, "hatch on layer "+layer+" has a self-intersecting boundary; shoelace area may disagree with the filled area")
	}

	out.Hatches = append(out.Hatches, model.HatchRegion{
		Ring:    ring,
		Layer:   layer,
		Area:    area,
		IsHatch: true,
	})
	out.noteLayer(layer)
}

func shoelace(ring []model.Point) float64 {
	if len(ring) < 3 {
		return 0
	}
	sum := 0.0
	n := len(ring)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += ring[i].X*ring[j].Y - ring[j].X*ring[i].Y
	}
	return sum / 2
}

// isSelfIntersecting does a coarse O(n^2) segment-intersection check,
// adequate for the small boundary rings hatches typically carry.
func isSelfIntersecting(ring []model.Point) bool {
	n := len(ring)
	if n < 4 {
		return false
	}
	for i := 0; i < n; i++ {
		a1, a2 := ring[i], ring[(i+1)%n]
		for j := i + 1; j < n; j++ {
			if j == i || (j+1)%n == i {
				continue
			}
			b1, b2 := ring[j], ring[(j+1)%n]
			if segmentsIntersect(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

func segmentsIntersect(p1, p2, p3, p4 model.Point) bool {
	d1 := cross(p3, p4, p1)
	d2 := cross(p3, p4, p2)
	d3 := cross(p1, p2, p3)
	d4 := cross(p1, p2, p4)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return false
}

func cross(a, b, c model.Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}
