package cleanup

import (
	"math"

	"github.com/arxos/boqtakeoff/internal/model"
	"github.com/dhconnelly/rtreego"
)

const (
	undershootMinDistance = 1e-4
	undershootMaxDistance = 0.15
)

type segmentSpatial struct {
	idx  int
	rect rtreego.Rect
}

func (s *segmentSpatial) Bounds() rtreego.Rect { return s.rect }

func segmentRect(s model.Segment) rtreego.Rect {
	const eps = 1e-9
	minX, maxX := math.Min(s.A.X, s.B.X), math.Max(s.A.X, s.B.X)
	minY, maxY := math.Min(s.A.Y, s.B.Y), math.Max(s.A.Y, s.B.Y)
	w, h := maxX-minX, maxY-minY
	if w <= 0 {
		w = eps
	}
	if h <= 0 {
		h = eps
	}
	rect, err := rtreego.NewRect(rtreego.Point{minX, minY}, []float64{w, h})
	if err != nil {
		rect, _ = rtreego.NewRect(rtreego.Point{minX, minY}, []float64{eps, eps})
	}
	return rect
}

// Undershoot repairs T-junctions: for every free segment endpoint (one
// no other segment shares, at 4-decimal rounding), find the nearest
// foreign segment (different underlying segment) via an
// R-tree over all segment envelopes, and if the exact
// point-to-segment distance falls within [1e-4, 0.15]m (or the
// configured tolerance), project the endpoint onto that segment and
// move it there, extending the original segment to close the gap.
//
// Unlike vertex snap and gap-closing's grid search, this lookup has no
// natural cell size: the target is an arbitrary point on an edge, not
// another indexed point, so an R-tree over segment bounding boxes is
// used directly.
func Undershoot(segments []model.Segment, tolerance float64) []model.Segment {
	if len(segments) == 0 {
		return segments
	}
	if tolerance <= 0 {
		tolerance = undershootMaxDistance
	}

	tree := rtreego.NewTree(2, 8, 25)
	for i, s := range segments {
		tree.Insert(&segmentSpatial{idx: i, rect: segmentRect(s)})
	}

	out := make([]model.Segment, len(segments))
	copy(out, segments)

	search := undershootMaxDistance
	if tolerance > search {
		search = tolerance
	}

	degree := map[[2]int64]int{}
	for _, s := range segments {
		degree[s.A.RoundedKey4()]++
		degree[s.B.RoundedKey4()]++
	}

	snapEndpoint := func(segIdx int, isA bool) {
		p := out[segIdx].A
		if !isA {
			p = out[segIdx].B
		}
		if degree[p.RoundedKey4()] > 1 {
			return
		}
		q, err := rtreego.NewRect(
			rtreego.Point{p.X - search, p.Y - search},
			[]float64{2 * search, 2 * search},
		)
		if err != nil {
			return
		}
		candidates := tree.SearchIntersect(q)

		bestDist := math.Inf(1)
		var bestPoint model.Point
		found := false
		for _, c := range candidates {
			ss := c.(*segmentSpatial)
			if ss.idx == segIdx {
				continue
			}
			other := out[ss.idx]
			d := distanceToSegment(p, other.A, other.B)
			if d < undershootMinDistance || d > tolerance {
				continue
			}
			if d < bestDist {
				bestDist = d
				bestPoint = projectOntoSegment(p, other.A, other.B)
				found = true
			}
		}
		if !found {
			return
		}
		if isA {
			out[segIdx].A = bestPoint
		} else {
			out[segIdx].B = bestPoint
		}
	}

	for i := range out {
		snapEndpoint(i, true)
		snapEndpoint(i, false)
	}
	return out
}

func distanceToSegment(p, a, b model.Point) float64 {
	vx, vy := b.X-a.X, b.Y-a.Y
	lenSq := vx*vx + vy*vy
	if lenSq == 0 {
		return p.Distance(a)
	}
	t := ((p.X-a.X)*vx + (p.Y-a.Y)*vy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	proj := model.Point{X: a.X + t*vx, Y: a.Y + t*vy}
	return p.Distance(proj)
}

func projectOntoSegment(p, a, b model.Point) model.Point {
	vx, vy := b.X-a.X, b.Y-a.Y
	lenSq := vx*vx + vy*vy
	if lenSq == 0 {
		return a
	}
	t := ((p.X-a.X)*vx + (p.Y-a.Y)*vy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return model.NewPoint(a.X+t*vx, a.Y+t*vy)
}
