package matching

import (
	"fmt"
	"math"

	"github.com/arxos/boqtakeoff/internal/model"
	"github.com/dhconnelly/rtreego"
)

// SegmentIndex is an R-tree over raw segments (inserted one at a
// time), used only
// by the fallback estimator when no region can be resolved for a
// label. Built independently of spatialindex.Index, which indexes
// regions, not segments.
type SegmentIndex struct {
	tree *rtreego.Rtree
}

type segmentSpatial struct {
	seg  model.Segment
	rect rtreego.Rect
}

func (s *segmentSpatial) Bounds() rtreego.Rect { return s.rect }

// BuildSegmentIndex indexes segments by their bounding box.
func BuildSegmentIndex(segments []model.Segment) *SegmentIndex {
	tree := rtreego.NewTree(2, 8, 25)
	for _, s := range segments {
		tree.Insert(&segmentSpatial{seg: s, rect: segmentRect(s)})
	}
	return &SegmentIndex{tree: tree}
}

func segmentRect(s model.Segment) rtreego.Rect {
	const eps = 1e-6
	minX, maxX := math.Min(s.A.X, s.B.X), math.Max(s.A.X, s.B.X)
	minY, maxY := math.Min(s.A.Y, s.B.Y), math.Max(s.A.Y, s.B.Y)
	w, h := maxX-minX+eps, maxY-minY+eps
	rect, err := rtreego.NewRect(rtreego.Point{minX - eps/2, minY - eps/2}, []float64{w, h})
	if err != nil {
		rect, _ = rtreego.NewRect(rtreego.Point{minX, minY}, []float64{eps, eps})
	}
	return rect
}

const (
	fallbackMinSegments = 3
	fallbackMinArea     = 1.0
	fallbackMaxArea     = 1000.0
)

// Estimate queries segments within a (2·radius) square around label,
// keeps those within radius of it, requires at least 3, bounds their
// envelope, and accepts only if its area falls in [1, 1000] m².
// Returns a virtual Region tagged layer "Fallback Estimation", or
// false if no estimate could be made.
func (idx *SegmentIndex) Estimate(label model.Point, radius float64) (*model.Region, bool) {
	side := 2 * radius
	q, err := rtreego.NewRect(rtreego.Point{label.X - radius, label.Y - radius}, []float64{side, side})
	if err != nil {
		return nil, false
	}
	candidates := idx.tree.SearchIntersect(q)

	var kept []model.Segment
	for _, c := range candidates {
		seg := c.(*segmentSpatial).seg
		if distanceToSegmentPoint(label, seg.A, seg.B) <= radius {
			kept = append(kept, seg)
		}
	}
	if len(kept) < fallbackMinSegments {
		return nil, false
	}

	b := segmentsBounds(kept)
	area := b.Width() * b.Height()
	if area < fallbackMinArea || area > fallbackMaxArea {
		return nil, false
	}

	ring := []model.Point{
		{X: b.MinX, Y: b.MinY}, {X: b.MaxX, Y: b.MinY},
		{X: b.MaxX, Y: b.MaxY}, {X: b.MinX, Y: b.MaxY},
	}
	// The id is derived from the label position so repeated runs over
	// identical input produce identical virtual-region ids.
	region := &model.Region{
		ID:        fmt.Sprintf("virtual_%.3f_%.3f", label.X, label.Y),
		Kind:      model.RegionVirtual,
		Ring:      ring,
		Area:      area,
		Perimeter: 2 * (b.Width() + b.Height()),
		Centroid:  model.NewPoint((b.MinX+b.MaxX)/2, (b.MinY+b.MaxY)/2),
		Layer:     "Fallback Estimation",
		IsVirtual: true,
	}
	return region, true
}

func segmentsBounds(segments []model.Segment) model.Bounds {
	b := model.Bounds{MinX: segments[0].A.X, MinY: segments[0].A.Y, MaxX: segments[0].A.X, MaxY: segments[0].A.Y}
	for _, s := range segments {
		for _, p := range [2]model.Point{s.A, s.B} {
			b.MinX = math.Min(b.MinX, p.X)
			b.MinY = math.Min(b.MinY, p.Y)
			b.MaxX = math.Max(b.MaxX, p.X)
			b.MaxY = math.Max(b.MaxY, p.Y)
		}
	}
	return b
}

func distanceToSegmentPoint(p, a, b model.Point) float64 {
	vx, vy := b.X-a.X, b.Y-a.Y
	wx, wy := p.X-a.X, p.Y-a.Y
	lenSq := vx*vx + vy*vy
	if lenSq == 0 {
		return p.Distance(a)
	}
	t := (wx*vx + wy*vy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	proj := model.Point{X: a.X + t*vx, Y: a.Y + t*vy}
	return p.Distance(proj)
}
