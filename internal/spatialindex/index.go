// Package spatialindex provides region lookup: an R-tree over region
// polygon envelopes, exposing contains/nearest/query. Contains filters
// the R-tree's bounding-box candidates with an exact point-in-polygon
// test; Query returns the envelope candidates unfiltered; Nearest
// measures the exact distance to every region without consulting the
// tree. The Index interface keeps the backing R-tree library
// swappable without touching the matcher.
package spatialindex

import (
	"math"

	"github.com/arxos/boqtakeoff/internal/model"
	"github.com/dhconnelly/rtreego"
)

// Index is the spatial-query surface the matcher consumes.
type Index interface {
	Contains(p model.Point) *model.Region
	Nearest(p model.Point, maxDistance float64) *model.Region
	Query(env model.Bounds) []*model.Region
}

// regionSpatial adapts a *model.Region to rtreego.Spatial.
type regionSpatial struct {
	region *model.Region
	rect   rtreego.Rect
}

func (r *regionSpatial) Bounds() rtreego.Rect { return r.rect }

// RTreeIndex is the default Index implementation, backed by
// github.com/dhconnelly/rtreego.
type RTreeIndex struct {
	tree    *rtreego.Rtree
	objects []*regionSpatial
}

// Build inserts the given regions' bounding envelopes into an R-tree,
// one region at a time.
func Build(regions []*model.Region) *RTreeIndex {
	tree := rtreego.NewTree(2, 8, 25)
	idx := &RTreeIndex{tree: tree}
	for _, r := range regions {
		b := ringBounds(r.Ring)
		rect := toRect(b)
		obj := &regionSpatial{region: r, rect: rect}
		idx.objects = append(idx.objects, obj)
		tree.Insert(obj)
	}
	return idx
}

func ringBounds(ring []model.Point) model.Bounds {
	return model.BoundsOf(ring)
}

// toRect converts a model.Bounds into an rtreego.Rect, widening
// zero-size dimensions by a tiny epsilon since rtreego requires
// strictly positive side lengths.
func toRect(b model.Bounds) rtreego.Rect {
	const eps = 1e-9
	w := b.Width()
	h := b.Height()
	if w <= 0 {
		w = eps
	}
	if h <= 0 {
		h = eps
	}
	rect, err := rtreego.NewRect(rtreego.Point{b.MinX, b.MinY}, []float64{w, h})
	if err != nil {
		// Degenerate bounds; fall back to a minimal valid rect at the origin
		// of b so Insert never panics.
		rect, _ = rtreego.NewRect(rtreego.Point{b.MinX, b.MinY}, []float64{eps, eps})
	}
	return rect
}

// Contains returns the smallest-area region strictly containing p, or
// nil.
func (idx *RTreeIndex) Contains(p model.Point) *model.Region {
	q := toRect(model.Bounds{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y})
	candidates := idx.tree.SearchIntersect(q)

	var best *model.Region
	bestArea := math.Inf(1)
	for _, c := range candidates {
		rs := c.(*regionSpatial)
		if pointInPolygon(p, rs.region.Ring) && rs.region.Area < bestArea {
			best = rs.region
			bestArea = rs.region.Area
		}
	}
	return best
}

// Nearest returns the closest region to p within maxDistance, or nil.
func (idx *RTreeIndex) Nearest(p model.Point, maxDistance float64) *model.Region {
	var best *model.Region
	bestDist := math.Inf(1)
	for _, obj := range idx.objects {
		d := distanceToPolygon(p, obj.region.Ring)
		if d < bestDist {
			bestDist = d
			best = obj.region
		}
	}
	if best == nil || bestDist > maxDistance {
		return nil
	}
	return best
}

// Query returns every region whose envelope intersects env.
func (idx *RTreeIndex) Query(env model.Bounds) []*model.Region {
	q := toRect(env)
	candidates := idx.tree.SearchIntersect(q)
	out := make([]*model.Region, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.(*regionSpatial).region)
	}
	return out
}

// pointInPolygon is the standard ray-casting test.
func pointInPolygon(p model.Point, ring []model.Point) bool {
	inside := false
	n := len(ring)
	if n < 3 {
		return false
	}
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := ring[i], ring[j]
		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}
	return inside
}

// distanceToPolygon returns 0 if p is inside ring, else the minimum
// distance from p to the boundary.
func distanceToPolygon(p model.Point, ring []model.Point) float64 {
	if pointInPolygon(p, ring) {
		return 0
	}
	best := math.Inf(1)
	n := len(ring)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		d := distanceToSegment(p, ring[i], ring[j])
		if d < best {
			best = d
		}
	}
	return best
}

func distanceToSegment(p, a, b model.Point) float64 {
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
