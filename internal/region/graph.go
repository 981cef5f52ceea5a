// Package region extracts closed polygonal faces from cleaned
// segments: build a planar graph, trace closed faces, repair/filter/
// dedup them, assign each a layer by majority vote, and promote hatch
// boundaries to first-class regions. A multi-resolution pass
// re-polygonizes per layer at three snap tolerances to recover rooms
// the native-precision pass misses.
//
// The planar graph is a half-edge structure: vertex/edge with
// twin+next pointers, angle-sorted traversal, face tracing by always
// turning to the most counter-clockwise edge.
package region

import (
	"math"
	"sort"

	"github.com/arxos/boqtakeoff/internal/model"
)

// vnode is a planar graph vertex: a rounded segment endpoint. id is a
// stable creation-order index used to canonicalize an unordered pair
// of vertices (cycleBasisFallback's dedup sets) and to walk vertices in
// creation order, since Go gives no ordering over pointers.
type vnode struct {
	id    int
	pos   model.Point
	edges []*hedge
}

// hedge is one directed half of a segment. Every segment contributes a
// pair of twinned half-edges so face tracing can walk either side of
// the boundary it forms.
type hedge struct {
	start, end *vnode
	layer      string
	twin       *hedge
	next       *hedge
	visited    bool
	face       *face
	angle      float64
}

type face struct {
	edges []*hedge
	ring  []model.Point
	area  float64 // signed, shoelace
}

type pgraph struct {
	vertices map[model.Point]*vnode
	edges    []*hedge
	nextID   int
}

func newPGraph() *pgraph {
	return &pgraph{vertices: map[model.Point]*vnode{}}
}

func (g *pgraph) vertexAt(p model.Point) *vnode {
	v, ok := g.vertices[p]
	if !ok {
		v = &vnode{id: g.nextID, pos: p}
		g.nextID++
		g.vertices[p] = v
	}
	return v
}

func angleOf(a, b model.Point) float64 {
	angle := math.Atan2(b.Y-a.Y, b.X-a.X)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return angle
}

// addSegment inserts a twinned half-edge pair for s.
func (g *pgraph) addSegment(s model.Segment) {
	if s.IsZeroLength() {
		return
	}
	a, b := g.vertexAt(s.A), g.vertexAt(s.B)

	e1 := &hedge{start: a, end: b, layer: s.Layer, angle: angleOf(a.pos, b.pos)}
	e2 := &hedge{start: b, end: a, layer: s.Layer, angle: angleOf(b.pos, a.pos)}
	e1.twin, e2.twin = e2, e1

	a.edges = append(a.edges, e1)
	b.edges = append(b.edges, e2)
	g.edges = append(g.edges, e1, e2)
}

// buildPlanarGraph builds the multigraph: nodes are rounded endpoints
// (segments are assumed already vertex-snapped), edges are segments.
// splitCrossings then resolves any segments that cross without sharing
// an endpoint, the self-intersection resolution a polygon-union
// library would otherwise provide.
func buildPlanarGraph(segments []model.Segment) *pgraph {
	g := newPGraph()
	for _, s := range segments {
		g.addSegment(s)
	}
	splitCrossings(g)
	sortEdgesAroundVertices(g)
	return g
}

// splitCrossings finds pairs of segments (original edges, identified
// by one half of each twin pair) that cross at an interior point
// without sharing an endpoint, and splits both at the intersection.
// It operates on one representative half-edge per segment (the
// first-created direction) rather than on every directed half
// separately.
func splitCrossings(g *pgraph) {
	var originals []*hedge
	seen := map[*hedge]bool{}
	for _, e := range g.edges {
		if seen[e] || seen[e.twin] {
			continue
		}
		seen[e] = true
		originals = append(originals, e)
	}

	// Fixed-point iteration: splitting can create new crossing pairs
	// among the newly introduced edges, though in practice cleanup's
	// snap/gap-close/undershoot passes leave very few true crossings.
	const maxPasses = 4
	for pass := 0; pass < maxPasses; pass++ {
		split := false
		for i := 0; i < len(originals); i++ {
			for j := i + 1; j < len(originals); j++ {
				e1, e2 := originals[i], originals[j]
				if shareVertex(e1, e2) {
					continue
				}
				ok, pt := segmentIntersection(e1.start.pos, e1.end.pos, e2.start.pos, e2.end.pos)
				if !ok {
					continue
				}
				v := g.vertexAt(pt)
				if v == e1.start || v == e1.end || v == e2.start || v == e2.end {
					continue // intersection landed on an existing vertex: no split needed
				}
				// e1/e2 are shortened in place by splitEdge; the
				// returned continuations must also be checked against
				// the rest of the set, so keep both halves.
				newE1 := splitEdge(g, e1, v)
				newE2 := splitEdge(g, e2, v)
				originals = append(originals, newE1, newE2)
				split = true
			}
		}
		if !split {
			break
		}
	}
}

func shareVertex(e1, e2 *hedge) bool {
	return e1.start == e2.start || e1.start == e2.end || e1.end == e2.start || e1.end == e2.end
}

// segmentIntersection returns the interior crossing point of two
// segments, if any (parametric line intersection).
func segmentIntersection(p1, p2, p3, p4 model.Point) (bool, model.Point) {
	denom := (p4.Y-p3.Y)*(p2.X-p1.X) - (p4.X-p3.X)*(p2.Y-p1.Y)
	if math.Abs(denom) < 1e-10 {
		return false, model.Point{}
	}
	ua := ((p4.X-p3.X)*(p1.Y-p3.Y) - (p4.Y-p3.Y)*(p1.X-p3.X)) / denom
	ub := ((p2.X-p1.X)*(p1.Y-p3.Y) - (p2.Y-p1.Y)*(p1.X-p3.X)) / denom
	const edgeEps = 1e-6
	if ua > edgeEps && ua < 1-edgeEps && ub > edgeEps && ub < 1-edgeEps {
		x := p1.X + ua*(p2.X-p1.X)
		y := p1.Y + ua*(p2.Y-p1.Y)
		return true, model.NewPoint(x, y)
	}
	return false, model.Point{}
}

// splitEdge splits segment e=(A->B) and its twin t=(B->A) at v, which
// lies strictly between A and B. e is shortened in place to A->V; its
// twin field is repointed to a fresh V->A edge. t is shortened in place
// to B->V; a fresh V->B edge becomes its twin. Because e and t keep
// their original Start vertex, only v's edge list needs the two new
// half-edges appended. Returns the new V->B half-edge, the continuation
// of e's original direction, for splitCrossings to keep checking.
func splitEdge(g *pgraph, e *hedge, v *vnode) *hedge {
	t := e.twin
	a, b := e.start, e.end

	vToA := &hedge{start: v, end: a, layer: e.layer, angle: angleOf(v.pos, a.pos)}
	vToB := &hedge{start: v, end: b, layer: e.layer, angle: angleOf(v.pos, b.pos)}
	e.twin, vToA.twin = vToA, e
	t.twin, vToB.twin = vToB, t

	e.end = v
	e.angle = angleOf(a.pos, v.pos)
	t.end = v
	t.angle = angleOf(t.start.pos, v.pos)

	v.edges = append(v.edges, vToA, vToB)
	g.edges = append(g.edges, vToA, vToB)
	return vToB
}

// sortEdgesAroundVertices orders each vertex's outgoing edges by angle
// and links next pointers so face tracing always turns to the most
// counter-clockwise available edge.
func sortEdgesAroundVertices(g *pgraph) {
	for _, v := range g.vertices {
		sort.Slice(v.edges, func(i, j int) bool { return v.edges[i].angle < v.edges[j].angle })
		for i, e := range v.edges {
			nextIdx := (i + 1) % len(v.edges)
			nextEdge := v.edges[nextIdx]
			if nextEdge.twin != nil {
				e.next = nextEdge.twin
			}
		}
	}
}

// traceFaces walks every unvisited half-edge to closure, producing one
// face per boundary loop.
func traceFaces(g *pgraph) []*face {
	var faces []*face
	for _, start := range g.edges {
		if start.visited {
			continue
		}
		f := traceFace(g, start)
		if f != nil {
			faces = append(faces, f)
		}
	}
	return faces
}

func traceFace(g *pgraph, start *hedge) *face {
	f := &face{}
	cur := start
	maxIter := len(g.edges) + 1
	for i := 0; i < maxIter; i++ {
		if cur.visited {
			return nil
		}
		cur.visited = true
		cur.face = f
		f.edges = append(f.edges, cur)
		f.ring = append(f.ring, cur.start.pos)

		if cur.next == nil {
			return nil
		}
		if cur.next == start {
			f.area = shoelaceSigned(f.ring)
			return f
		}
		cur = cur.next
	}
	return nil
}

func shoelaceSigned(ring []model.Point) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += ring[i].X*ring[j].Y - ring[j].X*ring[i].Y
	}
	return sum / 2
}

func perimeterOf(ring []model.Point) float64 {
	n := len(ring)
	if n < 2 {
		return 0
	}
	var p float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		p += ring[i].Distance(ring[j])
	}
	return p
}
