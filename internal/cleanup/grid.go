// Package cleanup repairs raw drawing geometry before region
// extraction: vertex snapping via spatial grid, collinear chain
// merging, gap closing via endpoint pairing, and undershoot snapping
// of free endpoints onto nearby edges (T-junction repair).
package cleanup

import "github.com/arxos/boqtakeoff/internal/model"

// grid is a uniform spatial hash over points, used by vertex snap
// (cell size 2*tolerance) and gap-closing: both query fixed-radius
// point neighborhoods, which a grid answers without tree overhead.
type grid struct {
	cellSize float64
	cells    map[[2]int64][]int // cell -> point indices
	points   []model.Point
}

func newGrid(points []model.Point, cellSize float64) *grid {
	g := &grid{cellSize: cellSize, cells: map[[2]int64][]int{}, points: points}
	for i, p := range points {
		key := g.cellKey(p)
		g.cells[key] = append(g.cells[key], i)
	}
	return g
}

func (g *grid) cellKey(p model.Point) [2]int64 {
	return [2]int64{int64(floorDiv(p.X, g.cellSize)), int64(floorDiv(p.Y, g.cellSize))}
}

func floorDiv(v, size float64) float64 {
	q := v / size
	if q < 0 {
		return q - 1
	}
	return q
}

// Neighbors3x3 returns the indices of all points in p's cell and its 8
// surrounding cells.
func (g *grid) Neighbors3x3(p model.Point) []int {
	base := g.cellKey(p)
	var out []int
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			key := [2]int64{base[0] + dx, base[1] + dy}
			out = append(out, g.cells[key]...)
		}
	}
	return out
}

// unionFind is a standard disjoint-set structure over point indices,
// used by vertex snap to cluster endpoints within tolerance.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) Find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) Union(a, b int) {
	ra, rb := uf.Find(a), uf.Find(b)
	if ra == rb {
		return
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
}
