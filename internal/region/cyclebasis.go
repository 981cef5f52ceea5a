package region

import (
	"fmt"
	"math"
	"sort"

	"github.com/arxos/boqtakeoff/internal/model"
)

const maxCycleLength = 50

// cycleBasisFallback recovers regions when face tracing produced
// nothing: compute a cycle basis of the planar graph, filter cycles by
// length ≤ 50, and polygonize each cycle. It treats the graph as
// undirected (one edge per segment, ignoring the twin pairing face
// tracing needs), builds a spanning
// forest by BFS, and for every non-tree edge forms its fundamental
// cycle (the tree path between its endpoints, closed by that edge).
// Used only when traceFaces finds no closed faces at all.
func cycleBasisFallback(g *pgraph, segments []model.Segment, minArea, maxArea float64) ([]*model.Region, []string) {
	warnings := []string{"region extraction fell back to cycle_basis: union/polygonize path produced no faces"}

	adj := map[*vnode][]*vnode{}
	seenPair := map[[2]*vnode]bool{}
	for _, e := range g.edges {
		a, b := e.start, e.end
		key := pairKey(a, b)
		if seenPair[key] {
			continue
		}
		seenPair[key] = true
		adj[a] = append(adj[a], b)
		adj[b] = append(adj[b], a)
	}

	parent := map[*vnode]*vnode{}
	visited := map[*vnode]bool{}
	var nonTreeEdges [][2]*vnode
	seenNonTree := map[[2]*vnode]bool{}

	// Walk vertices in creation order, not map order, so the fallback's
	// cycle set (and with it the output region order) is deterministic.
	vertices := make([]*vnode, 0, len(g.vertices))
	for _, v := range g.vertices {
		vertices = append(vertices, v)
	}
	sort.Slice(vertices, func(i, j int) bool { return vertices[i].id < vertices[j].id })

	for _, v := range vertices {
		if visited[v] {
			continue
		}
		visited[v] = true
		queue := []*vnode{v}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, nb := range adj[cur] {
				if !visited[nb] {
					visited[nb] = true
					parent[nb] = cur
					queue = append(queue, nb)
				} else if parent[cur] != nb && !seenNonTree[pairKey(cur, nb)] {
					seenNonTree[pairKey(cur, nb)] = true
					nonTreeEdges = append(nonTreeEdges, [2]*vnode{cur, nb})
				}
			}
		}
	}

	var regions []*model.Region
	for _, e := range nonTreeEdges {
		cycle := fundamentalCycle(parent, e[0], e[1])
		if cycle == nil || len(cycle) < 3 || len(cycle) > maxCycleLength {
			continue
		}
		ring := make([]model.Point, len(cycle))
		for i, v := range cycle {
			ring[i] = v.pos
		}
		area := math.Abs(shoelaceSigned(ring))
		if area < minArea || area > maxArea {
			continue
		}
		layer := majorityVoteLayer(ring, segments)
		orbArea, centroid := ringAreaAndCentroid(ring)
		regions = append(regions, &model.Region{
			ID:        fmt.Sprintf("region_%d", len(regions)+1),
			Kind:      model.RegionExtracted,
			Ring:      ring,
			Area:      orbArea,
			Perimeter: perimeterOf(ring),
			Centroid:  centroid,
			Layer:     layer,
		})
	}
	return regions, warnings
}

func pairKey(a, b *vnode) [2]*vnode {
	if a.id < b.id {
		return [2]*vnode{a, b}
	}
	return [2]*vnode{b, a}
}

// fundamentalCycle walks both spanning-tree paths from a and b up to
// their lowest common ancestor and splices them into a single ring.
func fundamentalCycle(parent map[*vnode]*vnode, a, b *vnode) []*vnode {
	pathA := treePath(parent, a)
	pathB := treePath(parent, b)

	ancestors := map[*vnode]int{}
	for i, v := range pathA {
		ancestors[v] = i
	}
	var lcaIdxA, lcaIdxB int
	found := false
	for j, v := range pathB {
		if i, ok := ancestors[v]; ok {
			lcaIdxA, lcaIdxB = i, j
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	var ring []*vnode
	ring = append(ring, pathA[:lcaIdxA+1]...)
	for j := lcaIdxB - 1; j >= 0; j-- {
		ring = append(ring, pathB[j])
	}
	return ring
}

func treePath(parent map[*vnode]*vnode, v *vnode) []*vnode {
	var path []*vnode
	for cur := v; cur != nil; cur = parent[cur] {
		path = append(path, cur)
	}
	return path
}
