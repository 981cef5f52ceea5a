package cleanup

import (
	"math"

	"github.com/arxos/boqtakeoff/internal/model"
)

const collinearAngleToleranceRad = 0.5 * math.Pi / 180

// MergeCollinear collapses runs of near-collinear segments: for each
// unused segment, expand a chain by BFS through neighbors that share
// an endpoint exactly (guaranteed post-snap) and whose direction
// differs by ≤0.5° modulo π, then replace the chain by the single
// segment spanning its extreme projections. The neighbor lookup is
// exact endpoint-map adjacency — vertex snap has already made shared
// endpoints bit-identical, so no proximity search is needed.
func MergeCollinear(segments []model.Segment) []model.Segment {
	if len(segments) == 0 {
		return segments
	}
	byEndpoint := map[model.Point][]int{}
	for i, s := range segments {
		byEndpoint[s.A] = append(byEndpoint[s.A], i)
		byEndpoint[s.B] = append(byEndpoint[s.B], i)
	}

	used := make([]bool, len(segments))
	var out []model.Segment

	for i := range segments {
		if used[i] {
			continue
		}
		chain := expandChain(i, segments, byEndpoint, used)
		out = append(out, mergeChain(segments, chain))
	}
	return out
}

func direction(s model.Segment) float64 {
	return math.Atan2(s.B.Y-s.A.Y, s.B.X-s.A.X)
}

// angleCloseModPi reports whether a and b are within tol of each other,
// treating direction as a line (mod π) since a chain may be traversed
// in either orientation.
func angleCloseModPi(a, b, tol float64) bool {
	diff := math.Mod(math.Abs(a-b), math.Pi)
	if diff > math.Pi/2 {
		diff = math.Pi - diff
	}
	return diff <= tol
}

func expandChain(start int, segments []model.Segment, byEndpoint map[model.Point][]int, used []bool) []int {
	chain := []int{start}
	used[start] = true
	dir := direction(segments[start])

	queue := []int{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		s := segments[cur]
		for _, endpoint := range []model.Point{s.A, s.B} {
			for _, nb := range byEndpoint[endpoint] {
				if used[nb] {
					continue
				}
				if !angleCloseModPi(direction(segments[nb]), dir, collinearAngleToleranceRad) {
					continue
				}
				used[nb] = true
				chain = append(chain, nb)
				queue = append(queue, nb)
			}
		}
	}
	return chain
}

// mergeChain replaces a chain by the segment spanning the two extreme
// projections of the chain's endpoints onto the chain's direction
// vector, recording each distinct contributor layer once (a set, not a
// multiset) for the region layer vote.
func mergeChain(segments []model.Segment, chain []int) model.Segment {
	if len(chain) == 1 {
		return segments[chain[0]]
	}

	base := segments[chain[0]]
	dx, dy := base.B.X-base.A.X, base.B.Y-base.A.Y
	length := math.Hypot(dx, dy)
	ux, uy := dx/length, dy/length
	origin := base.A

	minT, maxT := math.Inf(1), math.Inf(-1)
	var minP, maxP model.Point
	var layers []string
	for _, idx := range chain {
		s := segments[idx]
		layers = append(layers, s.Layers()...)
		for _, p := range []model.Point{s.A, s.B} {
			t := (p.X-origin.X)*ux + (p.Y-origin.Y)*uy
			if t < minT {
				minT = t
				minP = p
			}
			if t > maxT {
				maxT = t
				maxP = p
			}
		}
	}

	return model.Segment{
		A:                 minP,
		B:                 maxP,
		Layer:             base.Layer,
		Type:              model.EntityMerged,
		ContributorLayers: dedupLayers(layers),
	}
}

func dedupLayers(layers []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, l := range layers {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}
