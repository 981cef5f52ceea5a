package region

import (
	"fmt"
	"math"
	"sort"

	"github.com/arxos/boqtakeoff/internal/model"
)

// Extract builds the planar graph, traces faces, repairs/filters/
// dedups them, assigns a layer to each by majority vote, and falls
// back to a cycle-basis walk when face tracing yields nothing.
func Extract(segments []model.Segment, minArea, maxArea float64) ([]*model.Region, []string) {
	var warnings []string
	if len(segments) == 0 {
		return nil, nil
	}

	g := buildPlanarGraph(segments)
	faces := traceFaces(g)

	var regions []*model.Region
	if len(faces) == 0 {
		regions, warnings = cycleBasisFallback(g, segments, minArea, maxArea)
	} else {
		regions = facesToRegions(faces, segments, minArea, maxArea)
	}

	regions = dedupRegions(regions)
	return regions, warnings
}

// facesToRegions converts traced faces to regions: discard
// invalid/non-positive-area faces (a zero-width buffer repair has no
// effect on an already-simple ring, so repair reduces to that
// validity check), drop the exterior (unbounded) face, filter by area
// range, and assign a layer by majority vote.
func facesToRegions(faces []*face, segments []model.Segment, minArea, maxArea float64) []*model.Region {
	exteriorIdx := -1
	maxAbsArea := 0.0
	for i, f := range faces {
		a := math.Abs(f.area)
		if a > maxAbsArea {
			maxAbsArea = a
			exteriorIdx = i
		}
	}

	var regions []*model.Region
	for i, f := range faces {
		if i == exteriorIdx {
			continue // the largest-area face is the unbounded exterior, not a room
		}
		area := math.Abs(f.area)
		if len(f.ring) < 3 || area <= 0 {
			continue // invalid after "repair": discarded
		}
		if area < minArea || area > maxArea {
			continue
		}
		ring := f.ring
		layer := majorityVoteLayer(ring, segments)
		orbArea, centroid := ringAreaAndCentroid(ring)
		// Region ids are derived from creation order, not random, so
		// identical input produces byte-identical output across runs.
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
	return regions
}

// dedupRegions keeps the first region seen for each
// (layer, round(area,2)) key.
func dedupRegions(regions []*model.Region) []*model.Region {
	seen := map[string]bool{}
	var out []*model.Region
	for _, r := range regions {
		key := r.Layer + "|" + dedupAreaKey(r.Area)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func dedupAreaKey(area float64) string {
	rounded := math.Round(area*100) / 100
	return fmt.Sprintf("%.2f", rounded)
}

// majorityVoteLayer assigns the most common layer among segments
// whose geometry intersects the face's boundary buffered by 0.05m.
// Buffering is approximated by a point-to-segment distance test
// against every ring edge, since the wired geometry stack has no
// polygon-buffer primitive.
func majorityVoteLayer(ring []model.Point, segments []model.Segment) string {
	const buffer = 0.05
	counts := map[string]int{}
	for _, s := range segments {
		if segmentNearRing(s, ring, buffer) {
			for _, l := range s.Layers() {
				counts[l]++
			}
		}
	}
	if len(counts) == 0 {
		return "Unknown"
	}
	type kv struct {
		layer string
		count int
	}
	var kvs []kv
	for l, c := range counts {
		kvs = append(kvs, kv{l, c})
	}
	sort.Slice(kvs, func(i, j int) bool {
		if kvs[i].count != kvs[j].count {
			return kvs[i].count > kvs[j].count
		}
		return kvs[i].layer < kvs[j].layer // deterministic tiebreak
	})
	return kvs[0].layer
}

func segmentNearRing(s model.Segment, ring []model.Point, buffer float64) bool {
	n := len(ring)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		if segmentsWithinDistance(s.A, s.B, ring[i], ring[j], buffer) {
			return true
		}
	}
	return false
}

// segmentsWithinDistance reports whether any endpoint of either
// segment lies within d of the other segment — a cheap approximation
// of full segment-to-segment distance, sufficient for the 0.05m
// "touches the boundary" test this vote is built on.
func segmentsWithinDistance(a1, b1, a2, b2 model.Point, d float64) bool {
	return pointToSegDist(a1, a2, b2) <= d ||
		pointToSegDist(b1, a2, b2) <= d ||
		pointToSegDist(a2, a1, b1) <= d ||
		pointToSegDist(b2, a1, b1) <= d
}

func pointToSegDist(p, a, b model.Point) float64 {
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
