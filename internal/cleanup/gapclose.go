package cleanup

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arxos/boqtakeoff/internal/model"
)

// layerToleranceTable maps layer-name substrings to their gap-closing
// tolerance. Matching is case-insensitive substring, first match wins
// in table order; layers matching no entry use the caller's max_gap
// (defaultGapTolerance when that is unset).
var layerToleranceTable = []struct {
	substr string
	meters float64
}{
	{"fa_0.20", 0.20},
	{"cielo falso", 0.20},
	{"tabiques", 0.10},
	{"mb-elev 2", 0.20},
}

const defaultGapTolerance = 0.05

// gapToleranceFor looks up the named-layer tolerance table; layers
// matching none of its entries fall back to def (the max_gap option).
func gapToleranceFor(layer string, def float64) float64 {
	lower := strings.ToLower(layer)
	for _, e := range layerToleranceTable {
		if strings.Contains(lower, e.substr) {
			return e.meters
		}
	}
	return def
}

// CloseGaps bridges near-touching endpoints: find dangling endpoints
// (degree 1 at 4-decimal rounding), and for each, using a 3x3 grid
// over cell size = max layer-specific tolerance, connect to up to its
// two closest distinct dangling partners within the effective (max of
// the two endpoints') tolerance. New segments are tagged
// layer="AUTO_CLOSE", entity_type="BRIDGE". maxGap is the "default"
// tier of the per-layer tolerance table; it does not override the
// named-layer entries.
func CloseGaps(segments []model.Segment, maxGap float64) ([]model.Segment, []string) {
	if maxGap <= 0 {
		maxGap = defaultGapTolerance
	}
	if len(segments) == 0 {
		return segments, nil
	}

	degree := map[[2]int64]int{}
	layerOf := map[[2]int64]string{}
	pointOf := map[[2]int64]model.Point{}
	for _, s := range segments {
		for _, p := range []model.Point{s.A, s.B} {
			k := p.RoundedKey4()
			degree[k]++
			layerOf[k] = s.Layer
			pointOf[k] = p
		}
	}

	existingEdge := map[[2][2]int64]bool{}
	for _, s := range segments {
		a, b := s.A.RoundedKey4(), s.B.RoundedKey4()
		existingEdge[edgeKey(a, b)] = true
	}

	var dangling [][2]int64
	for k, d := range degree {
		if d == 1 {
			dangling = append(dangling, k)
		}
	}
	// Deterministic order so repeated runs emit identical bridges.
	sort.Slice(dangling, func(i, j int) bool {
		return pointKeyLess(dangling[i], dangling[j])
	})

	maxTol := maxGap
	for _, k := range dangling {
		t := gapToleranceFor(layerOf[k], maxGap)
		if t > maxTol {
			maxTol = t
		}
	}
	points := make([]model.Point, len(dangling))
	for i, k := range dangling {
		points[i] = pointOf[k]
	}
	g := newGrid(points, maxTol)

	var bridges []model.Segment
	var warnings []string
	for i, k := range dangling {
		p := pointOf[k]
		tolA := gapToleranceFor(layerOf[k], maxGap)

		type cand struct {
			idx  int
			dist float64
		}
		var candidates []cand
		for _, j := range g.Neighbors3x3(p) {
			if j == i {
				continue
			}
			ok := dangling[j]
			if ok == k {
				continue
			}
			tolB := gapToleranceFor(layerOf[ok], maxGap)
			tol := tolA
			if tolB > tol {
				tol = tolB
			}
			d := p.Distance(points[j])
			if d <= tol {
				if existingEdge[edgeKey(k, ok)] {
					continue
				}
				candidates = append(candidates, cand{j, d})
			}
		}
		sort.Slice(candidates, func(a, b int) bool { return candidates[a].dist < candidates[b].dist })

		limit := 2
		if len(candidates) < limit {
			limit = len(candidates)
		}
		for c := 0; c < limit; c++ {
			j := candidates[c].idx
			ok := dangling[j]
			// Either endpoint's own candidate search can claim the pair;
			// existingEdge (checked when candidates were built, and set
			// here) is the sole dedup so a bridge isn't lost just because
			// it didn't make the owning endpoint's own top-2 list.
			if existingEdge[edgeKey(k, ok)] {
				continue
			}
			existingEdge[edgeKey(k, ok)] = true
			bridges = append(bridges, model.Segment{
				A:     p,
				B:     points[j],
				Layer: "AUTO_CLOSE",
				Type:  model.EntityBridge,
			})
			warnings = append(warnings, fmt.Sprintf("bridged gap of %.3fm between layers %s and %s", candidates[c].dist, layerOf[k], layerOf[ok]))
		}
	}

	out := make([]model.Segment, 0, len(segments)+len(bridges))
	out = append(out, segments...)
	out = append(out, bridges...)
	return out, warnings
}

func edgeKey(a, b [2]int64) [2][2]int64 {
	if pointKeyLess(a, b) {
		return [2][2]int64{a, b}
	}
	return [2][2]int64{b, a}
}

func pointKeyLess(a, b [2]int64) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	return a[1] < b[1]
}

