package cleanup

import "github.com/arxos/boqtakeoff/internal/model"

// Snap clusters segment endpoints: build a uniform grid with cell
// size 2*tolerance, union-find all endpoints within tolerance across
// the 3x3 cell neighborhood of each point, then replace each point by
// its cluster centroid. Segments whose endpoints collapse to the same
// cluster are dropped.
func Snap(segments []model.Segment, tolerance float64) []model.Segment {
	if tolerance <= 0 {
		return segments
	}
	points := make([]model.Point, 0, len(segments)*2)
	// endpointIndex[seg][0 or 1] -> index into points
	type ref struct{ seg, which int }
	var refs []ref
	for si, s := range segments {
		points = append(points, s.A, s.B)
		refs = append(refs, ref{si, 0}, ref{si, 1})
	}

	g := newGrid(points, 2*tolerance)
	uf := newUnionFind(len(points))
	for i, p := range points {
		for _, j := range g.Neighbors3x3(p) {
			if j <= i {
				continue
			}
			if p.Distance(points[j]) <= tolerance {
				uf.Union(i, j)
			}
		}
	}

	clusterSum := map[int][2]float64{}
	clusterCount := map[int]int{}
	for i, p := range points {
		root := uf.Find(i)
		sum := clusterSum[root]
		sum[0] += p.X
		sum[1] += p.Y
		clusterSum[root] = sum
		clusterCount[root]++
	}
	clusterCentroid := map[int]model.Point{}
	for root, sum := range clusterSum {
		n := float64(clusterCount[root])
		clusterCentroid[root] = model.NewPoint(sum[0]/n, sum[1]/n)
	}

	out := make([]model.Segment, 0, len(segments))
	for si, s := range segments {
		aIdx := si * 2
		bIdx := si*2 + 1
		a := clusterCentroid[uf.Find(aIdx)]
		b := clusterCentroid[uf.Find(bIdx)]
		if a == b {
			continue // collapsed to the same cluster: dropped
		}
		s.A = a
		s.B = b
		out = append(out, s)
	}
	return out
}
