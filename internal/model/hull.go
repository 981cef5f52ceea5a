package model

import "sort"

// ConvexHull returns the convex hull of pts as a counter-clockwise
// ring (Andrew's monotone chain). Used by the quantifier's
// linear-to-area rule and the confidence scorer's convexity factor.
func ConvexHull(pts []Point) []Point {
	if len(pts) < 3 {
		return nil
	}
	sorted := make([]Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	crossHull := func(o, a, b Point) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	var lower []Point
	for _, p := range sorted {
		for len(lower) >= 2 && crossHull(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	var upper []Point
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && crossHull(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}
	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	if len(hull) < 3 {
		return nil
	}
	return hull
}

// ConvexHullArea returns the area of the convex hull of pts, or 0 if
// the points are degenerate (fewer than 3 distinct, or collinear).
func ConvexHullArea(pts []Point) float64 {
	hull := ConvexHull(pts)
	if hull == nil {
		return 0
	}
	var sum float64
	n := len(hull)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += hull[i].X*hull[j].Y - hull[j].X*hull[i].Y
	}
	if sum < 0 {
		sum = -sum
	}
	return sum / 2
}
