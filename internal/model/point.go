// Package model defines the data types that flow through the takeoff
// pipeline: points, segments, texts, regions, BOQ items and matches.
// Every type here is a value produced by exactly one pipeline stage and
// is immutable for every later stage with the
// sole exception of Segment endpoints during geometry cleanup.
package model

import (
	"fmt"
	"math"
)

// roundPlaces is the decimal rounding used for Point equality/hashing:
// 5 places, i.e. 0.01mm at meter scale.
const roundPlaces = 5

// Point is a 2D coordinate in meters. Two points are equal and hash
// identically once rounded to 0.01mm.
type Point struct {
	X, Y float64
}

// NewPoint rounds x/y to the canonical precision used for equality.
func NewPoint(x, y float64) Point {
	return Point{X: roundTo(x, roundPlaces), Y: roundTo(y, roundPlaces)}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Key returns a hashable representation suitable for map keys and
// union-find clustering, rounded to the canonical precision.
func (p Point) Key() [2]int64 {
	p2 := math.Pow(10, float64(roundPlaces))
	return [2]int64{int64(math.Round(p.X * p2)), int64(math.Round(p.Y * p2))}
}

// RoundedKey4 rounds to 4 decimal places, used by gap-closing's
// "dangling endpoint" degree computation.
func (p Point) RoundedKey4() [2]int64 {
	p2 := math.Pow(10, 4)
	return [2]int64{int64(math.Round(p.X * p2)), int64(math.Round(p.Y * p2))}
}

// Distance returns the Euclidean distance to another point.
func (p Point) Distance(o Point) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return math.Hypot(dx, dy)
}

func (p Point) String() string {
	return fmt.Sprintf("(%.5f, %.5f)", p.X, p.Y)
}

// Bounds is an axis-aligned bounding box in meters.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns MaxX-MinX.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns MaxY-MinY.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Union returns the smallest bounds containing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{
		MinX: math.Min(b.MinX, o.MinX),
		MinY: math.Min(b.MinY, o.MinY),
		MaxX: math.Max(b.MaxX, o.MaxX),
		MaxY: math.Max(b.MaxY, o.MaxY),
	}
}

// BoundsOf computes the bounding box of a set of points. Returns the
// default (0,0,100,100) drawing bounds when given no points.
func BoundsOf(pts []Point) Bounds {
	if len(pts) == 0 {
		return Bounds{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}
	}
	b := Bounds{MinX: pts[0].X, MinY: pts[0].Y, MaxX: pts[0].X, MaxY: pts[0].Y}
	for _, p := range pts[1:] {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b
}
