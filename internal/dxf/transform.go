package dxf

import "math"

// transform2D is a 2D affine transform stored as a 2x3 matrix:
//
//	x' = A*x + C*y + Tx
//	y' = B*x + D*y + Ty
//
// Block references compose full affine transforms (rotation, per-axis
// scale, translation) from outer insert to inner primitive; a matrix
// representation makes composition exact under non-uniform
// scale, unlike trying to re-derive scalar scale/rotation components
// after each composition.
type transform2D struct {
	A, B, C, D float64
	Tx, Ty     float64
}

func identityTransform() transform2D {
	return transform2D{A: 1, D: 1}
}

// newSRT builds the matrix for "scale then rotate then translate",
// the standard INSERT transform order.
func newSRT(scaleX, scaleY, rotationRad, tx, ty float64) transform2D {
	cos, sin := math.Cos(rotationRad), math.Sin(rotationRad)
	return transform2D{
		A: cos * scaleX, C: -sin * scaleY,
		B: sin * scaleX, D: cos * scaleY,
		Tx: tx, Ty: ty,
	}
}

// Apply maps a point through this transform.
func (t transform2D) Apply(x, y float64) (float64, float64) {
	return t.A*x + t.C*y + t.Tx, t.B*x + t.D*y + t.Ty
}

// Then returns the transform equivalent to applying t first and then
// outer: Then(outer).Apply(p) == outer.Apply(t.Apply(p)). Used to
// accumulate the chain from the outermost INSERT down to the innermost
// primitive as block explosion recurses.
func (t transform2D) Then(outer transform2D) transform2D {
	return transform2D{
		A: outer.A*t.A + outer.C*t.B,
		B: outer.B*t.A + outer.D*t.B,
		C: outer.A*t.C + outer.C*t.D,
		D: outer.B*t.C + outer.D*t.D,
		Tx: outer.A*t.Tx + outer.C*t.Ty + outer.Tx,
		Ty: outer.B*t.Tx + outer.D*t.Ty + outer.Ty,
	}
}
