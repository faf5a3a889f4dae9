package geometry

import (
	"fmt"
	"math"
)

// Matrix is a 3x3 affine transform stored in row-major form, mirroring the
// layout of a Skia-style matrix without perspective:
//
//	[ ScaleX  SkewX   TransX ]
//	[ SkewY   ScaleY  TransY ]
//	[ 0       0       1      ]
type Matrix struct {
	ScaleX, SkewX, TransX float64
	SkewY, ScaleY, TransY float64
}

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{ScaleX: 1, ScaleY: 1}
}

// MakeTranslate returns a matrix that translates by (tx, ty).
func MakeTranslate(tx, ty float64) Matrix {
	return Matrix{ScaleX: 1, ScaleY: 1, TransX: tx, TransY: ty}
}

// MakeScale returns a matrix that scales by (sx, sy) about the origin.
func MakeScale(sx, sy float64) Matrix {
	return Matrix{ScaleX: sx, ScaleY: sy}
}

// MakeScaleTranslate returns a matrix combining a scale and a translation.
func MakeScaleTranslate(sx, sy, tx, ty float64) Matrix {
	return Matrix{ScaleX: sx, ScaleY: sy, TransX: tx, TransY: ty}
}

// SetIdentity resets m to the identity matrix.
func (m *Matrix) SetIdentity() { *m = Identity() }

// IsIdentity reports whether m is the identity transform.
func (m Matrix) IsIdentity() bool {
	return m.ScaleX == 1 && m.ScaleY == 1 && m.SkewX == 0 && m.SkewY == 0 && m.TransX == 0 && m.TransY == 0
}

// IsIdentityOrTranslate reports whether m has no scale, skew, or rotation
// component, i.e. it only ever moves content without resizing or tilting it.
// This governs whether an external surface's transform degenerates to a
// frame-origin placement (see the compositor's presenter-state derivation).
func (m Matrix) IsIdentityOrTranslate() bool {
	return m.ScaleX == 1 && m.ScaleY == 1 && m.SkewX == 0 && m.SkewY == 0
}

// Multiply returns m * other, i.e. the matrix that applies other first and
// then m: (m.Multiply(other)).MapPoint(p) == m.MapPoint(other.MapPoint(p)).
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		ScaleX: m.ScaleX*other.ScaleX + m.SkewX*other.SkewY,
		SkewX:  m.ScaleX*other.SkewX + m.SkewX*other.ScaleY,
		TransX: m.ScaleX*other.TransX + m.SkewX*other.TransY + m.TransX,
		SkewY:  m.SkewY*other.ScaleX + m.ScaleY*other.SkewY,
		ScaleY: m.SkewY*other.SkewX + m.ScaleY*other.ScaleY,
		TransY: m.SkewY*other.TransX + m.ScaleY*other.TransY + m.TransY,
	}
}

// PreConcat returns m * other: other's transform is applied before m's.
func (m Matrix) PreConcat(other Matrix) Matrix { return m.Multiply(other) }

// PostConcat returns other * m: other's transform is applied after m's.
func (m Matrix) PostConcat(other Matrix) Matrix { return other.Multiply(m) }

// PreScale scales m by (sx, sy) applied before m's existing transform.
func (m Matrix) PreScale(sx, sy float64) Matrix { return m.Multiply(MakeScale(sx, sy)) }

// PostScale scales m by (sx, sy) applied after m's existing transform.
func (m Matrix) PostScale(sx, sy float64) Matrix { return MakeScale(sx, sy).Multiply(m) }

// PostRotate rotates m by radians about the point (px, py), applied after
// m's existing transform.
func (m Matrix) PostRotate(radians, px, py float64) Matrix {
	return makeRotationAbout(radians, px, py).Multiply(m)
}

func makeRotationAbout(radians, px, py float64) Matrix {
	sin, cos := math.Sin(radians), math.Cos(radians)
	rotate := Matrix{ScaleX: cos, SkewX: -sin, SkewY: sin, ScaleY: cos}
	return MakeTranslate(px, py).Multiply(rotate).Multiply(MakeTranslate(-px, -py))
}

// MapPoint transforms a single point by m.
func (m Matrix) MapPoint(p Offset) Offset {
	return Offset{
		X: m.ScaleX*p.X + m.SkewX*p.Y + m.TransX,
		Y: m.SkewY*p.X + m.ScaleY*p.Y + m.TransY,
	}
}

// MapRect returns the axis-aligned bounding box of rect after transforming
// all four of its corners by m.
func (m Matrix) MapRect(rect Rect) Rect {
	if m.IsIdentityOrTranslate() {
		return rect.Translate(m.TransX, m.TransY)
	}
	corners := [4]Offset{
		{X: rect.Left, Y: rect.Top},
		{X: rect.Right, Y: rect.Top},
		{X: rect.Right, Y: rect.Bottom},
		{X: rect.Left, Y: rect.Bottom},
	}
	mapped := m.MapPoint(corners[0])
	out := Rect{Left: mapped.X, Top: mapped.Y, Right: mapped.X, Bottom: mapped.Y}
	for _, c := range corners[1:] {
		p := m.MapPoint(c)
		out.Left = math.Min(out.Left, p.X)
		out.Top = math.Min(out.Top, p.Y)
		out.Right = math.Max(out.Right, p.X)
		out.Bottom = math.Max(out.Bottom, p.Y)
	}
	return out
}

// Invert returns the inverse of m and true, or the identity matrix and false
// if m is singular.
func (m Matrix) Invert() (Matrix, bool) {
	det := m.ScaleX*m.ScaleY - m.SkewX*m.SkewY
	if det == 0 {
		return Identity(), false
	}
	invDet := 1 / det
	inv := Matrix{
		ScaleX: m.ScaleY * invDet,
		SkewX:  -m.SkewX * invDet,
		SkewY:  -m.SkewY * invDet,
		ScaleY: m.ScaleX * invDet,
	}
	inv.TransX = -(inv.ScaleX*m.TransX + inv.SkewX*m.TransY)
	inv.TransY = -(inv.SkewY*m.TransX + inv.ScaleY*m.TransY)
	return inv, true
}

// String renders m as its 9 row-major coefficients, including the implicit
// perspective row, matching the debug format produced by the backend.
func (m Matrix) String() string {
	return fmt.Sprintf("[%g, %g, %g, %g, %g, %g, 0, 0, 1]", m.ScaleX, m.SkewX, m.TransX, m.SkewY, m.ScaleY, m.TransY)
}
