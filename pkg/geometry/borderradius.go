package geometry

// BorderRadius describes per-corner rounding, each corner independently
// specified either as an absolute length or as a percentage of the shorter
// side of the rect it is eventually applied to.
type BorderRadius struct {
	TopLeft     float64
	TopRight    float64
	BottomRight float64
	BottomLeft  float64

	TopLeftIsPercent     bool
	TopRightIsPercent    bool
	BottomRightIsPercent bool
	BottomLeftIsPercent  bool
}

// MakeCircle returns a BorderRadius with all four corners set to 50% of the
// shorter side, producing a circle (or stadium shape) when applied to a
// rectangle.
func MakeCircle() BorderRadius {
	return MakeOval(50, true)
}

// MakeOval returns a BorderRadius with all four corners set to the same
// value, either absolute or as a percentage of the shorter side.
func MakeOval(corners float64, isPercent bool) BorderRadius {
	return BorderRadius{
		TopLeft: corners, TopRight: corners, BottomRight: corners, BottomLeft: corners,
		TopLeftIsPercent: isPercent, TopRightIsPercent: isPercent, BottomRightIsPercent: isPercent, BottomLeftIsPercent: isPercent,
	}
}

// sideLengthForPercentages returns the reference length percentage-based
// corners are computed against: the shorter of the rect's two sides.
func sideLengthForPercentages(bounds Rect) float64 {
	w, h := bounds.Width(), bounds.Height()
	if w < h {
		return w
	}
	return h
}

// IsEmpty reports whether every corner resolves to zero radius regardless
// of bounds (absolute zero corners are always empty; percentage corners are
// never statically empty since they depend on bounds, except when their
// stored percentage itself is zero).
func (b BorderRadius) IsEmpty() bool {
	return b.TopLeft == 0 && b.TopRight == 0 && b.BottomRight == 0 && b.BottomLeft == 0
}

// resolved returns the four corner radii in absolute units for the given bounds.
func (b BorderRadius) resolved(bounds Rect) [4]Radius {
	side := sideLengthForPercentages(bounds)
	resolve := func(v float64, isPercent bool) Radius {
		if isPercent {
			v = side * v / 100
		}
		return CircularRadius(v)
	}
	return [4]Radius{
		resolve(b.TopLeft, b.TopLeftIsPercent),
		resolve(b.TopRight, b.TopRightIsPercent),
		resolve(b.BottomRight, b.BottomRightIsPercent),
		resolve(b.BottomLeft, b.BottomLeftIsPercent),
	}
}

// ApplyToPath appends a rounded-rect contour for bounds to path, degenerating
// to a plain rectangle when the radius is empty.
func (b BorderRadius) ApplyToPath(bounds Rect, path *Path) {
	if b.IsEmpty() {
		path.AddRect(bounds, true)
		return
	}
	path.AddRoundRect(bounds, b.resolved(bounds), true)
}

// GetPath builds and returns a new path containing the rounded-rect contour
// for bounds.
func (b BorderRadius) GetPath(bounds Rect) Path {
	path := NewPath()
	b.ApplyToPath(bounds, path)
	return *path
}
