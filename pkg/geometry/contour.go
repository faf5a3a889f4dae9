package geometry

import "math"

// flattenTolerance is the maximum chordal deviation tolerated when
// approximating quad/cubic verbs with line segments for length
// measurement and segment extraction.
const flattenTolerance = 12

// contourPoint is one flattened vertex, tagged with its cumulative
// distance from the start of its contour.
type contourPoint struct {
	pt   Offset
	dist float64
}

// contour is one flattened subpath: its polyline approximation plus total
// length.
type contour struct {
	points []contourPoint
	length float64
}

// ContourMeasure flattens a path into per-contour polylines and answers
// length and sub-segment-extraction queries, standing in for the
// contour-measure iterator a real 2D backend (e.g. SkContourMeasureIter)
// provides.
type ContourMeasure struct {
	contours []contour
	total    float64
}

// NewContourMeasure builds a ContourMeasure over path's contours.
func NewContourMeasure(path *Path) *ContourMeasure {
	cm := &ContourMeasure{}
	var cur []Offset
	flush := func() {
		if len(cur) < 2 {
			cur = cur[:0]
			return
		}
		c := contour{}
		d := 0.0
		c.points = append(c.points, contourPoint{pt: cur[0], dist: 0})
		for i := 1; i < len(cur); i++ {
			d += Distance(cur[i-1], cur[i])
			c.points = append(c.points, contourPoint{pt: cur[i], dist: d})
		}
		c.length = d
		cm.contours = append(cm.contours, c)
		cm.total += d
		cur = cur[:0]
	}

	var last Offset
	for _, cmd := range path.Commands {
		switch cmd.Op {
		case PathOpMoveTo:
			flush()
			last = Offset{X: cmd.Args[0], Y: cmd.Args[1]}
			cur = append(cur, last)
		case PathOpLineTo:
			last = Offset{X: cmd.Args[0], Y: cmd.Args[1]}
			cur = append(cur, last)
		case PathOpQuadTo:
			c1 := Offset{X: cmd.Args[0], Y: cmd.Args[1]}
			end := Offset{X: cmd.Args[2], Y: cmd.Args[3]}
			cur = append(cur, flattenQuad(last, c1, end)...)
			last = end
		case PathOpCubicTo:
			c1 := Offset{X: cmd.Args[0], Y: cmd.Args[1]}
			c2 := Offset{X: cmd.Args[2], Y: cmd.Args[3]}
			end := Offset{X: cmd.Args[4], Y: cmd.Args[5]}
			cur = append(cur, flattenCubic(last, c1, c2, end)...)
			last = end
		case PathOpClose:
			if len(cur) > 0 {
				cur = append(cur, cur[0])
			}
		}
	}
	flush()
	return cm
}

// Length returns the summed length of every contour.
func (cm *ContourMeasure) Length() float64 { return cm.total }

// ExtractSegment returns a new path containing the portion of every
// contour lying within [startFraction, endFraction] of that contour's own
// length, where fractions are in [0,1]. startFraction > endFraction
// yields an empty path (no wraparound).
func (cm *ContourMeasure) ExtractSegment(startFraction, endFraction float64) Path {
	out := NewPath()
	startFraction = clamp(startFraction, 0, 1)
	endFraction = clamp(endFraction, 0, 1)
	if startFraction > endFraction {
		return *out
	}
	for _, c := range cm.contours {
		if c.length <= 0 {
			continue
		}
		from := startFraction * c.length
		to := endFraction * c.length
		appendSubPolyline(out, c, from, to)
	}
	return *out
}

func appendSubPolyline(out *Path, c contour, from, to float64) {
	if to <= from {
		return
	}
	started := false
	for i := 1; i < len(c.points); i++ {
		segStart, segEnd := c.points[i-1], c.points[i]
		if segEnd.dist < from || segStart.dist > to {
			continue
		}
		lo := clampPointOnSegment(segStart, segEnd, math.Max(from, segStart.dist))
		hi := clampPointOnSegment(segStart, segEnd, math.Min(to, segEnd.dist))
		if !started {
			out.MoveTo(lo.X, lo.Y)
			started = true
		}
		out.LineTo(hi.X, hi.Y)
	}
}

func clampPointOnSegment(a, b contourPoint, dist float64) Offset {
	span := b.dist - a.dist
	if span <= 0 {
		return a.pt
	}
	t := (dist - a.dist) / span
	t = clamp(t, 0, 1)
	return Offset{
		X: a.pt.X + (b.pt.X-a.pt.X)*t,
		Y: a.pt.Y + (b.pt.Y-a.pt.Y)*t,
	}
}

func flattenQuad(p0, p1, p2 Offset) []Offset {
	n := flattenSteps(p0, p1, p2, p2)
	out := make([]Offset, 0, n)
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		mt := 1 - t
		x := mt*mt*p0.X + 2*mt*t*p1.X + t*t*p2.X
		y := mt*mt*p0.Y + 2*mt*t*p1.Y + t*t*p2.Y
		out = append(out, Offset{X: x, Y: y})
	}
	return out
}

func flattenCubic(p0, p1, p2, p3 Offset) []Offset {
	n := flattenSteps(p0, p1, p2, p3)
	out := make([]Offset, 0, n)
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		mt := 1 - t
		x := mt*mt*mt*p0.X + 3*mt*mt*t*p1.X + 3*mt*t*t*p2.X + t*t*t*p3.X
		y := mt*mt*mt*p0.Y + 3*mt*mt*t*p1.Y + 3*mt*t*t*p2.Y + t*t*t*p3.Y
		out = append(out, Offset{X: x, Y: y})
	}
	return out
}

// flattenSteps picks a segment count from the control polygon's extent so
// flattening stays within flattenTolerance for typical layer-sized curves.
func flattenSteps(p0, p1, p2, p3 Offset) int {
	span := Distance(p0, p1) + Distance(p1, p2) + Distance(p2, p3)
	steps := int(math.Sqrt(span / flattenTolerance * 4))
	if steps < 4 {
		return 4
	}
	if steps > 64 {
		return 64
	}
	return steps
}
