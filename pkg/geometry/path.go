package geometry

import (
	"fmt"
	"math"
)

// PathOp represents a path drawing operation type.
type PathOp int

const (
	PathOpMoveTo  PathOp = iota // Start new subpath at point (x, y)
	PathOpLineTo                // Draw line to point (x, y)
	PathOpQuadTo                // Draw quadratic curve to (x2, y2) via control (x1, y1)
	PathOpCubicTo               // Draw cubic curve to (x3, y3) via controls (x1, y1), (x2, y2)
	PathOpClose                 // Close subpath with line to start point
)

func (o PathOp) String() string {
	switch o {
	case PathOpMoveTo:
		return "move_to"
	case PathOpLineTo:
		return "line_to"
	case PathOpQuadTo:
		return "quad_to"
	case PathOpCubicTo:
		return "cubic_to"
	case PathOpClose:
		return "close"
	default:
		return fmt.Sprintf("PathOp(%d)", int(o))
	}
}

// PathFillRule determines how path interiors are calculated for filling.
type PathFillRule int

const (
	FillRuleNonZero PathFillRule = iota
	FillRuleEvenOdd
)

func (r PathFillRule) String() string {
	switch r {
	case FillRuleNonZero:
		return "nonzero"
	case FillRuleEvenOdd:
		return "evenodd"
	default:
		return fmt.Sprintf("PathFillRule(%d)", int(r))
	}
}

// PathCommand represents a single path operation with its coordinate arguments.
type PathCommand struct {
	Op   PathOp
	Args []float64 // MoveTo/LineTo=[x,y], QuadTo=[x1,y1,x2,y2], CubicTo=[x1,y1,x2,y2,x3,y3]
}

// clipIntersection records a lazily-combined boolean intersection of two
// paths. Exact polygon clipping is the graphics backend's job (it owns the
// rasterizer); the rendering core only asks for the combined region's
// bounds, which this representation answers without flattening geometry.
// It offers no exact equality comparison of two intersections.
type clipIntersection struct {
	A, B Path
}

// Path is an ordered sequence of move/line/quad/cubic/close verbs describing
// a vector shape, used both for drawing and for clip regions.
type Path struct {
	Commands []PathCommand
	FillRule PathFillRule

	clip *clipIntersection
}

// NewPath creates a new empty path with nonzero fill rule.
func NewPath() *Path { return &Path{FillRule: FillRuleNonZero} }

// NewPathWithFillRule creates a new empty path with the specified fill rule.
func NewPathWithFillRule(fillRule PathFillRule) *Path { return &Path{FillRule: fillRule} }

func (p *Path) MoveTo(x, y float64) {
	p.Commands = append(p.Commands, PathCommand{Op: PathOpMoveTo, Args: []float64{x, y}})
}

func (p *Path) LineTo(x, y float64) {
	p.Commands = append(p.Commands, PathCommand{Op: PathOpLineTo, Args: []float64{x, y}})
}

func (p *Path) QuadTo(x1, y1, x2, y2 float64) {
	p.Commands = append(p.Commands, PathCommand{Op: PathOpQuadTo, Args: []float64{x1, y1, x2, y2}})
}

func (p *Path) CubicTo(x1, y1, x2, y2, x3, y3 float64) {
	p.Commands = append(p.Commands, PathCommand{Op: PathOpCubicTo, Args: []float64{x1, y1, x2, y2, x3, y3}})
}

func (p *Path) Close() {
	p.Commands = append(p.Commands, PathCommand{Op: PathOpClose})
}

// AddRect appends a closed rectangular contour. clockwise only affects
// winding direction, relevant to fill-rule interactions with other contours.
func (p *Path) AddRect(bounds Rect, clockwise bool) {
	p.MoveTo(bounds.Left, bounds.Top)
	if clockwise {
		p.LineTo(bounds.Right, bounds.Top)
		p.LineTo(bounds.Right, bounds.Bottom)
		p.LineTo(bounds.Left, bounds.Bottom)
	} else {
		p.LineTo(bounds.Left, bounds.Bottom)
		p.LineTo(bounds.Right, bounds.Bottom)
		p.LineTo(bounds.Right, bounds.Top)
	}
	p.Close()
}

// AddOval appends a closed elliptical contour inscribed in bounds, built
// from four cubic Bezier quadrants using the standard circle-approximation
// constant (~0.5523).
func (p *Path) AddOval(bounds Rect, clockwise bool) {
	const k = 0.5522847498307936
	cx, cy := bounds.Center().X, bounds.Center().Y
	rx, ry := bounds.Width()/2, bounds.Height()/2

	p.MoveTo(cx+rx, cy)
	if clockwise {
		p.CubicTo(cx+rx, cy+ry*k, cx+rx*k, cy+ry, cx, cy+ry)
		p.CubicTo(cx-rx*k, cy+ry, cx-rx, cy+ry*k, cx-rx, cy)
		p.CubicTo(cx-rx, cy-ry*k, cx-rx*k, cy-ry, cx, cy-ry)
		p.CubicTo(cx+rx*k, cy-ry, cx+rx, cy-ry*k, cx+rx, cy)
	} else {
		p.CubicTo(cx+rx, cy-ry*k, cx+rx*k, cy-ry, cx, cy-ry)
		p.CubicTo(cx-rx*k, cy-ry, cx-rx, cy-ry*k, cx-rx, cy)
		p.CubicTo(cx-rx, cy+ry*k, cx-rx*k, cy+ry, cx, cy+ry)
		p.CubicTo(cx+rx*k, cy+ry, cx+rx, cy+ry*k, cx+rx, cy)
	}
	p.Close()
}

// AddRoundRect appends a closed rounded-rectangle contour with per-corner
// radii ordered [topLeft, topRight, bottomRight, bottomLeft].
func (p *Path) AddRoundRect(bounds Rect, radii [4]Radius, clockwise bool) {
	tl, tr, br, bl := radii[0], radii[1], radii[2], radii[3]
	const k = 0.5522847498307936

	if clockwise {
		p.MoveTo(bounds.Left+tl.X, bounds.Top)
		p.LineTo(bounds.Right-tr.X, bounds.Top)
		if tr.X > 0 && tr.Y > 0 {
			p.CubicTo(bounds.Right-tr.X+tr.X*k, bounds.Top, bounds.Right, bounds.Top+tr.Y-tr.Y*k, bounds.Right, bounds.Top+tr.Y)
		}
		p.LineTo(bounds.Right, bounds.Bottom-br.Y)
		if br.X > 0 && br.Y > 0 {
			p.CubicTo(bounds.Right, bounds.Bottom-br.Y+br.Y*k, bounds.Right-br.X+br.X*k, bounds.Bottom, bounds.Right-br.X, bounds.Bottom)
		}
		p.LineTo(bounds.Left+bl.X, bounds.Bottom)
		if bl.X > 0 && bl.Y > 0 {
			p.CubicTo(bounds.Left+bl.X-bl.X*k, bounds.Bottom, bounds.Left, bounds.Bottom-bl.Y+bl.Y*k, bounds.Left, bounds.Bottom-bl.Y)
		}
		p.LineTo(bounds.Left, bounds.Top+tl.Y)
		if tl.X > 0 && tl.Y > 0 {
			p.CubicTo(bounds.Left, bounds.Top+tl.Y-tl.Y*k, bounds.Left+tl.X-tl.X*k, bounds.Top, bounds.Left+tl.X, bounds.Top)
		}
	} else {
		p.MoveTo(bounds.Left+tl.X, bounds.Top)
		p.LineTo(bounds.Left, bounds.Top+tl.Y)
		if tl.X > 0 && tl.Y > 0 {
			p.CubicTo(bounds.Left, bounds.Top+tl.Y-tl.Y*k, bounds.Left+tl.X-tl.X*k, bounds.Top, bounds.Left+tl.X, bounds.Top)
		}
		p.LineTo(bounds.Left+tl.X, bounds.Top)
		p.LineTo(bounds.Left, bounds.Bottom-bl.Y)
		if bl.X > 0 && bl.Y > 0 {
			p.CubicTo(bounds.Left+bl.X-bl.X*k, bounds.Bottom, bounds.Left, bounds.Bottom-bl.Y+bl.Y*k, bounds.Left, bounds.Bottom-bl.Y)
		}
		p.LineTo(bounds.Right-br.X, bounds.Bottom)
		if br.X > 0 && br.Y > 0 {
			p.CubicTo(bounds.Right, bounds.Bottom-br.Y+br.Y*k, bounds.Right-br.X+br.X*k, bounds.Bottom, bounds.Right-br.X, bounds.Bottom)
		}
		p.LineTo(bounds.Right, bounds.Bottom-br.Y)
		p.LineTo(bounds.Right, bounds.Top+tr.Y)
		if tr.X > 0 && tr.Y > 0 {
			p.CubicTo(bounds.Right-tr.X+tr.X*k, bounds.Top, bounds.Right, bounds.Top+tr.Y-tr.Y*k, bounds.Right, bounds.Top+tr.Y)
		}
	}
	p.Close()
}

// ArcTo appends an elliptical arc bounded by oval, starting at startAngle
// and sweeping sweepAngle degrees (clockwise for positive values, zero
// degrees aligned with the positive x-axis) as the start of a new contour.
func (p *Path) ArcTo(oval Rect, startAngle, sweepAngle float64) {
	cx, cy := oval.Center().X, oval.Center().Y
	rx, ry := oval.Width()/2, oval.Height()/2

	const segments = 24
	for i := 0; i <= segments; i++ {
		t := startAngle + sweepAngle*float64(i)/segments
		rad := t * math.Pi / 180
		x := cx + rx*math.Cos(rad)
		y := cy + ry*math.Sin(rad)
		if i == 0 {
			p.MoveTo(x, y)
		} else {
			p.LineTo(x, y)
		}
	}
}

// AddPath appends all of other's verbs as additional contours of p.
func (p *Path) AddPath(other Path) {
	p.Commands = append(p.Commands, other.Commands...)
}

// Transform applies matrix to every coordinate pair recorded in the path.
func (p *Path) Transform(m Matrix) {
	if p.clip != nil {
		a, b := p.clip.A, p.clip.B
		a.Transform(m)
		b.Transform(m)
		p.clip = &clipIntersection{A: a, B: b}
		return
	}
	for i := range p.Commands {
		args := p.Commands[i].Args
		for j := 0; j+1 < len(args); j += 2 {
			mapped := m.MapPoint(Offset{X: args[j], Y: args[j+1]})
			args[j], args[j+1] = mapped.X, mapped.Y
		}
	}
}

// IsEmpty returns true if the path has no commands; an intersection of two
// other paths is empty when its operands' bounds do not overlap.
func (p *Path) IsEmpty() bool {
	if p.clip != nil {
		return p.GetBounds() == nil
	}
	return len(p.Commands) == 0
}

// Clear removes all commands from the path.
func (p *Path) Clear() {
	p.Commands = p.Commands[:0]
	p.clip = nil
}

// GetBounds returns the bounding box of the path's control points, or nil
// for an empty path.
func (p *Path) GetBounds() *Rect {
	if p.clip != nil {
		aBounds, bBounds := p.clip.A.GetBounds(), p.clip.B.GetBounds()
		if aBounds == nil || bBounds == nil {
			return nil
		}
		r := aBounds.Intersection(*bBounds)
		if r.IsEmpty() {
			return nil
		}
		return &r
	}
	if len(p.Commands) == 0 {
		return nil
	}
	var out Rect
	first := true
	for _, cmd := range p.Commands {
		for j := 0; j+1 < len(cmd.Args); j += 2 {
			pt := Offset{X: cmd.Args[j], Y: cmd.Args[j+1]}
			if first {
				out = Rect{Left: pt.X, Top: pt.Y, Right: pt.X, Bottom: pt.Y}
				first = false
				continue
			}
			out.Left = math.Min(out.Left, pt.X)
			out.Top = math.Min(out.Top, pt.Y)
			out.Right = math.Max(out.Right, pt.X)
			out.Bottom = math.Max(out.Bottom, pt.Y)
		}
	}
	if first {
		return nil
	}
	return &out
}

// Intersection returns the boolean intersection of p and other. The
// rendering core does not rasterize paths itself, so the result retains
// both operands rather than flattening to new verbs. GetBounds on the result
// returns the intersection of the operands' bounds, which can be larger than
// the bounds of the exact intersection.
func (p Path) Intersection(other Path) Path {
	return Path{clip: &clipIntersection{A: p, B: other}}
}
