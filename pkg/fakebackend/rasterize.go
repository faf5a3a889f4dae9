package fakebackend

import (
	"image"
	"image/color"

	"golang.org/x/image/vector"

	"github.com/valdi-render/scenepipe/pkg/geometry"
)

// pathToMask rasterizes path (transformed by m into device space) into a
// w x h alpha coverage mask, antialiased by x/image/vector's rasterizer.
func pathToMask(path *geometry.Path, m geometry.Matrix, w, h int) *image.Alpha {
	z := vector.NewRasterizer(w, h)
	started := false
	var startX, startY float32

	for _, cmd := range path.Commands {
		args := cmd.Args
		switch cmd.Op {
		case geometry.PathOpMoveTo:
			if started {
				z.ClosePath()
			}
			p := m.MapPoint(geometry.Offset{X: args[0], Y: args[1]})
			startX, startY = float32(p.X), float32(p.Y)
			z.MoveTo(startX, startY)
			started = true
		case geometry.PathOpLineTo:
			p := m.MapPoint(geometry.Offset{X: args[0], Y: args[1]})
			z.LineTo(float32(p.X), float32(p.Y))
		case geometry.PathOpQuadTo:
			c := m.MapPoint(geometry.Offset{X: args[0], Y: args[1]})
			e := m.MapPoint(geometry.Offset{X: args[2], Y: args[3]})
			z.QuadTo(float32(c.X), float32(c.Y), float32(e.X), float32(e.Y))
		case geometry.PathOpCubicTo:
			c1 := m.MapPoint(geometry.Offset{X: args[0], Y: args[1]})
			c2 := m.MapPoint(geometry.Offset{X: args[2], Y: args[3]})
			e := m.MapPoint(geometry.Offset{X: args[4], Y: args[5]})
			z.CubeTo(float32(c1.X), float32(c1.Y), float32(c2.X), float32(c2.Y), float32(e.X), float32(e.Y))
		case geometry.PathOpClose:
			z.ClosePath()
			z.MoveTo(startX, startY)
		}
	}
	if started {
		z.ClosePath()
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}

// rectToMask is the fast path for an axis-aligned, untransformed-or-translate
// clip rect: filling a mask rectangle directly is much cheaper than routing
// through the rasterizer.
func rectToMask(rect geometry.Rect, w, h int) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	draw := image.Rect(int(rect.Left), int(rect.Top), int(rect.Right), int(rect.Bottom)).Intersect(mask.Bounds())
	for y := draw.Min.Y; y < draw.Max.Y; y++ {
		for x := draw.Min.X; x < draw.Max.X; x++ {
			mask.SetAlpha(x, y, color.Alpha{A: 0xff})
		}
	}
	return mask
}

// intersectMasks returns a new mask equal to the pixelwise minimum of a and
// b; a nil operand means "fully opaque" (no restriction).
func intersectMasks(a, b *image.Alpha, w, h int) *image.Alpha {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	out := image.NewAlpha(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			av := a.AlphaAt(x, y).A
			bv := b.AlphaAt(x, y).A
			if bv < av {
				av = bv
			}
			out.SetAlpha(x, y, color.Alpha{A: av})
		}
	}
	return out
}
