package displaylist

import (
	"math"

	"github.com/valdi-render/scenepipe/pkg/canvas"
	"github.com/valdi-render/scenepipe/pkg/geometry"
)

// drawVisitor replays one plane's ops onto a backend canvas, snapping the
// translation of every replayed PushContext to the pixel grid at the
// target scale so neighboring layers don't show sub-pixel seams. Only the
// translation components are snapped; scale/skew pass through untouched.
type drawVisitor struct {
	canvas   canvas.Canvas
	scaleX   float64
	scaleY   float64
	hasMasks bool
}

func snapTranslation(m geometry.Matrix, scaleX, scaleY float64) geometry.Matrix {
	snapped := m
	if scaleX != 0 {
		snapped.TransX = math.Round(m.TransX*scaleX) / scaleX
	}
	if scaleY != 0 {
		snapped.TransY = math.Round(m.TransY*scaleY) / scaleY
	}
	return snapped
}

func (v *drawVisitor) VisitPushContext(op PushContext) {
	v.canvas.Save()
	v.canvas.Concat(snapTranslation(op.Matrix, v.scaleX, v.scaleY))
}

func (v *drawVisitor) VisitPopContext(PopContext) {
	v.canvas.Restore()
}

func (v *drawVisitor) VisitDrawPicture(op DrawPicture) {
	if op.Picture == nil {
		return
	}
	paint := geometry.DefaultPaint()
	paint.Alpha = op.Opacity
	v.canvas.DrawPicture(op.Picture, nil, &paint)
}

func (v *drawVisitor) VisitClipRect(op ClipRect) {
	rect := geometry.RectFromLTWH(0, 0, op.Width, op.Height)
	v.canvas.ClipRect(rect, canvas.ClipOpIntersect)
}

func (v *drawVisitor) VisitClipRound(op ClipRound) {
	bounds := geometry.RectFromLTWH(0, 0, op.Width, op.Height)
	path := op.BorderRadius.GetPath(bounds)
	v.canvas.ClipPath(&path, canvas.ClipOpIntersect, true)
}

func (v *drawVisitor) VisitDrawExternalSurface(op DrawExternalSurface) {
	// Placement for an external surface plane is handled by the raster
	// context, which owns the cached rasterization; a drawable plane never
	// carries this op after compositing (see §4.4), but a pre-compositor
	// fast-path draw can still see one here with nothing else to blit.
}

func (v *drawVisitor) VisitPrepareMask(op PrepareMask) {
	if op.Mask != nil {
		v.hasMasks = true
		op.Mask.Prepare(v.canvas)
	}
}

func (v *drawVisitor) VisitApplyMask(op ApplyMask) {
	if op.Mask != nil {
		op.Mask.Apply(v.canvas)
	}
}

// Draw plays plane planeIndex (or AllPlanes) back onto target, scaled so
// the list's logical (Width, Height) maps onto target's pixel size.
// shouldClear requests a full clear before replay; callers doing delta
// rasterization into a damaged sub-rect pass false and rely on their own
// clip.
func (d *DisplayList) Draw(target canvas.Canvas, planeIndex int, shouldClear bool) {
	size := target.Size()
	scaleX := 1.0
	scaleY := 1.0
	if d.Width != 0 {
		scaleX = size.Width / d.Width
	}
	if d.Height != 0 {
		scaleY = size.Height / d.Height
	}

	startDepth := target.SaveCount()
	if shouldClear {
		target.DrawPaint(clearPaint())
	}

	target.Save()
	target.Scale(scaleX, scaleY)

	v := &drawVisitor{canvas: target, scaleX: scaleX, scaleY: scaleY}
	if d.planeHasMask(planeIndex) {
		bounds := geometry.RectFromLTWH(0, 0, d.Width, d.Height)
		target.SaveLayer(bounds, nil)
		d.VisitOperations(planeIndex, v)
		target.Restore()
	} else {
		d.VisitOperations(planeIndex, v)
	}

	target.RestoreToCount(startDepth)
}

func (d *DisplayList) planeHasMask(planeIndex int) bool {
	check := func(p *Plane) bool {
		for _, op := range p.Ops {
			if op.Kind() == OpKindPrepareMask {
				return true
			}
		}
		return false
	}
	if planeIndex == AllPlanes {
		for _, p := range d.planes {
			if check(p) {
				return true
			}
		}
		return false
	}
	p := d.Plane(planeIndex)
	if p == nil {
		return false
	}
	return check(p)
}

func clearPaint() geometry.Paint {
	paint := geometry.DefaultPaint()
	paint.Color = geometry.ColorTransparent
	paint.BlendMode = geometry.BlendModeSrc
	return paint
}
