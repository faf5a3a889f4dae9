// Package drawcontext implements the per-layer drawing recorder: the
// object a layer's onDraw hook writes primitives into, which in turn
// records them through a backend picture recorder and packages the result
// as a canvas.LayerContent for the display list to consume.
package drawcontext

import (
	"github.com/valdi-render/scenepipe/pkg/canvas"
	"github.com/valdi-render/scenepipe/pkg/geometry"
)

// DrawingContext records the drawing of one logical layer part
// (background, content, or foreground). It wraps a backend picture
// recorder and lazily begins recording on first use, so a part with
// nothing to draw produces no picture at all.
type DrawingContext struct {
	drawBounds geometry.Rect

	recorder canvas.PictureRecorder
	target   canvas.Canvas

	externalSnapshot *canvas.ExternalSurfaceSnapshot

	finished bool
}

// New creates a drawing context bounded by (width, height) in local
// space, recording through recorder.
func New(recorder canvas.PictureRecorder, width, height float64) *DrawingContext {
	return &DrawingContext{
		drawBounds: geometry.RectFromLTWH(0, 0, width, height),
		recorder:   recorder,
	}
}

// DrawBounds returns the context's local drawing bounds.
func (d *DrawingContext) DrawBounds() geometry.Rect { return d.drawBounds }

func (d *DrawingContext) canvasTarget() canvas.Canvas {
	if d.finished {
		panic("drawcontext: drawing into a finished context")
	}
	if d.target == nil {
		d.target = d.recorder.BeginRecording(d.drawBounds)
	}
	return d.target
}

// Finish completes recording and returns the accumulated LayerContent.
// The context must not be used afterward.
func (d *DrawingContext) Finish() canvas.LayerContent {
	d.finished = true
	var content canvas.LayerContent
	content.Snapshot = d.externalSnapshot
	if d.target != nil {
		content.Picture = d.recorder.EndRecording()
	}
	return content
}

// DrawPaintInBounds paints paint clipped to the context's draw bounds
// with borderRadius, building (or reusing) lazyPath's cached contour.
func (d *DrawingContext) DrawPaintInBounds(paint geometry.Paint, borderRadius geometry.BorderRadius, lazyPath *LazyPath) {
	d.DrawPaintInRect(paint, borderRadius, d.drawBounds, lazyPath)
}

// DrawPaintInRect paints paint clipped to targetRect with borderRadius,
// building (or reusing) lazyPath's cached contour.
func (d *DrawingContext) DrawPaintInRect(paint geometry.Paint, borderRadius geometry.BorderRadius, targetRect geometry.Rect, lazyPath *LazyPath) {
	if borderRadius.IsEmpty() {
		d.DrawPaintRect(paint, targetRect)
		return
	}
	if lazyPath.Update(targetRect.Size()) {
		borderRadius.ApplyToPath(targetRect, lazyPath.Path())
	}
	d.DrawPaintPath(paint, lazyPath.Path())
}

// DrawPaintRect paints paint as a plain rectangle at targetRect.
func (d *DrawingContext) DrawPaintRect(paint geometry.Paint, targetRect geometry.Rect) {
	d.canvasTarget().DrawRect(targetRect, paint)
}

// DrawPaintPath paints paint along path, doing nothing if path is empty.
func (d *DrawingContext) DrawPaintPath(paint geometry.Paint, path *geometry.Path) {
	if path.IsEmpty() {
		return
	}
	d.canvasTarget().DrawPath(path, paint)
}

// DrawBitmap draws bitmap into the context's draw bounds, scaling it to
// fit per fittingMode.
func (d *DrawingContext) DrawBitmap(bitmap canvas.Bitmap, fittingMode geometry.FittingMode) {
	info := bitmap.Info()
	imageRect := geometry.RectFromLTWH(0, 0, float64(info.Width), float64(info.Height))
	targetRect := d.drawBounds.MakeFittingSize(imageRect.Size(), fittingMode)
	image := canvas.ImageFromBitmap(bitmap)
	d.DrawImage(image, imageRect, targetRect, nil)
}

// DrawImage draws image from srcRect to dstRect.
func (d *DrawingContext) DrawImage(image canvas.Image, srcRect, dstRect geometry.Rect, paint *geometry.Paint) {
	d.canvasTarget().DrawImageRect(image, srcRect, dstRect, canvas.FilterQualityMedium, paint)
}

// ClipRect intersects the current clip with rect.
func (d *DrawingContext) ClipRect(rect geometry.Rect) {
	d.canvasTarget().ClipRect(rect, canvas.ClipOpIntersect)
}

// ClipPath intersects the current clip with path.
func (d *DrawingContext) ClipPath(path *geometry.Path) {
	d.canvasTarget().ClipPath(path, canvas.ClipOpIntersect, true)
}

// Concat composes matrix onto the recording canvas's current transform.
func (d *DrawingContext) Concat(matrix geometry.Matrix) {
	d.canvasTarget().Concat(matrix)
}

// Save pushes the recording canvas's transform/clip state and returns the
// resulting save count.
func (d *DrawingContext) Save() int {
	d.canvasTarget().Save()
	return d.canvasTarget().SaveCount()
}

// Restore pops recorded state back down to count.
func (d *DrawingContext) Restore(count int) {
	d.canvasTarget().RestoreToCount(count)
}

// DrawExternalSurface attaches surface as this context's single external
// surface. Calling this more than once on the same context is a
// programming error.
func (d *DrawingContext) DrawExternalSurface(surface canvas.ExternalSurface) {
	if d.finished {
		panic("drawcontext: drawing into a finished context")
	}
	if d.externalSnapshot != nil {
		panic("drawcontext: drawExternalSurface called more than once on the same context")
	}
	d.externalSnapshot = canvas.NewExternalSurfaceSnapshot(surface)
}
