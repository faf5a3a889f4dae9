package fakebackend

import (
	"sync/atomic"

	"github.com/valdi-render/scenepipe/pkg/canvas"
	"github.com/valdi-render/scenepipe/pkg/geometry"
)

// pictureOp is one recorded Canvas call, replayed later against whatever
// canvas DrawPicture targets. alpha is the opacity DrawPicture itself was
// called with; draw ops fold it into their own paint's alpha on replay.
type pictureOp func(c *Canvas, alpha float64)

// Picture is a recorded, replayable sequence of canvas calls.
type Picture struct {
	bounds   geometry.Rect
	ops      []pictureOp
	refCount int32
}

func (p *Picture) Bounds() geometry.Rect { return p.bounds }
func (p *Picture) Retain()               { atomic.AddInt32(&p.refCount, 1) }
func (p *Picture) Release()              { atomic.AddInt32(&p.refCount, -1) }

func scaledPaint(paint *geometry.Paint, alpha float64) *geometry.Paint {
	if paint == nil && alpha == 1 {
		return nil
	}
	scaled := geometry.Paint{Alpha: alpha}
	if paint != nil {
		scaled = *paint
		scaled.Alpha *= alpha
	}
	return &scaled
}

// recordingCanvas implements canvas.Canvas but never draws a single pixel:
// every call appends a pictureOp closure instead, to be replayed for real
// once DrawPicture plays the finished Picture back onto a live Canvas.
type recordingCanvas struct {
	ops       []pictureOp
	saveDepth int
}

func (r *recordingCanvas) record(op pictureOp) { r.ops = append(r.ops, op) }

func (r *recordingCanvas) Save() {
	r.saveDepth++
	r.record(func(c *Canvas, alpha float64) { c.Save() })
}

func (r *recordingCanvas) SaveLayer(bounds geometry.Rect, paint *geometry.Paint) {
	r.saveDepth++
	r.record(func(c *Canvas, alpha float64) { c.SaveLayer(bounds, paint) })
}

func (r *recordingCanvas) Restore() {
	if r.saveDepth > 0 {
		r.saveDepth--
	}
	r.record(func(c *Canvas, alpha float64) { c.Restore() })
}

func (r *recordingCanvas) RestoreToCount(count int) {
	r.saveDepth = count
	r.record(func(c *Canvas, alpha float64) { c.RestoreToCount(count) })
}

func (r *recordingCanvas) SaveCount() int { return r.saveDepth }

func (r *recordingCanvas) Translate(dx, dy float64) {
	r.record(func(c *Canvas, alpha float64) { c.Translate(dx, dy) })
}

func (r *recordingCanvas) Scale(sx, sy float64) {
	r.record(func(c *Canvas, alpha float64) { c.Scale(sx, sy) })
}

func (r *recordingCanvas) Concat(m geometry.Matrix) {
	r.record(func(c *Canvas, alpha float64) { c.Concat(m) })
}

func (r *recordingCanvas) ClipRect(rect geometry.Rect, op canvas.ClipOp) {
	r.record(func(c *Canvas, alpha float64) { c.ClipRect(rect, op) })
}

func (r *recordingCanvas) ClipPath(path *geometry.Path, op canvas.ClipOp, antialias bool) {
	captured := *path
	r.record(func(c *Canvas, alpha float64) { c.ClipPath(&captured, op, antialias) })
}

func (r *recordingCanvas) DrawPaint(paint geometry.Paint) {
	r.record(func(c *Canvas, alpha float64) {
		scaled := paint
		scaled.Alpha *= alpha
		c.DrawPaint(scaled)
	})
}

func (r *recordingCanvas) DrawRect(rect geometry.Rect, paint geometry.Paint) {
	r.record(func(c *Canvas, alpha float64) {
		scaled := paint
		scaled.Alpha *= alpha
		c.DrawRect(rect, scaled)
	})
}

func (r *recordingCanvas) DrawPath(path *geometry.Path, paint geometry.Paint) {
	captured := *path
	r.record(func(c *Canvas, alpha float64) {
		scaled := paint
		scaled.Alpha *= alpha
		c.DrawPath(&captured, scaled)
	})
}

func (r *recordingCanvas) DrawImage(img canvas.Image, position geometry.Offset, paint *geometry.Paint) {
	r.record(func(c *Canvas, alpha float64) {
		c.DrawImage(img, position, scaledPaint(paint, alpha))
	})
}

func (r *recordingCanvas) DrawImageRect(img canvas.Image, srcRect, dstRect geometry.Rect, quality canvas.FilterQuality, paint *geometry.Paint) {
	r.record(func(c *Canvas, alpha float64) {
		c.DrawImageRect(img, srcRect, dstRect, quality, scaledPaint(paint, alpha))
	})
}

func (r *recordingCanvas) DrawPicture(picture canvas.Picture, matrix *geometry.Matrix, paint *geometry.Paint) {
	r.record(func(c *Canvas, alpha float64) {
		c.DrawPicture(picture, matrix, scaledPaint(paint, alpha))
	})
}

func (r *recordingCanvas) Size() geometry.Size { return geometry.Size{} }

// Recorder implements canvas.PictureRecorder over this package's types.
type Recorder struct {
	bounds  geometry.Rect
	current *recordingCanvas
}

func (r *Recorder) BeginRecording(bounds geometry.Rect) canvas.Canvas {
	r.bounds = bounds
	r.current = &recordingCanvas{}
	return r.current
}

func (r *Recorder) EndRecording() canvas.Picture {
	return &Picture{bounds: r.bounds, ops: r.current.ops}
}
