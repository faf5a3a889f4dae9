// Package canvas defines the external collaborator contracts the rendering
// core draws through: a 2D graphics backend (Canvas), bitmap buffers,
// externally-owned platform view surfaces, and opaque masks. None of these
// are implemented here — the core only depends on their interfaces, per the
// non-goal that the actual graphics backend, native-view host, and resource
// loading live outside this module.
package canvas

import (
	"fmt"

	"github.com/valdi-render/scenepipe/pkg/geometry"
)

// FilterQuality controls image sampling quality during scaling.
type FilterQuality int

const (
	FilterQualityNone FilterQuality = iota
	FilterQualityLow
	FilterQualityMedium
	FilterQualityHigh
)

func (q FilterQuality) String() string {
	switch q {
	case FilterQualityNone:
		return "none"
	case FilterQualityLow:
		return "low"
	case FilterQualityMedium:
		return "medium"
	case FilterQualityHigh:
		return "high"
	default:
		return fmt.Sprintf("FilterQuality(%d)", int(q))
	}
}

// ClipOp specifies how a new clip shape combines with the existing clip region.
type ClipOp int

const (
	ClipOpIntersect ClipOp = iota
	ClipOpDifference
)

func (o ClipOp) String() string {
	switch o {
	case ClipOpIntersect:
		return "intersect"
	case ClipOpDifference:
		return "difference"
	default:
		return fmt.Sprintf("ClipOp(%d)", int(o))
	}
}

// Picture is an opaque, immutable, producible-once recording of draw
// primitives. A picture recorder produces these; a Canvas replays them via
// DrawPicture. Picture handles are retained by the display list for as long
// as an op references them (see Retain/Release).
type Picture interface {
	// Bounds returns the picture's recorded content bounds.
	Bounds() geometry.Rect
	// Retain increments the picture's reference count.
	Retain()
	// Release decrements the picture's reference count.
	Release()
}

// PictureRecorder produces a Picture by recording Canvas calls issued
// between BeginRecording and EndRecording.
type PictureRecorder interface {
	BeginRecording(bounds geometry.Rect) Canvas
	EndRecording() Picture
}

// Canvas records or renders drawing commands. This is the contract the
// rendering core assumes of the 2D graphics backend; the backend itself
// (Skia or otherwise) is outside the core's scope.
type Canvas interface {
	// Save pushes the current transform and clip state.
	Save()

	// SaveLayer saves a new offscreen layer for group compositing. bounds
	// defines the layer extent; pass the zero Rect for unbounded. A nil
	// paint behaves like Save with no special compositing.
	SaveLayer(bounds geometry.Rect, paint *geometry.Paint)

	// Restore pops the most recent transform/clip/layer state.
	Restore()

	// RestoreToCount restores Save/SaveLayer state until exactly count
	// saves remain on the stack.
	RestoreToCount(count int)

	// SaveCount returns the number of outstanding Save/SaveLayer calls.
	SaveCount() int

	// Translate moves the origin by the given offset.
	Translate(dx, dy float64)

	// Scale scales the coordinate system by the given factors.
	Scale(sx, sy float64)

	// Concat composes matrix onto the current transform.
	Concat(matrix geometry.Matrix)

	// ClipRect restricts future drawing to the given rectangle.
	ClipRect(rect geometry.Rect, op ClipOp)

	// ClipPath restricts future drawing to an arbitrary path shape.
	ClipPath(path *geometry.Path, op ClipOp, antialias bool)

	// DrawPaint fills the entire current clip with paint.
	DrawPaint(paint geometry.Paint)

	// DrawRect draws a rectangle with the provided paint.
	DrawRect(rect geometry.Rect, paint geometry.Paint)

	// DrawPath draws a path with the provided paint.
	DrawPath(path *geometry.Path, paint geometry.Paint)

	// DrawImage draws an image with its top-left corner at the given position.
	DrawImage(img Image, position geometry.Offset, paint *geometry.Paint)

	// DrawImageRect draws an image from srcRect to dstRect with sampling quality.
	DrawImageRect(img Image, srcRect, dstRect geometry.Rect, quality FilterQuality, paint *geometry.Paint)

	// DrawPicture replays a previously recorded picture, optionally applying
	// an additional matrix and paint.
	DrawPicture(picture Picture, matrix *geometry.Matrix, paint *geometry.Paint)

	// Size returns the size of the canvas in pixels.
	Size() geometry.Size
}

// Image is an opaque, backend-owned decoded image usable with DrawImage /
// DrawImageRect; the rendering core never decodes pixels itself.
type Image interface {
	Size() geometry.Size
}
