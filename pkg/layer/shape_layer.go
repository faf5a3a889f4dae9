package layer

import (
	"github.com/valdi-render/scenepipe/pkg/canvas"
	"github.com/valdi-render/scenepipe/pkg/drawcontext"
	"github.com/valdi-render/scenepipe/pkg/geometry"
)

// ShapeLayer draws a fill-and-stroke vector path, optionally trimmed to
// the arc-length segment between StrokeStart and StrokeEnd (each in
// [0,1]). StrokeStart > StrokeEnd yields an empty visible segment rather
// than wrapping around the contour.
type ShapeLayer struct {
	*Layer

	Path        *geometry.Path
	FillPaint   *geometry.Paint // nil disables fill
	StrokePaint *geometry.Paint // nil disables stroke

	StrokeStart float64
	StrokeEnd   float64

	pathCacheKey   *geometry.Path
	trimmedPath    geometry.Path
	trimmedIsValid bool
}

// NewShapeLayer creates a shape layer with a full [0,1] stroke range and
// no path; callers set Path before the first Draw.
func NewShapeLayer(recorderFactory func() canvas.PictureRecorder) *ShapeLayer {
	sl := &ShapeLayer{
		Layer:       New(recorderFactory),
		StrokeStart: 0,
		StrokeEnd:   1,
	}
	sl.Layer.SetDrawHandler(sl.onDraw)
	return sl
}

// SetPath installs a new path and invalidates the trimmed-segment cache.
func (sl *ShapeLayer) SetPath(path *geometry.Path) {
	sl.Path = path
	sl.trimmedIsValid = false
	sl.SetNeedsDisplay()
}

// SetStrokeRange updates StrokeStart/StrokeEnd and invalidates the
// trimmed-segment cache.
func (sl *ShapeLayer) SetStrokeRange(start, end float64) {
	sl.StrokeStart, sl.StrokeEnd = start, end
	sl.trimmedIsValid = false
	sl.SetNeedsDisplay()
}

func (sl *ShapeLayer) effectivePath() *geometry.Path {
	if sl.Path == nil {
		return nil
	}
	if sl.StrokeStart <= 0 && sl.StrokeEnd >= 1 {
		return sl.Path
	}
	if !sl.trimmedIsValid || sl.pathCacheKey != sl.Path {
		measure := geometry.NewContourMeasure(sl.Path)
		sl.trimmedPath = measure.ExtractSegment(sl.StrokeStart, sl.StrokeEnd)
		sl.pathCacheKey = sl.Path
		sl.trimmedIsValid = true
	}
	return &sl.trimmedPath
}

func (sl *ShapeLayer) onDraw(dc *drawcontext.DrawingContext, scale float64) {
	path := sl.effectivePath()
	if path == nil || path.IsEmpty() {
		return
	}
	if sl.FillPaint != nil {
		dc.DrawPaintPath(*sl.FillPaint, path)
	}
	if sl.StrokePaint != nil {
		stroke := *sl.StrokePaint
		stroke.Style = geometry.PaintStyleStroke
		dc.DrawPaintPath(stroke, path)
	}
}
