package layer

import (
	"github.com/valdi-render/scenepipe/pkg/canvas"
	"github.com/valdi-render/scenepipe/pkg/drawcontext"
	"github.com/valdi-render/scenepipe/pkg/geometry"
)

// MaskLayer is a mask-layer bearer: an ordinary retained layer whose own
// onDraw content defines a coverage shape that another layer's Mask field
// references. BuildMask records that content as a picture and wraps it in
// a canvas.Mask that applies it as a destination-in coverage layer.
type MaskLayer struct {
	*Layer

	FillPaint *geometry.Paint // defaults to an opaque white fill if nil
	drawShape func(dc *drawcontext.DrawingContext)
}

var _ MaskProvider = (*MaskLayer)(nil)

// NewMaskLayer creates a mask bearer that fills its bounds with
// BorderRadius, matching whatever corner rounding the owning layer wants
// the mask to honor. Use SetShapeFunc to draw an arbitrary coverage shape
// instead.
func NewMaskLayer(recorderFactory func() canvas.PictureRecorder) *MaskLayer {
	ml := &MaskLayer{Layer: New(recorderFactory)}
	return ml
}

// SetShapeFunc overrides the default bounds-filling shape with a custom
// drawing callback invoked with a drawing context sized to BuildMask's
// bounds argument.
func (ml *MaskLayer) SetShapeFunc(draw func(dc *drawcontext.DrawingContext)) {
	ml.drawShape = draw
}

// BuildMask implements MaskProvider.
func (ml *MaskLayer) BuildMask(bounds geometry.Rect) canvas.Mask {
	dc := drawcontext.New(ml.recorderFactory(), bounds.Width(), bounds.Height())
	if ml.drawShape != nil {
		ml.drawShape(dc)
	} else {
		paint := geometry.DefaultPaint()
		if ml.FillPaint != nil {
			paint = *ml.FillPaint
		}
		var lazy drawcontext.LazyPath
		dc.DrawPaintInBounds(paint, ml.BorderRadius, &lazy)
	}
	content := dc.Finish()
	return &layerMask{bounds: bounds, picture: content.Picture, desc: "layerMask"}
}

// layerMask is the canvas.Mask a MaskLayer produces: SaveLayer for
// Prepare, then a destination-in composite of the recorded coverage
// picture for Apply.
type layerMask struct {
	bounds  geometry.Rect
	picture canvas.Picture
	desc    string
}

func (m *layerMask) Bounds() geometry.Rect { return m.bounds }

func (m *layerMask) Prepare(c canvas.Canvas) {
	c.SaveLayer(m.bounds, nil)
}

func (m *layerMask) Apply(c canvas.Canvas) {
	if m.picture != nil {
		paint := geometry.DefaultPaint()
		paint.BlendMode = geometry.BlendModeDstIn
		c.DrawPicture(m.picture, nil, &paint)
	}
	c.Restore()
}

func (m *layerMask) Description() string { return m.desc }
