package layer

import (
	"time"

	"github.com/valdi-render/scenepipe/pkg/canvas"
	"github.com/valdi-render/scenepipe/pkg/drawcontext"
	"github.com/valdi-render/scenepipe/pkg/errors"
	"github.com/valdi-render/scenepipe/pkg/geometry"
)

// ExternalLayer bears one externally owned platform-view surface. Its
// onDraw hook first pushes the layer's current frame size down to the
// surface, then either records a DrawExternalSurface op for the
// compositor to place (accurate path) or rasterizes the surface into a
// bitmap and blits it as an image (fast path), per the root's
// ShouldRasterizeExternalSurface policy.
type ExternalLayer struct {
	*Layer

	Surface canvas.ExternalSurface
}

// NewExternalLayer creates an external layer wrapping surface.
func NewExternalLayer(recorderFactory func() canvas.PictureRecorder, surface canvas.ExternalSurface) *ExternalLayer {
	el := &ExternalLayer{Layer: New(recorderFactory), Surface: surface}
	el.Layer.SetDrawHandler(el.onDraw)
	return el
}

func (el *ExternalLayer) onDraw(dc *drawcontext.DrawingContext, scale float64) {
	if el.Surface == nil {
		return
	}
	frame := dc.DrawBounds()
	el.Surface.SetRelativeSize(frame.Size())

	if !el.root().ShouldRasterizeExternalSurface() {
		dc.DrawExternalSurface(el.Surface)
		return
	}

	factory := el.Surface.RasterBitmapFactory()
	if factory == nil {
		reportError(el.Layer.root, errors.New("ExternalLayer.onDraw", errors.KindMissingBitmapFactory, nil))
		return
	}
	if scale <= 0 {
		scale = 1
	}
	pxWidth := int(frame.Width() * scale)
	pxHeight := int(frame.Height() * scale)
	if pxWidth <= 0 || pxHeight <= 0 {
		return
	}
	bitmap, err := factory.CreateBitmap(pxWidth, pxHeight)
	if err != nil {
		reportError(el.Layer.root, errors.New("ExternalLayer.onDraw", errors.KindBitmapAllocationFailed, err))
		return
	}
	if err := el.Surface.RasterInto(bitmap, frame, geometry.Identity(), scale, scale); err != nil {
		reportError(el.Layer.root, errors.New("ExternalLayer.onDraw", errors.KindExternalSurfaceRasterFailed, err))
		return
	}
	dc.DrawBitmap(bitmap, geometry.FittingFill)
}

// root exposes the embedded Layer's root field as a settable Root,
// defaulting to a permissive stub so onDraw can call
// ShouldRasterizeExternalSurface without a nil check when the layer is
// drawn detached (detached layers are never walked by Draw in practice,
// but onDraw is also reachable from direct unit tests).
func (el *ExternalLayer) root() Root {
	if el.Layer.root == nil {
		return detachedRoot{}
	}
	return el.Layer.root
}

// detachedRoot is the permissive Root used when an ExternalLayer is
// exercised outside a tree; it defaults to the accurate compositing path.
type detachedRoot struct{}

func (detachedRoot) AllocateLayerID() uint64                      { return 0 }
func (detachedRoot) EnqueueEvent(func(), time.Duration) EventID   { return 0 }
func (detachedRoot) CancelEvent(EventID)                          {}
func (detachedRoot) ShouldRasterizeExternalSurface() bool         { return false }
