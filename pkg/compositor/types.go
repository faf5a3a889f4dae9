package compositor

import (
	"github.com/valdi-render/scenepipe/pkg/canvas"
	"github.com/valdi-render/scenepipe/pkg/geometry"
)

// PlaneKind discriminates a CompositorPlane.
type PlaneKind int

const (
	// PlaneKindDrawable is a plane of engine-drawn display-list ops.
	PlaneKindDrawable PlaneKind = iota
	// PlaneKindExternal is a placeholder for an externally owned surface
	// the host must present at the given PresenterState.
	PlaneKindExternal
)

func (k PlaneKind) String() string {
	if k == PlaneKindExternal {
		return "external"
	}
	return "drawable"
}

// PresenterState is the absolute frame, transform, clip, and opacity at
// which a host should display an external surface.
type PresenterState struct {
	Frame     geometry.Rect
	Transform geometry.Matrix
	ClipPath  geometry.Path
	Opacity   float64
}

// CompositorPlane describes one plane of the compositor's output, in
// bottom-to-top z-order.
type CompositorPlane struct {
	Kind PlaneKind

	// ExternalSnapshot and Presenter are set only when Kind ==
	// PlaneKindExternal.
	ExternalSnapshot *canvas.ExternalSurfaceSnapshot
	Presenter        PresenterState
}

// PlaneList is an ordered sequence of CompositorPlane, bottom to top.
type PlaneList []CompositorPlane

// derivePresenterState collapses an identity-or-translate transform into
// a frame-origin placement with an identity transform.
func derivePresenterState(matrix geometry.Matrix, relativeSize geometry.Size) PresenterState {
	if matrix.IsIdentityOrTranslate() {
		return PresenterState{
			Frame:     geometry.RectFromLTWH(matrix.TransX, matrix.TransY, relativeSize.Width, relativeSize.Height),
			Transform: geometry.Identity(),
		}
	}
	return PresenterState{
		Frame:     geometry.RectFromLTWH(0, 0, relativeSize.Width, relativeSize.Height),
		Transform: matrix,
	}
}
