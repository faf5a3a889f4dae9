package canvas

import (
	"sync/atomic"

	"github.com/valdi-render/scenepipe/pkg/geometry"
)

// ExternalSurface is a mutable platform-view abstraction: a native surface
// (a video player, a map view, a text field) the host owns and the
// rendering core either defers to directly or rasterizes into a bitmap.
type ExternalSurface interface {
	// RelativeSize returns the surface's current logical size.
	RelativeSize() geometry.Size
	// SetRelativeSize updates the surface's logical size; the external
	// layer calls this with its current frame on every draw.
	SetRelativeSize(size geometry.Size)
	// RasterBitmapFactory returns the factory used to allocate bitmaps this
	// surface can rasterize into, or nil if the surface cannot be
	// rasterized (host-composited only).
	RasterBitmapFactory() BitmapFactory
	// RasterInto synchronously rasterizes the surface's current contents
	// into bitmap, positioned at frame and transformed by transform, at the
	// given pixel scale.
	RasterInto(bitmap Bitmap, frame geometry.Rect, transform geometry.Matrix, scaleX, scaleY float64) error
}

// ExternalSurfaceSnapshot is an immutable, reference-counted reference to
// one ExternalSurface, taken at the moment a drawing context records
// DrawExternalSurface. The snapshot lets the display list and compositor
// hold a stable handle while the rest of the system keeps mutating the
// live surface.
type ExternalSurfaceSnapshot struct {
	surface  ExternalSurface
	refCount int32
}

// NewExternalSurfaceSnapshot wraps surface in a fresh snapshot with a
// reference count of zero; the display list bumps it on append.
func NewExternalSurfaceSnapshot(surface ExternalSurface) *ExternalSurfaceSnapshot {
	return &ExternalSurfaceSnapshot{surface: surface}
}

// Surface returns the wrapped external surface.
func (s *ExternalSurfaceSnapshot) Surface() ExternalSurface { return s.surface }

// Identity returns a value that uniquely and stably identifies this
// snapshot for cache-key purposes; the snapshot's own pointer already does,
// but callers needing a map key across interface boundaries can use this.
func (s *ExternalSurfaceSnapshot) Identity() *ExternalSurfaceSnapshot { return s }

// Retain increments the snapshot's reference count.
func (s *ExternalSurfaceSnapshot) Retain() { atomic.AddInt32(&s.refCount, 1) }

// Release decrements the snapshot's reference count. It returns the
// resulting count so callers can assert balance in tests.
func (s *ExternalSurfaceSnapshot) Release() int32 { return atomic.AddInt32(&s.refCount, -1) }

// RefCount returns the current reference count.
func (s *ExternalSurfaceSnapshot) RefCount() int32 { return atomic.LoadInt32(&s.refCount) }

// LayerContent is the output of a drawing context's Finish call: at most one
// recorded picture plus at most one external surface snapshot.
type LayerContent struct {
	Picture  Picture
	Snapshot *ExternalSurfaceSnapshot
}

// IsEmpty reports whether the content has neither a picture nor a snapshot.
func (c LayerContent) IsEmpty() bool { return c.Picture == nil && c.Snapshot == nil }

