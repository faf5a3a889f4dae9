// Package errors defines the structured error taxonomy the raster context
// surfaces to callers. Layer-tree and display-list operations do not return
// errors; they enforce their invariants with panics, since those are
// programming errors the caller is expected to honor.
package errors

import (
	"fmt"
	"time"
)

// Kind categorizes a RenderError.
type Kind int

const (
	// KindUnknown is an error of unrecognized origin.
	KindUnknown Kind = iota
	// KindBitmapFormatUnsupported means delta rasterization was attempted
	// against a bitmap that is not premultiplied 32-bit RGBA/BGRA.
	KindBitmapFormatUnsupported
	// KindBitmapAllocationFailed means a BitmapFactory returned an error.
	KindBitmapAllocationFailed
	// KindBitmapLockFailed means Bitmap.LockBytes returned nil.
	KindBitmapLockFailed
	// KindExternalSurfaceRasterFailed means ExternalSurface.RasterInto
	// returned an error.
	KindExternalSurfaceRasterFailed
	// KindMissingBitmapFactory means an external surface without a
	// RasterBitmapFactory was asked to rasterize.
	KindMissingBitmapFactory
)

func (k Kind) String() string {
	switch k {
	case KindBitmapFormatUnsupported:
		return "bitmap_format_unsupported"
	case KindBitmapAllocationFailed:
		return "bitmap_allocation_failed"
	case KindBitmapLockFailed:
		return "bitmap_lock_failed"
	case KindExternalSurfaceRasterFailed:
		return "external_surface_raster_failed"
	case KindMissingBitmapFactory:
		return "missing_bitmap_factory"
	default:
		return "unknown"
	}
}

// RenderError is the structured error type returned by raster context
// operations.
type RenderError struct {
	// Op is the operation that failed (e.g. "raster.Context.Raster").
	Op string
	// Kind categorizes the error.
	Kind Kind
	// Err is the underlying error, if any.
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s [%s]", e.Op, e.Kind)
}

func (e *RenderError) Unwrap() error { return e.Err }

// New constructs a RenderError stamped with the current time.
func New(op string, kind Kind, err error) *RenderError {
	return &RenderError{Op: op, Kind: kind, Err: err, Timestamp: time.Now()}
}

// Handler receives errors reported by the rendering core.
type Handler interface {
	HandleError(err *RenderError)
}
