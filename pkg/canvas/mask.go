package canvas

import (
	"sync/atomic"

	"github.com/valdi-render/scenepipe/pkg/geometry"
)

// Mask is an opaque masking shape: the display list and compositor treat it
// only as an identity to match Prepare/Apply pairs and a bounds hint used
// to pick a plane; the actual masking operation is the backend's job.
type Mask interface {
	// Bounds returns the local-space bounds the mask affects, used by the
	// compositor to choose a regular plane the same way a drawing op would.
	Bounds() geometry.Rect
	// Prepare begins the masking group on canvas (typically a SaveLayer).
	Prepare(c Canvas)
	// Apply finishes the masking group, compositing the prepared content
	// against the mask's coverage.
	Apply(c Canvas)
	// Description returns a short human-readable label for debug dumps.
	Description() string
}

// RefCountedMask decorates a Mask with a reference count so the display
// list can enforce the retain/release balance invariant without requiring
// every Mask implementation to track its own count.
type RefCountedMask struct {
	Mask
	refCount int32
}

// NewRefCountedMask wraps mask with a zero reference count.
func NewRefCountedMask(mask Mask) *RefCountedMask { return &RefCountedMask{Mask: mask} }

// Retain increments the mask's reference count.
func (m *RefCountedMask) Retain() { atomic.AddInt32(&m.refCount, 1) }

// Release decrements the mask's reference count, returning the result.
func (m *RefCountedMask) Release() int32 { return atomic.AddInt32(&m.refCount, -1) }

// RefCount returns the current reference count.
func (m *RefCountedMask) RefCount() int32 { return atomic.LoadInt32(&m.refCount) }
