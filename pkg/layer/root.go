// Package layer implements the retained scene graph the rendering core
// walks to emit a display list: Layer nodes (and the shape/external/mask
// subclasses), dirty-bit propagation, hit testing, and the animation
// frame loop.
package layer

import (
	"time"

	"github.com/valdi-render/scenepipe/pkg/errors"
)

// EventID identifies a scheduled animation-frame callback so it can be
// cancelled.
type EventID uint64

// Root is the distinguished layer-tree owner a Layer attaches to. It
// allocates stable layer ids, schedules animation-frame callbacks, and
// decides the external-surface rasterization policy. The core never
// implements the actual VSync/main-thread dispatch; Root is the seam a
// host UI thread implements.
type Root interface {
	// AllocateLayerID returns a fresh, stable id; the zero value is never
	// issued so Layer can use 0 to mean "unassigned".
	AllocateLayerID() uint64
	// EnqueueEvent schedules callback to run after delay and returns an id
	// that CancelEvent can use to cancel it before it fires.
	EnqueueEvent(callback func(), delay time.Duration) EventID
	// CancelEvent cancels a previously scheduled callback, if it has not
	// already fired.
	CancelEvent(id EventID)
	// ShouldRasterizeExternalSurface reports the external-surface policy:
	// true selects the fast path (the engine rasterizes the surface into a
	// bitmap and blits it as an image), false selects the accurate path
	// (the drawing context records a DrawExternalSurface op and the
	// compositor splits planes around it).
	ShouldRasterizeExternalSurface() bool
}

// ErrorReporter is an optional interface a Root may also implement to
// receive structured errors from layer-tree operations that can fail
// (external-surface rasterization). Layer-tree operations never return
// errors themselves; a Root that doesn't implement this silently drops
// failures.
type ErrorReporter interface {
	HandleError(err *errors.RenderError)
}

func reportError(root Root, err *errors.RenderError) {
	if root == nil || err == nil {
		return
	}
	if reporter, ok := root.(ErrorReporter); ok {
		reporter.HandleError(err)
	}
}

// scheduledEvent is one pending TestRoot callback.
type scheduledEvent struct {
	id        EventID
	fireAfter time.Duration
	elapsed   time.Duration
	callback  func()
	cancelled bool
}

// TestRoot is a minimal Root usable by tests, demos, and any host that
// wants manual control over the animation clock: callers advance time
// explicitly via Tick instead of a real scheduler driving it.
type TestRoot struct {
	FastExternalSurfaces bool // ShouldRasterizeExternalSurface's return value
	Errors               []*errors.RenderError

	nextLayerID uint64
	nextEventID uint64
	events      []*scheduledEvent
}

// NewTestRoot creates a Root with the accurate (compositor-driven)
// external-surface policy by default.
func NewTestRoot() *TestRoot {
	return &TestRoot{}
}

func (r *TestRoot) AllocateLayerID() uint64 {
	r.nextLayerID++
	return r.nextLayerID
}

func (r *TestRoot) EnqueueEvent(callback func(), delay time.Duration) EventID {
	r.nextEventID++
	id := EventID(r.nextEventID)
	r.events = append(r.events, &scheduledEvent{id: id, fireAfter: delay, callback: callback})
	return id
}

func (r *TestRoot) CancelEvent(id EventID) {
	for _, e := range r.events {
		if e.id == id {
			e.cancelled = true
		}
	}
}

func (r *TestRoot) ShouldRasterizeExternalSurface() bool { return r.FastExternalSurfaces }

func (r *TestRoot) HandleError(err *errors.RenderError) {
	r.Errors = append(r.Errors, err)
}

// Tick advances the scheduler clock by dt, firing (and removing) every
// non-cancelled event whose delay has elapsed.
func (r *TestRoot) Tick(dt time.Duration) {
	pending := r.events[:0]
	due := make([]*scheduledEvent, 0, len(r.events))
	for _, e := range r.events {
		if e.cancelled {
			continue
		}
		e.elapsed += dt
		if e.elapsed >= e.fireAfter {
			due = append(due, e)
			continue
		}
		pending = append(pending, e)
	}
	r.events = pending
	for _, e := range due {
		e.callback()
	}
}
