// Package displaylist implements the typed, append-only operation stream
// the layer tree emits and the compositor/raster context consume, grouped
// into planes so externally owned surfaces can be interleaved with
// engine-drawn content at the correct z-order.
package displaylist

import (
	"github.com/valdi-render/scenepipe/pkg/canvas"
	"github.com/valdi-render/scenepipe/pkg/geometry"
)

// OpKind discriminates the variants of Op.
type OpKind int

const (
	OpKindPushContext OpKind = iota + 1
	OpKindPopContext
	OpKindDrawPicture
	OpKindClipRect
	OpKindClipRound
	OpKindDrawExternalSurface
	OpKindPrepareMask
	OpKindApplyMask
)

// Op is the common interface implemented by every display-list operation
// variant. The fixed discriminator mirrors the byte-stream tag the backing
// C++ implementation uses; Go's GC makes the byte-buffer encoding itself
// unnecessary, so each plane instead holds a slice of these small, already
// reference-counted values.
type Op interface {
	Kind() OpKind
}

// PushContext opens a new nested drawing context with its own transform,
// opacity, and layer identity.
type PushContext struct {
	Matrix     geometry.Matrix
	Opacity    float64
	LayerID    uint64
	HasUpdates bool
}

func (PushContext) Kind() OpKind { return OpKindPushContext }

// PopContext closes the most recently pushed context.
type PopContext struct{}

func (PopContext) Kind() OpKind { return OpKindPopContext }

// DrawPicture plays back a previously recorded picture. The display list
// retains the picture for as long as this op is live.
type DrawPicture struct {
	Picture canvas.Picture
	Opacity float64
}

func (DrawPicture) Kind() OpKind { return OpKindDrawPicture }

// ClipRect intersects the current context's clip with an axis-aligned
// rectangle sized (Width, Height) in the context's local space.
type ClipRect struct {
	Width  float64
	Height float64
}

func (ClipRect) Kind() OpKind { return OpKindClipRect }

// ClipRound intersects the current context's clip with a rounded rectangle.
type ClipRound struct {
	Width        float64
	Height       float64
	BorderRadius geometry.BorderRadius
}

func (ClipRound) Kind() OpKind { return OpKindClipRound }

// DrawExternalSurface marks the position where an externally owned surface
// should be displayed. The display list retains the snapshot and marks
// itself as containing external surfaces.
type DrawExternalSurface struct {
	Snapshot *canvas.ExternalSurfaceSnapshot
	Opacity  float64
}

func (DrawExternalSurface) Kind() OpKind { return OpKindDrawExternalSurface }

// PrepareMask begins a masking group; a matching ApplyMask with the same
// mask identity must follow within the same enclosing context.
type PrepareMask struct {
	Mask canvas.Mask
}

func (PrepareMask) Kind() OpKind { return OpKindPrepareMask }

// ApplyMask ends a masking group started by a PrepareMask with the same
// mask identity.
type ApplyMask struct {
	Mask canvas.Mask
}

func (ApplyMask) Kind() OpKind { return OpKindApplyMask }

// Visitor dispatches over every Op variant. Implementations that only care
// about a subset of kinds can embed BaseVisitor to get no-op defaults.
type Visitor interface {
	VisitPushContext(op PushContext)
	VisitPopContext(op PopContext)
	VisitDrawPicture(op DrawPicture)
	VisitClipRect(op ClipRect)
	VisitClipRound(op ClipRound)
	VisitDrawExternalSurface(op DrawExternalSurface)
	VisitPrepareMask(op PrepareMask)
	VisitApplyMask(op ApplyMask)
}

// BaseVisitor provides no-op implementations of every Visitor method so
// callers can embed it and override only the kinds they handle.
type BaseVisitor struct{}

func (BaseVisitor) VisitPushContext(PushContext)                 {}
func (BaseVisitor) VisitPopContext(PopContext)                   {}
func (BaseVisitor) VisitDrawPicture(DrawPicture)                 {}
func (BaseVisitor) VisitClipRect(ClipRect)                       {}
func (BaseVisitor) VisitClipRound(ClipRound)                     {}
func (BaseVisitor) VisitDrawExternalSurface(DrawExternalSurface) {}
func (BaseVisitor) VisitPrepareMask(PrepareMask)                 {}
func (BaseVisitor) VisitApplyMask(ApplyMask)                     {}

// VisitOp dispatches op to the matching Visitor method.
func VisitOp(op Op, v Visitor) {
	switch o := op.(type) {
	case PushContext:
		v.VisitPushContext(o)
	case PopContext:
		v.VisitPopContext(o)
	case DrawPicture:
		v.VisitDrawPicture(o)
	case ClipRect:
		v.VisitClipRect(o)
	case ClipRound:
		v.VisitClipRound(o)
	case DrawExternalSurface:
		v.VisitDrawExternalSurface(o)
	case PrepareMask:
		v.VisitPrepareMask(o)
	case ApplyMask:
		v.VisitApplyMask(o)
	default:
		panic("displaylist: unhandled op kind")
	}
}

// refCountedMask is the retain/release pair a canvas.Mask implementation
// must satisfy to participate in the display list's reference counting.
// retain and release assert this single interface so a mask type can
// never honor one call without the other.
type refCountedMask interface {
	Retain()
	Release() int32
}

// retain bumps the reference count of any retained heap object referenced
// by op (pictures, external surface snapshots, masks).
func retain(op Op) {
	switch o := op.(type) {
	case DrawPicture:
		if o.Picture != nil {
			o.Picture.Retain()
		}
	case DrawExternalSurface:
		if o.Snapshot != nil {
			o.Snapshot.Retain()
		}
	case PrepareMask:
		if rc, ok := o.Mask.(refCountedMask); ok {
			rc.Retain()
		}
	case ApplyMask:
		if rc, ok := o.Mask.(refCountedMask); ok {
			rc.Retain()
		}
	}
}

// release drops the reference count of any retained heap object referenced
// by op, mirroring retain.
func release(op Op) {
	switch o := op.(type) {
	case DrawPicture:
		if o.Picture != nil {
			o.Picture.Release()
		}
	case DrawExternalSurface:
		if o.Snapshot != nil {
			o.Snapshot.Release()
		}
	case PrepareMask:
		if rc, ok := o.Mask.(refCountedMask); ok {
			rc.Release()
		}
	case ApplyMask:
		if rc, ok := o.Mask.(refCountedMask); ok {
			rc.Release()
		}
	}
}
