package displaylist

import (
	"github.com/valdi-render/scenepipe/pkg/canvas"
	"github.com/valdi-render/scenepipe/pkg/geometry"
)

// AllPlanes is the sentinel plane index meaning "every plane, in order",
// used by VisitOperations and Draw.
const AllPlanes = -1

// maxPlanes is the hard cap on planes a single display list may hold,
// matching the 64-bit presence-field width the compositor uses to track
// which planes a visited context has been replayed into.
const maxPlanes = 64

// Plane is one ordered sub-stream of operations. Planes above external
// planes in a compositor's output draw atop them; a freshly built display
// list has exactly one plane and may grow up to maxPlanes.
type Plane struct {
	Ops []Op
}

// bytesUsed approximates the storage a real byte-buffer encoding would
// occupy; exposed for getBytesUsed-style introspection and debug tooling.
func (p *Plane) bytesUsed() int {
	total := 0
	for range p.Ops {
		total += 32
	}
	return total
}

// DisplayList is an append-only log of typed operations grouped into
// planes, with a writable "current plane" cursor. It owns reference counts
// on every retained heap object (pictures, external surface snapshots,
// masks) referenced by its operations.
type DisplayList struct {
	Width, Height float64

	planes       []*Plane
	currentPlane int
	hasExternal  bool
}

// New creates a display list with a single, empty plane.
func New(width, height float64) *DisplayList {
	return &DisplayList{
		Width:  width,
		Height: height,
		planes: []*Plane{{}},
	}
}

func (d *DisplayList) append(op Op) {
	retain(op)
	plane := d.planes[d.currentPlane]
	plane.Ops = append(plane.Ops, op)
	if op.Kind() == OpKindDrawExternalSurface {
		d.hasExternal = true
	}
}

// PushContext opens a nested drawing context.
func (d *DisplayList) PushContext(matrix geometry.Matrix, opacity float64, layerID uint64, hasUpdates bool) {
	d.append(PushContext{Matrix: matrix, Opacity: opacity, LayerID: layerID, HasUpdates: hasUpdates})
}

// PopContext closes the most recently pushed context.
func (d *DisplayList) PopContext() {
	d.append(PopContext{})
}

// AppendLayerContent emits DrawPicture if content has a picture, then
// DrawExternalSurface if it has a snapshot.
func (d *DisplayList) AppendLayerContent(content canvas.LayerContent, opacity float64) {
	if content.Picture != nil {
		d.append(DrawPicture{Picture: content.Picture, Opacity: opacity})
	}
	if content.Snapshot != nil {
		d.append(DrawExternalSurface{Snapshot: content.Snapshot, Opacity: opacity})
	}
}

// AppendDrawPicture appends a DrawPicture op directly, bypassing the
// LayerContent pairing AppendLayerContent does. The compositor uses this
// when replaying a DrawPicture op it has reassigned to a different plane.
func (d *DisplayList) AppendDrawPicture(picture canvas.Picture, opacity float64) {
	d.append(DrawPicture{Picture: picture, Opacity: opacity})
}

// AppendDrawExternalSurface appends a DrawExternalSurface op directly,
// bypassing the LayerContent pairing AppendLayerContent does.
func (d *DisplayList) AppendDrawExternalSurface(snapshot *canvas.ExternalSurfaceSnapshot, opacity float64) {
	d.append(DrawExternalSurface{Snapshot: snapshot, Opacity: opacity})
}

// AppendClipRect appends a clip against an axis-aligned (w,h) rectangle.
func (d *DisplayList) AppendClipRect(w, h float64) {
	d.append(ClipRect{Width: w, Height: h})
}

// AppendClipRound appends a rounded-rect clip, degenerating to a plain
// ClipRect when the border radius is empty.
func (d *DisplayList) AppendClipRound(br geometry.BorderRadius, w, h float64) {
	if br.IsEmpty() {
		d.AppendClipRect(w, h)
		return
	}
	d.append(ClipRound{Width: w, Height: h, BorderRadius: br})
}

// AppendPrepareMask emits a PrepareMask op, retaining the mask.
func (d *DisplayList) AppendPrepareMask(mask canvas.Mask) {
	d.append(PrepareMask{Mask: mask})
}

// AppendApplyMask emits an ApplyMask op, matching a prior PrepareMask.
func (d *DisplayList) AppendApplyMask(mask canvas.Mask) {
	d.append(ApplyMask{Mask: mask})
}

// AppendPlane adds a new, empty plane and returns its index. Planes beyond
// maxPlanes are refused; callers that hit the limit fall back to reusing
// an existing plane (see the compositor's resolveRegularPlane policy).
func (d *DisplayList) AppendPlane() int {
	if len(d.planes) >= maxPlanes {
		return len(d.planes) - 1
	}
	d.planes = append(d.planes, &Plane{})
	return len(d.planes) - 1
}

// RemovePlane releases every retained reference held by plane i's
// operations and removes it from the list.
func (d *DisplayList) RemovePlane(i int) {
	if i < 0 || i >= len(d.planes) {
		return
	}
	for _, op := range d.planes[i].Ops {
		release(op)
	}
	d.planes = append(d.planes[:i], d.planes[i+1:]...)
	if d.currentPlane >= len(d.planes) {
		d.currentPlane = len(d.planes) - 1
	}
	if d.currentPlane < 0 {
		d.currentPlane = 0
	}
}

// SetCurrentPlane moves the write cursor to plane i.
func (d *DisplayList) SetCurrentPlane(i int) {
	if i < 0 || i >= len(d.planes) {
		return
	}
	d.currentPlane = i
}

// CurrentPlane returns the index of the plane new ops are appended to.
func (d *DisplayList) CurrentPlane() int { return d.currentPlane }

// RemoveEmptyPlanes drops every plane with zero operations, except plane 0
// when it would otherwise leave the list with no planes at all.
func (d *DisplayList) RemoveEmptyPlanes() {
	for i := len(d.planes) - 1; i >= 0; i-- {
		if len(d.planes[i].Ops) == 0 && len(d.planes) > 1 {
			d.planes = append(d.planes[:i], d.planes[i+1:]...)
		}
	}
	if d.currentPlane >= len(d.planes) {
		d.currentPlane = len(d.planes) - 1
	}
}

// RemoveAllPlanes releases every retained reference across every plane and
// resets the list to a single empty plane.
func (d *DisplayList) RemoveAllPlanes() {
	for i := range d.planes {
		for _, op := range d.planes[i].Ops {
			release(op)
		}
	}
	d.planes = []*Plane{{}}
	d.currentPlane = 0
	d.hasExternal = false
}

// PlanesCount returns the number of planes currently held.
func (d *DisplayList) PlanesCount() int { return len(d.planes) }

// GetBytesUsed returns the approximate byte footprint of plane i's ops.
func (d *DisplayList) GetBytesUsed(i int) int {
	if i < 0 || i >= len(d.planes) {
		return 0
	}
	return d.planes[i].bytesUsed()
}

// HasExternalSurfaces reports whether a DrawExternalSurface op has been
// appended since the list was created or last reset by RemoveAllPlanes.
// Removing a single plane does not clear it.
func (d *DisplayList) HasExternalSurfaces() bool { return d.hasExternal }

// Plane returns plane i, or nil if out of range. Exposed for the
// compositor and raster context, which need direct op access.
func (d *DisplayList) Plane(i int) *Plane {
	if i < 0 || i >= len(d.planes) {
		return nil
	}
	return d.planes[i]
}

// VisitOperations dispatches every op in planeIndex (or every plane, in
// index order, when planeIndex is AllPlanes) to v.
func (d *DisplayList) VisitOperations(planeIndex int, v Visitor) {
	if planeIndex == AllPlanes {
		for _, p := range d.planes {
			for _, op := range p.Ops {
				VisitOp(op, v)
			}
		}
		return
	}
	p := d.Plane(planeIndex)
	if p == nil {
		return
	}
	for _, op := range p.Ops {
		VisitOp(op, v)
	}
}

// Clone returns a deep-enough copy of the list: new plane slices, retained
// references bumped, sharing the same backing picture/snapshot/mask
// objects (which are themselves reference-counted).
func (d *DisplayList) Clone() *DisplayList {
	clone := &DisplayList{
		Width:        d.Width,
		Height:       d.Height,
		currentPlane: d.currentPlane,
		hasExternal:  d.hasExternal,
	}
	clone.planes = make([]*Plane, len(d.planes))
	for i, p := range d.planes {
		ops := make([]Op, len(p.Ops))
		copy(ops, p.Ops)
		for _, op := range ops {
			retain(op)
		}
		clone.planes[i] = &Plane{Ops: ops}
	}
	return clone
}

// Destroy releases every retained reference held across all planes. Callers
// that build a display list and hand ownership elsewhere should not call
// this; it is for display lists the caller owns outright and is discarding.
func (d *DisplayList) Destroy() {
	d.RemoveAllPlanes()
}
