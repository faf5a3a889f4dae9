package compositor

import (
	"github.com/valdi-render/scenepipe/pkg/bbox"
	"github.com/valdi-render/scenepipe/pkg/canvas"
	"github.com/valdi-render/scenepipe/pkg/displaylist"
	"github.com/valdi-render/scenepipe/pkg/geometry"
)

// maxPlanes mirrors displaylist's own plane cap; the compositor's
// per-context presence field is a uint64 bitmask over output plane
// indices, so it cannot track more planes than that width allows.
const maxPlanes = 64

// Compositor resolves the absolute transform, opacity, and clip of every
// operation in a source display list and, when that list references any
// external surface, rebuilds an equivalent list split across planes so
// those surfaces can be layered at the correct z-order between engine-
// drawn content.
type Compositor struct{}

// New returns a ready-to-use Compositor. Compositor carries no state of
// its own between calls; every Composite call builds a fresh pass.
func New() *Compositor { return &Compositor{} }

// Composite returns the plane-assignment of source. When source has no
// external surfaces, the source list is returned unchanged alongside a
// single-entry drawable PlaneList — splitting would only waste a copy.
func (c *Compositor) Composite(source *displaylist.DisplayList) (*displaylist.DisplayList, PlaneList) {
	if !source.HasExternalSurfaces() {
		return source, PlaneList{{Kind: PlaneKindDrawable}}
	}
	pass := newCompositePass(source)
	source.VisitOperations(displaylist.AllPlanes, pass)
	return pass.output, pass.buildPlaneList()
}

// resolvedPlane tracks one entry of the compositor's working
// z-order, which mixes drawable output-list planes and external-surface
// placeholders in a single ordered slice.
type resolvedPlane struct {
	kind PlaneKind

	// Drawable-only fields.
	dlPlaneIndex int
	bboxIdx      *bbox.Hierarchy

	// External-only fields.
	absoluteFrame    geometry.Rect
	externalSnapshot *canvas.ExternalSurfaceSnapshot
	presenter        PresenterState
}

// replayClip is the latest clip op accumulated on a visitedContext, stored
// so it can be replayed into a plane that hadn't yet seen this context.
type replayClip struct {
	isRound      bool
	width, height float64
	borderRadius geometry.BorderRadius
}

// visitedContext is one entry of the compositor's shadow context stack,
// mirroring the source list's PushContext/PopContext nesting with the
// bookkeeping needed to lazily replay it into whichever planes end up
// drawing from it.
type visitedContext struct {
	state CompositionState

	hasPush bool
	push    displaylist.PushContext

	clip *replayClip

	// presence is a bitmask over output drawable-plane indices: bit i is
	// set once this context's push (and latest clip) has been replayed
	// into plane i.
	presence uint64
}

type maskEntry struct {
	mask  canvas.Mask
	plane *resolvedPlane
}

// compositePass holds all per-Composite-call state: the shadow context
// stack, the output display list being built, the working z-order of
// resolved planes, and the small mask-matching stack.
type compositePass struct {
	displaylist.BaseVisitor

	source *displaylist.DisplayList
	output *displaylist.DisplayList

	contextStack []*visitedContext
	planes       []*resolvedPlane
	maskStack    []maskEntry
}

func newCompositePass(source *displaylist.DisplayList) *compositePass {
	p := &compositePass{
		source: source,
		output: displaylist.New(source.Width, source.Height),
	}
	root := &visitedContext{state: Identity()}
	p.contextStack = append(p.contextStack, root)
	return p
}

func (p *compositePass) current() *visitedContext {
	return p.contextStack[len(p.contextStack)-1]
}

// drawablePlaneCount returns how many resolved planes are drawable (as
// opposed to external placeholders).
func (p *compositePass) drawablePlaneCount() int {
	n := 0
	for _, rp := range p.planes {
		if rp.kind == PlaneKindDrawable {
			n++
		}
	}
	return n
}

// topmostDrawablePlane returns the highest-z drawable plane, or nil if
// none exists yet.
func (p *compositePass) topmostDrawablePlane() *resolvedPlane {
	for i := len(p.planes) - 1; i >= 0; i-- {
		if p.planes[i].kind == PlaneKindDrawable {
			return p.planes[i]
		}
	}
	return nil
}

// newDrawablePlane appends a brand-new drawable plane at the top of the
// working z-order, or falls back to the topmost existing drawable plane
// once the output list has hit its 64-plane cap.
func (p *compositePass) newDrawablePlane() *resolvedPlane {
	if p.drawablePlaneCount() >= maxPlanes {
		return p.topmostDrawablePlane()
	}
	// The output list is born with one empty plane (index 0); reuse it for
	// the first drawable plane instead of appending a second, permanently
	// empty one.
	var idx int
	if p.drawablePlaneCount() == 0 {
		idx = 0
	} else {
		idx = p.output.AppendPlane()
	}
	rp := &resolvedPlane{kind: PlaneKindDrawable, dlPlaneIndex: idx, bboxIdx: bbox.New()}
	p.planes = append(p.planes, rp)
	return rp
}

// resolveRegularPlane walks the working z-order top-down, remembering the
// lowest regular plane reached so far regardless of whether its
// bounding-box index overlaps absoluteFrame. Descent stops early in two
// cases: an already-contained regular plane is returned immediately (no
// need to go deeper), or an external plane whose absoluteFrame intersects
// absoluteFrame blocks further descent (the op cannot be placed below it).
// A new plane is created on top only when descent never reaches any
// regular plane at all.
func (p *compositePass) resolveRegularPlane(absoluteFrame geometry.Rect) *resolvedPlane {
	var best *resolvedPlane
	for i := len(p.planes) - 1; i >= 0; i-- {
		rp := p.planes[i]
		if rp.kind == PlaneKindExternal {
			if rp.absoluteFrame.Intersects(absoluteFrame) {
				break
			}
			continue
		}
		best = rp
		if rp.bboxIdx.Contains(absoluteFrame) {
			return rp
		}
	}
	if best != nil {
		return best
	}
	return p.newDrawablePlane()
}

// resolveExternalPlaneInsertionIndex finds the lowest position in the
// working z-order at which a new external plane covering absoluteFrame
// can be inserted while still sitting above every regular plane whose
// bounding box overlaps it. Encountering an already-placed external plane
// stops the walk: z-order below it is frozen.
func (p *compositePass) resolveExternalPlaneInsertionIndex(absoluteFrame geometry.Rect) int {
	insertAt := len(p.planes)
	for i := len(p.planes) - 1; i >= 0; i-- {
		rp := p.planes[i]
		if rp.kind == PlaneKindExternal {
			break
		}
		if rp.bboxIdx.Intersects(absoluteFrame) {
			break
		}
		insertAt = i
	}
	return insertAt
}

// syncReplay ensures target has seen every ancestor context (from the
// nearest one that's already replayed into it, down to the innermost) by
// emitting their PushContext and latest clip op, outermost first, then
// switches the output cursor to target.
func (p *compositePass) syncReplay(target *resolvedPlane) {
	bit := uint64(1) << uint(target.dlPlaneIndex)

	var pending []*visitedContext
	for i := len(p.contextStack) - 1; i >= 0; i-- {
		ctx := p.contextStack[i]
		if ctx.presence&bit != 0 {
			break
		}
		pending = append(pending, ctx)
	}
	for i, j := 0, len(pending)-1; i < j; i, j = i+1, j-1 {
		pending[i], pending[j] = pending[j], pending[i]
	}

	p.output.SetCurrentPlane(target.dlPlaneIndex)
	for _, ctx := range pending {
		ctx.presence |= bit
		if ctx.hasPush {
			p.output.PushContext(ctx.push.Matrix, ctx.push.Opacity, ctx.push.LayerID, ctx.push.HasUpdates)
		}
		if ctx.clip != nil {
			if ctx.clip.isRound {
				p.output.AppendClipRound(ctx.clip.borderRadius, ctx.clip.width, ctx.clip.height)
			} else {
				p.output.AppendClipRect(ctx.clip.width, ctx.clip.height)
			}
		}
	}
	p.output.SetCurrentPlane(target.dlPlaneIndex)
}

// replayClipToExistingPlanes re-emits ctx's just-updated clip into every
// drawable plane ctx has already been replayed into, so their clip state
// doesn't go stale relative to state used by resolveRegularPlane.
func (p *compositePass) replayClipToExistingPlanes(ctx *visitedContext) {
	for _, rp := range p.planes {
		if rp.kind != PlaneKindDrawable {
			continue
		}
		bit := uint64(1) << uint(rp.dlPlaneIndex)
		if ctx.presence&bit == 0 {
			continue
		}
		p.output.SetCurrentPlane(rp.dlPlaneIndex)
		if ctx.clip.isRound {
			p.output.AppendClipRound(ctx.clip.borderRadius, ctx.clip.width, ctx.clip.height)
		} else {
			p.output.AppendClipRect(ctx.clip.width, ctx.clip.height)
		}
	}
}

func (p *compositePass) VisitPushContext(op displaylist.PushContext) {
	parent := p.current()
	ctx := &visitedContext{
		state:   parent.state.PushContext(op.Matrix, op.Opacity),
		hasPush: true,
		push:    op,
	}
	p.contextStack = append(p.contextStack, ctx)
}

func (p *compositePass) VisitPopContext(displaylist.PopContext) {
	ctx := p.current()
	for i := 0; i < maxPlanes; i++ {
		if ctx.presence&(uint64(1)<<uint(i)) == 0 {
			continue
		}
		p.output.SetCurrentPlane(i)
		p.output.PopContext()
	}
	p.contextStack = p.contextStack[:len(p.contextStack)-1]
}

func (p *compositePass) VisitClipRect(op displaylist.ClipRect) {
	ctx := p.current()
	ctx.state = ctx.state.ClipRect(op.Width, op.Height)
	ctx.clip = &replayClip{width: op.Width, height: op.Height}
	p.replayClipToExistingPlanes(ctx)
}

func (p *compositePass) VisitClipRound(op displaylist.ClipRound) {
	ctx := p.current()
	ctx.state = ctx.state.ClipRound(op.BorderRadius, op.Width, op.Height)
	ctx.clip = &replayClip{isRound: true, width: op.Width, height: op.Height, borderRadius: op.BorderRadius}
	p.replayClipToExistingPlanes(ctx)
}

func (p *compositePass) VisitDrawPicture(op displaylist.DrawPicture) {
	ctx := p.current()
	absRect := ctx.state.GetAbsoluteClippedRect(op.Picture.Bounds())
	rp := p.resolveRegularPlane(absRect)
	rp.bboxIdx.Insert(absRect)
	p.syncReplay(rp)
	p.output.AppendDrawPicture(op.Picture, op.Opacity*ctx.state.AbsoluteOpacity)
}

func (p *compositePass) VisitPrepareMask(op displaylist.PrepareMask) {
	ctx := p.current()
	absRect := ctx.state.GetAbsoluteClippedRect(op.Mask.Bounds())
	rp := p.resolveRegularPlane(absRect)
	rp.bboxIdx.Insert(absRect)
	p.syncReplay(rp)
	p.output.AppendPrepareMask(op.Mask)
	p.maskStack = append(p.maskStack, maskEntry{mask: op.Mask, plane: rp})
}

func (p *compositePass) VisitApplyMask(op displaylist.ApplyMask) {
	for i := len(p.maskStack) - 1; i >= 0; i-- {
		if p.maskStack[i].mask != op.Mask {
			continue
		}
		rp := p.maskStack[i].plane
		p.output.SetCurrentPlane(rp.dlPlaneIndex)
		p.output.AppendApplyMask(op.Mask)
		p.maskStack = append(p.maskStack[:i], p.maskStack[i+1:]...)
		return
	}
}

func (p *compositePass) VisitDrawExternalSurface(op displaylist.DrawExternalSurface) {
	ctx := p.current()
	surface := op.Snapshot.Surface()
	relSize := geometry.Size{}
	if surface != nil {
		relSize = surface.RelativeSize()
	}
	localFrame := geometry.RectFromLTWH(0, 0, relSize.Width, relSize.Height)
	absFrame := ctx.state.GetAbsoluteRect(localFrame)

	presenter := derivePresenterState(ctx.state.AbsoluteMatrix, relSize)
	presenter.Opacity = ctx.state.AbsoluteOpacity * op.Opacity
	if ctx.state.HasClip() {
		presenter.ClipPath = ctx.state.AbsoluteClip
	}

	insertAt := p.resolveExternalPlaneInsertionIndex(absFrame)
	rp := &resolvedPlane{
		kind:             PlaneKindExternal,
		absoluteFrame:    absFrame,
		externalSnapshot: op.Snapshot,
		presenter:        presenter,
	}
	p.planes = append(p.planes, nil)
	copy(p.planes[insertAt+1:], p.planes[insertAt:])
	p.planes[insertAt] = rp
}

// buildPlaneList walks the working z-order and emits the public PlaneList,
// in the same bottom-to-top order.
func (p *compositePass) buildPlaneList() PlaneList {
	list := make(PlaneList, 0, len(p.planes))
	for _, rp := range p.planes {
		if rp.kind == PlaneKindDrawable {
			list = append(list, CompositorPlane{Kind: PlaneKindDrawable})
			continue
		}
		list = append(list, CompositorPlane{
			Kind:             PlaneKindExternal,
			ExternalSnapshot: rp.externalSnapshot,
			Presenter:        rp.presenter,
		})
	}
	return list
}
