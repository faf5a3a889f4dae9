// Package damage computes the minimal set of rectangles that changed
// between two successive display lists, so the raster context can redraw
// only what's necessary in delta mode.
package damage

import (
	"github.com/valdi-render/scenepipe/pkg/compositor"
	"github.com/valdi-render/scenepipe/pkg/displaylist"
	"github.com/valdi-render/scenepipe/pkg/geometry"
)

// layerContent is the per-layer snapshot the resolver compares across
// frames, keyed by layerId in Resolver.current/previous.
type layerContent struct {
	absoluteRect    geometry.Rect
	absoluteMatrix  geometry.Matrix
	absoluteOpacity float64
	clipPath        geometry.Path
	hasUpdates      bool
}

func sameLayerContent(a, b layerContent) bool {
	if a.absoluteRect != b.absoluteRect {
		return false
	}
	if a.absoluteMatrix != b.absoluteMatrix {
		return false
	}
	if a.absoluteOpacity != b.absoluteOpacity {
		return false
	}
	return clipBoundsEqual(a.clipPath, b.clipPath)
}

// clipBoundsEqual compares two clip paths by their bounds rather than by
// contour equality: Path carries a lazily-combined intersection tree, not a
// comparable value, and the bounds are what actually drives re-rasterizing
// the affected region.
func clipBoundsEqual(a, b geometry.Path) bool {
	ab, bb := a.GetBounds(), b.GetBounds()
	if (ab == nil) != (bb == nil) {
		return false
	}
	if ab == nil {
		return true
	}
	return *ab == *bb
}

// Resolver accumulates per-layer content across frames and reduces it to a
// minimal damage rect list. It holds no locks of its own; the raster
// context is responsible for serializing access across calls.
type Resolver struct {
	width, height float64

	previous map[uint64]layerContent
	current  map[uint64]layerContent
	damage   []geometry.Rect
}

// NewResolver returns an empty resolver; the first BeginUpdates call will
// report a full-surface damage rect since there is no prior size to compare.
func NewResolver() *Resolver {
	return &Resolver{
		previous: make(map[uint64]layerContent),
		current:  make(map[uint64]layerContent),
	}
}

// BeginUpdates starts a new frame's damage accumulation. A changed surface
// size damages the whole surface.
func (r *Resolver) BeginUpdates(surfaceWidth, surfaceHeight float64) {
	if r.width == 0 && r.height == 0 {
		r.width, r.height = surfaceWidth, surfaceHeight
		r.addDamage(geometry.RectFromLTWH(0, 0, surfaceWidth, surfaceHeight))
		return
	}
	if surfaceWidth != r.width || surfaceHeight != r.height {
		r.width, r.height = surfaceWidth, surfaceHeight
		r.addDamage(geometry.RectFromLTWH(0, 0, surfaceWidth, surfaceHeight))
	}
}

// AddDamageFromDisplayListUpdates walks every op in dl, deriving the same
// per-context absolute state the compositor does (minus plane assignment),
// and records one layerContent per layerId seen.
func (r *Resolver) AddDamageFromDisplayListUpdates(dl *displaylist.DisplayList) {
	v := &damageVisitor{resolver: r}
	v.stack = append(v.stack, &damageContext{state: compositor.Identity()})
	dl.VisitOperations(displaylist.AllPlanes, v)
}

// EndUpdates reconciles current against previous, returns the accumulated,
// union-reduced damage rects, and swaps current into previous for the next
// frame.
func (r *Resolver) EndUpdates() []geometry.Rect {
	for layerID, prev := range r.previous {
		cur, ok := r.current[layerID]
		if !ok {
			r.addDamage(prev.absoluteRect)
			continue
		}
		if cur.hasUpdates || !sameLayerContent(prev, cur) {
			r.addDamage(prev.absoluteRect)
			r.addDamage(cur.absoluteRect)
			cur.hasUpdates = false
			r.current[layerID] = cur
		}
	}
	for layerID, cur := range r.current {
		if !cur.hasUpdates {
			continue
		}
		r.addDamage(cur.absoluteRect)
		cur.hasUpdates = false
		r.current[layerID] = cur
	}

	result := r.damage
	r.damage = nil
	r.previous = r.current
	r.current = make(map[uint64]layerContent)
	return result
}

// addDamage inserts rect into the accumulator, union-collapsing with any
// existing entry it intersects. Quadratic but correct: frame-to-frame
// damage counts are small, so an R-tree would be overkill here.
func (r *Resolver) addDamage(rect geometry.Rect) {
	for {
		merged := false
		for i, existing := range r.damage {
			if existing.Intersects(rect) {
				rect = existing.Union(rect)
				r.damage = append(r.damage[:i], r.damage[i+1:]...)
				merged = true
				break
			}
		}
		if !merged {
			break
		}
	}
	r.damage = append(r.damage, rect)
}

// damageContext is one entry of the visitor's shadow context stack: the
// compositor's same absolute-state derivation, plus the layer identity and
// dirty flag the compositor doesn't need.
type damageContext struct {
	state      compositor.CompositionState
	layerID    uint64
	hasUpdates bool
}

type damageVisitor struct {
	displaylist.BaseVisitor
	resolver *Resolver
	stack    []*damageContext
}

func (v *damageVisitor) current() *damageContext { return v.stack[len(v.stack)-1] }

func (v *damageVisitor) VisitPushContext(op displaylist.PushContext) {
	parent := v.current()
	v.stack = append(v.stack, &damageContext{
		state:      parent.state.PushContext(op.Matrix, op.Opacity),
		layerID:    op.LayerID,
		hasUpdates: op.HasUpdates,
	})
}

func (v *damageVisitor) VisitPopContext(displaylist.PopContext) {
	v.stack = v.stack[:len(v.stack)-1]
}

func (v *damageVisitor) VisitClipRect(op displaylist.ClipRect) {
	ctx := v.current()
	ctx.state = ctx.state.ClipRect(op.Width, op.Height)
}

func (v *damageVisitor) VisitClipRound(op displaylist.ClipRound) {
	ctx := v.current()
	ctx.state = ctx.state.ClipRound(op.BorderRadius, op.Width, op.Height)
}

func (v *damageVisitor) VisitDrawPicture(op displaylist.DrawPicture) {
	v.record(op.Picture.Bounds())
}

func (v *damageVisitor) VisitDrawExternalSurface(op displaylist.DrawExternalSurface) {
	size := geometry.Size{}
	if surface := op.Snapshot.Surface(); surface != nil {
		size = surface.RelativeSize()
	}
	v.record(geometry.RectFromLTWH(0, 0, size.Width, size.Height))
}

func (v *damageVisitor) VisitPrepareMask(op displaylist.PrepareMask) {
	v.record(op.Mask.Bounds())
}

func (v *damageVisitor) record(localBounds geometry.Rect) {
	ctx := v.current()
	absRect := ctx.state.GetAbsoluteClippedRect(localBounds)
	v.resolver.current[ctx.layerID] = layerContent{
		absoluteRect:    absRect,
		absoluteMatrix:  ctx.state.AbsoluteMatrix,
		absoluteOpacity: ctx.state.AbsoluteOpacity,
		clipPath:        ctx.state.AbsoluteClip,
		hasUpdates:      ctx.hasUpdates,
	}
}
