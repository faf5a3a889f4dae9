// Package compositor resolves absolute transform, opacity, and clip state
// for every operation in a source display list and, when the list
// references external surfaces, rebuilds an equivalent display list split
// across one or more planes so those surfaces can be layered correctly
// between engine-drawn content.
package compositor

import "github.com/valdi-render/scenepipe/pkg/geometry"

// CompositionState carries the absolute (root-space) transform, opacity,
// and accumulated clip path for one nesting level of pushed contexts. It
// is immutable: every derivation returns a new value, so a stack of
// pushed contexts can share state cheaply via value copies.
type CompositionState struct {
	AbsoluteMatrix  geometry.Matrix
	AbsoluteOpacity float64
	AbsoluteClip    geometry.Path
	hasClip         bool
}

// Identity returns the root composition state: identity transform, full
// opacity, no clip.
func Identity() CompositionState {
	return CompositionState{
		AbsoluteMatrix:  geometry.Identity(),
		AbsoluteOpacity: 1.0,
	}
}

// PushContext derives the composition state for a nested PushContext(matrix, opacity).
func (s CompositionState) PushContext(matrix geometry.Matrix, opacity float64) CompositionState {
	return CompositionState{
		AbsoluteMatrix:  s.AbsoluteMatrix.PreConcat(matrix),
		AbsoluteOpacity: s.AbsoluteOpacity * opacity,
		AbsoluteClip:    s.AbsoluteClip,
		hasClip:         s.hasClip,
	}
}

func (s CompositionState) intersectClip(local geometry.Path) CompositionState {
	transformed := local
	transformed.Transform(s.AbsoluteMatrix)
	next := s
	if s.hasClip {
		next.AbsoluteClip = s.AbsoluteClip.Intersection(transformed)
	} else {
		next.AbsoluteClip = transformed
	}
	next.hasClip = true
	return next
}

// ClipRect intersects the state's accumulated clip with an axis-aligned
// (w,h) rectangle in local space.
func (s CompositionState) ClipRect(w, h float64) CompositionState {
	local := geometry.NewPath()
	local.AddRect(geometry.RectFromLTWH(0, 0, w, h), true)
	return s.intersectClip(*local)
}

// ClipRound intersects the state's accumulated clip with a rounded (w,h)
// rectangle in local space.
func (s CompositionState) ClipRound(br geometry.BorderRadius, w, h float64) CompositionState {
	bounds := geometry.RectFromLTWH(0, 0, w, h)
	local := br.GetPath(bounds)
	return s.intersectClip(local)
}

// GetAbsoluteRect maps localRect into root space.
func (s CompositionState) GetAbsoluteRect(localRect geometry.Rect) geometry.Rect {
	return s.AbsoluteMatrix.MapRect(localRect)
}

// GetAbsoluteClippedRect maps localRect into root space and intersects it
// with the accumulated clip path's bounds, if any.
func (s CompositionState) GetAbsoluteClippedRect(localRect geometry.Rect) geometry.Rect {
	mapped := s.GetAbsoluteRect(localRect)
	if !s.hasClip {
		return mapped
	}
	bounds := s.AbsoluteClip.GetBounds()
	if bounds == nil {
		return mapped
	}
	return mapped.Intersection(*bounds)
}

// HasClip reports whether any clip has been accumulated on this state.
func (s CompositionState) HasClip() bool { return s.hasClip }
