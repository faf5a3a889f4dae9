package layer

import "github.com/valdi-render/scenepipe/pkg/geometry"

// GetLayerAtPoint returns the topmost layer (by z-order, i.e. by
// last-child-wins within each parent) under point, in this layer's local
// coordinate space, or nil if none. A layer is rejected if touch is
// disabled, it is invisible, or point falls outside its touch-extended
// rect; children are searched last-to-first, mapping point through each
// child's inverse transform first.
func (l *Layer) GetLayerAtPoint(point geometry.Offset) *Layer {
	if !l.TouchEnabled || l.Opacity <= 0 {
		return nil
	}
	extended := geometry.Rect{
		Left:   -l.touchExtent.Left,
		Top:    -l.touchExtent.Top,
		Right:  l.Frame.Width() + l.touchExtent.Right,
		Bottom: l.Frame.Height() + l.touchExtent.Bottom,
	}
	if !extended.Contains(point) {
		return nil
	}
	for i := len(l.children) - 1; i >= 0; i-- {
		child := l.children[i]
		inv, ok := child.Matrix().Invert()
		if !ok {
			continue
		}
		childPoint := inv.MapPoint(point)
		if hit := child.GetLayerAtPoint(childPoint); hit != nil {
			return hit
		}
	}
	return l
}
