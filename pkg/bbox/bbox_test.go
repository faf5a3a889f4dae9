package bbox

import (
	"testing"

	"github.com/valdi-render/scenepipe/pkg/geometry"
)

func TestHierarchyIntersectsAndContains(t *testing.T) {
	h := New()
	h.Insert(geometry.RectFromLTWH(0, 0, 10, 10))

	if !h.Intersects(geometry.RectFromLTWH(5, 5, 10, 10)) {
		t.Fatal("expected overlap to be detected")
	}
	if h.Intersects(geometry.RectFromLTWH(20, 20, 5, 5)) {
		t.Fatal("expected disjoint rects to not intersect")
	}
	if !h.Contains(geometry.RectFromLTWH(2, 2, 2, 2)) {
		t.Fatal("expected inner rect to be contained")
	}
	if h.Contains(geometry.RectFromLTWH(5, 5, 20, 20)) {
		t.Fatal("expected larger rect to not be contained")
	}
}
