package layer

import (
	"testing"

	"github.com/valdi-render/scenepipe/pkg/geometry"
)

func TestGetLayerAtPointReturnsTopmostHit(t *testing.T) {
	root := New(fakeRecorderFactory)
	root.Frame = geometry.RectFromLTWH(0, 0, 100, 100)

	back := New(fakeRecorderFactory)
	back.Frame = geometry.RectFromLTWH(0, 0, 50, 50)
	root.AddChild(back)

	front := New(fakeRecorderFactory)
	front.Frame = geometry.RectFromLTWH(10, 10, 50, 50)
	root.AddChild(front)

	hit := root.GetLayerAtPoint(geometry.Offset{X: 20, Y: 20})
	if hit != front {
		t.Fatalf("hit = %p, want front (%p): last child wins on overlap", hit, front)
	}
}

func TestGetLayerAtPointRejectsOutsideTouchArea(t *testing.T) {
	root := New(fakeRecorderFactory)
	root.Frame = geometry.RectFromLTWH(0, 0, 10, 10)
	if hit := root.GetLayerAtPoint(geometry.Offset{X: 100, Y: 100}); hit != nil {
		t.Fatalf("expected no hit outside bounds, got %v", hit)
	}
}

func TestGetLayerAtPointHonorsExtendedTouchArea(t *testing.T) {
	root := New(fakeRecorderFactory)
	root.Frame = geometry.RectFromLTWH(0, 0, 10, 10)
	root.SetExtendedTouchArea(5, 5, 5, 5)
	if hit := root.GetLayerAtPoint(geometry.Offset{X: -3, Y: -3}); hit != root {
		t.Fatal("expected a hit within the extended touch area")
	}
}

func TestGetLayerAtPointRejectsTouchDisabled(t *testing.T) {
	root := New(fakeRecorderFactory)
	root.Frame = geometry.RectFromLTWH(0, 0, 10, 10)
	root.TouchEnabled = false
	if hit := root.GetLayerAtPoint(geometry.Offset{X: 5, Y: 5}); hit != nil {
		t.Fatal("expected no hit when touch is disabled")
	}
}
