package layer

import (
	"testing"

	"github.com/valdi-render/scenepipe/pkg/geometry"
)

func TestShapeLayerFullRangeUsesOriginalPath(t *testing.T) {
	sl := NewShapeLayer(fakeRecorderFactory)
	path := geometry.NewPath()
	path.MoveTo(0, 0)
	path.LineTo(10, 0)
	sl.SetPath(path)
	if sl.effectivePath() != sl.Path {
		t.Fatal("full [0,1] range should reuse the original path unmodified")
	}
}

func TestShapeLayerStrokeStartAfterEndYieldsEmptySegment(t *testing.T) {
	sl := NewShapeLayer(fakeRecorderFactory)
	path := geometry.NewPath()
	path.MoveTo(0, 0)
	path.LineTo(10, 0)
	sl.SetPath(path)
	sl.SetStrokeRange(0.8, 0.2)

	got := sl.effectivePath()
	if !got.IsEmpty() {
		t.Fatalf("expected empty segment when start > end, got %+v", got)
	}
}

func TestShapeLayerTrimsToFraction(t *testing.T) {
	sl := NewShapeLayer(fakeRecorderFactory)
	path := geometry.NewPath()
	path.MoveTo(0, 0)
	path.LineTo(100, 0)
	sl.SetPath(path)
	sl.SetStrokeRange(0, 0.5)

	trimmed := sl.effectivePath()
	bounds := trimmed.GetBounds()
	if bounds == nil {
		t.Fatal("expected a non-empty trimmed path")
	}
	if bounds.Right > 55 {
		t.Fatalf("trimmed segment bounds = %+v, want right edge near 50", bounds)
	}
}
