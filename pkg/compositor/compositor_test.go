package compositor

import (
	"testing"

	"github.com/valdi-render/scenepipe/pkg/canvas"
	"github.com/valdi-render/scenepipe/pkg/displaylist"
	"github.com/valdi-render/scenepipe/pkg/geometry"
)

type fakePicture struct {
	bounds geometry.Rect
}

func (p *fakePicture) Bounds() geometry.Rect { return p.bounds }
func (p *fakePicture) Retain()               {}
func (p *fakePicture) Release()              {}

type fakeExternalSurface struct {
	size geometry.Size
}

func (s *fakeExternalSurface) RelativeSize() geometry.Size        { return s.size }
func (s *fakeExternalSurface) SetRelativeSize(size geometry.Size) { s.size = size }
func (s *fakeExternalSurface) RasterBitmapFactory() canvas.BitmapFactory { return nil }
func (s *fakeExternalSurface) RasterInto(canvas.Bitmap, geometry.Rect, geometry.Matrix, float64, float64) error {
	return nil
}

func appendExternalOp(dl *displaylist.DisplayList, w, h, opacity float64) {
	snap := canvas.NewExternalSurfaceSnapshot(&fakeExternalSurface{size: geometry.Size{Width: w, Height: h}})
	dl.AppendDrawExternalSurface(snap, opacity)
}

func planeKinds(list PlaneList) []PlaneKind {
	kinds := make([]PlaneKind, len(list))
	for i, p := range list {
		kinds[i] = p.Kind
	}
	return kinds
}

func TestCompositeWithNoExternalSurfacesReturnsSourceUnchanged(t *testing.T) {
	dl := displaylist.New(100, 100)
	dl.AppendDrawPicture(&fakePicture{bounds: geometry.RectFromLTWH(0, 0, 10, 10)}, 1)

	out, planes := New().Composite(dl)
	if out != dl {
		t.Fatal("expected the exact same display list pointer when there are no external surfaces")
	}
	if len(planes) != 1 || planes[0].Kind != PlaneKindDrawable {
		t.Fatalf("planes = %+v, want a single drawable plane", planes)
	}
}

// S2: a regular rect, then an external surface at the same context. Expect
// [drawable, external].
func TestCompositeExternalOnTopOfRegularPlane(t *testing.T) {
	dl := displaylist.New(100, 100)
	dl.AppendDrawPicture(&fakePicture{bounds: geometry.RectFromLTWH(0, 0, 25, 25)}, 1)
	appendExternalOp(dl, 10, 10, 1)

	_, planes := New().Composite(dl)
	kinds := planeKinds(planes)
	if len(kinds) != 2 || kinds[0] != PlaneKindDrawable || kinds[1] != PlaneKindExternal {
		t.Fatalf("planes = %v, want [drawable external]", kinds)
	}
}

// S3: root rect, external on top overlapping it, then a further rect that
// also overlaps the external. The overlapping rect must go above the
// external, yielding [drawable, external, drawable].
func TestCompositeOverlappingRectAfterExternalSplitsANewPlane(t *testing.T) {
	dl := displaylist.New(100, 100)
	dl.AppendDrawPicture(&fakePicture{bounds: geometry.RectFromLTWH(0, 0, 25, 25)}, 1)
	appendExternalOp(dl, 10, 10, 1)
	dl.AppendDrawPicture(&fakePicture{bounds: geometry.RectFromLTWH(0, 0, 15, 15)}, 1)

	_, planes := New().Composite(dl)
	kinds := planeKinds(planes)
	want := []PlaneKind{PlaneKindDrawable, PlaneKindExternal, PlaneKindDrawable}
	if len(kinds) != len(want) {
		t.Fatalf("planes = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("planes = %v, want %v", kinds, want)
		}
	}
}

// S4: same as S3, but the trailing rect does not overlap the external
// surface, so it can fold back into the original plane: [drawable, external].
func TestCompositeNonOverlappingRectReusesOriginalPlane(t *testing.T) {
	dl := displaylist.New(100, 100)
	dl.AppendDrawPicture(&fakePicture{bounds: geometry.RectFromLTWH(0, 0, 25, 25)}, 1)
	appendExternalOp(dl, 10, 10, 1)
	dl.AppendDrawPicture(&fakePicture{bounds: geometry.RectFromLTWH(15, 15, 15, 15)}, 1)

	_, planes := New().Composite(dl)
	kinds := planeKinds(planes)
	want := []PlaneKind{PlaneKindDrawable, PlaneKindExternal}
	if len(kinds) != len(want) {
		t.Fatalf("planes = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("planes = %v, want %v", kinds, want)
		}
	}
}

// Two root-level rects that overlap neither each other nor the external
// surface must still fold into the same regular plane (plane 0): a new
// regular plane is only warranted when descent is blocked by an
// overlapping external plane, not merely because a candidate plane's
// bounding box doesn't already cover the op.
func TestCompositeNonOverlappingRectsShareLowestRegularPlane(t *testing.T) {
	dl := displaylist.New(100, 100)
	dl.AppendDrawPicture(&fakePicture{bounds: geometry.RectFromLTWH(0, 0, 10, 10)}, 1)
	appendExternalOp(dl, 20, 20, 1)
	dl.AppendDrawPicture(&fakePicture{bounds: geometry.RectFromLTWH(50, 50, 10, 10)}, 1)
	dl.AppendDrawPicture(&fakePicture{bounds: geometry.RectFromLTWH(70, 70, 10, 10)}, 1)

	_, planes := New().Composite(dl)
	kinds := planeKinds(planes)
	want := []PlaneKind{PlaneKindDrawable, PlaneKindExternal}
	if len(kinds) != len(want) {
		t.Fatalf("planes = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("planes = %v, want %v", kinds, want)
		}
	}
}

// S5: a clip accumulated in the root context, and a nested translated
// context with its own clip, wrapping an external surface. The presenter's
// clip path should reflect the intersection of both.
func TestCompositeExternalSurfacePresenterClipIsIntersectionOfNestedClips(t *testing.T) {
	dl := displaylist.New(200, 200)
	dl.AppendClipRound(geometry.BorderRadius{TopLeft: 50, TopRight: 50, BottomLeft: 50, BottomRight: 50}, 100, 100)
	dl.PushContext(geometry.MakeTranslate(50, 50), 1, 0, false)
	dl.AppendClipRect(50, 25)
	appendExternalOp(dl, 50, 50, 1)
	dl.PopContext()

	_, planes := New().Composite(dl)
	if len(planes) != 1 || planes[0].Kind != PlaneKindExternal {
		t.Fatalf("planes = %+v, want a single external plane", planes)
	}
	clipBounds := planes[0].Presenter.ClipPath.GetBounds()
	if clipBounds == nil {
		t.Fatal("expected a non-nil clip path on the presenter state")
	}
	want := geometry.RectFromLTWH(50, 50, 50, 25)
	if clipBounds.Left != want.Left || clipBounds.Top != want.Top || clipBounds.Right != want.Right || clipBounds.Bottom != want.Bottom {
		t.Fatalf("clip bounds = %+v, want %+v (bounds of the rect's overlap with the rounded clip)", *clipBounds, want)
	}
}

func TestCompositePresenterStateCollapsesTranslationOnly(t *testing.T) {
	dl := displaylist.New(100, 100)
	dl.PushContext(geometry.MakeTranslate(10, 20), 1, 0, false)
	appendExternalOp(dl, 30, 40, 1)
	dl.PopContext()

	_, planes := New().Composite(dl)
	if len(planes) != 1 {
		t.Fatalf("planes = %+v, want one", planes)
	}
	presenter := planes[0].Presenter
	if !presenter.Transform.IsIdentity() {
		t.Fatalf("transform = %+v, want identity for a translate-only ancestor", presenter.Transform)
	}
	if presenter.Frame.Left != 10 || presenter.Frame.Top != 20 {
		t.Fatalf("frame = %+v, want origin (10,20)", presenter.Frame)
	}
}

func TestCompositePresenterOpacityMultipliesAncestorChain(t *testing.T) {
	dl := displaylist.New(100, 100)
	dl.PushContext(geometry.Identity(), 0.5, 0, false)
	appendExternalOp(dl, 10, 10, 0.5)
	dl.PopContext()

	_, planes := New().Composite(dl)
	if got := planes[0].Presenter.Opacity; got != 0.25 {
		t.Fatalf("opacity = %v, want 0.25", got)
	}
}
