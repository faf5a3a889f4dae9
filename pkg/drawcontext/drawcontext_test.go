package drawcontext

import (
	"testing"

	"github.com/valdi-render/scenepipe/pkg/canvas"
	"github.com/valdi-render/scenepipe/pkg/geometry"
)

type fakeCanvas struct {
	canvas.Canvas
	saveCount  int
	rectsDrawn int
}

func (c *fakeCanvas) Save() { c.saveCount++ }

func (c *fakeCanvas) SaveCount() int { return c.saveCount }

func (c *fakeCanvas) RestoreToCount(count int) { c.saveCount = count }

func (c *fakeCanvas) DrawRect(rect geometry.Rect, paint geometry.Paint) { c.rectsDrawn++ }

func (c *fakeCanvas) DrawPath(path *geometry.Path, paint geometry.Paint) { c.rectsDrawn++ }

func (c *fakeCanvas) ClipRect(rect geometry.Rect, op canvas.ClipOp) {}

func (c *fakeCanvas) ClipPath(path *geometry.Path, op canvas.ClipOp, antialias bool) {}

func (c *fakeCanvas) Concat(m geometry.Matrix) {}

func (c *fakeCanvas) Size() geometry.Size { return geometry.Size{Width: 100, Height: 100} }

type fakeRecorder struct {
	c       *fakeCanvas
	ended   bool
	picture canvas.Picture
}

func (r *fakeRecorder) BeginRecording(bounds geometry.Rect) canvas.Canvas {
	r.c = &fakeCanvas{}
	return r.c
}

func (r *fakeRecorder) EndRecording() canvas.Picture {
	r.ended = true
	r.picture = &fakePicture{}
	return r.picture
}

type fakePicture struct{}

func (fakePicture) Bounds() geometry.Rect { return geometry.Rect{} }
func (fakePicture) Retain()               {}
func (fakePicture) Release()              {}

func TestFinishWithNoDrawingReturnsEmptyContent(t *testing.T) {
	rec := &fakeRecorder{}
	dc := New(rec, 100, 100)
	content := dc.Finish()
	if !content.IsEmpty() {
		t.Fatal("expected empty content when nothing was drawn")
	}
}

func TestDrawPaintInBoundsDegeneratesWithEmptyBorderRadius(t *testing.T) {
	rec := &fakeRecorder{}
	dc := New(rec, 100, 100)
	var lazy LazyPath
	dc.DrawPaintInBounds(geometry.DefaultPaint(), geometry.BorderRadius{}, &lazy)
	content := dc.Finish()
	if content.Picture == nil {
		t.Fatal("expected a recorded picture")
	}
	if rec.c.rectsDrawn != 1 {
		t.Fatalf("rectsDrawn = %d, want 1", rec.c.rectsDrawn)
	}
}

func TestDrawExternalSurfaceTwicePanics(t *testing.T) {
	rec := &fakeRecorder{}
	dc := New(rec, 100, 100)
	dc.DrawExternalSurface(nil)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on second drawExternalSurface call")
		}
	}()
	dc.DrawExternalSurface(nil)
}
