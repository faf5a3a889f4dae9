package displaylist

import (
	"encoding/json"
	"testing"

	"github.com/valdi-render/scenepipe/pkg/canvas"
	"github.com/valdi-render/scenepipe/pkg/geometry"
)

type fakePicture struct {
	bounds   geometry.Rect
	refCount int
}

func (p *fakePicture) Bounds() geometry.Rect { return p.bounds }
func (p *fakePicture) Retain()               { p.refCount++ }
func (p *fakePicture) Release()              { p.refCount-- }

func TestAppendLayerContentEmitsBothOps(t *testing.T) {
	d := New(100, 100)
	pic := &fakePicture{bounds: geometry.RectFromLTWH(0, 0, 10, 10)}
	snap := canvas.NewExternalSurfaceSnapshot(nil)
	d.AppendLayerContent(canvas.LayerContent{Picture: pic, Snapshot: snap}, 0.5)

	plane := d.Plane(0)
	if len(plane.Ops) != 2 {
		t.Fatalf("len(ops) = %d, want 2", len(plane.Ops))
	}
	if plane.Ops[0].Kind() != OpKindDrawPicture {
		t.Fatalf("ops[0].Kind() = %v, want DrawPicture", plane.Ops[0].Kind())
	}
	if plane.Ops[1].Kind() != OpKindDrawExternalSurface {
		t.Fatalf("ops[1].Kind() = %v, want DrawExternalSurface", plane.Ops[1].Kind())
	}
	if !d.HasExternalSurfaces() {
		t.Fatal("HasExternalSurfaces() = false, want true")
	}
	if pic.refCount != 1 {
		t.Fatalf("picture refCount = %d, want 1", pic.refCount)
	}
}

func TestAppendClipRoundDegeneratesWhenEmpty(t *testing.T) {
	d := New(100, 100)
	d.AppendClipRound(geometry.BorderRadius{}, 10, 10)
	plane := d.Plane(0)
	if len(plane.Ops) != 1 || plane.Ops[0].Kind() != OpKindClipRect {
		t.Fatalf("expected degeneration to a single ClipRect op, got %+v", plane.Ops)
	}
}

func TestAppendClipRoundKeepsRoundWhenNonEmpty(t *testing.T) {
	d := New(100, 100)
	d.AppendClipRound(geometry.BorderRadius{TopLeft: 4}, 10, 10)
	plane := d.Plane(0)
	if plane.Ops[0].Kind() != OpKindClipRound {
		t.Fatalf("expected ClipRound op, got %v", plane.Ops[0].Kind())
	}
}

func TestRemovePlaneReleasesRetainedPictures(t *testing.T) {
	d := New(100, 100)
	pic := &fakePicture{}
	d.AppendPlane()
	d.SetCurrentPlane(1)
	d.AppendLayerContent(canvas.LayerContent{Picture: pic}, 1.0)
	d.RemovePlane(1)
	if pic.refCount != 0 {
		t.Fatalf("picture refCount after RemovePlane = %d, want 0", pic.refCount)
	}
	if d.PlanesCount() != 1 {
		t.Fatalf("PlanesCount() = %d, want 1", d.PlanesCount())
	}
}

func TestRemoveEmptyPlanesKeepsAtLeastOne(t *testing.T) {
	d := New(100, 100)
	d.AppendPlane()
	d.AppendPlane()
	d.SetCurrentPlane(1)
	d.AppendClipRect(5, 5)
	d.RemoveEmptyPlanes()
	if d.PlanesCount() != 1 {
		t.Fatalf("PlanesCount() = %d, want 1", d.PlanesCount())
	}
}

func TestVisitOperationsAllPlanesPreservesOrder(t *testing.T) {
	d := New(100, 100)
	d.AppendClipRect(1, 1)
	d.AppendPlane()
	d.SetCurrentPlane(1)
	d.AppendClipRect(2, 2)

	var widths []float64
	v := &widthCollector{widths: &widths}
	d.VisitOperations(AllPlanes, v)
	if len(widths) != 2 || widths[0] != 1 || widths[1] != 2 {
		t.Fatalf("widths = %v, want [1 2]", widths)
	}
}

type widthCollector struct {
	BaseVisitor
	widths *[]float64
}

func (w *widthCollector) VisitClipRect(op ClipRect) {
	*w.widths = append(*w.widths, op.Width)
}

func TestDebugJSONShape(t *testing.T) {
	d := New(50, 40)
	d.AppendClipRect(10, 10)
	raw, err := d.DebugJSON(16.6)
	if err != nil {
		t.Fatalf("DebugJSON() error = %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["width"] != 50.0 || decoded["height"] != 40.0 {
		t.Fatalf("decoded width/height = %v/%v, want 50/40", decoded["width"], decoded["height"])
	}
	surfaces, ok := decoded["surfaces"].([]any)
	if !ok || len(surfaces) != 1 {
		t.Fatalf("decoded surfaces = %v, want one plane", decoded["surfaces"])
	}
}

func TestSnapTranslation(t *testing.T) {
	m := geometry.MakeTranslate(10.4, 5.6)
	got := snapTranslation(m, 2, 2)
	want := geometry.MakeTranslate(10.5, 5.5)
	if got.TransX != want.TransX || got.TransY != want.TransY {
		t.Fatalf("snapTranslation() = %+v, want %+v", got, want)
	}
}
