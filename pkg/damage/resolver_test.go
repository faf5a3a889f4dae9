package damage

import (
	"testing"

	"github.com/valdi-render/scenepipe/pkg/displaylist"
	"github.com/valdi-render/scenepipe/pkg/geometry"
)

type fakePicture struct {
	bounds geometry.Rect
}

func (p *fakePicture) Bounds() geometry.Rect { return p.bounds }
func (p *fakePicture) Retain()               {}
func (p *fakePicture) Release()              {}

func rectsContain(rects []geometry.Rect, want geometry.Rect) bool {
	for _, r := range rects {
		if r == want {
			return true
		}
	}
	return false
}

func TestBeginUpdatesDamagesWholeSurfaceOnFirstFrame(t *testing.T) {
	r := NewResolver()
	r.BeginUpdates(100, 100)
	dl := displaylist.New(100, 100)
	r.AddDamageFromDisplayListUpdates(dl)
	damage := r.EndUpdates()
	want := geometry.RectFromLTWH(0, 0, 100, 100)
	if !rectsContain(damage, want) {
		t.Fatalf("damage = %+v, want it to contain the full surface rect %+v", damage, want)
	}
}

func TestBeginUpdatesDamagesWholeSurfaceOnSizeChange(t *testing.T) {
	r := NewResolver()
	r.BeginUpdates(100, 100)
	r.EndUpdates()

	r.BeginUpdates(200, 150)
	dl := displaylist.New(200, 150)
	r.AddDamageFromDisplayListUpdates(dl)
	damage := r.EndUpdates()
	want := geometry.RectFromLTWH(0, 0, 200, 150)
	if !rectsContain(damage, want) {
		t.Fatalf("damage = %+v, want it to contain the resized surface rect %+v", damage, want)
	}
}

func TestAddDamageFromDisplayListUpdatesOnLayerMove(t *testing.T) {
	r := NewResolver()

	dl1 := displaylist.New(100, 100)
	dl1.PushContext(geometry.MakeTranslate(50, 50), 1, 1, true)
	dl1.AppendDrawPicture(&fakePicture{bounds: geometry.RectFromLTWH(0, 0, 60, 60)}, 1)
	dl1.PopContext()

	r.BeginUpdates(100, 100)
	r.AddDamageFromDisplayListUpdates(dl1)
	r.EndUpdates() // baseline frame; discard

	dl2 := displaylist.New(100, 100)
	dl2.PushContext(geometry.MakeTranslate(10, 10), 1, 1, false)
	dl2.AppendDrawPicture(&fakePicture{bounds: geometry.RectFromLTWH(0, 0, 20, 20)}, 1)
	dl2.PopContext()

	r.BeginUpdates(100, 100)
	r.AddDamageFromDisplayListUpdates(dl2)
	damage := r.EndUpdates()

	oldRect := geometry.RectFromLTWH(50, 50, 60, 60)
	newRect := geometry.RectFromLTWH(10, 10, 20, 20)
	if !rectsContain(damage, oldRect) {
		t.Fatalf("damage = %+v, want it to contain the layer's old rect %+v", damage, oldRect)
	}
	if !rectsContain(damage, newRect) {
		t.Fatalf("damage = %+v, want it to contain the layer's new rect %+v", damage, newRect)
	}
}

func TestAddDamageFromDisplayListUpdatesOnLayerRemoval(t *testing.T) {
	r := NewResolver()

	dl1 := displaylist.New(100, 100)
	dl1.PushContext(geometry.Identity(), 1, 1, true)
	dl1.AppendDrawPicture(&fakePicture{bounds: geometry.RectFromLTWH(0, 0, 30, 30)}, 1)
	dl1.PopContext()

	r.BeginUpdates(100, 100)
	r.AddDamageFromDisplayListUpdates(dl1)
	r.EndUpdates()

	dl2 := displaylist.New(100, 100)
	r.BeginUpdates(100, 100)
	r.AddDamageFromDisplayListUpdates(dl2)
	damage := r.EndUpdates()

	want := geometry.RectFromLTWH(0, 0, 30, 30)
	if !rectsContain(damage, want) {
		t.Fatalf("damage = %+v, want it to contain the removed layer's rect %+v", damage, want)
	}
}

func TestAddDamageUnionReducesOverlappingRects(t *testing.T) {
	r := NewResolver()
	r.addDamage(geometry.RectFromLTWH(0, 0, 10, 10))
	r.addDamage(geometry.RectFromLTWH(5, 5, 10, 10))
	if len(r.damage) != 1 {
		t.Fatalf("len(damage) = %d, want 1 (overlapping rects collapse)", len(r.damage))
	}
	got := r.damage[0]
	want := geometry.RectFromLTWH(0, 0, 15, 15)
	if got != want {
		t.Fatalf("damage[0] = %+v, want union %+v", got, want)
	}
}
