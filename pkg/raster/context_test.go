package raster

import (
	"testing"

	"github.com/valdi-render/scenepipe/pkg/canvas"
	"github.com/valdi-render/scenepipe/pkg/displaylist"
	"github.com/valdi-render/scenepipe/pkg/geometry"
)

func newTestContext(t *testing.T, mode Mode, delta bool) (*Context, *fakeCanvasFactory, *fakeBitmapFactory) {
	t.Helper()
	factory := &fakeCanvasFactory{}
	bitmapFactory := &fakeBitmapFactory{}
	ctx, err := NewContext(mode, delta, factory, bitmapFactory, 16, nil)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	return ctx, factory, bitmapFactory
}

func TestRasterFastModeNeverRasterizesExternalSurfaces(t *testing.T) {
	ctx, _, _ := newTestContext(t, ModeFast, false)

	surface := &fakeExternalSurface{size: geometry.Size{Width: 20, Height: 20}, factory: &fakeBitmapFactory{}}
	dl := displaylist.New(100, 100)
	dl.AppendDrawPicture(&fakePicture{bounds: geometry.RectFromLTWH(0, 0, 10, 10)}, 1)
	dl.AppendDrawExternalSurface(canvas.NewExternalSurfaceSnapshot(surface), 1)

	bitmap := newFakeBitmap(100, 100)
	if _, err := ctx.Raster(dl, bitmap, true); err != nil {
		t.Fatalf("Raster: %v", err)
	}
	if surface.rasterCount != 0 {
		t.Fatalf("rasterCount = %d, want 0 in fast mode", surface.rasterCount)
	}
}

func TestRasterAccurateModeRasterizesExternalSurfaceOnce(t *testing.T) {
	ctx, cf, _ := newTestContext(t, ModeAccurate, false)

	surfaceBitmaps := &fakeBitmapFactory{}
	surface := &fakeExternalSurface{size: geometry.Size{Width: 20, Height: 20}, factory: surfaceBitmaps}
	dl := displaylist.New(100, 100)
	dl.AppendDrawPicture(&fakePicture{bounds: geometry.RectFromLTWH(0, 0, 10, 10)}, 1)
	dl.AppendDrawExternalSurface(canvas.NewExternalSurfaceSnapshot(surface), 1)

	bitmap := newFakeBitmap(100, 100)
	if _, err := ctx.Raster(dl, bitmap, true); err != nil {
		t.Fatalf("Raster: %v", err)
	}
	if surface.rasterCount != 1 {
		t.Fatalf("rasterCount = %d, want 1", surface.rasterCount)
	}
	if len(cf.canvases) != 1 {
		t.Fatalf("canvases created = %d, want 1", len(cf.canvases))
	}
	draws := cf.canvases[0].draws
	if len(draws) != 1 {
		t.Fatalf("draws = %+v, want exactly one DrawImage call for the external plane", draws)
	}
}

func TestRasterExternalSurfaceCacheHitAvoidsReraster(t *testing.T) {
	ctx, _, _ := newTestContext(t, ModeAccurate, false)

	surfaceBitmaps := &fakeBitmapFactory{}
	surface := &fakeExternalSurface{size: geometry.Size{Width: 20, Height: 20}, factory: surfaceBitmaps}
	snapshot := canvas.NewExternalSurfaceSnapshot(surface)

	buildList := func() *displaylist.DisplayList {
		dl := displaylist.New(100, 100)
		dl.AppendDrawPicture(&fakePicture{bounds: geometry.RectFromLTWH(0, 0, 10, 10)}, 1)
		dl.AppendDrawExternalSurface(snapshot, 1)
		return dl
	}

	bitmap := newFakeBitmap(100, 100)
	if _, err := ctx.Raster(buildList(), bitmap, true); err != nil {
		t.Fatalf("Raster (first): %v", err)
	}
	if _, err := ctx.Raster(buildList(), bitmap, true); err != nil {
		t.Fatalf("Raster (second): %v", err)
	}
	if surface.rasterCount != 1 {
		t.Fatalf("rasterCount = %d, want 1 (second call should hit the cache)", surface.rasterCount)
	}
}

func TestRasterEvictsExternalCacheEntryNoLongerReferenced(t *testing.T) {
	ctx, _, _ := newTestContext(t, ModeAccurate, false)

	surfaceBitmaps := &fakeBitmapFactory{}
	surface := &fakeExternalSurface{size: geometry.Size{Width: 20, Height: 20}, factory: surfaceBitmaps}
	snapshot := canvas.NewExternalSurfaceSnapshot(surface)

	dl1 := displaylist.New(100, 100)
	dl1.AppendDrawExternalSurface(snapshot, 1)
	bitmap := newFakeBitmap(100, 100)
	if _, err := ctx.Raster(dl1, bitmap, true); err != nil {
		t.Fatalf("Raster (first): %v", err)
	}
	if ctx.externalCache.Len() != 1 {
		t.Fatalf("cache len = %d, want 1 after first frame", ctx.externalCache.Len())
	}

	dl2 := displaylist.New(100, 100)
	dl2.AppendDrawPicture(&fakePicture{bounds: geometry.RectFromLTWH(0, 0, 5, 5)}, 1)
	if _, err := ctx.Raster(dl2, bitmap, true); err != nil {
		t.Fatalf("Raster (second): %v", err)
	}
	if ctx.externalCache.Len() != 0 {
		t.Fatalf("cache len = %d, want 0 once the external surface is no longer drawn", ctx.externalCache.Len())
	}
}

func TestRasterDeltaModeRestrictsSecondFrameToDamagedRect(t *testing.T) {
	ctx, cf, _ := newTestContext(t, ModeFast, true)

	dl1 := displaylist.New(100, 100)
	dl1.PushContext(geometry.MakeTranslate(10, 10), 1, 1, true)
	dl1.AppendDrawPicture(&fakePicture{bounds: geometry.RectFromLTWH(0, 0, 20, 20)}, 1)
	dl1.PopContext()

	bitmap := newFakeBitmap(100, 100)
	if _, err := ctx.Raster(dl1, bitmap, true); err != nil {
		t.Fatalf("Raster (first): %v", err)
	}

	dl2 := displaylist.New(100, 100)
	dl2.PushContext(geometry.MakeTranslate(50, 50), 1, 1, false)
	dl2.AppendDrawPicture(&fakePicture{bounds: geometry.RectFromLTWH(0, 0, 20, 20)}, 1)
	dl2.PopContext()

	if _, err := ctx.Raster(dl2, bitmap, true); err != nil {
		t.Fatalf("Raster (second): %v", err)
	}
	secondCanvas := cf.canvases[len(cf.canvases)-1]
	if len(secondCanvas.clips) == 0 {
		t.Fatal("expected the second, delta-mode frame to clip to its damage rects")
	}
}

func TestBlitByteCopiesWhenShouldClear(t *testing.T) {
	ctx, _, _ := newTestContext(t, ModeFast, true)
	ctx.internalBitmap = newFakeBitmap(2, 2)
	ctx.internalInfo = ctx.internalBitmap.Info()
	srcBuf := ctx.internalBitmap.LockBytes()
	for i := range srcBuf {
		srcBuf[i] = 0xAB
	}

	dst := newFakeBitmap(2, 2)
	if err := ctx.blit(dst, true); err != nil {
		t.Fatalf("blit: %v", err)
	}
	for i, b := range dst.buf {
		if b != 0xAB {
			t.Fatalf("dst.buf[%d] = %#x, want 0xab (byte copy)", i, b)
		}
	}
}

func TestBlitRejectsIncompatibleFormatWhenBlending(t *testing.T) {
	ctx, _, _ := newTestContext(t, ModeFast, true)
	ctx.internalBitmap = newFakeBitmap(2, 2)
	ctx.internalInfo = canvas.BitmapInfo{Width: 2, Height: 2, ColorType: canvas.ColorTypeUnknown, AlphaType: canvas.AlphaTypeUnpremul}

	dst := newFakeBitmap(2, 2)
	err := ctx.blit(dst, false)
	if err == nil {
		t.Fatal("expected an error blending into/from an incompatible bitmap format")
	}
}
