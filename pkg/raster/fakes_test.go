package raster

import (
	"github.com/valdi-render/scenepipe/pkg/canvas"
	"github.com/valdi-render/scenepipe/pkg/geometry"
)

// fakePicture is a trivial canvas.Picture with a fixed content bounds.
type fakePicture struct {
	bounds geometry.Rect
}

func (p *fakePicture) Bounds() geometry.Rect { return p.bounds }
func (p *fakePicture) Retain()               {}
func (p *fakePicture) Release()              {}

// fakeBitmap is an in-memory canvas.Bitmap backed by a plain byte slice.
type fakeBitmap struct {
	info canvas.BitmapInfo
	buf  []byte
}

func newFakeBitmap(w, h int) *fakeBitmap {
	info := canvas.BitmapInfo{Width: w, Height: h, ColorType: canvas.ColorTypeRGBA8888, AlphaType: canvas.AlphaTypePremul, RowBytes: w * 4}
	return &fakeBitmap{info: info, buf: make([]byte, w*h*4)}
}

func (b *fakeBitmap) Info() canvas.BitmapInfo { return b.info }
func (b *fakeBitmap) LockBytes() []byte       { return b.buf }
func (b *fakeBitmap) UnlockBytes()            {}

// fakeBitmapFactory allocates fakeBitmaps, counting how many it creates.
type fakeBitmapFactory struct {
	createCount int
	failNext    bool
}

func (f *fakeBitmapFactory) CreateBitmap(w, h int) (canvas.Bitmap, error) {
	if f.failNext {
		return nil, errAllocation
	}
	f.createCount++
	return newFakeBitmap(w, h), nil
}

// fakeImage is a trivial canvas.Image with a fixed pixel size.
type fakeImage struct {
	size geometry.Size
}

func (i fakeImage) Size() geometry.Size { return i.size }

// fakeExternalSurface counts how many times RasterInto is invoked, letting
// tests assert on the external-surface rasterization cache's hit rate.
type fakeExternalSurface struct {
	size          geometry.Size
	factory       canvas.BitmapFactory
	rasterCount   int
	rasterIntoErr error
}

func (s *fakeExternalSurface) RelativeSize() geometry.Size        { return s.size }
func (s *fakeExternalSurface) SetRelativeSize(size geometry.Size) { s.size = size }
func (s *fakeExternalSurface) RasterBitmapFactory() canvas.BitmapFactory { return s.factory }
func (s *fakeExternalSurface) RasterInto(bitmap canvas.Bitmap, frame geometry.Rect, transform geometry.Matrix, scaleX, scaleY float64) error {
	s.rasterCount++
	if s.rasterIntoErr != nil {
		return s.rasterIntoErr
	}
	return nil
}

// fakeCanvas implements canvas.Canvas, recording the calls tests care about
// instead of rendering anything for real.
type fakeCanvas struct {
	size geometry.Size

	saveCount int
	clips     []geometry.Rect
	draws     []fakeDrawImageCall
	paints    []geometry.Paint
}

type fakeDrawImageCall struct {
	position geometry.Offset
	opacity  float64
}

func newFakeCanvas(w, h float64) *fakeCanvas {
	return &fakeCanvas{size: geometry.Size{Width: w, Height: h}}
}

func (c *fakeCanvas) Save()                                  { c.saveCount++ }
func (c *fakeCanvas) SaveLayer(geometry.Rect, *geometry.Paint) { c.saveCount++ }
func (c *fakeCanvas) Restore() {
	if c.saveCount > 0 {
		c.saveCount--
	}
}
func (c *fakeCanvas) RestoreToCount(count int) { c.saveCount = count }
func (c *fakeCanvas) SaveCount() int           { return c.saveCount }
func (c *fakeCanvas) Translate(dx, dy float64) {}
func (c *fakeCanvas) Scale(sx, sy float64)     {}
func (c *fakeCanvas) Concat(geometry.Matrix)   {}
func (c *fakeCanvas) ClipRect(rect geometry.Rect, op canvas.ClipOp) {
	c.clips = append(c.clips, rect)
}
func (c *fakeCanvas) ClipPath(*geometry.Path, canvas.ClipOp, bool) {}
func (c *fakeCanvas) DrawPaint(paint geometry.Paint)               { c.paints = append(c.paints, paint) }
func (c *fakeCanvas) DrawRect(geometry.Rect, geometry.Paint)       {}
func (c *fakeCanvas) DrawPath(*geometry.Path, geometry.Paint)      {}
func (c *fakeCanvas) DrawImage(img canvas.Image, position geometry.Offset, paint *geometry.Paint) {
	opacity := 1.0
	if paint != nil {
		opacity = paint.Alpha
	}
	c.draws = append(c.draws, fakeDrawImageCall{position: position, opacity: opacity})
}
func (c *fakeCanvas) DrawImageRect(canvas.Image, geometry.Rect, geometry.Rect, canvas.FilterQuality, *geometry.Paint) {
}
func (c *fakeCanvas) DrawPicture(canvas.Picture, *geometry.Matrix, *geometry.Paint) {}
func (c *fakeCanvas) Size() geometry.Size                                          { return c.size }

// fakeCanvasFactory hands out one fakeCanvas per CanvasForBitmap call.
type fakeCanvasFactory struct {
	canvases []*fakeCanvas
}

func (f *fakeCanvasFactory) CanvasForBitmap(bitmap canvas.Bitmap) canvas.Canvas {
	info := bitmap.Info()
	c := newFakeCanvas(float64(info.Width), float64(info.Height))
	f.canvases = append(f.canvases, c)
	return c
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

const errAllocation = fakeErr("allocation failed")
