// Package fakebackend is a small, real graphics backend implementing
// canvas.Canvas, canvas.Bitmap, canvas.PictureRecorder, and
// raster.CanvasFactory over Go's image package and golang.org/x/image's
// vector rasterizer and scaler. The rendering core never depends on it
// directly (see canvas.Canvas's doc comment on the non-goal); it exists so
// the demo command and the raster context's tests have a concrete backend
// to draw with.
package fakebackend

import (
	"image"

	"github.com/valdi-render/scenepipe/pkg/canvas"
)

// Bitmap wraps a premultiplied *image.RGBA as a canvas.Bitmap.
type Bitmap struct {
	img *image.RGBA
}

// NewBitmap allocates a w x h bitmap, fully transparent.
func NewBitmap(w, h int) *Bitmap {
	return &Bitmap{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

// Image exposes the backing *image.RGBA for callers (the demo command)
// that need to encode it.
func (b *Bitmap) Image() *image.RGBA { return b.img }

func (b *Bitmap) Info() canvas.BitmapInfo {
	bounds := b.img.Bounds()
	return canvas.BitmapInfo{
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		ColorType: canvas.ColorTypeRGBA8888,
		AlphaType: canvas.AlphaTypePremul,
		RowBytes:  b.img.Stride,
	}
}

func (b *Bitmap) LockBytes() []byte { return b.img.Pix }
func (b *Bitmap) UnlockBytes()      {}

// BitmapFactory allocates Bitmaps backed by *image.RGBA.
type BitmapFactory struct{}

func (BitmapFactory) CreateBitmap(width, height int) (canvas.Bitmap, error) {
	return NewBitmap(width, height), nil
}
