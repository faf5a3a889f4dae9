package canvas

import (
	"fmt"

	"github.com/valdi-render/scenepipe/pkg/geometry"
)

// ColorType identifies a bitmap's per-pixel channel layout.
type ColorType int

const (
	ColorTypeUnknown ColorType = iota
	ColorTypeRGBA8888
	ColorTypeBGRA8888
)

func (c ColorType) String() string {
	switch c {
	case ColorTypeRGBA8888:
		return "rgba8888"
	case ColorTypeBGRA8888:
		return "bgra8888"
	default:
		return fmt.Sprintf("ColorType(%d)", int(c))
	}
}

// AlphaType identifies how a bitmap's alpha channel relates to its color channels.
type AlphaType int

const (
	AlphaTypeUnknown AlphaType = iota
	AlphaTypePremul
	AlphaTypeUnpremul
	AlphaTypeOpaque
)

func (a AlphaType) String() string {
	switch a {
	case AlphaTypePremul:
		return "premul"
	case AlphaTypeUnpremul:
		return "unpremul"
	case AlphaTypeOpaque:
		return "opaque"
	default:
		return fmt.Sprintf("AlphaType(%d)", int(a))
	}
}

// BitmapInfo describes a bitmap's pixel layout, independent of its backing storage.
type BitmapInfo struct {
	Width     int
	Height    int
	ColorType ColorType
	AlphaType AlphaType
	RowBytes  int
}

// Equal reports whether two BitmapInfo values describe the same layout;
// the raster context uses this to decide whether a cached bitmap can be
// reused or must be reallocated.
func (b BitmapInfo) Equal(other BitmapInfo) bool {
	return b == other
}

// IsDeltaRasterCompatible reports whether the bitmap format supports
// row-wise premultiplied source-over blending, a precondition of delta
// rasterization's blit step.
func (b BitmapInfo) IsDeltaRasterCompatible() bool {
	if b.AlphaType != AlphaTypePremul {
		return false
	}
	return b.ColorType == ColorTypeRGBA8888 || b.ColorType == ColorTypeBGRA8888
}

// Bitmap is an external pixel buffer the rendering core draws into or reads
// from. Ownership of the backing memory belongs to the caller (or, for the
// raster context's internal cache, to the factory that created it).
type Bitmap interface {
	Info() BitmapInfo
	// LockBytes returns a writable view over the bitmap's pixels, or nil if
	// the lock failed.
	LockBytes() []byte
	// UnlockBytes releases a view acquired via LockBytes.
	UnlockBytes()
}

// BitmapFactory allocates new Bitmap instances. External surfaces carry
// their own factory so the raster context can allocate a scratch bitmap
// sized to whatever scale it is rasterizing at.
type BitmapFactory interface {
	CreateBitmap(width, height int) (Bitmap, error)
}

// bitmapImage adapts a Bitmap to the Image interface so a drawing context
// can blit a raw pixel buffer the same way it blits a decoded image.
type bitmapImage struct {
	bitmap Bitmap
}

func (b bitmapImage) Size() geometry.Size {
	info := b.bitmap.Info()
	return geometry.Size{Width: float64(info.Width), Height: float64(info.Height)}
}

// ImageFromBitmap wraps bitmap as an Image usable with Canvas.DrawImage /
// DrawImageRect, the same role Image::makeFromBitmap plays for the backend
// this package stands in for.
func ImageFromBitmap(bitmap Bitmap) Image {
	return bitmapImage{bitmap: bitmap}
}

// BitmapFromImage recovers the Bitmap backing img when img was produced by
// ImageFromBitmap. A concrete Canvas implementation needs this to get at
// actual pixels; an Image from any other source is opaque to it.
func BitmapFromImage(img Image) (Bitmap, bool) {
	bi, ok := img.(bitmapImage)
	if !ok {
		return nil, false
	}
	return bi.bitmap, true
}
