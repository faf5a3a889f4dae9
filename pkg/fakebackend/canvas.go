package fakebackend

import (
	stdimage "image"
	stdcolor "image/color"

	xdraw "golang.org/x/image/draw"

	"github.com/valdi-render/scenepipe/pkg/canvas"
	"github.com/valdi-render/scenepipe/pkg/geometry"
)

// frame is one entry of the canvas's Save/SaveLayer stack.
type frame struct {
	matrix geometry.Matrix
	clip   *stdimage.Alpha

	isLayer     bool
	layerImage  *stdimage.RGBA
	layerParent *stdimage.RGBA
	layerAlpha  float64
}

// Canvas is a real, if unoptimized, implementation of canvas.Canvas over an
// *image.RGBA, using golang.org/x/image/vector to rasterize fills and clips
// and golang.org/x/image/draw to scale blitted images.
type Canvas struct {
	root   *stdimage.RGBA
	target *stdimage.RGBA
	matrix geometry.Matrix
	clip   *stdimage.Alpha
	stack  []frame
}

// NewCanvas wraps img for drawing.
func NewCanvas(img *stdimage.RGBA) *Canvas {
	return &Canvas{root: img, target: img, matrix: geometry.Identity()}
}

// Backend implements raster.CanvasFactory over this package's Bitmap type.
type Backend struct{}

func (Backend) CanvasForBitmap(bitmap canvas.Bitmap) canvas.Canvas {
	fb, ok := bitmap.(*Bitmap)
	if !ok {
		// A bitmap this backend didn't allocate; copy its bytes into one we
		// own so drawing still has somewhere real to go.
		info := bitmap.Info()
		fb = NewBitmap(info.Width, info.Height)
		copy(fb.img.Pix, bitmap.LockBytes())
	}
	return NewCanvas(fb.img)
}

func (c *Canvas) Save() {
	c.stack = append(c.stack, frame{matrix: c.matrix, clip: c.clip})
}

func (c *Canvas) SaveLayer(bounds geometry.Rect, paint *geometry.Paint) {
	alpha := 1.0
	if paint != nil {
		alpha = paint.Alpha
	}
	layerImg := stdimage.NewRGBA(c.target.Bounds())
	c.stack = append(c.stack, frame{
		matrix:      c.matrix,
		clip:        c.clip,
		isLayer:     true,
		layerImage:  layerImg,
		layerParent: c.target,
		layerAlpha:  alpha,
	})
	c.target = layerImg
}

func (c *Canvas) Restore() {
	if len(c.stack) == 0 {
		return
	}
	top := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	if top.isLayer {
		compositeImage(top.layerParent, top.layerImage, stdimage.Point{}, nil, top.layerAlpha, geometry.BlendModeSrcOver)
		c.target = top.layerParent
	}
	c.matrix = top.matrix
	c.clip = top.clip
}

func (c *Canvas) RestoreToCount(count int) {
	for len(c.stack) > count {
		c.Restore()
	}
}

func (c *Canvas) SaveCount() int { return len(c.stack) }

func (c *Canvas) Translate(dx, dy float64) {
	c.matrix = c.matrix.PreConcat(geometry.MakeTranslate(dx, dy))
}

func (c *Canvas) Scale(sx, sy float64) {
	c.matrix = c.matrix.PreConcat(geometry.MakeScale(sx, sy))
}

func (c *Canvas) Concat(matrix geometry.Matrix) {
	c.matrix = c.matrix.PreConcat(matrix)
}

func (c *Canvas) clipToPath(path *geometry.Path, op canvas.ClipOp) {
	bounds := c.target.Bounds()
	mask := pathToMask(path, c.matrix, bounds.Dx(), bounds.Dy())
	if op == canvas.ClipOpDifference {
		invertMask(mask)
	}
	c.clip = intersectMasks(c.clip, mask, bounds.Dx(), bounds.Dy())
}

func (c *Canvas) ClipRect(rect geometry.Rect, op canvas.ClipOp) {
	path := geometry.NewPath()
	path.AddRect(rect, true)
	c.clipToPath(path, op)
}

func (c *Canvas) ClipPath(path *geometry.Path, op canvas.ClipOp, antialias bool) {
	c.clipToPath(path, op)
}

func (c *Canvas) DrawPaint(paint geometry.Paint) {
	bounds := c.target.Bounds()
	compositeColor(c.target, c.clip, bounds, paint.Color, paint.Alpha, paint.ResolvedBlendMode())
}

func (c *Canvas) DrawRect(rect geometry.Rect, paint geometry.Paint) {
	path := geometry.NewPath()
	path.AddRect(rect, true)
	c.DrawPath(path, paint)
}

func (c *Canvas) DrawPath(path *geometry.Path, paint geometry.Paint) {
	if path.IsEmpty() {
		return
	}
	bounds := c.target.Bounds()
	mask := pathToMask(path, c.matrix, bounds.Dx(), bounds.Dy())
	mask = intersectMasks(mask, c.clip, bounds.Dx(), bounds.Dy())
	compositeColorMasked(c.target, mask, bounds, paint.Color, paint.Alpha, paint.ResolvedBlendMode())
}

func (c *Canvas) DrawImage(img canvas.Image, position geometry.Offset, paint *geometry.Paint) {
	src := c.sourceImage(img)
	if src == nil {
		return
	}
	dst := c.matrix.MapPoint(position)
	alpha := 1.0
	if paint != nil {
		alpha = paint.Alpha
	}
	dp := stdimage.Point{X: int(dst.X), Y: int(dst.Y)}
	compositeImage(c.target, src, dp, c.clip, alpha, resolvedBlend(paint))
}

func (c *Canvas) DrawImageRect(img canvas.Image, srcRect, dstRect geometry.Rect, quality canvas.FilterQuality, paint *geometry.Paint) {
	src := c.sourceImage(img)
	if src == nil {
		return
	}
	sr := rectToImageRect(srcRect)
	topLeft := c.matrix.MapPoint(geometry.Offset{X: dstRect.Left, Y: dstRect.Top})
	bottomRight := c.matrix.MapPoint(geometry.Offset{X: dstRect.Right, Y: dstRect.Bottom})
	dr := stdimage.Rect(int(topLeft.X), int(topLeft.Y), int(bottomRight.X), int(bottomRight.Y))

	scratch := stdimage.NewRGBA(dr)
	scaler(quality).Scale(scratch, dr, src, sr, xdraw.Src, nil)

	alpha := 1.0
	if paint != nil {
		alpha = paint.Alpha
	}
	compositeImage(c.target, scratch, dr.Min, c.clip, alpha, resolvedBlend(paint))
}

func (c *Canvas) DrawPicture(picture canvas.Picture, matrix *geometry.Matrix, paint *geometry.Paint) {
	recorded, ok := picture.(*Picture)
	if !ok || recorded == nil {
		return
	}
	c.Save()
	if matrix != nil {
		c.Concat(*matrix)
	}
	alpha := 1.0
	if paint != nil {
		alpha = paint.Alpha
	}
	for _, op := range recorded.ops {
		op(c, alpha)
	}
	c.Restore()
}

func (c *Canvas) Size() geometry.Size {
	b := c.root.Bounds()
	return geometry.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

func (c *Canvas) sourceImage(img canvas.Image) *stdimage.RGBA {
	bmp, ok := canvas.BitmapFromImage(img)
	if !ok {
		return nil
	}
	fb, ok := bmp.(*Bitmap)
	if !ok {
		return nil
	}
	return fb.img
}

func resolvedBlend(paint *geometry.Paint) geometry.BlendMode {
	if paint == nil {
		return geometry.BlendModeSrcOver
	}
	return paint.ResolvedBlendMode()
}

func scaler(quality canvas.FilterQuality) xdraw.Scaler {
	switch quality {
	case canvas.FilterQualityNone:
		return xdraw.NearestNeighbor
	case canvas.FilterQualityLow:
		return xdraw.ApproxBiLinear
	case canvas.FilterQualityHigh:
		return xdraw.CatmullRom
	default:
		return xdraw.BiLinear
	}
}

func rectToImageRect(r geometry.Rect) stdimage.Rectangle {
	return stdimage.Rect(int(r.Left), int(r.Top), int(r.Right), int(r.Bottom))
}

func invertMask(mask *stdimage.Alpha) {
	for i, v := range mask.Pix {
		mask.Pix[i] = 0xff - v
	}
}

// compositeColor fills bounds (restricted to clip, if any) with col at
// alpha using blend, without an additional shape mask.
func compositeColor(dst *stdimage.RGBA, clip *stdimage.Alpha, bounds stdimage.Rectangle, col geometry.Color, alpha float64, blend geometry.BlendMode) {
	compositeColorMasked(dst, clip, bounds, col, alpha, blend)
}

func compositeColorMasked(dst *stdimage.RGBA, mask *stdimage.Alpha, bounds stdimage.Rectangle, col geometry.Color, alpha float64, blend geometry.BlendMode) {
	rf, gf, bf, af := col.RGBAF()
	r, g, b, a := uint32(rf*0xff), uint32(gf*0xff), uint32(bf*0xff), uint32(af*0xff)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			coverage := 1.0
			if mask != nil {
				coverage = float64(mask.AlphaAt(x, y).A) / 0xff
			}
			if coverage <= 0 {
				continue
			}
			srcA := (float64(a) / 0xff) * alpha * coverage
			blendPixel(dst, x, y, r, g, b, srcA, blend)
		}
	}
}

// compositeImage draws src onto dst at offset dp (dst = src + dp), honoring
// an optional clip mask and overall alpha.
func compositeImage(dst *stdimage.RGBA, src stdimage.Image, dp stdimage.Point, clip *stdimage.Alpha, alpha float64, blend geometry.BlendMode) {
	sb := src.Bounds()
	for sy := sb.Min.Y; sy < sb.Max.Y; sy++ {
		for sx := sb.Min.X; sx < sb.Max.X; sx++ {
			dx, dy := dp.X+(sx-sb.Min.X), dp.Y+(sy-sb.Min.Y)
			if !(stdimage.Point{X: dx, Y: dy}.In(dst.Bounds())) {
				continue
			}
			coverage := 1.0
			if clip != nil {
				coverage = float64(clip.AlphaAt(dx, dy).A) / 0xff
				if coverage <= 0 {
					continue
				}
			}
			r32, g32, b32, a32 := src.At(sx, sy).RGBA()
			srcA := (float64(a32) / 0xffff) * alpha * coverage
			// RGBA() returns alpha-premultiplied components; un-premultiply
			// so blendPixel's straight-color*srcA math applies correctly.
			r, g, b := uint32(0), uint32(0), uint32(0)
			if a32 > 0 {
				r = (r32 * 0xff) / a32
				g = (g32 * 0xff) / a32
				b = (b32 * 0xff) / a32
			}
			blendPixel(dst, dx, dy, r, g, b, srcA, blend)
		}
	}
}

// blendPixel composites one straight (un-premultiplied) src pixel (r,g,b in [0,255], at
// coverage-and-alpha-scaled srcA in [0,1]) onto dst at (x,y).
func blendPixel(dst *stdimage.RGBA, x, y int, r, g, b uint32, srcA float64, blend geometry.BlendMode) {
	if srcA <= 0 && blend != geometry.BlendModeClear {
		return
	}
	dstColor := dst.RGBAAt(x, y)
	switch blend {
	case geometry.BlendModeClear:
		dst.SetRGBA(x, y, stdcolor.RGBA{})
	case geometry.BlendModeSrc:
		dst.SetRGBA(x, y, stdcolor.RGBA{
			R: uint8(float64(r) * srcA),
			G: uint8(float64(g) * srcA),
			B: uint8(float64(b) * srcA),
			A: uint8(0xff * srcA),
		})
	default: // BlendModeSrcOver and every unimplemented mode approximate it
		inv := 1 - srcA
		dst.SetRGBA(x, y, stdcolor.RGBA{
			R: uint8(float64(r)*srcA + float64(dstColor.R)*inv),
			G: uint8(float64(g)*srcA + float64(dstColor.G)*inv),
			B: uint8(float64(b)*srcA + float64(dstColor.B)*inv),
			A: uint8(0xff*srcA + float64(dstColor.A)*inv),
		})
	}
}
