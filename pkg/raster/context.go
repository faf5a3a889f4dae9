// Package raster drives rasterization of a resolved display list onto a
// destination bitmap: it runs the compositor when needed, computes damage
// rectangles in delta mode, and maintains a cache of pre-rasterized
// external surfaces keyed by (snapshot identity, frame, transform, scale).
package raster

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/valdi-render/scenepipe/pkg/canvas"
	"github.com/valdi-render/scenepipe/pkg/compositor"
	"github.com/valdi-render/scenepipe/pkg/damage"
	"github.com/valdi-render/scenepipe/pkg/displaylist"
	"github.com/valdi-render/scenepipe/pkg/errors"
	"github.com/valdi-render/scenepipe/pkg/geometry"
)

// Mode selects whether the raster context runs the compositor.
type Mode int

const (
	// ModeFast skips the compositor entirely; external surfaces are left
	// to the host to present out of band. DrawExternalSurface ops are
	// simply skipped during playback.
	ModeFast Mode = iota
	// ModeAccurate runs the compositor whenever the source display list
	// references an external surface, and rasterizes each resolved
	// external plane into a cached sub-bitmap.
	ModeAccurate
)

// CanvasFactory bridges a Bitmap's raw pixels to a drawable Canvas. The
// core depends on the graphics backend only through this seam; no backend
// is implemented here (see spec's non-goals on the underlying 2D backend).
type CanvasFactory interface {
	CanvasForBitmap(bitmap canvas.Bitmap) canvas.Canvas
}

// Result is returned by a successful Raster call.
type Result struct {
	RenderedPixelsCount int
}

type externalCacheKey struct {
	snapshot  *canvas.ExternalSurfaceSnapshot
	frame     geometry.Rect
	transform geometry.Matrix
	scaleX    float64
	scaleY    float64
}

type cachedExternalImage struct {
	bitmap       canvas.Bitmap
	image        canvas.Image
	lastRasterID uint64
}

// Context is the glue component: one per destination surface. Its
// cross-call mutable state (cached internal bitmap, cached rasterized
// external surfaces, damage resolver) is guarded by a single mutex; Go has
// no built-in recursive mutex; every private helper below assumes the
// caller already holds it rather than re-acquiring it, so a plain
// sync.Mutex is sufficient.
type Context struct {
	mu sync.Mutex

	mode               Mode
	deltaRasterEnabled bool

	backend         CanvasFactory
	internalFactory canvas.BitmapFactory
	errorHandler    errors.Handler

	compositorInst *compositor.Compositor
	damageResolver *damage.Resolver

	internalBitmap canvas.Bitmap
	internalInfo   canvas.BitmapInfo

	lastRasterID  uint64
	externalCache *lru.Cache
}

// NewContext builds a raster Context. backend bridges bitmaps to canvases;
// internalFactory allocates the cached bitmap delta mode draws into;
// externalCacheSize bounds the external-surface rasterization cache.
func NewContext(mode Mode, deltaRasterEnabled bool, backend CanvasFactory, internalFactory canvas.BitmapFactory, externalCacheSize int, errorHandler errors.Handler) (*Context, error) {
	cache, err := lru.New(externalCacheSize)
	if err != nil {
		return nil, err
	}
	return &Context{
		mode:               mode,
		deltaRasterEnabled: deltaRasterEnabled,
		backend:            backend,
		internalFactory:    internalFactory,
		errorHandler:       errorHandler,
		compositorInst:     compositor.New(),
		damageResolver:     damage.NewResolver(),
		externalCache:      cache,
	}, nil
}

// Raster is the authoritative entry point: run the compositor if needed,
// compute damage if delta mode is enabled, draw into bitmap (directly, or
// via the cached internal bitmap and a blit), and evict stale cached
// external-surface rasterizations.
func (c *Context) Raster(dl *displaylist.DisplayList, bitmap canvas.Bitmap, shouldClearBitmapBeforeDrawing bool) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastRasterID++
	rasterID := c.lastRasterID

	resolved, planes := c.resolve(dl)
	info := bitmap.Info()

	if !c.deltaRasterEnabled {
		target := c.backend.CanvasForBitmap(bitmap)
		n, err := c.doRaster(resolved, planes, target, info, shouldClearBitmapBeforeDrawing, rasterID, nil)
		if err != nil {
			c.reportError(err)
			return Result{}, err
		}
		c.evictStale(rasterID)
		return Result{RenderedPixelsCount: n}, nil
	}

	c.damageResolver.BeginUpdates(resolved.Width, resolved.Height)
	c.damageResolver.AddDamageFromDisplayListUpdates(resolved)
	damageRects := c.damageResolver.EndUpdates()

	if c.internalBitmap == nil || !c.internalInfo.Equal(info) {
		newBitmap, err := c.internalFactory.CreateBitmap(info.Width, info.Height)
		if err != nil {
			rerr := errors.New("raster.Context.Raster", errors.KindBitmapAllocationFailed, err)
			c.reportError(rerr)
			return Result{}, rerr
		}
		c.internalBitmap = newBitmap
		c.internalInfo = newBitmap.Info()

		target := c.backend.CanvasForBitmap(c.internalBitmap)
		n, err := c.doRaster(resolved, planes, target, c.internalInfo, true, rasterID, nil)
		if err != nil {
			c.reportError(err)
			return Result{}, err
		}
		if err := c.blit(bitmap, shouldClearBitmapBeforeDrawing); err != nil {
			c.reportError(err)
			return Result{}, err
		}
		c.evictStale(rasterID)
		return Result{RenderedPixelsCount: n}, nil
	}

	target := c.backend.CanvasForBitmap(c.internalBitmap)
	total := 0
	for _, rect := range damageRects {
		rect := rect
		n, err := c.doRaster(resolved, planes, target, c.internalInfo, false, rasterID, &rect)
		if err != nil {
			c.reportError(err)
			return Result{}, err
		}
		total += n
	}
	if err := c.blit(bitmap, shouldClearBitmapBeforeDrawing); err != nil {
		c.reportError(err)
		return Result{}, err
	}
	c.evictStale(rasterID)
	return Result{RenderedPixelsCount: total}, nil
}

// resolve runs the compositor in accurate mode when dl has any external
// surface, otherwise returns dl unchanged with a single drawable plane.
func (c *Context) resolve(dl *displaylist.DisplayList) (*displaylist.DisplayList, compositor.PlaneList) {
	if c.mode == ModeAccurate && dl.HasExternalSurfaces() {
		return c.compositorInst.Composite(dl)
	}
	return dl, compositor.PlaneList{{Kind: compositor.PlaneKindDrawable}}
}

func computeScale(dl *displaylist.DisplayList, info canvas.BitmapInfo) (float64, float64) {
	scaleX, scaleY := 1.0, 1.0
	if dl.Width != 0 {
		scaleX = float64(info.Width) / dl.Width
	}
	if dl.Height != 0 {
		scaleY = float64(info.Height) / dl.Height
	}
	return scaleX, scaleY
}

// doRaster draws every plane of resolved, in order, onto target, optionally
// restricted to damageRect (in resolved's logical coordinate space). It
// returns the number of pixels it touched.
func (c *Context) doRaster(resolved *displaylist.DisplayList, planes compositor.PlaneList, target canvas.Canvas, info canvas.BitmapInfo, shouldClear bool, rasterID uint64, damageRect *geometry.Rect) (int, error) {
	scaleX, scaleY := computeScale(resolved, info)

	startDepth := target.SaveCount()
	target.Save()
	if damageRect != nil {
		pixelRect := geometry.Rect{
			Left:   damageRect.Left * scaleX,
			Top:    damageRect.Top * scaleY,
			Right:  damageRect.Right * scaleX,
			Bottom: damageRect.Bottom * scaleY,
		}
		target.ClipRect(pixelRect, canvas.ClipOpIntersect)
	}
	if shouldClear {
		paint := geometry.DefaultPaint()
		paint.Color = geometry.ColorTransparent
		paint.BlendMode = geometry.BlendModeSrc
		target.DrawPaint(paint)
	}

	drawablePlaneIndex := 0
	for _, plane := range planes {
		switch plane.Kind {
		case compositor.PlaneKindDrawable:
			resolved.Draw(target, drawablePlaneIndex, false)
			drawablePlaneIndex++
		case compositor.PlaneKindExternal:
			if err := c.drawExternalPlane(plane, target, scaleX, scaleY, rasterID); err != nil {
				target.RestoreToCount(startDepth)
				return 0, err
			}
		}
	}
	target.RestoreToCount(startDepth)

	if damageRect != nil {
		return int(damageRect.Width()*scaleX) * int(damageRect.Height()*scaleY), nil
	}
	return info.Width * info.Height, nil
}

// drawExternalPlane gets or creates a cached rasterization of plane's
// external surface and draws it onto target at the presenter's clip and
// opacity.
func (c *Context) drawExternalPlane(plane compositor.CompositorPlane, target canvas.Canvas, scaleX, scaleY float64, rasterID uint64) error {
	key := externalCacheKey{
		snapshot:  plane.ExternalSnapshot,
		frame:     plane.Presenter.Frame,
		transform: plane.Presenter.Transform,
		scaleX:    scaleX,
		scaleY:    scaleY,
	}

	var cached cachedExternalImage
	if v, ok := c.externalCache.Get(key); ok {
		cached = v.(cachedExternalImage)
	} else {
		surface := plane.ExternalSnapshot.Surface()
		if surface == nil {
			return errors.New("raster.Context.drawExternalPlane", errors.KindMissingBitmapFactory, nil)
		}
		factory := surface.RasterBitmapFactory()
		if factory == nil {
			return errors.New("raster.Context.drawExternalPlane", errors.KindMissingBitmapFactory, nil)
		}

		pixelW := int(plane.Presenter.Frame.Width() * scaleX)
		pixelH := int(plane.Presenter.Frame.Height() * scaleY)
		if pixelW < 1 {
			pixelW = 1
		}
		if pixelH < 1 {
			pixelH = 1
		}

		bmp, err := factory.CreateBitmap(pixelW, pixelH)
		if err != nil {
			return errors.New("raster.Context.drawExternalPlane", errors.KindBitmapAllocationFailed, err)
		}
		buf := bmp.LockBytes()
		if buf == nil {
			return errors.New("raster.Context.drawExternalPlane", errors.KindBitmapLockFailed, nil)
		}
		for i := range buf {
			buf[i] = 0
		}
		bmp.UnlockBytes()

		if err := surface.RasterInto(bmp, plane.Presenter.Frame, plane.Presenter.Transform, scaleX, scaleY); err != nil {
			return errors.New("raster.Context.drawExternalPlane", errors.KindExternalSurfaceRasterFailed, err)
		}
		cached = cachedExternalImage{bitmap: bmp, image: canvas.ImageFromBitmap(bmp)}
	}
	cached.lastRasterID = rasterID
	c.externalCache.Add(key, cached)

	target.Save()
	// The presenter's clip is applied as the scaled bounding rect of its
	// clip path; a rounded or intersected clip shape is clipped only to
	// those bounds. Scaling the bounds rect avoids mutating a Path value
	// that may share backing command arrays with sibling contexts.
	if clipBounds := plane.Presenter.ClipPath.GetBounds(); clipBounds != nil {
		scaledClip := geometry.Rect{
			Left:   clipBounds.Left * scaleX,
			Top:    clipBounds.Top * scaleY,
			Right:  clipBounds.Right * scaleX,
			Bottom: clipBounds.Bottom * scaleY,
		}
		target.ClipRect(scaledClip, canvas.ClipOpIntersect)
	}
	paint := geometry.DefaultPaint()
	paint.Alpha = plane.Presenter.Opacity
	position := geometry.Offset{
		X: plane.Presenter.Frame.Left * scaleX,
		Y: plane.Presenter.Frame.Top * scaleY,
	}
	target.DrawImage(cached.image, position, &paint)
	target.Restore()
	return nil
}

// blit transfers the cached internal bitmap to target: a byte copy when
// shouldClear is set (the target had no prior content worth preserving), or
// a row-wise premultiplied source-over blend otherwise.
func (c *Context) blit(target canvas.Bitmap, shouldClear bool) error {
	srcBytes := c.internalBitmap.LockBytes()
	defer c.internalBitmap.UnlockBytes()
	dstBytes := target.LockBytes()
	defer target.UnlockBytes()
	if srcBytes == nil || dstBytes == nil {
		return errors.New("raster.Context.blit", errors.KindBitmapLockFailed, nil)
	}

	if shouldClear {
		copy(dstBytes, srcBytes)
		return nil
	}

	dstInfo := target.Info()
	if !c.internalInfo.IsDeltaRasterCompatible() || !dstInfo.IsDeltaRasterCompatible() {
		return errors.New("raster.Context.blit", errors.KindBitmapFormatUnsupported, nil)
	}
	blendSourceOver(dstBytes, srcBytes, c.internalInfo)
	return nil
}

// blendSourceOver composites src over dst in place, assuming both are
// premultiplied 8-bit-per-channel pixels with alpha as the fourth byte.
func blendSourceOver(dst, src []byte, info canvas.BitmapInfo) {
	rowBytes := info.RowBytes
	if rowBytes == 0 {
		rowBytes = info.Width * 4
	}
	for y := 0; y < info.Height; y++ {
		rowStart := y * rowBytes
		for x := 0; x < info.Width; x++ {
			i := rowStart + x*4
			if i+3 >= len(src) || i+3 >= len(dst) {
				break
			}
			inv := 1 - float64(src[i+3])/255.0
			for ch := 0; ch < 4; ch++ {
				dst[i+ch] = byte(float64(src[i+ch]) + float64(dst[i+ch])*inv)
			}
		}
	}
}

// evictStale removes any cached external rasterization whose lastRasterID
// predates rasterID, meaning it wasn't touched by the current call.
func (c *Context) evictStale(rasterID uint64) {
	for _, k := range c.externalCache.Keys() {
		v, ok := c.externalCache.Peek(k)
		if !ok {
			continue
		}
		cached := v.(cachedExternalImage)
		if cached.lastRasterID < rasterID {
			c.externalCache.Remove(k)
		}
	}
}

func (c *Context) reportError(err *errors.RenderError) {
	if c.errorHandler != nil {
		c.errorHandler.HandleError(err)
	}
}
