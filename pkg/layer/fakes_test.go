package layer

import (
	"github.com/valdi-render/scenepipe/pkg/canvas"
	"github.com/valdi-render/scenepipe/pkg/geometry"
)

type fakeCanvas struct {
	canvas.Canvas
	rectsDrawn int
	pathsDrawn int
}

func (c *fakeCanvas) Save()                                             {}
func (c *fakeCanvas) SaveLayer(geometry.Rect, *geometry.Paint)          {}
func (c *fakeCanvas) Restore()                                         {}
func (c *fakeCanvas) RestoreToCount(int)                               {}
func (c *fakeCanvas) SaveCount() int                                   { return 0 }
func (c *fakeCanvas) Concat(geometry.Matrix)                           {}
func (c *fakeCanvas) ClipRect(geometry.Rect, canvas.ClipOp)            {}
func (c *fakeCanvas) ClipPath(*geometry.Path, canvas.ClipOp, bool)     {}
func (c *fakeCanvas) DrawRect(geometry.Rect, geometry.Paint)           { c.rectsDrawn++ }
func (c *fakeCanvas) DrawPath(*geometry.Path, geometry.Paint)          { c.pathsDrawn++ }
func (c *fakeCanvas) DrawImage(canvas.Image, geometry.Offset, *geometry.Paint) {}
func (c *fakeCanvas) DrawImageRect(canvas.Image, geometry.Rect, geometry.Rect, canvas.FilterQuality, *geometry.Paint) {
}
func (c *fakeCanvas) DrawPicture(canvas.Picture, *geometry.Matrix, *geometry.Paint) {}
func (c *fakeCanvas) DrawPaint(geometry.Paint)                                      {}
func (c *fakeCanvas) Size() geometry.Size                                          { return geometry.Size{Width: 100, Height: 100} }

type fakePicture struct{ bounds geometry.Rect }

func (p *fakePicture) Bounds() geometry.Rect { return p.bounds }
func (p *fakePicture) Retain()               {}
func (p *fakePicture) Release()              {}

type fakeRecorder struct {
	c *fakeCanvas
}

func (r *fakeRecorder) BeginRecording(bounds geometry.Rect) canvas.Canvas {
	r.c = &fakeCanvas{}
	return r.c
}

func (r *fakeRecorder) EndRecording() canvas.Picture {
	return &fakePicture{}
}

func fakeRecorderFactory() canvas.PictureRecorder { return &fakeRecorder{} }
