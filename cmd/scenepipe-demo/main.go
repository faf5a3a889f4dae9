// Command scenepipe-demo builds a small retained layer tree, runs it
// through the full pipeline (layer tree -> display list -> compositor ->
// raster context), and writes the rasterized frame to a PNG. It exists to
// give the rendering core something concrete to run against outside of
// unit tests; it is not part of the core itself.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"

	"github.com/valdi-render/scenepipe/pkg/canvas"
	"github.com/valdi-render/scenepipe/pkg/displaylist"
	"github.com/valdi-render/scenepipe/pkg/errors"
	"github.com/valdi-render/scenepipe/pkg/fakebackend"
	"github.com/valdi-render/scenepipe/pkg/geometry"
	"github.com/valdi-render/scenepipe/pkg/layer"
	"github.com/valdi-render/scenepipe/pkg/raster"
)

func main() {
	out := flag.String("out", "frame.png", "path to write the rasterized PNG")
	width := flag.Int("width", 320, "frame width in pixels")
	height := flag.Int("height", 240, "frame height in pixels")
	accurate := flag.Bool("accurate", false, "use accurate mode: run the compositor when the scene has external surfaces")
	flag.Parse()

	if err := run(*out, *width, *height, *accurate); err != nil {
		fmt.Fprintln(os.Stderr, "scenepipe-demo:", err)
		os.Exit(1)
	}
}

func run(out string, width, height int, accurate bool) error {
	root := layer.NewTestRoot()

	scene := layer.New(func() canvas.PictureRecorder { return &fakebackend.Recorder{} })
	scene.Frame = geometry.RectFromLTWH(0, 0, float64(width), float64(height))
	scene.BackgroundColor = geometry.RGB(0x20, 0x24, 0x2b)
	scene.SetRoot(root)

	card := layer.New(func() canvas.PictureRecorder { return &fakebackend.Recorder{} })
	card.Frame = geometry.RectFromLTWH(24, 24, float64(width)-48, float64(height)-48)
	card.BackgroundColor = geometry.RGB(0xF2, 0xF4, 0xF8)
	card.BorderRadius = geometry.MakeOval(16, false)
	card.BorderColor = geometry.RGB(0x3A, 0x6F, 0xE0)
	card.BorderWidth = 3
	card.ClipsToBounds = true
	scene.AddChild(card)

	ring := layer.NewShapeLayer(func() canvas.PictureRecorder { return &fakebackend.Recorder{} })
	ring.Frame = geometry.RectFromLTWH(0, 0, card.Frame.Width(), card.Frame.Height())
	ringPath := geometry.NewPath()
	ringBounds := geometry.RectFromLTWH(20, 20, card.Frame.Width()-40, card.Frame.Height()-40)
	ringPath.AddOval(ringBounds, true)
	ring.SetPath(ringPath)
	strokePaint := geometry.DefaultPaint()
	strokePaint.Color = geometry.RGB(0xE0, 0x5A, 0x3A)
	strokePaint.StrokeWidth = 6
	ring.StrokePaint = &strokePaint
	ring.SetStrokeRange(0, 0.75)
	card.AddChild(ring.Layer)

	dl := displaylist.New(float64(width), float64(height))
	scene.Draw(dl, &layer.DrawMetrics{Scale: 1})

	backend := fakebackend.Backend{}
	mode := raster.ModeFast
	if accurate {
		mode = raster.ModeAccurate
	}
	rc, err := raster.NewContext(mode, false, backend, fakebackend.BitmapFactory{}, 64, &errors.LogHandler{})
	if err != nil {
		return err
	}

	bitmap := fakebackend.NewBitmap(width, height)
	if _, err := rc.Raster(dl, bitmap, true); err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, bitmap.Image())
}
