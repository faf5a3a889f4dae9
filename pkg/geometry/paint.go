package geometry

import "fmt"

// PaintStyle describes how shapes are filled or stroked.
type PaintStyle int

const (
	PaintStyleFill PaintStyle = iota
	PaintStyleStroke
	PaintStyleFillAndStroke
)

func (s PaintStyle) String() string {
	switch s {
	case PaintStyleFill:
		return "fill"
	case PaintStyleStroke:
		return "stroke"
	case PaintStyleFillAndStroke:
		return "fill_and_stroke"
	default:
		return fmt.Sprintf("PaintStyle(%d)", int(s))
	}
}

// StrokeCap describes how stroke endpoints are drawn.
type StrokeCap int

const (
	CapButt StrokeCap = iota
	CapRound
	CapSquare
)

func (c StrokeCap) String() string {
	switch c {
	case CapButt:
		return "butt"
	case CapRound:
		return "round"
	case CapSquare:
		return "square"
	default:
		return fmt.Sprintf("StrokeCap(%d)", int(c))
	}
}

// StrokeJoin describes how stroke corners are drawn.
type StrokeJoin int

const (
	JoinMiter StrokeJoin = iota
	JoinRound
	JoinBevel
)

func (j StrokeJoin) String() string {
	switch j {
	case JoinMiter:
		return "miter"
	case JoinRound:
		return "round"
	case JoinBevel:
		return "bevel"
	default:
		return fmt.Sprintf("StrokeJoin(%d)", int(j))
	}
}

// BlendMode controls how source and destination colors are composited.
// Values match Skia's SkBlendMode enum exactly, since the backend that
// ultimately executes them is a Skia-flavored Canvas.
type BlendMode int

const (
	BlendModeClear BlendMode = iota
	BlendModeSrc
	BlendModeDst
	BlendModeSrcOver
	BlendModeDstOver
	BlendModeSrcIn
	BlendModeDstIn
	BlendModeSrcOut
	BlendModeDstOut
	BlendModeSrcATop
	BlendModeDstATop
	BlendModeXor
	BlendModePlus
	BlendModeModulate
	BlendModeScreen
	BlendModeOverlay
	BlendModeDarken
	BlendModeLighten
	BlendModeColorDodge
	BlendModeColorBurn
	BlendModeHardLight
	BlendModeSoftLight
	BlendModeDifference
	BlendModeExclusion
	BlendModeMultiply
	BlendModeHue
	BlendModeSaturation
	BlendModeColor
	BlendModeLuminosity
)

var blendModeNames = []string{
	"clear", "src", "dst", "src_over", "dst_over",
	"src_in", "dst_in", "src_out", "dst_out",
	"src_atop", "dst_atop", "xor", "plus", "modulate",
	"screen", "overlay", "darken", "lighten",
	"color_dodge", "color_burn", "hard_light", "soft_light",
	"difference", "exclusion", "multiply",
	"hue", "saturation", "color", "luminosity",
}

func (b BlendMode) String() string {
	if int(b) >= 0 && int(b) < len(blendModeNames) {
		return blendModeNames[b]
	}
	return fmt.Sprintf("BlendMode(%d)", int(b))
}

// MaskFilter is an opaque, backend-owned mask effect (e.g. a blur) applied
// to a paint's coverage before compositing.
type MaskFilter interface {
	Describe() string
}

// ColorFilter is an opaque, backend-owned per-pixel color transform applied
// after a paint's shader/color is resolved.
type ColorFilter interface {
	Describe() string
}

// Shader produces the fill color at each point a paint covers; Gradient is
// the only shader kind the rendering core knows about.
type Shader interface {
	Describe() string
}

// Paint is a bag of draw parameters: color, alpha, stroke style, and the
// optional shader/mask-filter/color-filter hooks into the backend.
type Paint struct {
	Color Color
	Alpha float64 // overall opacity 0.0-1.0; negative defaults to 1.0

	Style       PaintStyle
	StrokeWidth float64
	StrokeCap   StrokeCap
	StrokeJoin  StrokeJoin
	Antialias   bool

	Shader      Shader // overrides Color for the fill when set
	MaskFilter  MaskFilter
	ColorFilter ColorFilter

	BlendMode BlendMode // negative defaults to BlendModeSrcOver
}

// DefaultPaint returns a basic opaque white fill paint with standard compositing.
func DefaultPaint() Paint {
	return Paint{
		Color:      ColorWhite,
		Alpha:      1.0,
		Style:      PaintStyleFill,
		StrokeCap:  CapButt,
		StrokeJoin: JoinMiter,
		Antialias:  true,
		BlendMode:  BlendModeSrcOver,
	}
}

// ResolvedAlpha returns Alpha, substituting 1.0 for an unset (negative) value.
func (p Paint) ResolvedAlpha() float64 {
	if p.Alpha < 0 {
		return 1.0
	}
	return p.Alpha
}

// ResolvedBlendMode returns BlendMode, substituting BlendModeSrcOver for an
// unset (negative) value.
func (p Paint) ResolvedBlendMode() BlendMode {
	if p.BlendMode < 0 {
		return BlendModeSrcOver
	}
	return p.BlendMode
}
