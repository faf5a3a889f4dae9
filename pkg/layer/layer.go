package layer

import (
	"math"

	"github.com/valdi-render/scenepipe/pkg/canvas"
	"github.com/valdi-render/scenepipe/pkg/displaylist"
	"github.com/valdi-render/scenepipe/pkg/drawcontext"
	"github.com/valdi-render/scenepipe/pkg/geometry"
)

// MaskPositioning controls where a layer's PrepareMask op lands relative
// to its cached background and content pictures.
type MaskPositioning int

const (
	// MaskBelowBackground emits PrepareMask before the background picture.
	MaskBelowBackground MaskPositioning = iota
	// MaskAboveBackground emits PrepareMask between the background and
	// content pictures.
	MaskAboveBackground
)

// touchExtent extends a layer's hit-test rect beyond its own frame on
// each side, letting small controls expose a larger tap target.
type touchExtent struct {
	Left, Top, Right, Bottom float64
}

// DrawMetrics accumulates counters across one Draw traversal and carries
// context a subclass's onDraw hook needs but a Layer doesn't otherwise
// track, such as the device pixel scale an ExternalLayer's fast path
// rasterizes at.
type DrawMetrics struct {
	VisitedLayers int
	Scale         float64
}

// Layer is a retained scene-graph node. It owns display attributes,
// children, an optional mask bearer, and cached drawn content; Draw walks
// the subtree and emits display-list operations.
type Layer struct {
	// Frame is the layer's parent-relative rect.
	Frame geometry.Rect

	// BackgroundColor fills the layer bounds when no gradient is set.
	BackgroundColor geometry.Color
	// BackgroundGradient overrides BackgroundColor when non-nil.
	BackgroundGradient *geometry.Gradient

	BorderColor  geometry.Color
	BorderWidth  float64
	BorderRadius geometry.BorderRadius

	// Opacity in [0,1]; 0 hides the subtree entirely (it is not visited
	// during Draw).
	Opacity float64

	TranslationX, TranslationY float64
	ScaleX, ScaleY             float64
	Rotation                   float64 // degrees, applied post-translate about the scaled center

	ClipsToBounds bool

	Shadow *geometry.BoxShadow

	Mask           MaskProvider
	MaskPositioning MaskPositioning

	RightToLeft bool
	DebugID     string

	TouchEnabled bool
	touchExtent  touchExtent

	AttachedData any

	parent   *Layer
	children []*Layer
	root     Root
	layerID  uint64

	matrix      geometry.Matrix
	matrixDirty bool

	needsDisplay      bool
	childNeedsDisplay bool
	needsLayout       bool
	childNeedsLayout  bool
	visualFrameDirty  bool

	backgroundContent canvas.LayerContent
	contentContent    canvas.LayerContent
	foregroundContent canvas.LayerContent

	recorderFactory func() canvas.PictureRecorder

	backgroundPath drawcontext.LazyPath
	shadowPath     drawcontext.LazyPath
	foregroundPath drawcontext.LazyPath

	onDraw   func(dc *drawcontext.DrawingContext, scale float64)
	onLayout func()

	animations map[string]animationEntry
}

// MaskProvider builds an opaque canvas.Mask from the bounds of the layer
// wearing it; MaskLayer is the built-in implementation, a retained
// mask-bearer subtree.
type MaskProvider interface {
	BuildMask(bounds geometry.Rect) canvas.Mask
}

// New creates a layer with identity scale, full opacity, and no frame.
// recorderFactory produces a fresh canvas.PictureRecorder for each
// drawing-context recording; tests and demos supply one backed by
// pkg/fakebackend or an equivalent real backend.
func New(recorderFactory func() canvas.PictureRecorder) *Layer {
	return &Layer{
		Opacity:         1,
		ScaleX:          1,
		ScaleY:          1,
		TouchEnabled:    true,
		matrixDirty:     true,
		needsDisplay:    true,
		recorderFactory: recorderFactory,
	}
}

// Parent returns the layer's parent, or nil for a root or detached layer.
func (l *Layer) Parent() *Layer { return l.parent }

// Children returns the layer's children in draw order. The returned slice
// must not be mutated by the caller.
func (l *Layer) Children() []*Layer { return l.children }

// LayerID returns the stable id assigned by the root the first time this
// layer was drawn while attached, or 0 if it has never been drawn
// attached.
func (l *Layer) LayerID() uint64 { return l.layerID }

// SetRoot attaches (or detaches, with nil) the layer and its subtree to
// root. A layer reattached to a new root will be assigned a fresh
// layerID the next time it is drawn; damage resolution against the
// previous root's layerID will then treat it as removed and re-added.
func (l *Layer) SetRoot(root Root) {
	l.root = root
	l.layerID = 0
	for _, c := range l.children {
		c.SetRoot(root)
	}
}

// SetExtendedTouchArea extends the hit-test rect beyond the frame on each
// side.
func (l *Layer) SetExtendedTouchArea(left, top, right, bottom float64) {
	l.touchExtent = touchExtent{Left: left, Top: top, Right: right, Bottom: bottom}
}

// AddChild appends child to the end of the children list.
func (l *Layer) AddChild(child *Layer) {
	l.InsertChild(len(l.children), child)
}

// InsertChild inserts child at index, which must be in [0, len(children)].
func (l *Layer) InsertChild(index int, child *Layer) {
	if index < 0 || index > len(l.children) {
		panic("layer: InsertChild index out of range")
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = l
	child.SetRoot(l.root)
	l.children = append(l.children, nil)
	copy(l.children[index+1:], l.children[index:])
	l.children[index] = child
	l.childNeedsDisplay = true
	l.propagateChildNeedsDisplay()
}

// RemoveChild detaches child from l, if it is currently a child.
func (l *Layer) RemoveChild(child *Layer) {
	for i, c := range l.children {
		if c == child {
			l.children = append(l.children[:i], l.children[i+1:]...)
			child.parent = nil
			child.SetRoot(nil)
			l.childNeedsDisplay = false
			return
		}
	}
}

// SetNeedsDisplay marks the layer for a content redraw on the next Draw:
// cached content and foreground pictures are invalidated (the background
// survives, since its inputs are explicit fields rather than onDraw
// output), and childNeedsDisplay propagates up the ancestor chain,
// stopping at an ancestor that already has it set.
func (l *Layer) SetNeedsDisplay() {
	l.needsDisplay = true
	l.contentContent = canvas.LayerContent{}
	l.foregroundContent = canvas.LayerContent{}
	l.foregroundPath.SetNeedsUpdate()
	l.propagateChildNeedsDisplay()
}

func (l *Layer) propagateChildNeedsDisplay() {
	for p := l.parent; p != nil; p = p.parent {
		if p.childNeedsDisplay {
			return
		}
		p.childNeedsDisplay = true
	}
}

// SetOpacity updates the layer's opacity. A transition across the 0
// boundary forces needsDisplay and a forced upward propagation even if an
// ancestor already reports childNeedsDisplay, because an invisible
// subtree is skipped entirely during Draw and may have left the ancestor
// chain stale.
func (l *Layer) SetOpacity(opacity float64) {
	wasVisible := l.Opacity > 0
	nowVisible := opacity > 0
	l.Opacity = opacity
	if wasVisible != nowVisible {
		l.needsDisplay = true
		for p := l.parent; p != nil; p = p.parent {
			p.childNeedsDisplay = true
		}
		return
	}
	l.SetNeedsDisplay()
}

// SetFrame updates the layer's frame and marks its transform and visual
// frame dirty.
func (l *Layer) SetFrame(frame geometry.Rect) {
	l.Frame = frame
	l.matrixDirty = true
	l.visualFrameDirty = true
	l.backgroundPath.SetNeedsUpdate()
	l.shadowPath.SetNeedsUpdate()
	l.foregroundPath.SetNeedsUpdate()
	l.SetNeedsDisplay()
}

// SetTranslation updates the layer's translation and marks its transform dirty.
func (l *Layer) SetTranslation(x, y float64) {
	l.TranslationX, l.TranslationY = x, y
	l.matrixDirty = true
}

// SetScale updates the layer's scale and marks its transform dirty.
func (l *Layer) SetScale(x, y float64) {
	l.ScaleX, l.ScaleY = x, y
	l.matrixDirty = true
}

// SetRotation updates the layer's rotation (degrees) and marks its
// transform dirty.
func (l *Layer) SetRotation(degrees float64) {
	l.Rotation = degrees
	l.matrixDirty = true
}

// Matrix returns the layer's current local-to-parent transform, rebuilding
// it first if dirty.
func (l *Layer) Matrix() geometry.Matrix {
	if l.matrixDirty {
		l.rebuildMatrix()
	}
	return l.matrix
}

// rebuildMatrix derives the local-to-parent matrix from (frame,
// translation, scale, rotation): translation folds into matrix
// translation, scale is centered on the unscaled center, and rotation
// post-composes a rotation about that same (scale-invariant) center.
func (l *Layer) rebuildMatrix() {
	center := geometry.Offset{X: l.Frame.Width() / 2, Y: l.Frame.Height() / 2}
	scaleM := geometry.MakeTranslate(center.X, center.Y).
		Multiply(geometry.MakeScale(l.ScaleX, l.ScaleY)).
		Multiply(geometry.MakeTranslate(-center.X, -center.Y))
	base := geometry.MakeTranslate(l.Frame.Left+l.TranslationX, l.Frame.Top+l.TranslationY)
	m := base.Multiply(scaleM)
	if l.Rotation != 0 {
		radians := l.Rotation * math.Pi / 180
		pivotX := l.Frame.Left + l.TranslationX + center.X
		pivotY := l.Frame.Top + l.TranslationY + center.Y
		m = m.PostRotate(radians, pivotX, pivotY)
	}
	l.matrix = m
	l.matrixDirty = false
}

// hasOverlappingRendering decides whether the layer's subtree can overlap
// itself when composited with non-1 opacity; the default is "has
// children", matching the default the layer-opacity split optimization
// assumes absent an explicit per-subclass override.
func (l *Layer) hasOverlappingRendering() bool {
	return len(l.children) > 0
}

// Draw walks the layer and its subtree, emitting ops into dl. A layer
// with Opacity <= 0 (and its descendants) is skipped entirely.
func (l *Layer) Draw(dl *displaylist.DisplayList, metrics *DrawMetrics) {
	if l.Opacity <= 0 {
		return
	}
	metrics.VisitedLayers++

	if l.matrixDirty {
		l.rebuildMatrix()
	}

	contextOpacity, pictureOpacity := 1.0, l.Opacity
	if l.Opacity != 1 && l.hasOverlappingRendering() {
		contextOpacity, pictureOpacity = l.Opacity, 1.0
	}

	if l.root != nil && l.layerID == 0 {
		l.layerID = l.root.AllocateLayerID()
	}

	dl.PushContext(l.matrix, contextOpacity, l.layerID, l.needsDisplay)

	if l.needsDisplay {
		l.redrawBackground(metrics.Scale)
		l.redrawContent(metrics.Scale)
		l.redrawForeground(metrics.Scale)
	}

	var preparedMask canvas.Mask
	bounds := geometry.RectFromLTWH(0, 0, l.Frame.Width(), l.Frame.Height())
	if l.Mask != nil && l.MaskPositioning == MaskBelowBackground {
		preparedMask = canvas.NewRefCountedMask(l.Mask.BuildMask(bounds))
		dl.AppendPrepareMask(preparedMask)
	}

	dl.AppendLayerContent(l.backgroundContent, pictureOpacity)

	if l.Mask != nil && l.MaskPositioning == MaskAboveBackground {
		preparedMask = canvas.NewRefCountedMask(l.Mask.BuildMask(bounds))
		dl.AppendPrepareMask(preparedMask)
	}

	dl.AppendLayerContent(l.contentContent, pictureOpacity)

	if l.ClipsToBounds {
		dl.AppendClipRound(l.BorderRadius, l.Frame.Width(), l.Frame.Height())
	}

	for _, child := range l.children {
		child.Draw(dl, metrics)
	}

	if preparedMask != nil {
		dl.AppendApplyMask(preparedMask)
	}

	dl.AppendLayerContent(l.foregroundContent, pictureOpacity)

	l.needsDisplay = false
	l.childNeedsDisplay = false

	dl.PopContext()
}

func (l *Layer) newDrawingContext() *drawcontext.DrawingContext {
	return drawcontext.New(l.recorderFactory(), l.Frame.Width(), l.Frame.Height())
}

// redrawBackground records the box shadow (if any), then the gradient or
// flat background color, over the layer bounds with the border radius.
func (l *Layer) redrawBackground(scale float64) {
	dc := l.newDrawingContext()
	bounds := dc.DrawBounds()

	if l.Shadow != nil {
		shadowPaint := geometry.DefaultPaint()
		shadowPaint.Color = l.Shadow.Color
		shadowRect := bounds.Translate(l.Shadow.Offset.X, l.Shadow.Offset.Y)
		shadowRect = geometry.RectFromLTWH(
			shadowRect.Left-l.Shadow.Spread, shadowRect.Top-l.Shadow.Spread,
			shadowRect.Width()+2*l.Shadow.Spread, shadowRect.Height()+2*l.Shadow.Spread,
		)
		dc.DrawPaintInRect(shadowPaint, l.BorderRadius, shadowRect, &l.shadowPath)
	}

	if l.BackgroundGradient.IsValid() {
		paint := geometry.DefaultPaint()
		paint.Shader = l.BackgroundGradient
		dc.DrawPaintInBounds(paint, l.BorderRadius, &l.backgroundPath)
	} else if !l.BackgroundColor.IsTransparent() {
		paint := geometry.DefaultPaint()
		paint.Color = l.BackgroundColor
		dc.DrawPaintInBounds(paint, l.BorderRadius, &l.backgroundPath)
	}

	l.backgroundContent = dc.Finish()
}

func (l *Layer) redrawContent(scale float64) {
	dc := l.newDrawingContext()
	if l.onDraw != nil {
		l.onDraw(dc, scale)
	}
	l.contentContent = dc.Finish()
}

// redrawForeground records the border stroke, if any, as an outline over
// the border radius.
func (l *Layer) redrawForeground(scale float64) {
	if l.BorderWidth <= 0 || l.BorderColor.IsTransparent() {
		l.foregroundContent = canvas.LayerContent{}
		return
	}
	dc := l.newDrawingContext()
	paint := geometry.DefaultPaint()
	paint.Color = l.BorderColor
	paint.Style = geometry.PaintStyleStroke
	paint.StrokeWidth = l.BorderWidth
	inset := l.BorderWidth / 2
	bounds := dc.DrawBounds()
	strokeRect := geometry.RectFromLTWH(bounds.Left+inset, bounds.Top+inset, bounds.Width()-l.BorderWidth, bounds.Height()-l.BorderWidth)
	dc.DrawPaintInRect(paint, l.BorderRadius, strokeRect, &l.foregroundPath)
	l.foregroundContent = dc.Finish()
}

// LayoutIfNeeded calls the subclass onLayout hook (via SetLayoutHandler)
// when this layer's layout is dirty, then recurses into every child.
func (l *Layer) LayoutIfNeeded() {
	if l.needsLayout {
		if l.onLayout != nil {
			l.onLayout()
		}
		l.needsLayout = false
	}
	if l.childNeedsLayout {
		for _, c := range l.children {
			c.LayoutIfNeeded()
		}
		l.childNeedsLayout = false
	}
}

// SetNeedsLayout marks the layer dirty for layout and propagates
// childNeedsLayout up the ancestor chain, stopping at an already-set one.
func (l *Layer) SetNeedsLayout() {
	l.needsLayout = true
	for p := l.parent; p != nil; p = p.parent {
		if p.childNeedsLayout {
			return
		}
		p.childNeedsLayout = true
	}
}

// SetLayoutHandler installs the callback LayoutIfNeeded invokes when this
// layer's layout is dirty.
func (l *Layer) SetLayoutHandler(onLayout func()) { l.onLayout = onLayout }

// SetDrawHandler installs the subclass content hook Draw invokes while
// redrawing a dirty layer. ShapeLayer and ExternalLayer install theirs in
// their constructors; a plain Layer's default is a no-op.
func (l *Layer) SetDrawHandler(onDraw func(dc *drawcontext.DrawingContext, scale float64)) {
	l.onDraw = onDraw
}
