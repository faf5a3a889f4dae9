package displaylist

import (
	"encoding/json"
	"fmt"
)

// debugDump is the canonical cross-format representation used by tests to
// assert equality between two display lists regardless of how they were
// constructed.
type debugDump struct {
	FrameTime float64            `json:"frameTime"`
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	Surfaces  [][]map[string]any `json:"surfaces"`
}

type jsonVisitor struct {
	ops []map[string]any
}

func (v *jsonVisitor) VisitPushContext(op PushContext) {
	v.ops = append(v.ops, map[string]any{
		"type":       "pushContext",
		"matrix":     op.Matrix.String(),
		"opacity":    op.Opacity,
		"layerId":    op.LayerID,
		"hasUpdates": op.HasUpdates,
	})
}

func (v *jsonVisitor) VisitPopContext(PopContext) {
	v.ops = append(v.ops, map[string]any{"type": "popContext"})
}

func (v *jsonVisitor) VisitDrawPicture(op DrawPicture) {
	identity := "nil"
	if op.Picture != nil {
		identity = fmt.Sprintf("%p", op.Picture)
	}
	v.ops = append(v.ops, map[string]any{
		"type":    "drawPicture",
		"picture": identity,
		"opacity": op.Opacity,
	})
}

func (v *jsonVisitor) VisitClipRect(op ClipRect) {
	v.ops = append(v.ops, map[string]any{
		"type":   "clipRect",
		"width":  op.Width,
		"height": op.Height,
	})
}

func (v *jsonVisitor) VisitClipRound(op ClipRound) {
	v.ops = append(v.ops, map[string]any{
		"type":   "clipRound",
		"width":  op.Width,
		"height": op.Height,
		"radii": []float64{
			op.BorderRadius.TopLeft, op.BorderRadius.TopRight,
			op.BorderRadius.BottomRight, op.BorderRadius.BottomLeft,
		},
	})
}

func (v *jsonVisitor) VisitDrawExternalSurface(op DrawExternalSurface) {
	desc := "nil"
	if op.Snapshot != nil {
		desc = fmt.Sprintf("%p", op.Snapshot)
	}
	v.ops = append(v.ops, map[string]any{
		"type":     "drawExternalSurface",
		"snapshot": desc,
		"opacity":  op.Opacity,
	})
}

func (v *jsonVisitor) VisitPrepareMask(op PrepareMask) {
	desc := ""
	if op.Mask != nil {
		desc = op.Mask.Description()
	}
	v.ops = append(v.ops, map[string]any{"type": "prepareMask", "mask": desc})
}

func (v *jsonVisitor) VisitApplyMask(op ApplyMask) {
	desc := ""
	if op.Mask != nil {
		desc = op.Mask.Description()
	}
	v.ops = append(v.ops, map[string]any{"type": "applyMask", "mask": desc})
}

// DebugJSON renders the display list as the canonical JSON shape
// { frameTime, width, height, surfaces: [[op, ...], ...] } used as the
// cross-format equality check in tests.
func (d *DisplayList) DebugJSON(frameTime float64) ([]byte, error) {
	dump := debugDump{FrameTime: frameTime, Width: d.Width, Height: d.Height}
	for _, p := range d.planes {
		v := &jsonVisitor{}
		for _, op := range p.Ops {
			VisitOp(op, v)
		}
		if v.ops == nil {
			v.ops = []map[string]any{}
		}
		dump.Surfaces = append(dump.Surfaces, v.ops)
	}
	return json.Marshal(dump)
}
