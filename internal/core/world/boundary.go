package world

import "github.com/jakecoffman/cp/v2"

// Viewport is the visible area. The boundary walls sit just outside it.
type Viewport struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

func (v Viewport) valid() bool {
	return v.Width > 0 && v.Height > 0
}

// addBoundary builds floor, ceiling and side walls as thick static segments
// whose inner faces line up with the viewport edges.
func (w *World) addBoundary() {
	r := w.cfg.WallThickness / 2
	vw, vh := w.viewport.Width, w.viewport.Height
	segments := [][2]cp.Vector{
		{{X: -r, Y: vh + r}, {X: vw + r, Y: vh + r}}, // floor
		{{X: -r, Y: -r}, {X: vw + r, Y: -r}},         // ceiling
		{{X: -r, Y: -r}, {X: -r, Y: vh + r}},         // left
		{{X: vw + r, Y: -r}, {X: vw + r, Y: vh + r}}, // right
	}
	w.walls = w.walls[:0]
	for _, seg := range segments {
		shape := cp.NewSegment(w.space.StaticBody, seg[0], seg[1], r)
		shape.SetElasticity(w.cfg.Restitution)
		shape.SetFriction(1)
		shape.SetFilter(wallFilter)
		w.walls = append(w.walls, w.space.AddShape(shape))
	}
}

func (w *World) removeBoundary() {
	for _, shape := range w.walls {
		if w.space.ContainsShape(shape) {
			w.space.RemoveShape(shape)
		}
	}
	w.walls = nil
}
