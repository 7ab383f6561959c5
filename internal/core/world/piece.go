package world

import (
	"github.com/jakecoffman/cp/v2"

	"github.com/zeusync/shatter/internal/core/catalog"
)

// Collision categories.
const (
	categoryPiece uint = 1 << iota
	categoryWall
	categoryField
	categoryGrabbable
)

var (
	pieceFilter = cp.ShapeFilter{Group: cp.NO_GROUP, Categories: categoryPiece | categoryGrabbable, Mask: cp.ALL_CATEGORIES}
	wallFilter  = cp.ShapeFilter{Group: cp.NO_GROUP, Categories: categoryWall, Mask: cp.ALL_CATEGORIES}
	fieldFilter = cp.ShapeFilter{Group: cp.NO_GROUP, Categories: categoryField, Mask: 0}
	grabFilter  = cp.ShapeFilter{Group: cp.NO_GROUP, Categories: categoryGrabbable, Mask: categoryGrabbable}
)

type piece struct {
	spec   catalog.PieceSpec
	origin cp.Vector

	body  *cp.Body
	shape *cp.Shape
	pins  *PinSet

	// field is the repulsion sensor, present after the first drag on
	// repulsion levels until the piece snaps.
	field *cp.Shape
	moved bool

	// kick is the last break impulse applied.
	kick cp.Vector
}

func (w *World) newPiece(spec catalog.PieceSpec) *piece {
	cx, cy := spec.Center()
	p := &piece{
		spec:   spec,
		origin: cp.Vector{X: cx, Y: cy},
	}

	mass := w.cfg.Density * spec.W * spec.H
	body := cp.NewBody(mass, cp.MomentForBox(mass, spec.W, spec.H))
	body.SetPosition(p.origin)
	body.UserData = p

	shape := cp.NewBox(body, spec.W, spec.H, 0)
	shape.SetElasticity(w.cfg.Restitution)
	shape.SetFriction(w.cfg.Friction)
	shape.SetFilter(pieceFilter)
	shape.UserData = p

	w.space.AddBody(body)
	w.space.AddShape(shape)

	p.body = body
	p.shape = shape
	p.pins = installPins(w.space, body, spec.W, spec.H)
	return p
}

// remove takes everything the piece owns out of the space.
func (p *piece) remove(space *cp.Space) {
	if p.pins != nil {
		p.pins.removeAll(space)
		p.pins = nil
	}
	if p.field != nil {
		if space.ContainsShape(p.field) {
			space.RemoveShape(p.field)
		}
		p.field = nil
	}
	if p.shape != nil {
		if space.ContainsShape(p.shape) {
			space.RemoveShape(p.shape)
		}
		p.shape = nil
	}
	if p.body != nil {
		if space.ContainsBody(p.body) {
			space.RemoveBody(p.body)
		}
		p.body.UserData = nil
		p.body = nil
	}
}

func (p *piece) pinCount() int {
	if p.pins == nil {
		return 0
	}
	return p.pins.Active()
}

// repin replaces whatever pins the piece has with a fresh set at the body's
// current placement.
func (p *piece) repin(space *cp.Space) {
	if p.pins != nil {
		p.pins.removeAll(space)
	}
	p.pins = installPins(space, p.body, p.spec.W, p.spec.H)
}
