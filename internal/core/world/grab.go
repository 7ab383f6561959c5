package world

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/jakecoffman/cp/v2"

	"github.com/zeusync/shatter/internal/core/observability/log"
)

// KeySpace pins the dragged piece where it is.
const KeySpace = "Space"

// grabber drags at most one piece. A kinematic body that never joins the
// space chases the pointer on a critically damped spring and pulls the piece
// along through a force-limited pivot.
type grabber struct {
	cfg   GrabConfig
	mouse *cp.Body
	joint *cp.Constraint
	piece *piece

	target cp.Vector
	vel    cp.Vector

	spring harmonica.Spring
	dt     float64
}

func newGrabber(cfg GrabConfig) *grabber {
	return &grabber{
		cfg:   cfg,
		mouse: cp.NewKinematicBody(),
	}
}

func (g *grabber) active() bool {
	return g != nil && g.joint != nil
}

func (g *grabber) attach(space *cp.Space, p *piece, at, grip cp.Vector) {
	g.mouse.SetPosition(at)
	g.mouse.SetVelocity(0, 0)
	g.target = at
	g.vel = cp.Vector{}

	joint := cp.NewPivotJoint2(g.mouse, p.body, cp.Vector{}, p.body.WorldToLocal(grip))
	joint.SetMaxForce(g.cfg.MaxForce)
	joint.SetErrorBias(math.Pow(1-g.cfg.ErrorBias, 60))
	g.joint = space.AddConstraint(joint)
	g.piece = p
}

// release detaches the joint and returns the piece that was held.
func (g *grabber) release(space *cp.Space) *piece {
	if !g.active() {
		return nil
	}
	if space != nil && space.ContainsConstraint(g.joint) {
		space.RemoveConstraint(g.joint)
	}
	p := g.piece
	g.joint = nil
	g.piece = nil
	g.mouse.SetVelocity(0, 0)
	return p
}

// follow moves the grab point one step toward the pointer target.
func (g *grabber) follow(dt float64) {
	if !g.active() || dt <= 0 {
		return
	}
	if dt != g.dt {
		g.spring = harmonica.NewSpring(dt, g.cfg.Frequency, g.cfg.Damping)
		g.dt = dt
	}
	pos := g.mouse.Position()
	x, vx := g.spring.Update(pos.X, g.vel.X, g.target.X)
	y, vy := g.spring.Update(pos.Y, g.vel.Y, g.target.Y)
	g.vel = cp.Vector{X: vx, Y: vy}

	next := cp.Vector{X: x, Y: y}
	g.mouse.SetVelocityVector(next.Sub(pos).Mult(1 / dt))
	g.mouse.SetPosition(next)
}

// PointerDown picks up the piece under at. It fails when a piece is already
// held or nothing grabbable is within reach.
func (w *World) PointerDown(at cp.Vector) (string, bool) {
	if w.space == nil || w.grab.active() {
		return "", false
	}
	info := w.space.PointQueryNearest(at, w.cfg.Grab.PickRadius, grabFilter)
	if info == nil || info.Shape == nil {
		return "", false
	}
	p, ok := info.Shape.UserData.(*piece)
	if !ok || p.body == nil {
		return "", false
	}

	// Grip the surface point when the pointer lands just outside the shape.
	grip := at
	if info.Distance > 0 {
		grip = info.Point
	}
	w.grab.attach(w.space, p, at, grip)

	if !p.moved {
		p.moved = true
		if w.active {
			w.addField(p)
		}
	}

	w.logger.Debug("Drag started", log.Piece(p.spec.ID))
	w.listener.DragStarted(p.spec.ID)
	return p.spec.ID, true
}

// PointerMove sets where the grab point heads on the next steps.
func (w *World) PointerMove(at cp.Vector) {
	if w.space == nil || !w.grab.active() {
		return
	}
	w.grab.target = at
}

// PointerUp drops the held piece and snaps it home when it is close enough.
func (w *World) PointerUp() (string, bool) {
	if w.space == nil {
		return "", false
	}
	p := w.grab.release(w.space)
	if p == nil {
		return "", false
	}
	return p.spec.ID, w.trySnap(p)
}

// PressKey handles a key press. Only KeySpace does anything, and only while
// a piece is held: the piece stops, is pinned at its current placement and
// the drag ends. A pinned piece is not considered snapped.
func (w *World) PressKey(code string) bool {
	if code != KeySpace || w.space == nil || !w.grab.active() {
		return false
	}
	p := w.grab.release(w.space)
	if p == nil || p.body == nil {
		return false
	}
	p.body.SetVelocity(0, 0)
	p.body.SetAngularVelocity(0)
	p.repin(w.space)

	w.logger.Debug("Piece pinned",
		log.Piece(p.spec.ID),
		log.Float64("x", p.body.Position().X),
		log.Float64("y", p.body.Position().Y))
	w.listener.PiecePinned(p.spec.ID)
	return true
}

// Dragging returns the id of the held piece.
func (w *World) Dragging() (string, bool) {
	if w.space == nil || !w.grab.active() {
		return "", false
	}
	return w.grab.piece.spec.ID, true
}
