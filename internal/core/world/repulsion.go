package world

import "github.com/jakecoffman/cp/v2"

// addField places a sensor circle at the piece's origin. It only marks the
// spot: the push comes from applyRepulsion.
func (w *World) addField(p *piece) {
	if p.field != nil {
		return
	}
	shape := cp.NewCircle(w.space.StaticBody, w.cfg.Repulsion.SensorRadius, p.origin)
	shape.SetSensor(true)
	shape.SetFilter(fieldFilter)
	shape.UserData = p
	p.field = w.space.AddShape(shape)
}

func (w *World) removeField(p *piece) {
	if p.field == nil {
		return
	}
	if w.space.ContainsShape(p.field) {
		w.space.RemoveShape(p.field)
	}
	p.field = nil
}

// applyRepulsion pushes every piece away from its own field.
func (w *World) applyRepulsion() {
	if !w.active {
		return
	}
	cfg := w.cfg.Repulsion
	for _, p := range w.pieces {
		if p.field == nil || p.body == nil {
			continue
		}
		pos := p.body.Position()
		force := repulsionForce(pos, p.origin, cfg.Radius, cfg.Strength, p.body.Mass())
		if force.X != 0 || force.Y != 0 {
			p.body.ApplyForceAtWorldPoint(force, pos)
		}
	}
}

// repulsionForce points from center to pos. Its magnitude is
// mass*strength*(radius-d), growing as the piece gets closer; there is no
// force at the center itself or at radius and beyond.
func repulsionForce(pos, center cp.Vector, radius, strength, mass float64) cp.Vector {
	delta := pos.Sub(center)
	d := delta.Length()
	if d <= 0 || d >= radius {
		return cp.Vector{}
	}
	return delta.Mult(mass * strength * (radius - d) / d)
}
