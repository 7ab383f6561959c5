package world

import (
	"github.com/jakecoffman/cp/v2"

	"github.com/zeusync/shatter/internal/core/observability/log"
)

// trySnap returns p to its origin when it was dropped within the snap
// threshold. The piece comes to rest upright, is pinned afresh and loses its
// repulsion field.
func (w *World) trySnap(p *piece) bool {
	if p.body == nil {
		return false
	}
	distance := p.body.Position().Distance(p.origin)
	if distance >= w.cfg.Snap.Threshold {
		w.logger.Debug("Piece dropped",
			log.Piece(p.spec.ID),
			log.Float64("distance", distance))
		return false
	}

	p.body.SetAngle(0)
	p.body.SetPosition(p.origin)
	p.body.SetVelocity(0, 0)
	p.body.SetAngularVelocity(0)
	p.body.SetForce(cp.Vector{})
	p.body.SetTorque(0)
	p.repin(w.space)
	w.removeField(p)
	p.moved = false

	w.logger.Debug("Piece snapped",
		log.Piece(p.spec.ID),
		log.Float64("distance", distance))
	w.listener.PieceSnapped(p.spec.ID)
	return true
}
