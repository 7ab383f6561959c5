package world

import (
	"math/rand"
	"time"

	"github.com/jakecoffman/cp/v2"

	"github.com/zeusync/shatter/internal/core/observability/log"
)

// Break shatters the level. Pieces go in reverse declaration order, one
// every Stagger: first the top pins let go and the piece swings from its
// center, then after Hold the center pin goes too and the piece gets a kick.
// Pieces that are not fully pinned are skipped but still take their slot.
//
// Break works once per Initialize. It returns the number of pieces scheduled.
func (w *World) Break() int {
	if w.space == nil {
		return 0
	}
	if w.broken {
		w.logger.Debug("Break ignored, level already broken")
		return 0
	}
	w.broken = true

	base := w.tasks.Now()
	scheduled := 0
	for i, order := len(w.pieces)-1, 0; i >= 0; i, order = i-1, order+1 {
		p := w.pieces[i]
		if p.body == nil || p.pinCount() < 3 {
			w.logger.Debug("Break skipped piece",
				log.Piece(p.spec.ID),
				log.Int("pins", p.pinCount()))
			continue
		}
		start := base + time.Duration(order)*w.cfg.Break.Stagger
		w.scheduleBreak(p, start, start+w.cfg.Break.Hold)
		scheduled++
	}

	w.logger.Info("Break triggered",
		log.Int("pieces", len(w.pieces)),
		log.Int("scheduled", scheduled))
	return scheduled
}

func (w *World) scheduleBreak(p *piece, unpinAt, releaseAt time.Duration) {
	set := p.pins
	id := p.spec.ID

	w.tasks.At("unpin:"+id, unpinAt, func() {
		if p.pins != set || set.Active() != 3 {
			w.logger.Debug("Stale unpin task", log.Piece(id))
			return
		}
		set.dropTop(w.space)

		w.tasks.At("release:"+id, releaseAt, func() {
			if p.pins != set || set.Active() != 1 || p.body == nil {
				w.logger.Debug("Stale release task", log.Piece(id))
				return
			}
			set.dropCenter(w.space)
			p.pins = nil
			w.kick(p)
		})
	})
}

func (w *World) kick(p *piece) {
	multiplier := 1.0
	if _, ok := w.modal[p.spec.ID]; ok {
		multiplier = 0
	}
	impulse, point := breakImpulse(w.rng, w.cfg.Break, p.body.Mass(), p.body.Position(), multiplier)
	p.kick = impulse
	if impulse.X != 0 || impulse.Y != 0 {
		p.body.ApplyImpulseAtWorldPoint(impulse, point)
	}
}

// breakImpulse returns the kick a released piece receives and where it lands.
// The impulse changes the velocity by a random horizontal amount within
// ±KickX/2 and by KickY upward, scaled by multiplier.
func breakImpulse(r *rand.Rand, cfg BreakConfig, mass float64, pos cp.Vector, multiplier float64) (impulse, point cp.Vector) {
	horizontal := (r.Float64() - 0.5) * cfg.KickX
	spread := (r.Float64() - 0.5) * cfg.PointSpread

	impulse = cp.Vector{
		X: mass * horizontal * multiplier,
		Y: -mass * cfg.KickY * multiplier,
	}
	point = pos.Add(cp.Vector{X: spread, Y: -cfg.PointLift})
	return impulse, point
}
