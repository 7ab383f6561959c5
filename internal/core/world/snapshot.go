package world

// Pose is a piece's center and rotation in radians.
type Pose struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Angle float64 `json:"angle"`
}

// Snapshot maps piece id to its current pose.
type Snapshot map[string]Pose

// Snapshot collects the pose of every live piece body.
func (w *World) Snapshot() Snapshot {
	out := make(Snapshot, len(w.pieces))
	if w.space == nil {
		return out
	}
	for _, p := range w.pieces {
		if p.body == nil || !w.space.ContainsBody(p.body) {
			continue
		}
		pos := p.body.Position()
		out[p.spec.ID] = Pose{X: pos.X, Y: pos.Y, Angle: p.body.Angle()}
	}
	return out
}

func (w *World) broadcast() {
	w.listener.PositionsUpdated(w.Snapshot())
}
