package world

import "github.com/jakecoffman/cp/v2"

// PinSet holds the zero-length pivots that hold a piece in place: two near
// the top corners and one at the center. Only two shapes are reachable from
// a full set: the center pin alone, or nothing.
type PinSet struct {
	anchor cp.Vector
	top    [2]*cp.Constraint
	center *cp.Constraint
}

// installPins pins body at its current position and rotation. Each pin joins
// a fixed world point to the body-local point it currently overlaps.
func installPins(space *cp.Space, body *cp.Body, w, h float64) *PinSet {
	offsets := [3]cp.Vector{
		{X: -w / 3, Y: -h / 3},
		{X: w / 3, Y: -h / 3},
		{},
	}
	var joints [3]*cp.Constraint
	for i, local := range offsets {
		joints[i] = space.AddConstraint(cp.NewPivotJoint2(space.StaticBody, body, body.LocalToWorld(local), local))
	}
	return &PinSet{
		anchor: body.Position(),
		top:    [2]*cp.Constraint{joints[0], joints[1]},
		center: joints[2],
	}
}

// Anchor is the world point the center pin was installed at.
func (s *PinSet) Anchor() cp.Vector {
	return s.anchor
}

// Active counts the pins still in place.
func (s *PinSet) Active() int {
	n := 0
	for _, c := range s.top {
		if c != nil {
			n++
		}
	}
	if s.center != nil {
		n++
	}
	return n
}

// dropTop leaves the piece hanging from its center pin.
func (s *PinSet) dropTop(space *cp.Space) bool {
	if s.top[0] == nil && s.top[1] == nil {
		return false
	}
	for i, c := range s.top {
		removeConstraint(space, c)
		s.top[i] = nil
	}
	return true
}

// dropCenter frees the piece. It refuses while the top pins are still in
// place, since that would leave two pins behind.
func (s *PinSet) dropCenter(space *cp.Space) bool {
	if s.center == nil || s.top[0] != nil || s.top[1] != nil {
		return false
	}
	removeConstraint(space, s.center)
	s.center = nil
	return true
}

func (s *PinSet) removeAll(space *cp.Space) {
	s.dropTop(space)
	s.dropCenter(space)
}

func removeConstraint(space *cp.Space, c *cp.Constraint) {
	if c != nil && space.ContainsConstraint(c) {
		space.RemoveConstraint(c)
	}
}
