package world

// Listener receives the engine's outputs. Calls arrive on the goroutine that
// drives the World and must not call back into it.
type Listener interface {
	// PositionsUpdated is called after every step.
	PositionsUpdated(snapshot Snapshot)
	// PieceSnapped is called when a released piece returns to its origin.
	PieceSnapped(pieceID string)
	// DragStarted is called when the pointer picks a piece up.
	DragStarted(pieceID string)
	// PiecePinned is called when the player pins the dragged piece in place.
	PiecePinned(pieceID string)
}

// NopListener ignores everything.
type NopListener struct{}

func (NopListener) PositionsUpdated(Snapshot) {}
func (NopListener) PieceSnapped(string)       {}
func (NopListener) DragStarted(string)        {}
func (NopListener) PiecePinned(string)        {}

type multiListener []Listener

// Listeners fans every call out to ls in order. Nil entries are dropped.
func Listeners(ls ...Listener) Listener {
	out := make(multiListener, 0, len(ls))
	for _, l := range ls {
		if l != nil {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return NopListener{}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

func (m multiListener) PositionsUpdated(s Snapshot) {
	for _, l := range m {
		l.PositionsUpdated(s)
	}
}

func (m multiListener) PieceSnapped(id string) {
	for _, l := range m {
		l.PieceSnapped(id)
	}
}

func (m multiListener) DragStarted(id string) {
	for _, l := range m {
		l.DragStarted(id)
	}
}

func (m multiListener) PiecePinned(id string) {
	for _, l := range m {
		l.PiecePinned(id)
	}
}
