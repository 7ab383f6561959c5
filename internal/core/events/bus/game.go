package bus

import (
	"github.com/zeusync/shatter/internal/core/observability/log"
	"github.com/zeusync/shatter/internal/core/world"
)

// Game event types.
const (
	EventPositions = "positions"
	EventSnapped   = "snapped"
	EventDragStart = "drag_start"
	EventPinned    = "pinned"
	EventBroken    = "broken"
	EventComplete  = "complete"
	EventLevel     = "level"
)

// PieceEvent is the payload of snapped, drag_start and pinned events.
type PieceEvent struct {
	Piece string `json:"piece"`
}

// WorldListener republishes a world's callbacks on a topic. Publish errors
// are logged and otherwise dropped: the simulation never waits on consumers.
type WorldListener struct {
	bus    EventBus
	topic  string
	logger log.Log
}

var _ world.Listener = (*WorldListener)(nil)

func NewWorldListener(b EventBus, topic string, logger log.Log) *WorldListener {
	if logger == nil {
		logger = log.Nop()
	}
	return &WorldListener{bus: b, topic: topic, logger: logger}
}

func (l *WorldListener) PositionsUpdated(snapshot world.Snapshot) {
	l.publish(EventPositions, snapshot)
}

func (l *WorldListener) PieceSnapped(pieceID string) {
	l.publish(EventSnapped, PieceEvent{Piece: pieceID})
}

func (l *WorldListener) DragStarted(pieceID string) {
	l.publish(EventDragStart, PieceEvent{Piece: pieceID})
}

func (l *WorldListener) PiecePinned(pieceID string) {
	l.publish(EventPinned, PieceEvent{Piece: pieceID})
}

func (l *WorldListener) publish(typ string, data any) {
	if err := l.bus.Publish(l.topic, NewEvent(typ, l.topic, data)); err != nil {
		l.logger.Warn("Event handler failed",
			log.String("topic", l.topic),
			log.String("event", typ),
			log.Error(err))
	}
}
