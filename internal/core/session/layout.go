package session

import "github.com/zeusync/shatter/internal/core/world"

// Layout is the record of a finished level, shaped for an external store.
type Layout struct {
	LevelID   int            `json:"level_id"`
	LevelName string         `json:"level_name"`
	Positions world.Snapshot `json:"positions"`
	// CompletionTime is in milliseconds.
	CompletionTime int64 `json:"completion_time"`
}

// Layout exports the completed level. It fails until every piece has snapped.
func (s *Session) Layout() (Layout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usableLocked(); err != nil {
		return Layout{}, err
	}
	if !s.progress.complete {
		return Layout{}, ErrNotComplete
	}
	return Layout{
		LevelID:        s.level.ID,
		LevelName:      s.level.Name,
		Positions:      s.world.Snapshot(),
		CompletionTime: s.progress.doneIn.Milliseconds(),
	}, nil
}
