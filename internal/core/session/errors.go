package session

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid session configuration")
	ErrClosed        = errors.New("session closed")
	ErrNoLevel       = errors.New("no level loaded")
	ErrNotComplete   = errors.New("level not complete")
)
