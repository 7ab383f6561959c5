package catalog

import "errors"

var (
	ErrEmptyPieceID   = errors.New("piece id is empty")
	ErrInvalidSize    = errors.New("piece width and height must be positive")
	ErrDuplicatePiece = errors.New("duplicate piece id")
	ErrInvalidLevel   = errors.New("invalid level")
	ErrUnknownLevel   = errors.New("unknown level")
	ErrNoLevels       = errors.New("no levels defined")
)
