package world

import "errors"

var (
	ErrInvalidConfig   = errors.New("invalid world configuration")
	ErrInvalidViewport = errors.New("viewport width and height must be positive")
	ErrInvalidPiece    = errors.New("invalid piece")
	ErrDuplicatePiece  = errors.New("duplicate piece id")
)
