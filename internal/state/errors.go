package state

import "errors"

var (
	ErrUnknownKind    = errors.New("unknown shape kind")
	ErrInvalidZoom    = errors.New("zoom range must contain level 0")
	ErrUnknownVersion = errors.New("unsupported document version")
)
