package session

import "errors"

var (
	ErrUnknownColumn    = errors.New("unknown column")
	ErrUnknownRow       = errors.New("unknown row")
	ErrUnknownCell      = errors.New("unknown cell")
	ErrUnknownView      = errors.New("unknown view")
	ErrUnknownCondition = errors.New("unknown filter, sort or group")
	ErrInvalidOperator  = errors.New("invalid filter operator")
	ErrInvalidOrder     = errors.New("invalid sort order")
	ErrInvalidType      = errors.New("invalid column type")
	ErrSessionClosed    = errors.New("session closed")
)
