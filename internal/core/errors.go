package core

import "errors"

var (
	ErrUnknownColumn      = errors.New("unknown column")
	ErrInvalidDirection   = errors.New("invalid sort direction")
	ErrInvalidHeaderState = errors.New("invalid header state")
)
