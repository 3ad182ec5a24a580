package core

import (
	"errors"
)

var (
	ErrAllocationFailed = errors.New("buffer allocation failed")
	ErrBufferDiscarded  = errors.New("buffer has been discarded")
	ErrOutOfBounds      = errors.New("index out of bounds")
	ErrTypeMismatch     = errors.New("attribute type mismatch")
	ErrUnknownBackend   = errors.New("unknown buffer backend")
	ErrInvalidMesh      = errors.New("invalid mesh")
	ErrInvalidConfig    = errors.New("invalid configuration")
)
