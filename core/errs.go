package core

import "errors"

var (
	ErrPriceUnavailable = errors.New("price unavailable")
	ErrInvalidNumber    = errors.New("invalid number")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrUnknownThreshold = errors.New("unknown threshold kind")
)
