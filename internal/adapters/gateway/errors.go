package gateway

import "errors"

// Sentinel kinds for gateway errors.
var (
	ErrUnknownStage = errors.New("unknown stage")
	ErrRequest      = errors.New("backend request failed")
	ErrStatus       = errors.New("backend returned non-2xx status")
	ErrDecode       = errors.New("backend response decode failed")
)
