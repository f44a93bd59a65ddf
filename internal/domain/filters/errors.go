package filters

import "errors"

// Sentinel kinds for filter validation errors. All of them mean the intent
// was rejected and the prior state kept.
var (
	ErrInvalidDimension = errors.New("invalid dimension")
	ErrInvalidDuration  = errors.New("invalid duration")
	ErrInvalidRange     = errors.New("invalid custom range")
	ErrInvalidValue     = errors.New("invalid filter value")
)
