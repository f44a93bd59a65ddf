package cache

import "errors"

// Sentinel kinds for cache errors.
var (
	ErrFetchFailed = errors.New("stage fetch failed")
)
