package service

import "errors"

// Sentinel kinds for pipeline errors.
var (
	ErrNoGateway    = errors.New("no gateway configured")
	ErrNotStarted   = errors.New("pipeline not started")
	ErrUnknownPanel = errors.New("unknown drilldown panel")
	ErrUnknownStage = errors.New("unknown stage")
	ErrQueueFull    = errors.New("fetch queue full")
)
