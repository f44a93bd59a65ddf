// Package cache defines the keyed store for stage query results and its
// staleness policy.
//
// The store is the one shared mutable resource in the pipeline: written only
// by the resolver's fetch start/finish path, read by everything else.
// Entries are immutable snapshots once handed out; a different key's data
// can never overwrite an existing entry.
package cache

import (
	"context"
	"time"
)

// Status is the lifecycle state of one cache entry.
type Status string

// Entry lifecycle states.
const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Entry is one cached stage result.
type Entry struct {
	Key       string
	Status    Status
	Value     any
	Err       error
	FetchedAt time.Time
}

// Fresh reports whether the entry is a success younger than window.
func (e Entry) Fresh(now time.Time, window time.Duration) bool {
	return e.Status == StatusSuccess && now.Sub(e.FetchedAt) < window
}

// Store provides keyed access to stage results.
type Store interface {
	// Get returns the entry for key, if any.
	Get(ctx context.Context, key string) (Entry, bool)

	// MarkPending transitions key to pending and returns true, or returns
	// false if a fetch for key is already in flight.
	MarkPending(ctx context.Context, key string) bool

	// Complete stores a successful result for key.
	Complete(ctx context.Context, key string, value any)

	// Fail stores a fetch error for key. The error is local to this entry.
	Fail(ctx context.Context, key string, err error)

	// Drop removes key unless its fetch is in flight. Used by retry to force
	// a re-fetch of the current key.
	Drop(ctx context.Context, key string) bool

	// Sweep evicts entries untouched for longer than maxAge, never evicting
	// a pending entry out from under an in-flight request. Returns the
	// number of evicted entries.
	Sweep(ctx context.Context, maxAge time.Duration) int

	// Len returns the current number of entries.
	Len(ctx context.Context) int

	// StatusCounts returns the number of entries per status.
	StatusCounts(ctx context.Context) map[Status]int
}
