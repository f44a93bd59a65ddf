package cache

import (
	"context"
	"sync"
	"time"

	"github.com/stretchops/insight/pkg/metrics"
)

// record wraps an Entry with bookkeeping the store keeps private.
type record struct {
	entry   Entry
	touched time.Time
}

// MemStore implements Store with a mutex-guarded map. Reads update the
// touched timestamp so the sweeper only evicts entries no view has looked
// at recently.
type MemStore struct {
	mu      sync.RWMutex
	entries map[string]*record
	clock   func() time.Time
}

// NewMemStore creates an empty in-memory store with configuration options.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		entries: make(map[string]*record),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the entry for key, if any.
func (s *MemStore) Get(ctx context.Context, key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.entries[key]
	if !ok {
		metrics.RecordCacheMiss()
		return Entry{}, false
	}
	rec.touched = s.clock()
	metrics.RecordCacheHit()
	return rec.entry, true
}

// MarkPending transitions key to pending; returns false if already pending.
func (s *MemStore) MarkPending(ctx context.Context, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	rec, ok := s.entries[key]
	if !ok {
		s.entries[key] = &record{
			entry:   Entry{Key: key, Status: StatusPending},
			touched: now,
		}
		s.updateGauge()
		return true
	}
	if rec.entry.Status == StatusPending {
		return false
	}
	rec.entry.Status = StatusPending
	rec.touched = now
	return true
}

// Complete stores a successful result for key.
func (s *MemStore) Complete(ctx context.Context, key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	s.entries[key] = &record{
		entry: Entry{
			Key:       key,
			Status:    StatusSuccess,
			Value:     value,
			FetchedAt: now,
		},
		touched: now,
	}
	s.updateGauge()
}

// Fail stores a fetch error for key.
func (s *MemStore) Fail(ctx context.Context, key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	s.entries[key] = &record{
		entry: Entry{
			Key:       key,
			Status:    StatusError,
			Err:       err,
			FetchedAt: now,
		},
		touched: now,
	}
	s.updateGauge()
}

// Drop removes key unless its fetch is in flight.
func (s *MemStore) Drop(ctx context.Context, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.entries[key]
	if !ok {
		return true
	}
	if rec.entry.Status == StatusPending {
		return false
	}
	delete(s.entries, key)
	s.updateGauge()
	return true
}

// Sweep evicts non-pending entries untouched for longer than maxAge.
func (s *MemStore) Sweep(ctx context.Context, maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	evicted := 0
	for key, rec := range s.entries {
		if rec.entry.Status == StatusPending {
			continue
		}
		if now.Sub(rec.touched) > maxAge {
			delete(s.entries, key)
			evicted++
			metrics.RecordCacheEviction()
		}
	}
	if evicted > 0 {
		s.updateGauge()
	}
	return evicted
}

// Len returns the current number of entries.
func (s *MemStore) Len(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// StatusCounts returns the number of entries per status.
func (s *MemStore) StatusCounts(ctx context.Context) map[Status]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[Status]int)
	for _, rec := range s.entries {
		counts[rec.entry.Status]++
	}
	return counts
}

// updateGauge must be called with s.mu held.
func (s *MemStore) updateGauge() {
	metrics.UpdateCacheEntries(len(s.entries))
}
