/*
Package cache provides the canonical-snapshot cache.

PURPOSE:
  The canonical transaction table is rebuilt from the source at most once
  per TTL and shared by every request in between. This service owns that
  lifecycle: it holds the current immutable snapshot and its refresh time,
  and replaces the snapshot wholesale.

GUARANTEES:
  - Atomic swap: readers either see the previous complete snapshot or the
    new complete snapshot, never a half-built table. Replacement is a single
    pointer store; snapshots are never mutated in place.
  - Single flight: the refresh mutex ensures only one caller runs the fetch;
    concurrent callers block and then reuse the fresh snapshot.
  - Stale fallback: when a refresh fails and a previous snapshot exists, the
    stale snapshot keeps being served instead of surfacing the error.

SEE ALSO:
  - engine/preprocess.go: builds the table a snapshot carries
*/
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vetwell/billing-engine/engine"
)

// Snapshot is one immutable build of the canonical table.
type Snapshot struct {
	Table     []engine.Transaction
	Columns   engine.ColumnSet
	FetchedAt time.Time
}

// FetchFunc builds a fresh snapshot from the source.
type FetchFunc func(ctx context.Context) (*Snapshot, error)

// Service owns the current snapshot and its refresh cycle.
type Service struct {
	mu   sync.Mutex // serializes refreshes (single flight)
	snap atomic.Pointer[Snapshot]
}

// NewService creates an empty cache service; the first GetOrRefresh fetches.
func NewService() *Service {
	return &Service{}
}

// GetOrRefresh returns the current snapshot, refreshing it first when it is
// missing or older than ttl. A failed refresh returns the stale snapshot
// when one exists, otherwise the error.
func (s *Service) GetOrRefresh(ctx context.Context, ttl time.Duration, fetch FetchFunc) (*Snapshot, error) {
	if snap := s.snap.Load(); snap != nil && time.Since(snap.FetchedAt) < ttl {
		return snap, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	if snap := s.snap.Load(); snap != nil && time.Since(snap.FetchedAt) < ttl {
		return snap, nil
	}

	fresh, err := fetch(ctx)
	if err != nil {
		if snap := s.snap.Load(); snap != nil {
			return snap, nil
		}
		return nil, err
	}
	if fresh.FetchedAt.IsZero() {
		fresh.FetchedAt = time.Now()
	}
	s.snap.Store(fresh)
	return fresh, nil
}

// Current returns the snapshot without refreshing; nil when none exists.
func (s *Service) Current() *Snapshot {
	return s.snap.Load()
}

// Invalidate drops the current snapshot so the next call refreshes.
func (s *Service) Invalidate() {
	s.snap.Store(nil)
}
