// Package cache holds the current evaluation table and memoized results.
// Readers always see a complete table: reloads build a new snapshot and
// swap it in atomically.
package cache

import (
	"context"
	"sync/atomic"
	"time"

	"evalboard/domain/core"
	"evalboard/domain/evaluation"
	"evalboard/internal"
	"evalboard/ports"

	"golang.org/x/sync/singleflight"
)

type snapshot struct {
	table    *evaluation.Table
	loadedAt time.Time
}

// TableStore serves the evaluation table, reloading it from the loader once
// the TTL has passed. Concurrent reloads collapse into one.
type TableStore struct {
	loader ports.TableLoader
	ttl    time.Duration
	clock  core.Clock
	logger *internal.Logger

	current atomic.Pointer[snapshot]
	group   singleflight.Group
}

// NewTableStore creates a store; a non-positive ttl never expires
func NewTableStore(loader ports.TableLoader, ttl time.Duration, clock core.Clock) *TableStore {
	if clock == nil {
		clock = core.SystemClock
	}
	return &TableStore{
		loader: loader,
		ttl:    ttl,
		clock:  clock,
		logger: internal.DefaultLogger.With("TableStore"),
	}
}

// Table returns the current table, loading or reloading it when needed. A
// failed reload keeps serving the previous snapshot; without one the error
// is returned.
func (s *TableStore) Table(ctx context.Context) (*evaluation.Table, error) {
	snap := s.current.Load()
	if snap != nil && !s.expired(snap) {
		return snap.table, nil
	}

	v, err, _ := s.group.Do("table", func() (interface{}, error) {
		if latest := s.current.Load(); latest != nil && !s.expired(latest) {
			return latest.table, nil
		}
		table, err := s.loader.LoadTable(ctx)
		if err != nil {
			return nil, err
		}
		s.current.Store(&snapshot{table: table, loadedAt: s.clock()})
		s.logger.Info("loaded table %s (%d rows)", table.Version, len(table.Rows))
		return table, nil
	})
	if err != nil {
		if snap != nil {
			s.logger.Warn("reload failed, serving table %s: %v", snap.table.Version, err)
			return snap.table, nil
		}
		return nil, err
	}
	return v.(*evaluation.Table), nil
}

// Reload loads the table now, ignoring the TTL. Unlike Table, a failed load
// is returned to the caller; the previous snapshot stays in place for later
// reads.
func (s *TableStore) Reload(ctx context.Context) (*evaluation.Table, error) {
	v, err, _ := s.group.Do("reload", func() (interface{}, error) {
		table, err := s.loader.LoadTable(ctx)
		if err != nil {
			return nil, err
		}
		s.current.Store(&snapshot{table: table, loadedAt: s.clock()})
		s.logger.Info("reloaded table %s (%d rows)", table.Version, len(table.Rows))
		return table, nil
	})
	if err != nil {
		if snap := s.current.Load(); snap != nil {
			s.logger.Warn("reload failed, keeping table %s: %v", snap.table.Version, err)
		}
		return nil, err
	}
	return v.(*evaluation.Table), nil
}

func (s *TableStore) expired(snap *snapshot) bool {
	if snap.loadedAt.IsZero() {
		return true
	}
	if s.ttl <= 0 {
		return false
	}
	return s.clock().Sub(snap.loadedAt) >= s.ttl
}
