// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package services

import (
	"context"
	"time"

	"github.com/tomtom215/cohortbox/internal/logging"
)

// GarbageCollector reclaims storage space. Satisfied by *storage.BadgerStore.
type GarbageCollector interface {
	RunGC(ctx context.Context) error
}

// StorageGCService runs value log garbage collection on a fixed interval.
// A failed run is logged and retried on the next tick; it never restarts
// the service.
type StorageGCService struct {
	gc       GarbageCollector
	interval time.Duration
	name     string
}

// NewStorageGCService creates the service. interval must be positive.
func NewStorageGCService(gc GarbageCollector, interval time.Duration) *StorageGCService {
	return &StorageGCService{gc: gc, interval: interval, name: "storage-gc"}
}

// Serve implements suture.Service.
func (s *StorageGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := s.gc.RunGC(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logging.Warn().Err(err).Str("service", s.name).Msg("Storage GC failed")
				continue
			}
			logging.Debug().Dur("duration", time.Since(start)).Msg("Storage GC completed")
		}
	}
}

func (s *StorageGCService) String() string {
	return s.name
}
