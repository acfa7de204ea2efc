// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

/*
Package cache provides thread-safe in-memory caching with TTL support.

# Overview

Cache[V] is a generic key/value cache:
  - Thread-safe concurrent access (sync.RWMutex)
  - Per-entry time-to-live with lazy expiration on Get
  - Optional Prune to drop expired entries nobody reads anymore
  - Hit, miss and eviction statistics
  - Injectable clock (NewWithClock) for deterministic tests

ParticipantCache builds on Cache to answer "is user X a participant of chat
Y" without a storage read per message:
  - Entries are keyed by normalized chat ID
  - A set is reused until its TTL (default 60s) elapses
  - A missing chat returns found=false and is not cached
  - Concurrent misses for one chat share a single storage read (singleflight)
  - Invalidate drops an entry when the participant list changes

Staleness is bounded by the TTL: a participant removed in storage may keep
passing membership checks until the entry expires or is invalidated.

# Usage

	pc := cache.NewParticipantCache(store, cfg.Realtime.ParticipantCacheTTL)
	ok, err := pc.IsParticipant(ctx, chatID, userID)
*/
package cache
