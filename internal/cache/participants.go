// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/cohortbox/internal/metrics"
	"github.com/tomtom215/cohortbox/internal/models"
	"github.com/tomtom215/cohortbox/internal/storage"
)

// DefaultParticipantTTL bounds how stale a cached participant set may be.
const DefaultParticipantTTL = 60 * time.Second

// DefaultLoadTimeout bounds a shared storage load of one chat's participants.
const DefaultLoadTimeout = 5 * time.Second

// ChatLoader is the storage dependency of ParticipantCache.
type ChatLoader interface {
	GetChat(ctx context.Context, chatID string) (*models.Chat, error)
}

// ParticipantSet is an immutable set of participant user IDs.
type ParticipantSet map[string]struct{}

// NewParticipantSet builds a set from IDs, normalizing each one.
func NewParticipantSet(ids []string) ParticipantSet {
	set := make(ParticipantSet, len(ids))
	for _, id := range ids {
		set[NormalizeID(id)] = struct{}{}
	}
	return set
}

// Has reports whether userID is in the set.
func (s ParticipantSet) Has(userID string) bool {
	_, ok := s[NormalizeID(userID)]
	return ok
}

// NormalizeID returns the canonical string form of an ID used for keys and
// membership checks.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// ParticipantCache answers "is user X a participant of chat Y" from memory,
// reloading a chat's participant list from storage at most once per TTL.
//
// A chat that does not exist yields found=false and is never cached, so a
// chat created later is seen on the next lookup. A chat with no participants
// is cached as an empty set.
type ParticipantCache struct {
	entries     *Cache[ParticipantSet]
	loader      ChatLoader
	group       singleflight.Group
	loadTimeout time.Duration
}

// NewParticipantCache creates a cache backed by loader.
func NewParticipantCache(loader ChatLoader, ttl time.Duration) *ParticipantCache {
	return NewParticipantCacheWithClock(loader, ttl, time.Now)
}

// NewParticipantCacheWithClock is NewParticipantCache with an injectable clock.
func NewParticipantCacheWithClock(loader ChatLoader, ttl time.Duration, now func() time.Time) *ParticipantCache {
	if ttl <= 0 {
		ttl = DefaultParticipantTTL
	}
	entries := NewWithClock[ParticipantSet](ttl, now)
	entries.OnEvict(func(_ string, expired bool) {
		reason := "invalidated"
		if expired {
			reason = "expired"
		}
		metrics.ParticipantCacheEvictions.WithLabelValues(reason).Inc()
	})
	return &ParticipantCache{entries: entries, loader: loader, loadTimeout: DefaultLoadTimeout}
}

// SetLoadTimeout sets the deadline of a shared storage load. Must be called
// before the cache is shared.
func (p *ParticipantCache) SetLoadTimeout(d time.Duration) {
	if d > 0 {
		p.loadTimeout = d
	}
}

// Get returns the participant set of chatID. found is false when the chat
// does not exist. err is non-nil only for storage failures; the caller treats
// it like "not authorized" and drops the event.
func (p *ParticipantCache) Get(ctx context.Context, chatID string) (set ParticipantSet, found bool, err error) {
	key := NormalizeID(chatID)

	if set, ok := p.entries.Get(key); ok {
		metrics.ParticipantCacheHits.Inc()
		return set, true, nil
	}
	metrics.ParticipantCacheMisses.Inc()

	// Concurrent misses for the same chat share one storage read. The read
	// runs detached from the caller that started it, so one connection going
	// away does not fail the others waiting on the same chat; each waiter
	// still gives up on its own ctx.
	ch := p.group.DoChan(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.loadTimeout)
		defer cancel()
		chat, err := p.loader.GetChat(loadCtx, key)
		if err != nil {
			return nil, err
		}
		loaded := NewParticipantSet(chat.Participants)
		p.entries.Set(key, loaded)
		return loaded, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, false, fmt.Errorf("load participants of chat %s: %w", key, ctx.Err())
	}
	err = res.Err
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load participants of chat %s: %w", key, err)
	}
	return res.Val.(ParticipantSet), true, nil
}

// IsParticipant is a convenience wrapper over Get. A missing chat or a
// storage failure both report false; the error is returned for logging.
func (p *ParticipantCache) IsParticipant(ctx context.Context, chatID, userID string) (bool, error) {
	set, found, err := p.Get(ctx, chatID)
	if err != nil || !found {
		return false, err
	}
	return set.Has(userID), nil
}

// Invalidate drops the cached set of chatID so the next Get reloads it.
// Called when participants are added or removed.
func (p *ParticipantCache) Invalidate(chatID string) {
	p.entries.Delete(NormalizeID(chatID))
}

// Prune removes expired entries. Lookups never return expired data without
// it; Prune only bounds memory for chats nobody asks about anymore.
func (p *ParticipantCache) Prune() int {
	return p.entries.Prune()
}

// TTL returns the entry lifetime.
func (p *ParticipantCache) TTL() time.Duration {
	return p.entries.TTL()
}

// HitRate returns the percentage of lookups answered from memory.
func (p *ParticipantCache) HitRate() float64 {
	return p.entries.HitRate()
}

// Stats returns hit/miss/eviction counters.
func (p *ParticipantCache) Stats() Stats {
	return p.entries.GetStats()
}
