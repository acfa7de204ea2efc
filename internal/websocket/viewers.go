// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package websocket

import (
	"sync"

	"github.com/tomtom215/cohortbox/internal/metrics"
)

// Viewers tracks, per chat, the distinct users watching it live. A chat has
// an entry only while at least one viewer is tracked.
type Viewers struct {
	mu    sync.RWMutex
	chats map[string]map[string]struct{}
	total int
}

// NewViewers creates an empty tracker.
func NewViewers() *Viewers {
	return &Viewers{chats: make(map[string]map[string]struct{})}
}

// Track adds userID to chatID's viewers.
func (v *Viewers) Track(chatID, userID string) {
	v.mu.Lock()
	set, ok := v.chats[chatID]
	if !ok {
		set = make(map[string]struct{})
		v.chats[chatID] = set
	}
	if _, seen := set[userID]; !seen {
		set[userID] = struct{}{}
		v.total++
	}
	total := v.total
	v.mu.Unlock()

	metrics.LiveViewers.Set(float64(total))
}

// Untrack removes userID from chatID's viewers, dropping the chat entry when
// it becomes empty. Reports whether userID was tracked.
func (v *Viewers) Untrack(chatID, userID string) bool {
	if chatID == "" || userID == "" {
		return false
	}

	v.mu.Lock()
	set, ok := v.chats[chatID]
	if !ok {
		v.mu.Unlock()
		return false
	}
	_, tracked := set[userID]
	if tracked {
		delete(set, userID)
		v.total--
	}
	if len(set) == 0 {
		delete(v.chats, chatID)
	}
	total := v.total
	v.mu.Unlock()

	if tracked {
		metrics.LiveViewers.Set(float64(total))
	}
	return tracked
}

// Count returns the number of viewers of chatID, 0 if untracked.
func (v *Viewers) Count(chatID string) int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.chats[chatID])
}

// Has reports whether chatID currently has an entry.
func (v *Viewers) Has(chatID string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.chats[chatID]
	return ok
}

// Len returns the number of chats with at least one viewer.
func (v *Viewers) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.chats)
}
