// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package websocket

import (
	"sync"

	"github.com/tomtom215/cohortbox/internal/metrics"
)

// PresenceEntry is the live connection registered for a user.
type PresenceEntry struct {
	UserID      string
	Client      *Client
	DisplayName string
}

// Presence maps online users to the connection that registered last.
//
// A user with several tabs has one entry: each register replaces the
// previous one, and point-to-point events reach only the newest connection.
type Presence struct {
	mu      sync.RWMutex
	entries map[string]PresenceEntry
}

// NewPresence creates an empty registry.
func NewPresence() *Presence {
	return &Presence{entries: make(map[string]PresenceEntry)}
}

// Register stores c as userID's connection, replacing any previous entry.
func (p *Presence) Register(userID string, c *Client, displayName string) {
	p.mu.Lock()
	p.entries[userID] = PresenceEntry{UserID: userID, Client: c, DisplayName: displayName}
	n := len(p.entries)
	p.mu.Unlock()

	metrics.PresenceOnlineUsers.Set(float64(n))
}

// Lookup returns userID's entry. A miss means the user is offline.
func (p *Presence) Lookup(userID string) (PresenceEntry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	entry, ok := p.entries[userID]
	return entry, ok
}

// Unregister removes the entry whose connection is c and returns its user.
// An entry that a newer connection has replaced is left alone.
func (p *Presence) Unregister(c *Client) (string, bool) {
	p.mu.Lock()
	var removed string
	found := false
	for userID, entry := range p.entries {
		if entry.Client == c {
			delete(p.entries, userID)
			removed, found = userID, true
			break
		}
	}
	n := len(p.entries)
	p.mu.Unlock()

	if found {
		metrics.PresenceOnlineUsers.Set(float64(n))
	}
	return removed, found
}

// Count returns the number of online users.
func (p *Presence) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}
