// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package websocket

import (
	"sort"
	"strings"
	"sync"
)

const chatRoomPrefix = "chat:"

// MembersRoom is the room of participants that have the chat open.
func MembersRoom(chatID string) string {
	return chatRoomPrefix + chatID + ":members"
}

// ViewersRoom is the room of live viewers of a chat.
func ViewersRoom(chatID string) string {
	return chatRoomPrefix + chatID + ":viewers"
}

// UserRoom is the per-user room every connection of userID joins at connect.
func UserRoom(userID string) string {
	return userID
}

// chatIDFromViewersRoom returns the chat of a viewers room name.
func chatIDFromViewersRoom(room string) (string, bool) {
	if !strings.HasPrefix(room, chatRoomPrefix) || !strings.HasSuffix(room, ":viewers") {
		return "", false
	}
	return strings.TrimSuffix(strings.TrimPrefix(room, chatRoomPrefix), ":viewers"), true
}

// Rooms groups live clients into named rooms. A room exists only while it
// has at least one client.
type Rooms struct {
	mu       sync.RWMutex
	rooms    map[string]map[*Client]struct{}
	byClient map[*Client]map[string]struct{}
}

// NewRooms creates an empty room registry.
func NewRooms() *Rooms {
	return &Rooms{
		rooms:    make(map[string]map[*Client]struct{}),
		byClient: make(map[*Client]map[string]struct{}),
	}
}

// Join adds c to room. Joining twice is a no-op.
func (r *Rooms) Join(room string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		r.rooms[room] = members
	}
	members[c] = struct{}{}

	joined, ok := r.byClient[c]
	if !ok {
		joined = make(map[string]struct{})
		r.byClient[c] = joined
	}
	joined[room] = struct{}{}
}

// Leave removes c from room and reports whether it was a member.
func (r *Rooms) Leave(room string, c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaveLocked(room, c)
}

func (r *Rooms) leaveLocked(room string, c *Client) bool {
	members, ok := r.rooms[room]
	if !ok {
		return false
	}
	if _, ok := members[c]; !ok {
		return false
	}
	delete(members, c)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
	if joined, ok := r.byClient[c]; ok {
		delete(joined, room)
		if len(joined) == 0 {
			delete(r.byClient, c)
		}
	}
	return true
}

// LeaveAll removes c from every room and returns the rooms it was in,
// sorted by name.
func (r *Rooms) LeaveAll(c *Client) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	joined := r.byClient[c]
	left := make([]string, 0, len(joined))
	for room := range joined {
		left = append(left, room)
	}
	sort.Strings(left)
	for _, room := range left {
		r.leaveLocked(room, c)
	}
	return left
}

// Size returns the number of clients in room.
func (r *Rooms) Size(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}

// Has reports whether c is in room.
func (r *Rooms) Has(room string, c *Client) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[room][c]
	return ok
}

// Clients returns a snapshot of the clients in room ordered by client ID,
// so fan-out order is stable.
func (r *Rooms) Clients(room string) []*Client {
	r.mu.RLock()
	members := r.rooms[room]
	clients := make([]*Client, 0, len(members))
	for c := range members {
		clients = append(clients, c)
	}
	r.mu.RUnlock()

	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// RoomsOf returns the rooms c is in, sorted by name.
func (r *Rooms) RoomsOf(c *Client) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rooms := make([]string, 0, len(r.byClient[c]))
	for room := range r.byClient[c] {
		rooms = append(rooms, room)
	}
	sort.Strings(rooms)
	return rooms
}

// Len returns the number of non-empty rooms.
func (r *Rooms) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
