// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package websocket

import (
	"reflect"
	"testing"
)

func TestRoomNames(t *testing.T) {
	if got := MembersRoom(chat1); got != "chat:"+chat1+":members" {
		t.Errorf("MembersRoom() = %s", got)
	}
	if got := ViewersRoom(chat1); got != "chat:"+chat1+":viewers" {
		t.Errorf("ViewersRoom() = %s", got)
	}
	if got := UserRoom(userA); got != userA {
		t.Errorf("UserRoom() = %s", got)
	}

	tests := []struct {
		room   string
		chatID string
		ok     bool
	}{
		{ViewersRoom(chat1), chat1, true},
		{MembersRoom(chat1), "", false},
		{UserRoom(userA), "", false},
		{"chat::viewers", "", true},
	}
	for _, tt := range tests {
		chatID, ok := chatIDFromViewersRoom(tt.room)
		if chatID != tt.chatID || ok != tt.ok {
			t.Errorf("chatIDFromViewersRoom(%q) = %q, %v", tt.room, chatID, ok)
		}
	}
}

func TestRooms_JoinLeave(t *testing.T) {
	hub, _ := newTestHub(t, newFakeStore())
	a := NewClient(hub, nil, testClaims(userA))
	b := NewClient(hub, nil, testClaims(userB))
	r := NewRooms()

	r.Join("x", a)
	r.Join("x", a)
	r.Join("x", b)
	r.Join("y", a)

	if r.Size("x") != 2 {
		t.Errorf("Size(x) = %d, want 2 (double join is a no-op)", r.Size("x"))
	}
	if got := r.Clients("x"); len(got) != 2 || got[0] != a || got[1] != b {
		t.Error("Clients() should be ordered by client id")
	}
	if got := r.RoomsOf(a); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("RoomsOf(a) = %v", got)
	}

	if !r.Leave("x", b) {
		t.Error("Leave() of a member should report true")
	}
	if r.Leave("x", b) {
		t.Error("second Leave() should report false")
	}
	if r.Leave("nope", a) {
		t.Error("Leave() of an unknown room should report false")
	}

	left := r.LeaveAll(a)
	if !reflect.DeepEqual(left, []string{"x", "y"}) {
		t.Errorf("LeaveAll() = %v", left)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, empty rooms must be removed", r.Len())
	}
	if got := r.LeaveAll(a); len(got) != 0 {
		t.Errorf("LeaveAll() on a roomless client = %v", got)
	}
}

func TestPresence(t *testing.T) {
	hub, _ := newTestHub(t, newFakeStore())
	a := NewClient(hub, nil, testClaims(userA))
	a2 := NewClient(hub, nil, testClaims(userA))
	b := NewClient(hub, nil, testClaims(userB))
	p := NewPresence()

	if _, ok := p.Lookup(userA); ok {
		t.Fatal("empty registry should miss")
	}

	p.Register(userA, a, "Ada")
	p.Register(userB, b, "Bob")
	p.Register(userA, a2, "Ada L")

	if p.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", p.Count())
	}
	entry, _ := p.Lookup(userA)
	if entry.Client != a2 || entry.DisplayName != "Ada L" || entry.UserID != userA {
		t.Errorf("Lookup() = %+v, want the latest registration", entry)
	}

	if _, ok := p.Unregister(a); ok {
		t.Error("Unregister() of a replaced connection should be a no-op")
	}
	userID, ok := p.Unregister(a2)
	if !ok || userID != userA {
		t.Errorf("Unregister() = %s, %v", userID, ok)
	}
	if p.Count() != 1 {
		t.Errorf("Count() = %d, want 1", p.Count())
	}
}

func TestViewers(t *testing.T) {
	v := NewViewers()

	v.Track(chat1, userA)
	v.Track(chat1, userA)
	v.Track(chat1, userB)
	v.Track(chat2, userA)

	if v.Count(chat1) != 2 {
		t.Errorf("Count(chat1) = %d, want 2 distinct users", v.Count(chat1))
	}
	if v.Len() != 2 {
		t.Errorf("Len() = %d, want 2", v.Len())
	}

	tests := []struct {
		name   string
		chatID string
		userID string
		want   bool
	}{
		{"tracked", chat1, userA, true},
		{"already removed", chat1, userA, false},
		{"never tracked", chat1, userC, false},
		{"unknown chat", unknown, userA, false},
		{"empty chat", "", userA, false},
		{"empty user", chat1, "", false},
	}
	for _, tt := range tests {
		if got := v.Untrack(tt.chatID, tt.userID); got != tt.want {
			t.Errorf("%s: Untrack() = %v, want %v", tt.name, got, tt.want)
		}
	}

	v.Untrack(chat1, userB)
	if v.Has(chat1) {
		t.Error("chat entry should be removed with its last viewer")
	}
	if v.Count(chat1) != 0 {
		t.Errorf("Count() of a removed chat = %d", v.Count(chat1))
	}
	if !v.Has(chat2) {
		t.Error("other chats are unaffected")
	}
}
