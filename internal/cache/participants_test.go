// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/cohortbox/internal/models"
	"github.com/tomtom215/cohortbox/internal/storage"
)

const (
	chatA  = "64b000000000000000000001"
	userA  = "64a000000000000000000001"
	userB  = "64a000000000000000000002"
	userC  = "64a000000000000000000003"
	nobody = "64b0000000000000000000ff"
)

// mockLoader serves chats from a map, counting calls. After failAfter calls
// (when > 0) every call returns errStorage.
type mockLoader struct {
	mu        sync.Mutex
	chats     map[string]*models.Chat
	calls     atomic.Int32
	failAfter int32
}

var errStorage = errors.New("storage offline")

func (m *mockLoader) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	n := m.calls.Add(1)
	if m.failAfter > 0 && n > m.failAfter {
		return nil, errStorage
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	chat, ok := m.chats[chatID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *chat
	cp.Participants = append([]string(nil), chat.Participants...)
	return &cp, nil
}

func (m *mockLoader) setParticipants(chatID string, ids ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chats[chatID] = &models.Chat{ID: chatID, Participants: ids}
}

func newMockLoader() *mockLoader {
	return &mockLoader{chats: make(map[string]*models.Chat)}
}

func TestParticipantCache_HitWithinTTLSkipsStorage(t *testing.T) {
	loader := newMockLoader()
	loader.setParticipants(chatA, userA, userB)
	loader.failAfter = 1 // any second storage call fails

	clock := newFakeClock()
	pc := NewParticipantCacheWithClock(loader, 60*time.Second, clock.Now)
	ctx := context.Background()

	first, found, err := pc.Get(ctx, chatA)
	if err != nil || !found {
		t.Fatalf("Get() = found %v, err %v", found, err)
	}

	clock.Advance(59 * time.Second)
	second, found, err := pc.Get(ctx, chatA)
	if err != nil || !found {
		t.Fatalf("cached Get() = found %v, err %v", found, err)
	}
	if len(second) != len(first) || !second.Has(userA) || !second.Has(userB) {
		t.Errorf("cached set = %v, want %v", second, first)
	}
	if got := loader.calls.Load(); got != 1 {
		t.Errorf("storage calls = %d, want 1", got)
	}
	if rate := pc.HitRate(); rate != 50 {
		t.Errorf("HitRate() = %v, want 50", rate)
	}
}

func TestParticipantCache_ReloadsAfterTTL(t *testing.T) {
	loader := newMockLoader()
	loader.setParticipants(chatA, userA, userB)

	clock := newFakeClock()
	pc := NewParticipantCacheWithClock(loader, 60*time.Second, clock.Now)
	ctx := context.Background()

	if ok, _ := pc.IsParticipant(ctx, chatA, userB); !ok {
		t.Fatal("userB should be a participant")
	}

	// userB removed in storage; the cache still answers from memory.
	loader.setParticipants(chatA, userA)
	clock.Advance(30 * time.Second)
	if ok, _ := pc.IsParticipant(ctx, chatA, userB); !ok {
		t.Error("stale entry should still list userB within TTL")
	}

	clock.Advance(30 * time.Second)
	if ok, _ := pc.IsParticipant(ctx, chatA, userB); ok {
		t.Error("userB should be gone after TTL reload")
	}
	if got := loader.calls.Load(); got != 2 {
		t.Errorf("storage calls = %d, want 2", got)
	}
}

func TestParticipantCache_NotFoundIsNotCached(t *testing.T) {
	loader := newMockLoader()
	pc := NewParticipantCache(loader, time.Minute)
	ctx := context.Background()

	set, found, err := pc.Get(ctx, nobody)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found || set != nil {
		t.Errorf("Get() = (%v, %v), want not found", set, found)
	}

	loader.setParticipants(nobody, userC)
	set, found, err = pc.Get(ctx, nobody)
	if err != nil || !found || !set.Has(userC) {
		t.Errorf("Get() after creation = (%v, %v, %v)", set, found, err)
	}
	if got := loader.calls.Load(); got != 2 {
		t.Errorf("storage calls = %d, want 2", got)
	}
}

func TestParticipantCache_EmptySetIsFound(t *testing.T) {
	loader := newMockLoader()
	loader.setParticipants(chatA)
	pc := NewParticipantCache(loader, time.Minute)

	set, found, err := pc.Get(context.Background(), chatA)
	if err != nil || !found {
		t.Fatalf("Get() = found %v, err %v; want found empty set", found, err)
	}
	if len(set) != 0 {
		t.Errorf("set = %v, want empty", set)
	}
}

func TestParticipantCache_StorageErrorPropagates(t *testing.T) {
	pc := NewParticipantCache(erroringLoader{}, time.Minute)

	_, found, err := pc.Get(context.Background(), chatA)
	if found || !errors.Is(err, errStorage) {
		t.Errorf("Get() = found %v, err %v; want errStorage", found, err)
	}
	ok, err := pc.IsParticipant(context.Background(), chatA, userA)
	if ok || err == nil {
		t.Errorf("IsParticipant() = %v, %v; want false with error", ok, err)
	}
}

type erroringLoader struct{}

func (erroringLoader) GetChat(context.Context, string) (*models.Chat, error) {
	return nil, errStorage
}

func TestParticipantCache_NormalizesKeys(t *testing.T) {
	loader := newMockLoader()
	loader.setParticipants(chatA, userA)
	pc := NewParticipantCache(loader, time.Minute)
	ctx := context.Background()

	if ok, _ := pc.IsParticipant(ctx, chatA, userA); !ok {
		t.Fatal("userA should be a participant")
	}
	if ok, _ := pc.IsParticipant(ctx, " "+chatA+" ", " "+userA); !ok {
		t.Error("padded ids should normalize to the same entry")
	}
	if got := loader.calls.Load(); got != 1 {
		t.Errorf("storage calls = %d, want 1", got)
	}
}

func TestParticipantCache_Invalidate(t *testing.T) {
	loader := newMockLoader()
	loader.setParticipants(chatA, userA)
	pc := NewParticipantCache(loader, time.Minute)
	ctx := context.Background()

	if ok, _ := pc.IsParticipant(ctx, chatA, userB); ok {
		t.Fatal("userB should not be a participant yet")
	}
	loader.setParticipants(chatA, userA, userB)
	pc.Invalidate(chatA)

	if ok, _ := pc.IsParticipant(ctx, chatA, userB); !ok {
		t.Error("userB should be visible right after Invalidate")
	}
}

func TestParticipantCache_ConcurrentMissesShareLoad(t *testing.T) {
	loader := &slowLoader{mockLoader: newMockLoader(), release: make(chan struct{})}
	loader.setParticipants(chatA, userA)
	pc := NewParticipantCache(loader, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := pc.IsParticipant(context.Background(), chatA, userA); !ok || err != nil {
				t.Errorf("IsParticipant() = %v, %v", ok, err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(loader.release)
	wg.Wait()

	if got := loader.calls.Load(); got > 2 {
		t.Errorf("storage calls = %d, want concurrent misses collapsed", got)
	}
}

type slowLoader struct {
	*mockLoader
	release chan struct{}
}

func (s *slowLoader) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	<-s.release
	return s.mockLoader.GetChat(ctx, chatID)
}

// gatedLoader blocks every load until release is closed, honoring the ctx
// it is given.
type gatedLoader struct {
	*mockLoader
	started chan struct{}
	once    sync.Once
	release chan struct{}
}

func (g *gatedLoader) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.mockLoader.GetChat(ctx, chatID)
}

func TestParticipantCache_CanceledCallerDoesNotFailSharedLoad(t *testing.T) {
	loader := &gatedLoader{
		mockLoader: newMockLoader(),
		started:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	loader.setParticipants(chatA, userA, userB)
	pc := NewParticipantCache(loader, time.Minute)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()
	firstErr := make(chan error, 1)
	go func() {
		_, _, err := pc.Get(firstCtx, chatA)
		firstErr <- err
	}()

	select {
	case <-loader.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first load never started")
	}

	type result struct {
		ok  bool
		err error
	}
	second := make(chan result, 1)
	go func() {
		ok, err := pc.IsParticipant(context.Background(), chatA, userB)
		second <- result{ok, err}
	}()
	time.Sleep(50 * time.Millisecond)

	// The first caller disconnects while the load is in flight.
	cancelFirst()
	select {
	case err := <-firstErr:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("canceled Get() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("canceled Get() did not return")
	}

	close(loader.release)
	select {
	case r := <-second:
		if r.err != nil || !r.ok {
			t.Fatalf("IsParticipant() = %v, %v; want true with no error", r.ok, r.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second caller never got the shared load")
	}
	if got := loader.calls.Load(); got != 1 {
		t.Errorf("storage calls = %d, want 1 shared load", got)
	}
}

func TestParticipantCache_LoadTimeout(t *testing.T) {
	loader := &gatedLoader{
		mockLoader: newMockLoader(),
		started:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	loader.setParticipants(chatA, userA)
	pc := NewParticipantCache(loader, time.Minute)
	pc.SetLoadTimeout(20 * time.Millisecond)

	_, found, err := pc.Get(context.Background(), chatA)
	if found || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Get() = found %v, err %v; want DeadlineExceeded", found, err)
	}
}

func TestParticipantCache_Prune(t *testing.T) {
	loader := newMockLoader()
	loader.setParticipants(chatA, userA)
	clock := newFakeClock()
	pc := NewParticipantCacheWithClock(loader, time.Minute, clock.Now)

	if _, _, err := pc.Get(context.Background(), chatA); err != nil {
		t.Fatal(err)
	}
	clock.Advance(time.Minute)
	if removed := pc.Prune(); removed != 1 {
		t.Errorf("Prune() = %d, want 1", removed)
	}
	if pc.TTL() != time.Minute {
		t.Errorf("TTL() = %v", pc.TTL())
	}
}
