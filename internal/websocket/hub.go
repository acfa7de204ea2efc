// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package websocket

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cohortbox/internal/cache"
	"github.com/tomtom215/cohortbox/internal/config"
	"github.com/tomtom215/cohortbox/internal/logging"
	"github.com/tomtom215/cohortbox/internal/metrics"
	"github.com/tomtom215/cohortbox/internal/models"
	"github.com/tomtom215/cohortbox/internal/validation"
)

// ErrHubClosed is returned by Attach after the hub has shut down.
var ErrHubClosed = errors.New("websocket: hub closed")

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful shutdown path.
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline may indicate a hung operation during shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Store is the storage the realtime layer reads and writes.
type Store interface {
	GetChat(ctx context.Context, chatID string) (*models.Chat, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	FindMessage(ctx context.Context, messageID, chatID, fromID string) (*models.Message, error)
	CreateMessage(ctx context.Context, msg *models.Message) error
	MarkMessageRead(ctx context.Context, messageID string) error
}

// Hub owns every piece of realtime state: connected clients, rooms,
// presence, viewer sets, message batches and the participant cache. Each
// registry has its own lock and no lock is held across a storage call.
type Hub struct {
	cfg          config.RealtimeConfig
	store        Store
	participants *cache.ParticipantCache
	presence     *Presence
	viewers      *Viewers
	rooms        *Rooms
	batcher      *Batcher
	handlers     map[string]eventHandler

	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool
}

// NewHub creates a hub backed by store.
func NewHub(store Store, cfg config.RealtimeConfig) *Hub {
	applyRealtimeDefaults(&cfg)

	h := &Hub{
		cfg:          cfg,
		store:        store,
		participants: cache.NewParticipantCache(store, cfg.ParticipantCacheTTL),
		presence:     NewPresence(),
		viewers:      NewViewers(),
		rooms:        NewRooms(),
		clients:      make(map[*Client]struct{}),
	}
	h.participants.SetLoadTimeout(cfg.StorageTimeout)
	h.batcher = NewBatcher(h, cfg.BatchMaxMessages, cfg.BatchWindow)
	h.handlers = h.eventHandlers()
	return h
}

func applyRealtimeDefaults(cfg *config.RealtimeConfig) {
	if cfg.ParticipantCacheTTL <= 0 {
		cfg.ParticipantCacheTTL = cache.DefaultParticipantTTL
	}
	if cfg.BatchMaxMessages <= 0 {
		cfg.BatchMaxMessages = DefaultBatchMaxMessages
	}
	if cfg.BatchWindow <= 0 {
		cfg.BatchWindow = DefaultBatchWindow
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 256
	}
	if cfg.StorageTimeout <= 0 {
		cfg.StorageTimeout = 5 * time.Second
	}
	if cfg.EventRate <= 0 {
		cfg.EventRate = 20
	}
	if cfg.EventBurst <= 0 {
		cfg.EventBurst = 40
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = maxMessageSize
	}
}

// Participants exposes the participant cache. The readiness endpoint reports
// its hit rate.
func (h *Hub) Participants() *cache.ParticipantCache {
	return h.participants
}

// Attach registers an upgraded client and joins it to its user room, so
// HTTP-originated notifications reach every tab of that user.
func (h *Hub) Attach(c *Client) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrHubClosed
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.rooms.Join(UserRoom(c.userID), c)
	metrics.WSConnections.Set(float64(n))
	c.logger.Info().Int("total_clients", n).Msg("websocket client connected")
	return nil
}

// Detach performs disconnect cleanup: presence, rooms, viewer tracking.
// Every chat the client was watching, plus its current chat, gets one
// updated viewer count. Safe to call more than once.
//
// The read pump calls Detach after its last handler returned, so no event
// handler of c runs concurrently with it.
func (h *Hub) Detach(c *Client) {
	if !c.detached.CompareAndSwap(false, true) {
		return
	}
	c.cancel()
	c.close()

	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WSConnections.Set(float64(n))

	h.presence.Unregister(c)

	chats := make(map[string]struct{})
	for _, room := range h.rooms.LeaveAll(c) {
		if chatID, ok := chatIDFromViewersRoom(room); ok {
			chats[chatID] = struct{}{}
		}
	}
	if chatID, _ := c.CurrentChat(); chatID != "" {
		chats[chatID] = struct{}{}
	}

	for _, chatID := range sortedKeys(chats) {
		h.untrackViewer(chatID, c)
		h.emitViewerCount(chatID)
	}

	c.logger.Info().Int("total_clients", n).Msg("websocket client disconnected")
}

// RunWithContext runs hub housekeeping until ctx is canceled, then closes
// every client and flushes pending batches. Designed for suture supervision.
func (h *Hub) RunWithContext(ctx context.Context) error {
	ticker := time.NewTicker(h.participants.TTL())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()

		case <-ticker.C:
			if removed := h.participants.Prune(); removed > 0 {
				logging.Debug().Int("removed", removed).Msg("pruned expired participant sets")
			}
		}
	}
}

// logGracefulShutdown closes the hub and logs structured shutdown fields.
// ctx.Err() is not logged as an error: cancellation is the expected path.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.Shutdown()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// Shutdown refuses new clients, flushes pending batches and closes every
// connected client. Returns the number of clients closed.
func (h *Hub) Shutdown() int {
	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	h.batcher.Stop()

	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	for _, c := range clients {
		c.close()
	}
	return len(clients)
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// OnlineUsers returns the number of registered users.
func (h *Hub) OnlineUsers() int {
	return h.presence.Count()
}

// ViewerCount returns the live viewer count of chatID.
func (h *Hub) ViewerCount(chatID string) int {
	return h.viewers.Count(chatID)
}

// emitToRoom encodes payload once and queues it on every client in room.
func (h *Hub) emitToRoom(room, event string, payload interface{}) int {
	data, err := MarshalMessage(Message{Type: event, Data: payload})
	if err != nil {
		logging.Error().Err(err).Str("event", event).Msg("failed to marshal websocket message")
		return 0
	}
	sent := 0
	for _, c := range h.rooms.Clients(room) {
		if c.sendRaw(data) {
			sent++
		}
	}
	return sent
}

// emitToChat broadcasts to the members room and then the viewers room of
// chatID. A client in both rooms receives the event twice.
func (h *Hub) emitToChat(chatID, event string, payload interface{}) {
	h.emitToRoom(MembersRoom(chatID), event, payload)
	h.emitToRoom(ViewersRoom(chatID), event, payload)
}

// emitToChatParticipants sends payload straight to the registered
// connection of every online participant of chatID, whichever rooms they
// are in. Viewers that are not participants never receive it.
func (h *Hub) emitToChatParticipants(ctx context.Context, chatID, event string, payload interface{}) error {
	if !validation.IsID(chatID) {
		return errInvalidPayload
	}
	set, found, err := h.participants.Get(ctx, chatID)
	if err != nil {
		return err
	}
	if !found {
		return errNotFound
	}

	data, err := MarshalMessage(Message{Type: event, Data: payload})
	if err != nil {
		return err
	}

	userIDs := make([]string, 0, len(set))
	for userID := range set {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	for _, userID := range userIDs {
		if entry, ok := h.presence.Lookup(userID); ok {
			entry.Client.sendRaw(data)
		}
	}
	return nil
}

// emitToUser delivers to userID's registered connection if they are online.
func (h *Hub) emitToUser(userID, event string, payload interface{}) bool {
	entry, ok := h.presence.Lookup(userID)
	if !ok {
		return false
	}
	return entry.Client.Emit(event, payload)
}

// emitViewerCount sends chatID's viewer count to both of its rooms.
func (h *Hub) emitViewerCount(chatID string) {
	payload := ViewerCountPayload{ChatID: chatID, Count: h.viewers.Count(chatID)}
	h.emitToRoom(ViewersRoom(chatID), EventLiveViewerCount, payload)
	h.emitToRoom(MembersRoom(chatID), EventLiveViewerCount, payload)
}

// untrackViewer stops counting c's user as a viewer of chatID unless
// another connection of the same user is still in the viewers room.
func (h *Hub) untrackViewer(chatID string, c *Client) {
	for _, other := range h.rooms.Clients(ViewersRoom(chatID)) {
		if other != c && other.userID == c.userID {
			return
		}
	}
	h.viewers.Untrack(chatID, c.userID)
}

// ViewerAudience implements BatchSink using live viewers-room size.
func (h *Hub) ViewerAudience(chatID string) int {
	return h.rooms.Size(ViewersRoom(chatID))
}

// BroadcastBatch implements BatchSink.
func (h *Hub) BroadcastBatch(chatID string, messages []json.RawMessage) {
	h.emitToRoom(ViewersRoom(chatID), EventMessagesBatch, MessagesBatchPayload{
		ChatID:   chatID,
		Messages: messages,
	})
}

// DeliverNotification sends a stored notification to every connection of
// its recipient.
func (h *Hub) DeliverNotification(n *models.Notification) int {
	return h.emitToRoom(UserRoom(n.User), EventNotification, n)
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
