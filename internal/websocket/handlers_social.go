// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package websocket

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cohortbox/internal/models"
	"github.com/tomtom215/cohortbox/internal/validation"
)

// adminChat loads chatID and requires c to be its admin.
func (h *Hub) adminChat(ctx context.Context, c *Client, chatID string) (*models.Chat, error) {
	chat, err := h.store.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.IsAdmin(c.userID) {
		return nil, fmt.Errorf("%w: not the admin of %s", errUnauthorized, chatID)
	}
	return chat, nil
}

// handleParticipantRemoved records the removal as a chat info message,
// broadcasts it and drops the removed user's connections from the members
// room. The participant cache entry is invalidated so the removal takes
// effect before the TTL runs out.
func (h *Hub) handleParticipantRemoved(ctx context.Context, c *Client, data json.RawMessage) error {
	var p participantPayload
	if err := decode(data, &p); err != nil {
		return err
	}

	removed, err := h.store.GetUser(ctx, p.UserID)
	if err != nil {
		return err
	}
	chat, err := h.adminChat(ctx, c, p.ChatID)
	if err != nil {
		return err
	}

	info := &models.Message{
		ChatID:  p.ChatID,
		From:    chat.Admin,
		Type:    models.MessageTypeChatInfo,
		Message: "Admin Removed " + removed.Username,
		Media:   []string{},
	}
	if err := h.store.CreateMessage(ctx, info); err != nil {
		return err
	}

	h.participants.Invalidate(p.ChatID)
	h.emitToChat(p.ChatID, EventParticipantRemoved, participantRemovedPayload{
		UserID: p.UserID,
		ChatID: p.ChatID,
		Msg:    info,
	})

	for _, conn := range h.rooms.Clients(UserRoom(p.UserID)) {
		h.rooms.Leave(MembersRoom(p.ChatID), conn)
	}
	return nil
}

// handleParticipantRequested announces an admin's invitation.
func (h *Hub) handleParticipantRequested(ctx context.Context, c *Client, data json.RawMessage) error {
	var p participantPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	if _, err := h.adminChat(ctx, c, p.ChatID); err != nil {
		return err
	}
	if _, err := h.store.GetUser(ctx, p.UserID); err != nil {
		return err
	}

	h.emitToChat(p.ChatID, EventParticipantRequested, participantRequestedPayload{
		ChatID: p.ChatID,
		Msg:    p.Message,
	})
	return nil
}

// handleParticipantAccepted announces that the connection's user accepted
// an invitation. Storage must already list them as a participant.
func (h *Hub) handleParticipantAccepted(ctx context.Context, c *Client, data json.RawMessage) error {
	return h.announceParticipant(ctx, c, data, EventParticipantAccepted)
}

// handleParticipantJoined announces that the connection's user joined.
func (h *Hub) handleParticipantJoined(ctx context.Context, c *Client, data json.RawMessage) error {
	return h.announceParticipant(ctx, c, data, EventParticipantJoined)
}

func (h *Hub) announceParticipant(ctx context.Context, c *Client, data json.RawMessage, event string) error {
	var p chatRefPayload
	if err := decode(data, &p); err != nil {
		return err
	}

	chat, err := h.store.GetChat(ctx, p.ChatID)
	if err != nil {
		return err
	}
	if !chat.HasParticipant(c.userID) {
		return fmt.Errorf("%w: not a participant of %s", errUnauthorized, p.ChatID)
	}
	user, err := h.store.GetUser(ctx, c.userID)
	if err != nil {
		return err
	}

	h.participants.Invalidate(p.ChatID)
	h.emitToChat(p.ChatID, event, participantUserPayload{ChatID: p.ChatID, User: user})
	return nil
}

// handleParticipantLeft is accepted for protocol compatibility; leaving is
// handled through the HTTP layer and participantRemoved.
func (h *Hub) handleParticipantLeft(_ context.Context, _ *Client, _ json.RawMessage) error {
	return nil
}

// handleFriendRequest echoes the request to the sender and relays it to the
// recipient if online.
func (h *Hub) handleFriendRequest(_ context.Context, c *Client, data json.RawMessage) error {
	var p friendRequestPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: %v", errInvalidPayload, err)
	}
	if !validation.IsID(p.To.ID) {
		return fmt.Errorf("%w: malformed recipient", errInvalidPayload)
	}
	if p.From.ID != "" && p.From.ID != c.userID {
		return fmt.Errorf("%w: request from another user", errUnauthorized)
	}

	c.Emit(EventFriendRequestSent, data)
	h.emitToUser(p.To.ID, EventFriendRequestReceived, data)
	return nil
}

// handleCancelFriendRequest tells both sides a pending request is withdrawn.
func (h *Hub) handleCancelFriendRequest(_ context.Context, c *Client, data json.RawMessage) error {
	var p friendRequestPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: %v", errInvalidPayload, err)
	}
	if !validation.IsID(p.To.ID) {
		return fmt.Errorf("%w: malformed recipient", errInvalidPayload)
	}

	canceled := friendPairPayload{To: p.To.ID, From: c.userID}
	c.Emit(EventFriendRequestCanceled, canceled)
	h.emitToUser(p.To.ID, EventFriendRequestCanceled, canceled)
	return nil
}

// handleAcceptFriendRequest sends each side the other's profile.
func (h *Hub) handleAcceptFriendRequest(ctx context.Context, c *Client, data json.RawMessage) error {
	fromID, err := decodeID(data)
	if err != nil {
		return err
	}

	fromUser, err := h.store.GetUser(ctx, fromID)
	if err != nil {
		return err
	}
	toUser, err := h.store.GetUser(ctx, c.userID)
	if err != nil {
		return err
	}

	c.Emit(EventFriendRequestAccepted, friendAcceptedPayload{
		To:        c.userID,
		From:      fromID,
		FriendObj: toFriendObj(fromUser),
	})
	h.emitToUser(fromID, EventFriendRequestAccepted, friendAcceptedPayload{
		To:        c.userID,
		From:      fromID,
		FriendObj: toFriendObj(toUser),
	})
	return nil
}

func toFriendObj(u *models.User) friendObj {
	return friendObj{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
}

// handleRejectFriendRequest tells both sides a request was declined. The
// rejecting user is the connection's user.
func (h *Hub) handleRejectFriendRequest(_ context.Context, c *Client, data json.RawMessage) error {
	var p friendPairPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: %v", errInvalidPayload, err)
	}
	if !validation.IsID(p.From) {
		return fmt.Errorf("%w: malformed requester", errInvalidPayload)
	}
	p.To = c.userID

	c.Emit(EventFriendRequestRejected, p)
	h.emitToUser(p.From, EventFriendRequestRejected, p)
	return nil
}

// handleUnfriend tells both sides a friendship ended.
func (h *Hub) handleUnfriend(_ context.Context, c *Client, data json.RawMessage) error {
	userID, err := decodeID(data)
	if err != nil {
		return err
	}
	c.Emit(EventUnfriend, userID)
	h.emitToUser(userID, EventUnfriend, c.userID)
	return nil
}

// handleNotification relays a client-originated notification to its
// recipient's registered connection.
func (h *Hub) handleNotification(_ context.Context, _ *Client, data json.RawMessage) error {
	var p notificationPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	h.emitToUser(p.User, EventNotification, data)
	return nil
}
