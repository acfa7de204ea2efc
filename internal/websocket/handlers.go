// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package websocket

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cohortbox/internal/models"
	"github.com/tomtom215/cohortbox/internal/validation"
)

// handleRegister records the connection in the presence registry. Only the
// authenticated user can register, and only if their profile exists.
func (h *Hub) handleRegister(ctx context.Context, c *Client, data json.RawMessage) error {
	userID, err := decodeID(data)
	if err != nil {
		return err
	}
	if userID != c.userID {
		return fmt.Errorf("%w: register as %s", errUnauthorized, userID)
	}

	user, err := h.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := stillConnected(c); err != nil {
		return err
	}

	h.presence.Register(userID, c, user.DisplayName())
	c.logger.Debug().Msg("user registered presence")
	return nil
}

// handleJoinChat joins the viewers room freely and the members room only
// for cached participants. A refused join is silent.
func (h *Hub) handleJoinChat(ctx context.Context, c *Client, data json.RawMessage) error {
	var p joinChatPayload
	if err := decode(data, &p); err != nil {
		return err
	}

	if p.Role == RoleViewer {
		h.rooms.Join(ViewersRoom(p.ChatID), c)
		h.viewers.Track(p.ChatID, c.userID)
		c.setCurrentChat(p.ChatID, RoleViewer)
		h.emitViewerCount(p.ChatID)
		return nil
	}

	ok, err := h.participants.IsParticipant(ctx, p.ChatID, c.userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: not a participant of %s", errUnauthorized, p.ChatID)
	}
	if err := stillConnected(c); err != nil {
		return err
	}

	h.rooms.Join(MembersRoom(p.ChatID), c)
	c.setCurrentChat(p.ChatID, RoleMember)
	return nil
}

// handleLeaveChat leaves both rooms of a chat and re-emits its viewer count.
func (h *Hub) handleLeaveChat(_ context.Context, c *Client, data json.RawMessage) error {
	chatID, err := decodeID(data)
	if err != nil {
		return err
	}

	h.rooms.Leave(ViewersRoom(chatID), c)
	h.rooms.Leave(MembersRoom(chatID), c)
	h.untrackViewer(chatID, c)
	if current, _ := c.CurrentChat(); current == chatID {
		c.setCurrentChat("", "")
	}
	h.emitViewerCount(chatID)
	return nil
}

// handleMessage relays a chat message that the HTTP layer persists. Online
// participants get it immediately; viewers get it through the batcher.
func (h *Hub) handleMessage(ctx context.Context, c *Client, data json.RawMessage) error {
	var env messageEventPayload
	if err := json.Unmarshal(data, &env); err != nil || isEmptyJSON(env.Message) {
		return fmt.Errorf("%w: no message", errInvalidPayload)
	}

	var m chatMessagePayload
	if err := decode(env.Message, &m); err != nil {
		return err
	}
	if m.From.ID != c.userID {
		return fmt.Errorf("%w: sender %q is not the connection user", errUnauthorized, m.From.ID)
	}
	switch m.Type {
	case models.MessageTypeText:
		if strings.TrimSpace(m.Message) == "" {
			return fmt.Errorf("%w: empty text message", errInvalidPayload)
		}
	case models.MessageTypeMedia, models.MessageTypeAudio:
		if len(m.Media) == 0 {
			return fmt.Errorf("%w: %s message without media", errInvalidPayload, m.Type)
		}
	}

	ok, err := h.participants.IsParticipant(ctx, m.ChatID, c.userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: not a participant of %s", errUnauthorized, m.ChatID)
	}
	if err := stillConnected(c); err != nil {
		return err
	}

	h.batcher.Queue(m.ChatID, env.Message)
	return h.emitToChatParticipants(ctx, m.ChatID, EventMessage, env.Message)
}

// handlePrivateMessageRead marks a message read and tells its author.
func (h *Hub) handlePrivateMessageRead(ctx context.Context, c *Client, data json.RawMessage) error {
	var p privateMessageReadPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	if err := h.store.MarkMessageRead(ctx, p.MsgID); err != nil {
		return err
	}
	h.emitToUser(p.To, EventMessagesRead, messagesReadPayload{ChatID: p.ChatID, Reader: c.userID})
	return nil
}

// handleReaction broadcasts a reaction the HTTP layer already stored. The
// reacting user is always the connection's user.
func (h *Hub) handleReaction(_ context.Context, c *Client, data json.RawMessage) error {
	var p reactionPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	p.UserID = c.userID
	h.emitToChat(p.ChatID, EventReaction, p)
	return nil
}

// handleTyping checks participation against storage directly rather than
// the cache, then tells the members room.
func (h *Hub) handleTyping(ctx context.Context, c *Client, data json.RawMessage) error {
	var p typingPayload
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
	if err := stillConnected(c); err != nil {
		return err
	}

	username := c.claims.DisplayName()
	if entry, ok := h.presence.Lookup(c.userID); ok && entry.DisplayName != "" {
		username = entry.DisplayName
	}

	h.emitToRoom(MembersRoom(p.ChatID), EventTyping, typingPayload{
		ChatID:   p.ChatID,
		UserID:   c.userID,
		Username: username,
		Typing:   p.Typing,
	})
	return nil
}

// handleLiveComment sanitizes a live comment and broadcasts it to members
// and viewers of an existing chat. Fields other than the comment text are
// relayed unchanged.
func (h *Hub) handleLiveComment(ctx context.Context, _ *Client, data json.RawMessage) error {
	var p liveCommentPayload
	if err := decode(data, &p); err != nil {
		return err
	}

	var text string
	if raw, ok := p.Comment["message"]; !ok || json.Unmarshal(raw, &text) != nil {
		return fmt.Errorf("%w: comment has no message", errInvalidPayload)
	}
	text = validation.SanitizeComment(text)
	if text == "" {
		return fmt.Errorf("%w: empty comment", errInvalidPayload)
	}

	_, found, err := h.participants.Get(ctx, p.ChatID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: chat %s", errNotFound, p.ChatID)
	}

	var full map[string]json.RawMessage
	if err := json.Unmarshal(data, &full); err != nil {
		return fmt.Errorf("%w: %v", errInvalidPayload, err)
	}
	sanitized, err := json.Marshal(text)
	if err != nil {
		return err
	}
	p.Comment["message"] = sanitized
	comment, err := json.Marshal(p.Comment)
	if err != nil {
		return err
	}
	full["comment"] = comment

	h.emitToChat(p.ChatID, EventLiveComment, full)
	return nil
}

// handleLiveCommentPin lets a participant pin a live comment.
func (h *Hub) handleLiveCommentPin(ctx context.Context, c *Client, data json.RawMessage) error {
	var p liveCommentPinPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	if isEmptyJSON(p.Comment) {
		return fmt.Errorf("%w: no comment", errInvalidPayload)
	}

	chat, err := h.store.GetChat(ctx, p.ChatID)
	if err != nil {
		return err
	}
	if !chat.HasParticipant(c.userID) {
		return fmt.Errorf("%w: pin by non-participant", errUnauthorized)
	}

	h.emitToChat(p.ChatID, EventLiveCommentPin, p)
	return nil
}

// handleDeleteMessage relays a deletion the HTTP layer performs. The
// requester must be a participant and the author of the message.
func (h *Hub) handleDeleteMessage(ctx context.Context, c *Client, data json.RawMessage) error {
	var p deleteMessagePayload
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
	if _, err := h.store.FindMessage(ctx, p.ID, p.ChatID, c.userID); err != nil {
		return err
	}

	h.emitToChat(p.ChatID, EventDeleteMessage, data)
	return nil
}

func (h *Hub) handlePing(_ context.Context, c *Client, _ json.RawMessage) error {
	c.Emit(EventPong, nil)
	return nil
}
