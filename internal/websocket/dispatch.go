// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package websocket

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cohortbox/internal/metrics"
	"github.com/tomtom215/cohortbox/internal/storage"
	"github.com/tomtom215/cohortbox/internal/validation"
)

// unknownEventLabel keeps arbitrary client event names out of metric labels.
const unknownEventLabel = "unknown"

// Drop causes. Every handler failure is a silent drop for the client; the
// cause only decides how it is logged and counted.
var (
	errInvalidPayload = errors.New("invalid payload")
	errUnauthorized   = errors.New("unauthorized")
	errNotFound       = errors.New("not found")
	errDisconnected   = errors.New("connection closed")
)

// eventHandler handles one inbound event. ctx carries the storage timeout
// and is canceled if the client disconnects.
type eventHandler func(ctx context.Context, c *Client, data json.RawMessage) error

func (h *Hub) eventHandlers() map[string]eventHandler {
	return map[string]eventHandler{
		EventRegister:             h.handleRegister,
		EventJoinChat:             h.handleJoinChat,
		EventLeaveChat:            h.handleLeaveChat,
		EventMessage:              h.handleMessage,
		EventPrivateMessageRead:   h.handlePrivateMessageRead,
		EventReaction:             h.handleReaction,
		EventTyping:               h.handleTyping,
		EventLiveComment:          h.handleLiveComment,
		EventLiveCommentPin:       h.handleLiveCommentPin,
		EventDeleteMessage:        h.handleDeleteMessage,
		EventParticipantRemoved:   h.handleParticipantRemoved,
		EventParticipantRequested: h.handleParticipantRequested,
		EventParticipantAccepted:  h.handleParticipantAccepted,
		EventParticipantJoined:    h.handleParticipantJoined,
		EventParticipantLeft:      h.handleParticipantLeft,
		EventFriendRequest:        h.handleFriendRequest,
		EventCancelFriendRequest:  h.handleCancelFriendRequest,
		EventAcceptFriendRequest:  h.handleAcceptFriendRequest,
		EventRejectFriendRequest:  h.handleRejectFriendRequest,
		EventUnfriend:             h.handleUnfriend,
		EventNotification:         h.handleNotification,
		EventPing:                 h.handlePing,
	}
}

func (h *Hub) eventLabel(event string) string {
	if _, ok := h.handlers[event]; ok {
		return event
	}
	return unknownEventLabel
}

// dispatch runs the handler for msg on the caller's goroutine. A panicking
// handler is recovered so one bad event cannot take down the connection.
func (h *Hub) dispatch(c *Client, msg InboundMessage) {
	label := h.eventLabel(msg.Type)
	metrics.WSMessagesReceived.WithLabelValues(label).Inc()

	handler, ok := h.handlers[msg.Type]
	if !ok {
		metrics.RecordDroppedEvent(label, "unknown_event")
		c.logger.Debug().Str("event", msg.Type).Msg("dropping unknown websocket event")
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, h.cfg.StorageTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			metrics.RecordDroppedEvent(label, "panic")
			c.logger.Error().
				Str("event", msg.Type).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("recovered panic in websocket event handler")
		}
	}()

	if err := handler(ctx, c, msg.Data); err != nil {
		h.logDrop(c, label, err)
	}
}

func (h *Hub) logDrop(c *Client, event string, err error) {
	reason := dropReason(err)
	metrics.RecordDroppedEvent(event, reason)

	switch reason {
	case "invalid", "unauthorized", "not_found", "disconnected":
		c.logger.Debug().Err(err).Str("event", event).Str("reason", reason).Msg("dropped websocket event")
	default:
		c.logger.Warn().Err(err).Str("event", event).Str("reason", reason).Msg("dropped websocket event")
	}
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, errInvalidPayload):
		return "invalid"
	case errors.Is(err, errUnauthorized):
		return "unauthorized"
	case errors.Is(err, errNotFound), errors.Is(err, storage.ErrNotFound):
		return "not_found"
	case errors.Is(err, errDisconnected), errors.Is(err, context.Canceled):
		return "disconnected"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "storage_unavailable"
	default:
		return "storage"
	}
}

// decode unmarshals data into v and runs its validate tags.
func decode(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		return errInvalidPayload
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidPayload, err)
	}
	if verr := validation.ValidateStruct(v); verr != nil {
		return fmt.Errorf("%w: %v", errInvalidPayload, verr)
	}
	return nil
}

// decodeID unmarshals a bare JSON string payload that must be an ID.
func decodeID(data json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		return "", fmt.Errorf("%w: %v", errInvalidPayload, err)
	}
	if !validation.IsID(id) {
		return "", fmt.Errorf("%w: malformed id %q", errInvalidPayload, id)
	}
	return id, nil
}

// stillConnected re-checks the client after a storage call: a connection
// closed while the call was in flight gets no room joins or deliveries.
func stillConnected(c *Client) error {
	if c.detached.Load() || c.isClosed() {
		return errDisconnected
	}
	return nil
}

func isEmptyJSON(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
