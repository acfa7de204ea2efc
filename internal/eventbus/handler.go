// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package eventbus

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cohortbox/internal/logging"
	"github.com/tomtom215/cohortbox/internal/metrics"
	"github.com/tomtom215/cohortbox/internal/models"
)

// ErrMalformed marks a message that can never be processed. It is acked
// and dropped instead of being redelivered.
var ErrMalformed = errors.New("eventbus: malformed message")

// MessageHandler provides a fluent API for processing one topic.
type MessageHandler struct {
	bus     *Bus
	topic   string
	handler func(ctx context.Context, msg *message.Message) error
	logger  watermill.LoggerAdapter
}

// NewMessageHandler creates a handler for messages on topic.
func (b *Bus) NewMessageHandler(topic string) *MessageHandler {
	return &MessageHandler{
		bus:    b,
		topic:  topic,
		logger: b.logger,
	}
}

// Handle sets the processing function. Returning an error nacks the message
// so it is redelivered, unless the error wraps ErrMalformed.
func (h *MessageHandler) Handle(fn func(ctx context.Context, msg *message.Message) error) *MessageHandler {
	h.handler = fn
	return h
}

// Run processes messages until ctx is canceled or the bus closes.
func (h *MessageHandler) Run(ctx context.Context) error {
	messages, err := h.bus.Subscribe(ctx, h.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", h.topic, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if err := h.processMessage(ctx, msg); err != nil {
				h.logger.Error("Message processing failed", err, watermill.LogFields{
					"message_uuid": msg.UUID,
					"topic":        h.topic,
				})
			}
		}
	}
}

func (h *MessageHandler) processMessage(ctx context.Context, msg *message.Message) error {
	if h.handler == nil {
		msg.Ack()
		return nil
	}

	if id := msg.Metadata.Get("correlation_id"); id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	}

	err := h.handler(ctx, msg)
	switch {
	case err == nil:
		metrics.BusMessagesDelivered.WithLabelValues(h.topic, "delivered").Inc()
		msg.Ack()
	case errors.Is(err, ErrMalformed):
		metrics.BusMessagesDelivered.WithLabelValues(h.topic, "malformed").Inc()
		msg.Ack()
	default:
		msg.Nack()
	}
	return err
}

// NotificationHandler decodes TopicNotificationCreated messages.
type NotificationHandler struct {
	handler *MessageHandler
}

// NewNotificationHandler creates a handler for stored notifications.
func (b *Bus) NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{handler: b.NewMessageHandler(TopicNotificationCreated)}
}

// Handle sets the notification processing function.
func (h *NotificationHandler) Handle(fn func(ctx context.Context, n *models.Notification) error) *NotificationHandler {
	h.handler.Handle(func(ctx context.Context, msg *message.Message) error {
		var n models.Notification
		if err := json.Unmarshal(msg.Payload, &n); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if n.User == "" {
			return fmt.Errorf("%w: notification without recipient", ErrMalformed)
		}
		return fn(ctx, &n)
	})
	return h
}

// Run processes notifications until ctx is canceled.
func (h *NotificationHandler) Run(ctx context.Context) error {
	return h.handler.Run(ctx)
}
