// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cohortbox/internal/logging"
	"github.com/tomtom215/cohortbox/internal/metrics"
	"github.com/tomtom215/cohortbox/internal/models"
)

// TopicNotificationCreated carries models.Notification documents that the
// HTTP layer stored and the realtime layer must deliver.
const TopicNotificationCreated = "notifications.created"

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("eventbus: closed")

// Config holds event bus settings.
type Config struct {
	// OutputChannelBuffer is the per-subscriber channel size.
	OutputChannelBuffer int64

	// Persistent replays every published message to late subscribers. It
	// keeps all messages in memory and is meant for tests.
	Persistent bool
}

// DefaultConfig returns the settings used by the server.
func DefaultConfig() Config {
	return Config{OutputChannelBuffer: 256}
}

// Bus is the in-process publish/subscribe channel between the HTTP layer
// and socket fan-out. Messages are not persisted: a message published while
// nobody subscribes is lost.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter

	mu     sync.RWMutex
	closed bool
}

// NewLogger adapts the application logger for watermill.
func NewLogger() watermill.LoggerAdapter {
	return watermill.NewSlogLogger(logging.NewSlogLogger())
}

// New creates a bus. A nil logger uses NewLogger.
func New(cfg Config, logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = NewLogger()
	}
	if cfg.OutputChannelBuffer <= 0 {
		cfg.OutputChannelBuffer = DefaultConfig().OutputChannelBuffer
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: cfg.OutputChannelBuffer,
			Persistent:          cfg.Persistent,
		}, logger),
		logger: logger,
	}
}

// Publish sends msg to topic.
func (b *Bus) Publish(ctx context.Context, topic string, msg *message.Message) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set("correlation_id", id)
	}
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	metrics.BusMessagesPublished.WithLabelValues(topic).Inc()
	return nil
}

// PublishNotification serializes n and publishes it on
// TopicNotificationCreated.
func (b *Bus) PublishNotification(ctx context.Context, n *models.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("serialize notification: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("user_id", n.User)
	msg.Metadata.Set("type", n.Type)
	return b.Publish(ctx, TopicNotificationCreated, msg)
}

// Subscribe returns a channel of messages for topic. The channel is closed
// when ctx is canceled or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

// Close shuts the bus down and closes every subscription channel.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	return b.pubsub.Close()
}
