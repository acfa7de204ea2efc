// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package storage

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cohortbox/internal/logging"
	"github.com/tomtom215/cohortbox/internal/metrics"
	"github.com/tomtom215/cohortbox/internal/models"
)

// BreakerConfig configures the circuit breaker around a Store.
type BreakerConfig struct {
	Name        string
	MaxFailures uint32        // consecutive failures before opening
	Interval    time.Duration // closed-state counter reset period
	Timeout     time.Duration // open-state duration before a half-open probe
}

// BreakerStore decorates a Store with a circuit breaker. Once the backing
// store fails MaxFailures times in a row, calls fail fast with
// gobreaker.ErrOpenState until the timeout elapses. Missing documents and
// caller cancellations are not failures.
type BreakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker[interface{}]
	name string
}

// NewBreakerStore wraps next with a circuit breaker.
func NewBreakerStore(next Store, cfg BreakerConfig) *BreakerStore {
	if cfg.Name == "" {
		cfg.Name = "storage"
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrNotFound) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Storage circuit breaker state changed")
		},
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)

	return &BreakerStore{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[interface{}](settings),
		name: cfg.Name,
	}
}

// State returns the breaker state name: closed, half-open or open.
func (b *BreakerStore) State() string {
	return b.cb.State().String()
}

// GetChat retrieves a chat through the breaker.
func (b *BreakerStore) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	return execute(b, "get_chat", func() (*models.Chat, error) {
		return b.next.GetChat(ctx, chatID)
	})
}

// GetUser retrieves a user through the breaker.
func (b *BreakerStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return execute(b, "get_user", func() (*models.User, error) {
		return b.next.GetUser(ctx, userID)
	})
}

// FindMessage looks up a message through the breaker.
func (b *BreakerStore) FindMessage(ctx context.Context, messageID, chatID, fromID string) (*models.Message, error) {
	return execute(b, "find_message", func() (*models.Message, error) {
		return b.next.FindMessage(ctx, messageID, chatID, fromID)
	})
}

// CreateMessage stores a message through the breaker.
func (b *BreakerStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	_, err := execute(b, "create_message", func() (struct{}, error) {
		return struct{}{}, b.next.CreateMessage(ctx, msg)
	})
	return err
}

// MarkMessageRead marks a message read through the breaker.
func (b *BreakerStore) MarkMessageRead(ctx context.Context, messageID string) error {
	_, err := execute(b, "mark_message_read", func() (struct{}, error) {
		return struct{}{}, b.next.MarkMessageRead(ctx, messageID)
	})
	return err
}

// CreateNotification stores a notification through the breaker.
func (b *BreakerStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	_, err := execute(b, "create_notification", func() (struct{}, error) {
		return struct{}{}, b.next.CreateNotification(ctx, n)
	})
	return err
}

// PutChat writes a chat through the breaker.
func (b *BreakerStore) PutChat(ctx context.Context, chat *models.Chat) error {
	_, err := execute(b, "put_chat", func() (struct{}, error) {
		return struct{}{}, b.next.PutChat(ctx, chat)
	})
	return err
}

// PutUser writes a user through the breaker.
func (b *BreakerStore) PutUser(ctx context.Context, user *models.User) error {
	_, err := execute(b, "put_user", func() (struct{}, error) {
		return struct{}{}, b.next.PutUser(ctx, user)
	})
	return err
}

// Ping reports unhealthy while the breaker is open, without touching the store.
func (b *BreakerStore) Ping(ctx context.Context) error {
	if b.cb.State() == gobreaker.StateOpen {
		return gobreaker.ErrOpenState
	}
	return b.next.Ping(ctx)
}

// Close closes the wrapped store.
func (b *BreakerStore) Close() error {
	return b.next.Close()
}

// execute runs fn through the breaker and records storage metrics.
func execute[T any](b *BreakerStore, op string, fn func() (T, error)) (T, error) {
	start := time.Now()
	res, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})

	var zero T
	if err != nil {
		result := "failure"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result = "rejected"
		} else if errors.Is(err, ErrNotFound) {
			result = "success"
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, result).Inc()
		metrics.RecordStorageOperation(op, time.Since(start), err, errors.Is(err, ErrNotFound))
		return zero, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.RecordStorageOperation(op, time.Since(start), nil, false)
	typed, ok := res.(T)
	if !ok {
		return zero, nil
	}
	return typed, nil
}
