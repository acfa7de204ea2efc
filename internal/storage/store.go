// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

// Package storage provides the document store behind the realtime layer:
// chats, users, messages and notifications.
package storage

import (
	"context"
	"errors"

	"github.com/tomtom215/cohortbox/internal/models"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("storage: document not found")

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("storage: store closed")

// Store is the document store used by socket handlers and HTTP endpoints.
// Implementations must be safe for concurrent use.
type Store interface {
	GetChat(ctx context.Context, chatID string) (*models.Chat, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// FindMessage returns the message only if it belongs to chatID and was
	// sent by fromID; otherwise ErrNotFound.
	FindMessage(ctx context.Context, messageID, chatID, fromID string) (*models.Message, error)

	CreateMessage(ctx context.Context, msg *models.Message) error
	MarkMessageRead(ctx context.Context, messageID string) error
	CreateNotification(ctx context.Context, n *models.Notification) error

	PutChat(ctx context.Context, chat *models.Chat) error
	PutUser(ctx context.Context, user *models.User) error

	Ping(ctx context.Context) error
	Close() error
}
