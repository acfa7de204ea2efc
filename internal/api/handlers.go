// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package api

import (
	"context"
	"time"

	"github.com/tomtom215/cohortbox/internal/auth"
	"github.com/tomtom215/cohortbox/internal/config"
	"github.com/tomtom215/cohortbox/internal/eventbus"
	"github.com/tomtom215/cohortbox/internal/models"
	ws "github.com/tomtom215/cohortbox/internal/websocket"
)

// Store is the storage the HTTP layer needs on top of the realtime layer's.
type Store interface {
	ws.Store
	CreateNotification(ctx context.Context, n *models.Notification) error
	Ping(ctx context.Context) error
}

// Publisher publishes stored notifications for socket delivery.
type Publisher interface {
	PublishNotification(ctx context.Context, n *models.Notification) error
}

var _ Publisher = (*eventbus.Bus)(nil)

// Handler serves the HTTP endpoints.
type Handler struct {
	config    *config.Config
	store     Store
	wsHub     *ws.Hub
	publisher Publisher
	jwt       *auth.JWTManager
	startTime time.Time
}

// NewHandler creates a handler. cfg may be nil in tests; the websocket
// origin check then allows any non-empty origin.
func NewHandler(cfg *config.Config, store Store, hub *ws.Hub, publisher Publisher, jwt *auth.JWTManager) *Handler {
	return &Handler{
		config:    cfg,
		store:     store,
		wsHub:     hub,
		publisher: publisher,
		jwt:       jwt,
		startTime: time.Now(),
	}
}
