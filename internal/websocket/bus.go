// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package websocket

import (
	"context"

	"github.com/tomtom215/cohortbox/internal/eventbus"
	"github.com/tomtom215/cohortbox/internal/logging"
	"github.com/tomtom215/cohortbox/internal/models"
)

// BusSubscriber delivers notifications published on the event bus to the
// recipient's user room.
type BusSubscriber struct {
	hub *Hub
	bus *eventbus.Bus
}

// NewBusSubscriber creates a subscriber feeding hub from bus.
func NewBusSubscriber(hub *Hub, bus *eventbus.Bus) *BusSubscriber {
	return &BusSubscriber{hub: hub, bus: bus}
}

// Run consumes notifications until ctx is canceled.
func (s *BusSubscriber) Run(ctx context.Context) error {
	return s.bus.NewNotificationHandler().
		Handle(s.deliver).
		Run(ctx)
}

func (s *BusSubscriber) deliver(ctx context.Context, n *models.Notification) error {
	sent := s.hub.DeliverNotification(n)
	logging.Ctx(ctx).Debug().
		Str("user_id", n.User).
		Str("type", n.Type).
		Int("connections", sent).
		Msg("delivered notification")
	return nil
}
