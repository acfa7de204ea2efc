// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package websocket

import (
	"context"
	"testing"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/cohortbox/internal/eventbus"
	"github.com/tomtom215/cohortbox/internal/models"
)

func TestBusSubscriber_DeliversToUserRoom(t *testing.T) {
	hub, _ := newTestHub(t, newFakeStore())
	tab1 := connect(t, hub, userB)
	tab2 := connect(t, hub, userB)

	bus := eventbus.New(eventbus.Config{Persistent: true}, watermill.NopLogger{})
	t.Cleanup(func() { _ = bus.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = NewBusSubscriber(hub, bus).Run(ctx) }()

	n := &models.Notification{ID: models.NewID(), User: userB, Type: "friend_request_received"}
	if err := bus.PublishNotification(ctx, n); err != nil {
		t.Fatalf("PublishNotification() error = %v", err)
	}

	waitFor(t, "notification delivery", func() bool { return len(tab1.send) == 1 && len(tab2.send) == 1 })

	got := ofType(drain(t, tab1), EventNotification)
	if len(got) != 1 {
		t.Fatalf("got %d notifications, want 1", len(got))
	}
	var delivered models.Notification
	decodeData(t, got[0], &delivered)
	if delivered.ID != n.ID || delivered.Type != n.Type {
		t.Errorf("delivered = %+v", delivered)
	}
}
