// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

/*
Package eventbus decouples the HTTP layer from socket fan-out with an
in-process Watermill GoChannel pub/sub.

Topics:

  - notifications.created: a stored models.Notification to deliver to
    every connection of its recipient

The bus is process-local. Messages published while no handler is
subscribed are dropped, which matches the best-effort delivery of the
realtime layer: a recipient that misses one sees it through HTTP.

Usage Example:

	bus := eventbus.New(eventbus.DefaultConfig(), nil)
	defer bus.Close()

	go bus.NewNotificationHandler().
	    Handle(func(ctx context.Context, n *models.Notification) error {
	        hub.DeliverNotification(n)
	        return nil
	    }).
	    Run(ctx)

	err := bus.PublishNotification(ctx, notification)
*/
package eventbus
