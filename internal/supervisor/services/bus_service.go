// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package services

import (
	"context"
	"fmt"
)

// Runner is a subscriber loop that returns when ctx is canceled or its
// subscription fails.
type Runner interface {
	Run(ctx context.Context) error
}

// BusService keeps the notification bus subscriber running. A subscription
// error is returned to suture, which resubscribes after backoff.
type BusService struct {
	subscriber Runner
	name       string
}

// NewBusService wraps subscriber.
func NewBusService(subscriber Runner) *BusService {
	return &BusService{subscriber: subscriber, name: "notification-bus"}
}

// Serve implements suture.Service.
func (s *BusService) Serve(ctx context.Context) error {
	err := s.subscriber.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("notification subscriber: %w", err)
	}
	return fmt.Errorf("notification subscriber stopped unexpectedly")
}

func (s *BusService) String() string {
	return s.name
}
