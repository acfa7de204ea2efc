// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package services

import "context"

// ContextRunner is a blocking, context-scoped run loop such as
// *websocket.Hub.
type ContextRunner interface {
	RunWithContext(ctx context.Context) error
}

// HubService runs the websocket hub's housekeeping loop. When the loop
// returns the hub has closed every client and flushed pending batches.
type HubService struct {
	hub  ContextRunner
	name string
}

// NewHubService wraps hub.
func NewHubService(hub ContextRunner) *HubService {
	return &HubService{hub: hub, name: "websocket-hub"}
}

// Serve implements suture.Service.
func (s *HubService) Serve(ctx context.Context) error {
	return s.hub.RunWithContext(ctx)
}

func (s *HubService) String() string {
	return s.name
}
