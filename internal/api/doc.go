// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

/*
Package api provides the HTTP surface of the delivery service.

Routes:

	GET  /socket                          websocket upgrade (token in header or ?token=)
	GET  /api/v1/health/live              liveness probe
	GET  /api/v1/health/ready             readiness probe (storage ping)
	POST /api/v1/notifications            store and deliver a notification
	GET  /api/v1/chats/{chatID}/viewers   live viewer count
	GET  /metrics                         Prometheus metrics

JSON endpoints answer with models.APIResponse. Errors carry a machine
readable code such as VALIDATION_ERROR, STORAGE_UNAVAILABLE or
RATE_LIMITED.

Notifications are written to storage first and then published on the event
bus. The websocket layer consumes the bus and emits "notification" to the
recipient's user room, so the HTTP handler never touches socket state.

Usage:

	handler := api.NewHandler(cfg, store, hub, bus, jwtManager)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(cfg.Security)))
	srv := &http.Server{Addr: cfg.Server.Addr(), Handler: router.SetupChi()}
*/
package api
