// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

// Package main is the entry point for the CohortBox realtime delivery server.
//
// The server accepts authenticated websocket connections and relays chat
// traffic between them: presence, room membership, chat messages, live
// viewer counts with batched delivery to viewers, reactions, typing
// indicators, friend requests and notifications.
//
// # Startup
//
//  1. Configuration: defaults, optional config.yaml, environment (Koanf v2)
//  2. Logging: zerolog, reconfigured from the logging section
//  3. Storage: BadgerDB wrapped in a circuit breaker
//  4. Realtime: websocket hub and the in-process notification bus
//  5. HTTP: chi router with CORS, rate limiting and JWT authentication
//  6. Supervision: suture tree running the hub, bus subscriber, storage GC
//     and HTTP server
//
// # Configuration
//
// JWT_SECRET is required. See package config for every variable.
//
//	export JWT_SECRET=$(openssl rand -hex 32)
//	export STORAGE_PATH=/var/lib/cohortbox
//	./cohortbox
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the supervisor tree. The HTTP server stops
// accepting connections, the hub flushes pending viewer batches and closes
// every socket, then storage is closed.
package main
