// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

/*
Package config provides centralized configuration management for CohortBox.

Configuration is layered with Koanf v2. Later sources override earlier ones:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, ./config.yaml or /etc/cohortbox/config.yaml
 3. Environment variables, mapped through an explicit table

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT (default 0.0.0.0:4000)
  - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - ENVIRONMENT: development, staging or production

Storage:
  - STORAGE_PATH: BadgerDB directory (default /data/cohortbox)
  - STORAGE_IN_MEMORY: keep all documents in memory
  - STORAGE_BREAKER_MAX_FAILURES, STORAGE_BREAKER_INTERVAL, STORAGE_BREAKER_TIMEOUT
  - STORAGE_GC_INTERVAL: value log GC period (default 10m, 0 disables)

Realtime:
  - PARTICIPANT_CACHE_TTL (default 60s)
  - BATCH_MAX_MESSAGES (default 5), BATCH_WINDOW (default 5s)
  - WS_SEND_BUFFER, WS_STORAGE_TIMEOUT, WS_EVENT_RATE, WS_EVENT_BURST, WS_MAX_MESSAGE_SIZE

Security:
  - JWT_SECRET (required, at least 32 characters)
  - CORS_ORIGINS: comma separated
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Supervisor:
  - SUPERVISOR_FAILURE_THRESHOLD, SUPERVISOR_FAILURE_DECAY,
    SUPERVISOR_FAILURE_BACKOFF, SUPERVISOR_SHUTDOWN_TIMEOUT

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	addr := cfg.Server.Addr()
*/
package config
