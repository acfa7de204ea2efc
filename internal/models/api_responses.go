// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package models

import (
	"time"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "user must be a valid id",
//	    "details": {"field": "user"}
//	  },
//	  "metadata": {"timestamp": "2026-10-18T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id,omitempty"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError represents an error response with structured error details.
//   - Code: Machine-readable error code (e.g., "VALIDATION_ERROR", "STORAGE_ERROR")
//   - Message: Human-readable error message
//   - Details: Additional context (field names, constraints, etc.)
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is returned by the health endpoints.
type HealthStatus struct {
	Status      string    `json:"status"`
	Storage     string    `json:"storage,omitempty"`
	Connections int       `json:"connections"`
	OnlineUsers int       `json:"online_users"`
	Uptime      float64   `json:"uptime_seconds"`
	CheckedAt   time.Time `json:"checked_at"`

	// ParticipantCacheHitRate is a percentage, reported by the readiness probe.
	ParticipantCacheHitRate float64 `json:"participant_cache_hit_rate,omitempty"`
}

// ViewerCount is returned by the live viewer endpoint.
type ViewerCount struct {
	ChatID string `json:"chatId"`
	Count  int    `json:"count"`
}
