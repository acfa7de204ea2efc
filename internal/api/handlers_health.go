// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/cohortbox/internal/logging"
	"github.com/tomtom215/cohortbox/internal/models"
)

// readyCheckTimeout bounds the storage ping of the readiness probe.
const readyCheckTimeout = 2 * time.Second

// HealthLive handles liveness probe requests.
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, models.HealthStatus{
		Status:      "alive",
		Connections: h.wsHub.GetClientCount(),
		OnlineUsers: h.wsHub.OnlineUsers(),
		Uptime:      time.Since(h.startTime).Seconds(),
		CheckedAt:   time.Now(),
	})
}

// HealthReady handles readiness probe requests.
// Returns 503 while storage is unreachable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
	defer cancel()

	health := models.HealthStatus{
		Status:                  "ready",
		Storage:                 "ok",
		Connections:             h.wsHub.GetClientCount(),
		OnlineUsers:             h.wsHub.OnlineUsers(),
		Uptime:                  time.Since(h.startTime).Seconds(),
		CheckedAt:               time.Now(),
		ParticipantCacheHitRate: h.wsHub.Participants().HitRate(),
	}

	statusCode := http.StatusOK
	response := "success"
	if err := h.store.Ping(ctx); err != nil {
		statusCode = http.StatusServiceUnavailable
		response = "error"
		health.Status = "not_ready"
		health.Storage = "unavailable"
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Readiness check failed: storage unavailable")
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status:   response,
		Data:     health,
		Metadata: metadataFor(r),
	})
}
