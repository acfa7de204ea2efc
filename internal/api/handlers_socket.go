// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/cohortbox/internal/logging"
	"github.com/tomtom215/cohortbox/internal/models"
	ws "github.com/tomtom215/cohortbox/internal/websocket"
)

// getUpgrader returns a WebSocket upgrader with secure origin validation.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates the Origin header against the configured
// CORS origins. Requests without an Origin header are rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().
		Str("origin", sanitizeLogValue(origin)).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// Socket upgrades an authenticated request to a realtime connection.
// The token comes from the Authorization header or the token query
// parameter; the connection is refused before the upgrade without one.
//
// Method: GET
// Path: /socket
func (h *Handler) Socket(w http.ResponseWriter, r *http.Request) {
	claims, err := h.jwt.ClaimsFromRequest(r)
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("WebSocket connection rejected: authentication failed")
		http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
		return
	}
	if !models.IsID(claims.UserID) {
		logging.Ctx(r.Context()).Warn().
			Str("user_id", sanitizeLogValue(claims.UserID)).
			Msg("WebSocket connection rejected: token carries a malformed user id")
		http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error response.
		logging.Ctx(r.Context()).Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(h.wsHub, conn, claims)
	if err := h.wsHub.Attach(client); err != nil {
		if errors.Is(err, ws.ErrHubClosed) {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(time.Second))
		}
		_ = conn.Close()
		return
	}
	client.Start()
}
