// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cohortbox/internal/auth"
	"github.com/tomtom215/cohortbox/internal/logging"
	"github.com/tomtom215/cohortbox/internal/models"
	"github.com/tomtom215/cohortbox/internal/validation"
)

// storageWriteTimeout bounds the notification insert.
const storageWriteTimeout = 5 * time.Second

// CreateNotificationRequest is the body of POST /api/v1/notifications.
type CreateNotificationRequest struct {
	User    string `json:"user"`
	Type    string `json:"type"`
	Chat    string `json:"chat,omitempty"`
	Message string `json:"message,omitempty"`
	Text    string `json:"text,omitempty"`
}

// CreateNotification stores a notification and publishes it for delivery to
// every open connection of its recipient. The sender is the authenticated
// caller. A publish failure is logged only: the notification is stored and
// the recipient sees it on the next fetch.
//
// Method: POST
// Path: /api/v1/notifications
func (h *Handler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}

	var req CreateNotificationRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "Request body must be a JSON notification", err)
		return
	}

	n := &models.Notification{
		ID:        models.NewID(),
		User:      req.User,
		Sender:    claims.UserID,
		Type:      req.Type,
		Chat:      req.Chat,
		Message:   req.Message,
		Text:      req.Text,
		CreatedAt: time.Now().UTC(),
	}
	if verr := validation.ValidateStruct(n); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storageWriteTimeout)
	defer cancel()

	if err := h.store.CreateNotification(ctx, n); err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			respondError(w, r, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Storage temporarily unavailable", err)
			return
		}
		respondError(w, r, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to store notification", err)
		return
	}

	if err := h.publisher.PublishNotification(r.Context(), n); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).
			Str("notification_id", n.ID).
			Msg("Failed to publish notification for realtime delivery")
	}

	respondSuccess(w, r, http.StatusCreated, n)
}
