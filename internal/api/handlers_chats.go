// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/cohortbox/internal/models"
)

// ChatViewers returns the number of distinct users watching a chat.
//
// Method: GET
// Path: /api/v1/chats/{chatID}/viewers
func (h *Handler) ChatViewers(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	if !models.IsID(chatID) {
		respondError(w, r, http.StatusBadRequest, "INVALID_CHAT_ID", "chatID must be a valid id", nil)
		return
	}

	respondSuccess(w, r, http.StatusOK, models.ViewerCount{
		ChatID: chatID,
		Count:  h.wsHub.ViewerCount(chatID),
	})
}
