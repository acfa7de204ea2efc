// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

/*
Package models defines the data structures shared by CohortBox packages.

Documents:
  - Chat: a group conversation with an admin and a participant list
  - User: profile fields shown in presence and typing events
  - Message: a stored chat message (text, media, audio or chatInfo)
  - Notification: a per-user notification delivered over the socket layer

HTTP:
  - APIResponse, APIError, Metadata: the response envelope for every endpoint
  - HealthStatus, ViewerCount: endpoint payloads

Document IDs are 24-character hex strings (see NewID and IsID). JSON field
names match what socket clients already send and receive (_id, chatId,
chatAdmin), so documents can be relayed without reshaping.
*/
package models
