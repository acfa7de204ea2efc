// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package models

import (
	"strings"
	"time"
)

// Chat is a group conversation. Participants may send messages and join the
// members room; anyone may watch as a viewer.
type Chat struct {
	ID           string    `json:"_id" validate:"required,objectid"`
	Name         string    `json:"name"`
	Admin        string    `json:"chatAdmin" validate:"required,objectid"`
	Participants []string  `json:"participants" validate:"dive,objectid"`
	CreatedAt    time.Time `json:"createdAt"`
}

// HasParticipant reports whether userID is listed as a participant.
func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// IsAdmin reports whether userID administers the chat.
func (c *Chat) IsAdmin(userID string) bool {
	return c.Admin != "" && c.Admin == userID
}

// User is the profile subset the realtime layer reads.
type User struct {
	ID        string `json:"_id" validate:"required,objectid"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	DP        string `json:"dp,omitempty"`
}

// DisplayName joins first and last name the way presence entries show them.
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Message types.
const (
	MessageTypeText     = "text"
	MessageTypeMedia    = "media"
	MessageTypeAudio    = "audio"
	MessageTypeChatInfo = "chatInfo"
)

// Message is a stored chat message.
type Message struct {
	ID        string    `json:"_id"`
	ChatID    string    `json:"chatId"`
	From      string    `json:"from"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Media     []string  `json:"media"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notification types accepted by the notification endpoint.
var NotificationTypes = []string{
	"welcome",
	"friend_request_received",
	"friend_request_accepted",
	"message_received",
	"added_to_group_request",
	"accepted_group_request",
	"removed_from_group",
	"chat_participant_joined",
	"mention",
	"post_reaction",
	"post_comment",
	"system",
}

// Notification is delivered to every connection of its recipient.
type Notification struct {
	ID        string    `json:"_id"`
	User      string    `json:"user" validate:"required,objectid"`
	Sender    string    `json:"sender,omitempty" validate:"omitempty,objectid"`
	Type      string    `json:"type" validate:"required,oneof=welcome friend_request_received friend_request_accepted message_received added_to_group_request accepted_group_request removed_from_group chat_participant_joined mention post_reaction post_comment system"`
	Chat      string    `json:"chat,omitempty" validate:"omitempty,objectid"`
	Message   string    `json:"message,omitempty" validate:"omitempty,objectid"`
	Text      string    `json:"text,omitempty" validate:"max=2000"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}
