// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package websocket

import (
	"github.com/goccy/go-json"
)

// Inbound event names.
const (
	EventRegister             = "register"
	EventJoinChat             = "joinChat"
	EventLeaveChat            = "leaveChat"
	EventMessage              = "message"
	EventPrivateMessageRead   = "privateMessageRead"
	EventReaction             = "reaction"
	EventTyping               = "typing"
	EventLiveComment          = "liveComment"
	EventLiveCommentPin       = "liveCommentPin"
	EventDeleteMessage        = "deleteMessage"
	EventParticipantRemoved   = "participantRemoved"
	EventParticipantRequested = "participantRequested"
	EventParticipantAccepted  = "participantAccepted"
	EventParticipantJoined    = "participantJoined"
	EventParticipantLeft      = "participantLeft"
	EventFriendRequest        = "friendRequest"
	EventCancelFriendRequest  = "cancelFriendRequest"
	EventAcceptFriendRequest  = "acceptFriendRequest"
	EventRejectFriendRequest  = "rejectFriendRequest"
	EventUnfriend             = "unfriend"
	EventNotification         = "notification"
	EventPing                 = "ping"
)

// Outbound-only event names.
const (
	EventPong                  = "pong"
	EventLiveViewerCount       = "liveViewerCount"
	EventMessagesBatch         = "messagesBatch"
	EventMessagesRead          = "messagesRead"
	EventFriendRequestSent     = "friendRequestSent"
	EventFriendRequestReceived = "friendRequestReceived"
	EventFriendRequestCanceled = "friendRequestCanceled"
	EventFriendRequestAccepted = "friendRequestAccepted"
	EventFriendRequestRejected = "friendRequestRejected"
)

// Roles accepted by joinChat. Anything other than RoleViewer asks for
// member access.
const (
	RoleViewer = "viewer"
	RoleMember = "member"
)

// Message is the wire envelope in both directions.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// InboundMessage is an envelope read from a client. Data stays raw until
// the event handler decodes it into its own payload type.
type InboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// MarshalMessage encodes an outbound envelope.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// ViewerCountPayload is the body of liveViewerCount.
type ViewerCountPayload struct {
	ChatID string `json:"chatId"`
	Count  int    `json:"count"`
}

// MessagesBatchPayload is the body of messagesBatch.
type MessagesBatchPayload struct {
	ChatID   string            `json:"chatId"`
	Messages []json.RawMessage `json:"messages"`
}

type joinChatPayload struct {
	ChatID string `json:"chatId" validate:"required,objectid"`
	Role   string `json:"role"`
}

type idRef struct {
	ID string `json:"_id"`
}

// chatMessagePayload is the subset of a chat message the server inspects.
// The message itself is relayed exactly as the client sent it.
type chatMessagePayload struct {
	ChatID  string            `json:"chatId" validate:"required,objectid"`
	From    idRef             `json:"from"`
	Type    string            `json:"type" validate:"required,oneof=text media audio"`
	Message string            `json:"message"`
	Media   []json.RawMessage `json:"media"`
}

type messageEventPayload struct {
	Message json.RawMessage `json:"message"`
}

type privateMessageReadPayload struct {
	MsgID  string `json:"msgId" validate:"required,objectid"`
	To     string `json:"to" validate:"required,objectid"`
	ChatID string `json:"chatId" validate:"required,objectid"`
}

type messagesReadPayload struct {
	ChatID string `json:"chatId"`
	Reader string `json:"reader"`
}

type reactionPayload struct {
	MsgID     string          `json:"msgId" validate:"required,objectid"`
	ChatID    string          `json:"chatId" validate:"required,objectid"`
	UserID    string          `json:"userId"`
	Username  string          `json:"username,omitempty"`
	Emoji     string          `json:"emoji" validate:"required,max=64"`
	Remove    bool            `json:"remove"`
	Reactions json.RawMessage `json:"reactions,omitempty"`
}

type typingPayload struct {
	ChatID   string `json:"chatId" validate:"required,objectid"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Typing   bool   `json:"typing"`
}

type liveCommentPinPayload struct {
	ChatID  string          `json:"chatId" validate:"required,objectid"`
	Comment json.RawMessage `json:"comment"`
}

type deleteMessagePayload struct {
	ID     string `json:"_id" validate:"required,objectid"`
	ChatID string `json:"chatId" validate:"required,objectid"`
}

type participantPayload struct {
	UserID  string          `json:"userId" validate:"required,objectid"`
	ChatID  string          `json:"chatId" validate:"required,objectid"`
	Message json.RawMessage `json:"message,omitempty"`
}

type chatRefPayload struct {
	ChatID string `json:"chatId" validate:"required,objectid"`
}

type liveCommentPayload struct {
	ChatID  string                     `json:"chatId" validate:"required,objectid"`
	Comment map[string]json.RawMessage `json:"comment"`
}

type participantRemovedPayload struct {
	UserID string      `json:"userId"`
	ChatID string      `json:"chatId"`
	Msg    interface{} `json:"msg"`
}

type participantRequestedPayload struct {
	ChatID string          `json:"chatId"`
	Msg    json.RawMessage `json:"msg"`
}

type participantUserPayload struct {
	ChatID string      `json:"chatId"`
	User   interface{} `json:"user"`
}

type friendRequestPayload struct {
	From idRef `json:"from"`
	To   idRef `json:"to"`
}

type friendPairPayload struct {
	To   string `json:"to"`
	From string `json:"from"`
}

type friendObj struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type friendAcceptedPayload struct {
	To        string    `json:"to"`
	From      string    `json:"from"`
	FriendObj friendObj `json:"friendObj"`
}

type notificationPayload struct {
	User string `json:"user" validate:"required,objectid"`
}
