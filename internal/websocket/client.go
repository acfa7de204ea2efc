// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package websocket

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/cohortbox/internal/auth"
	"github.com/tomtom215/cohortbox/internal/logging"
	"github.com/tomtom215/cohortbox/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024 // 512 KB
)

// clientIDCounter gives clients increasing IDs so room fan-out can iterate
// in a stable order.
var clientIDCounter atomic.Uint64

// Client is one authenticated socket connection.
type Client struct {
	id     uint64
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
	claims *auth.Claims

	limiter *rate.Limiter

	// ctx is canceled when the client detaches, aborting in-flight storage calls.
	ctx    context.Context
	cancel context.CancelFunc
	logger zerolog.Logger

	mu       sync.Mutex
	closed   bool
	detached atomic.Bool

	chatMu      sync.Mutex
	currentChat string
	currentRole string
}

// NewClient creates a client for an upgraded connection authenticated as
// claims. conn may be nil in tests that never start the pumps.
func NewClient(hub *Hub, conn *websocket.Conn, claims *auth.Claims) *Client {
	id := clientIDCounter.Add(1)
	correlationID := logging.GenerateCorrelationID()
	ctx, cancel := context.WithCancel(logging.ContextWithCorrelationID(context.Background(), correlationID))

	return &Client{
		id:      id,
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, hub.cfg.SendBuffer),
		userID:  claims.UserID,
		claims:  claims,
		limiter: rate.NewLimiter(rate.Limit(hub.cfg.EventRate), hub.cfg.EventBurst),
		ctx:     ctx,
		cancel:  cancel,
		logger: logging.With().
			Str("correlation_id", correlationID).
			Str("user_id", claims.UserID).
			Uint64("client_id", id).
			Logger(),
	}
}

// ID returns the client's unique identifier.
func (c *Client) ID() uint64 {
	return c.id
}

// UserID returns the authenticated user of the connection.
func (c *Client) UserID() string {
	return c.userID
}

// CurrentChat returns the chat the connection last joined and its role.
func (c *Client) CurrentChat() (chatID, role string) {
	c.chatMu.Lock()
	defer c.chatMu.Unlock()
	return c.currentChat, c.currentRole
}

func (c *Client) setCurrentChat(chatID, role string) {
	c.chatMu.Lock()
	c.currentChat, c.currentRole = chatID, role
	c.chatMu.Unlock()
}

// Emit sends one event to this connection.
func (c *Client) Emit(event string, payload interface{}) bool {
	data, err := MarshalMessage(Message{Type: event, Data: payload})
	if err != nil {
		c.logger.Error().Err(err).Str("event", event).Msg("failed to marshal websocket message")
		return false
	}
	return c.sendRaw(data)
}

// sendRaw queues an encoded envelope. A client whose buffer is full is too
// slow to keep up and is closed.
func (c *Client) sendRaw(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		metrics.WSMessagesSent.Inc()
		return true
	default:
		metrics.WSSendBufferFull.Inc()
		c.logger.Warn().Int("buffer", cap(c.send)).Msg("websocket send buffer full, closing slow client")
		c.closeLocked()
		return false
	}
}

// close stops outbound delivery. The write pump sends a close frame and exits.
func (c *Client) close() {
	c.mu.Lock()
	c.closeLocked()
	c.mu.Unlock()
}

func (c *Client) closeLocked() {
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// readPump reads events and dispatches them one at a time, so a
// connection's events are handled in the order they arrive.
func (c *Client) readPump() {
	defer func() {
		c.hub.Detach(c)
		_ = c.conn.Close() // Explicitly ignore error - best-effort cleanup
	}()

	c.conn.SetReadLimit(c.hub.cfg.MaxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				metrics.WSErrors.WithLabelValues("unexpected_close").Inc()
				c.logger.Error().Err(err).Msg("unexpected websocket close error")
			}
			return
		}

		var msg InboundMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
			metrics.RecordDroppedEvent(unknownEventLabel, "invalid")
			c.logger.Debug().Err(err).Msg("dropping malformed websocket frame")
			continue
		}

		if !c.limiter.Allow() {
			metrics.RecordDroppedEvent(c.hub.eventLabel(msg.Type), "rate_limited")
			continue
		}

		c.hub.dispatch(c, msg)
	}
}

// writePump writes queued envelopes and keepalive pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Explicitly ignore error - best-effort cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("failed to set write deadline")
				return
			}

			if !ok {
				// The hub closed the channel
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug().Err(err).Msg("failed to write close message")
				}
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				metrics.WSErrors.WithLabelValues("write").Inc()
				c.logger.Debug().Err(err).Msg("failed to write websocket message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
