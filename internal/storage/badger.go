// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cohortbox/internal/models"
)

// Key prefixes for BadgerDB storage
const (
	chatKeyPrefix         = "chat:"
	userKeyPrefix         = "user:"
	messageKeyPrefix      = "message:"
	notificationKeyPrefix = "notification:"
)

// BadgerStore implements Store on BadgerDB with JSON-encoded documents.
type BadgerStore struct {
	db     *badger.DB
	ownsDB bool
}

// Open opens a BadgerDB at path, or a purely in-memory database when
// inMemory is true, and wraps it in a BadgerStore that closes it on Close.
func Open(path string, inMemory bool) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	return &BadgerStore{db: db, ownsDB: true}, nil
}

// NewBadgerStore wraps an already open database. Close does not close db.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// GetChat retrieves a chat by ID.
func (s *BadgerStore) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	var chat models.Chat
	if err := s.get(ctx, chatKeyPrefix+chatID, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// GetUser retrieves a user by ID.
func (s *BadgerStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.get(ctx, userKeyPrefix+userID, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindMessage retrieves a message by ID, scoped to its chat and sender.
func (s *BadgerStore) FindMessage(ctx context.Context, messageID, chatID, fromID string) (*models.Message, error) {
	var msg models.Message
	if err := s.get(ctx, messageKeyPrefix+messageID, &msg); err != nil {
		return nil, err
	}
	if msg.ChatID != chatID || msg.From != fromID {
		return nil, ErrNotFound
	}
	return &msg, nil
}

// CreateMessage stores a new message, assigning an ID and timestamp when unset.
func (s *BadgerStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = models.NewID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	if msg.Media == nil {
		msg.Media = []string{}
	}
	return s.put(ctx, messageKeyPrefix+msg.ID, msg)
}

// MarkMessageRead sets the read flag on a message.
func (s *BadgerStore) MarkMessageRead(ctx context.Context, messageID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(messageKeyPrefix + messageID)
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get message: %w", err)
		}

		var msg models.Message
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &msg)
		}); err != nil {
			return fmt.Errorf("decode message: %w", err)
		}
		if msg.Read {
			return nil
		}
		msg.Read = true

		data, err := json.Marshal(&msg)
		if err != nil {
			return fmt.Errorf("marshal message: %w", err)
		}
		return txn.Set(key, data)
	})
}

// CreateNotification stores a new notification, assigning an ID and timestamp when unset.
func (s *BadgerStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = models.NewID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	return s.put(ctx, notificationKeyPrefix+n.ID, n)
}

// PutChat creates or replaces a chat.
func (s *BadgerStore) PutChat(ctx context.Context, chat *models.Chat) error {
	if chat.ID == "" {
		return fmt.Errorf("put chat: empty id")
	}
	return s.put(ctx, chatKeyPrefix+chat.ID, chat)
}

// PutUser creates or replaces a user.
func (s *BadgerStore) PutUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return fmt.Errorf("put user: empty id")
	}
	return s.put(ctx, userKeyPrefix+user.ID, user)
}

// Ping reports whether the database is usable.
func (s *BadgerStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return ErrClosed
	}
	return nil
}

// RunGC reclaims value log space until badger finds nothing left to
// rewrite. In-memory databases have no value log and return nil.
func (s *BadgerStore) RunGC(ctx context.Context) error {
	if s.db.Opts().InMemory {
		return nil
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.db.IsClosed() {
			return ErrClosed
		}
		err := s.db.RunValueLogGC(0.5)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run value log GC: %w", err)
		}
	}
}

// Close closes the database if this store opened it.
func (s *BadgerStore) Close() error {
	if s.ownsDB && !s.db.IsClosed() {
		return s.db.Close()
	}
	return nil
}

func (s *BadgerStore) get(ctx context.Context, key string, dst interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return ErrClosed
	}
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dst)
		})
	})
}

func (s *BadgerStore) put(ctx context.Context, key string, doc interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return ErrClosed
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}
