// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package websocket

import (
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cohortbox/internal/metrics"
)

// Batch defaults.
const (
	DefaultBatchMaxMessages = 5
	DefaultBatchWindow      = 5 * time.Second
)

// Flush triggers, used as metric labels.
const (
	flushTriggerSize   = "size"
	flushTriggerTimer  = "timer"
	flushTriggerManual = "manual"
	flushTriggerStop   = "stop"
)

// BatchSink receives flushed batches.
type BatchSink interface {
	// ViewerAudience returns how many connections are in chatID's viewers room.
	ViewerAudience(chatID string) int
	// BroadcastBatch sends messages to chatID's viewers room as one event.
	BroadcastBatch(chatID string, messages []json.RawMessage)
}

// stopper is the part of *time.Timer the batcher uses.
type stopper interface {
	Stop() bool
}

// afterFunc schedules f after d. Replaced in tests.
type afterFunc func(d time.Duration, f func()) stopper

func timeAfterFunc(d time.Duration, f func()) stopper {
	return time.AfterFunc(d, f)
}

type batch struct {
	queue []json.RawMessage
	timer stopper
	gen   uint64
}

// takenBatch is a queue removed from the batcher and not yet delivered. done
// is closed once it is delivered; prev is the done of the chat's previous
// taken batch, if that one was still in flight.
type takenBatch struct {
	queue []json.RawMessage
	prev  chan struct{}
	done  chan struct{}
}

// Batcher coalesces chat messages bound for viewer rooms. Per chat it is
// idle (no entry), accumulating (queue and timer), or flushing.
//
// A chat's queue is flushed when it reaches maxSize or when the window timer
// started by its first message fires, whichever comes first. A queue is
// taken out of the batcher under the same lock that appends to it, so it
// never holds more than maxSize messages. A flush with nobody in the viewers
// room discards the queue. Batches of one chat are delivered in the order
// they were taken; different chats never wait on each other.
type Batcher struct {
	mu      sync.Mutex
	batches map[string]*batch
	// tails holds the done channel of each chat's most recent in-flight batch.
	tails map[string]chan struct{}
	seq   uint64

	maxSize int
	window  time.Duration
	sink    BatchSink
	after   afterFunc
}

// NewBatcher creates a batcher that flushes into sink.
func NewBatcher(sink BatchSink, maxSize int, window time.Duration) *Batcher {
	if maxSize <= 0 {
		maxSize = DefaultBatchMaxMessages
	}
	if window <= 0 {
		window = DefaultBatchWindow
	}
	return &Batcher{
		batches: make(map[string]*batch),
		tails:   make(map[string]chan struct{}),
		maxSize: maxSize,
		window:  window,
		sink:    sink,
		after:   timeAfterFunc,
	}
}

// Queue appends msg to chatID's batch. The batch is flushed synchronously
// once it holds maxSize messages; otherwise the first message of a batch
// starts the window timer.
func (b *Batcher) Queue(chatID string, msg json.RawMessage) {
	b.mu.Lock()
	bt, ok := b.batches[chatID]
	if !ok {
		bt = &batch{}
		b.batches[chatID] = bt
	}
	bt.queue = append(bt.queue, msg)

	if len(bt.queue) >= b.maxSize {
		taken := b.takeLocked(chatID, bt)
		b.mu.Unlock()
		b.deliverInOrder(chatID, flushTriggerSize, taken)
		return
	}

	if bt.timer == nil {
		b.seq++
		gen := b.seq
		bt.gen = gen
		bt.timer = b.after(b.window, func() {
			b.flush(chatID, flushTriggerTimer, gen)
		})
	}
	b.mu.Unlock()
}

// Flush flushes chatID's batch now.
func (b *Batcher) Flush(chatID string) {
	b.flush(chatID, flushTriggerManual, 0)
}

// flush takes chatID's queue and delivers it. A non-zero gen comes from a
// timer; it is ignored when the batch it was started for is already gone.
func (b *Batcher) flush(chatID, trigger string, gen uint64) {
	b.mu.Lock()
	bt, ok := b.batches[chatID]
	if !ok || (gen != 0 && bt.gen != gen) {
		b.mu.Unlock()
		return
	}
	taken := b.takeLocked(chatID, bt)
	b.mu.Unlock()

	b.deliverInOrder(chatID, trigger, taken)
}

// takeLocked removes bt from the batcher and queues it behind the chat's
// in-flight batch. Callers hold b.mu.
func (b *Batcher) takeLocked(chatID string, bt *batch) takenBatch {
	if bt.timer != nil {
		bt.timer.Stop()
	}
	delete(b.batches, chatID)

	done := make(chan struct{})
	taken := takenBatch{queue: bt.queue, prev: b.tails[chatID], done: done}
	b.tails[chatID] = done
	return taken
}

// deliverInOrder waits for the chat's previous batch, then delivers this one.
func (b *Batcher) deliverInOrder(chatID, trigger string, taken takenBatch) {
	defer func() {
		close(taken.done)
		b.mu.Lock()
		if b.tails[chatID] == taken.done {
			delete(b.tails, chatID)
		}
		b.mu.Unlock()
	}()

	if taken.prev != nil {
		<-taken.prev
	}
	b.deliver(chatID, trigger, taken.queue)
}

func (b *Batcher) deliver(chatID, trigger string, queue []json.RawMessage) {
	if len(queue) == 0 {
		return
	}
	if b.sink.ViewerAudience(chatID) == 0 {
		metrics.RecordBatchFlush(trigger, len(queue), false)
		return
	}
	b.sink.BroadcastBatch(chatID, queue)
	metrics.RecordBatchFlush(trigger, len(queue), true)
}

// Pending returns the number of queued messages for chatID.
func (b *Batcher) Pending(chatID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if bt, ok := b.batches[chatID]; ok {
		return len(bt.queue)
	}
	return 0
}

// Len returns the number of chats with a pending batch.
func (b *Batcher) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.batches)
}

// Stop flushes every pending batch and cancels all timers.
func (b *Batcher) Stop() {
	b.mu.Lock()
	taken := make(map[string]takenBatch, len(b.batches))
	for chatID, bt := range b.batches {
		taken[chatID] = b.takeLocked(chatID, bt)
	}
	b.mu.Unlock()

	for chatID, t := range taken {
		b.deliverInOrder(chatID, flushTriggerStop, t)
	}
}
