/*
 * MIT License
 *
 * Copyright (c) 2025 Vincent Maciejewski, M2 Tech
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package actor

import (
	gods "github.com/Workiva/go-datastructures/queue"

	gerrors "github.com/vincent212/actors/errors"
)

// BoundedMailbox is a strictly bounded, blocking MPSC mailbox backed by a
// ring buffer. Unlike DefaultMailbox it has no overflow: a producer blocks
// when the mailbox is full until space becomes available or the mailbox is
// disposed.
//
// Use it for actors that must exert blocking backpressure on their producers
// instead of absorbing bursts.
type BoundedMailbox struct {
	underlying *gods.RingBuffer
}

// enforce compilation error
var _ Mailbox = (*BoundedMailbox)(nil)

// NewBoundedMailbox creates a bounded, blocking mailbox with the given
// capacity. Capacity must be a positive integer.
func NewBoundedMailbox(capacity int) *BoundedMailbox {
	if capacity <= 0 {
		panic("mailbox capacity must be positive")
	}
	return &BoundedMailbox{
		underlying: gods.NewRingBuffer(uint64(capacity)),
	}
}

// Enqueue inserts the context, blocking while the mailbox is full. Returns
// ErrMailboxClosed once the mailbox has been disposed.
func (mailbox *BoundedMailbox) Enqueue(rctx *ReceiveContext) error {
	if err := mailbox.underlying.Put(rctx); err != nil {
		return gerrors.ErrMailboxClosed
	}
	return nil
}

// Dequeue blocks until a context is available and returns it, or nil once
// the mailbox has been disposed. The last tombstone is a best-effort snapshot
// taken right after the pop.
func (mailbox *BoundedMailbox) Dequeue() *ReceiveContext {
	item, err := mailbox.underlying.Get()
	if err != nil {
		return nil
	}
	rctx, ok := item.(*ReceiveContext)
	if !ok {
		return nil
	}
	rctx.last = mailbox.underlying.Len() == 0
	return rctx
}

// Peek always returns nil: the underlying ring buffer does not expose its
// head without consuming it. Use DefaultMailbox when Peek matters.
func (mailbox *BoundedMailbox) Peek() *ReceiveContext {
	return nil
}

// IsEmpty reports whether the mailbox currently has no messages.
func (mailbox *BoundedMailbox) IsEmpty() bool {
	return mailbox.underlying.Len() == 0
}

// Len returns the current number of messages in the mailbox.
func (mailbox *BoundedMailbox) Len() int64 {
	return int64(mailbox.underlying.Len())
}

// Dispose releases the underlying ring buffer and unblocks any waiters.
func (mailbox *BoundedMailbox) Dispose() {
	mailbox.underlying.Dispose()
}
