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

// Mailbox defines the contract for an actor's message queue.
//
// Concurrency and ordering
//   - Implementations MUST be thread-safe for multiple concurrent producers
//     calling Enqueue.
//   - Exactly one consumer goroutine calls Dequeue (MPSC).
//   - FIFO ordering MUST hold across messages from a single producer.
//
// Blocking behavior
//   - DefaultMailbox.Enqueue never blocks the producer beyond a short
//     critical section. BoundedMailbox.Enqueue blocks while the mailbox is
//     full.
//   - Dequeue blocks until a message is available or the mailbox is disposed,
//     in which case it returns nil.
//
// Last tombstone
//   - Dequeue stamps last=true on the context it returns iff the mailbox is
//     empty immediately after the pop.
//
// Resource management
//   - Dispose unblocks the consumer and fails subsequent Enqueue calls with
//     ErrMailboxClosed. The mailbox must not be used after Dispose.
type Mailbox interface {
	// Enqueue pushes a message context into the mailbox, transferring
	// ownership to the mailbox. Safe for concurrent producers.
	Enqueue(rctx *ReceiveContext) error
	// Dequeue blocks until a message context is available and returns it
	// with the last tombstone stamped. Returns nil once disposed.
	Dequeue() *ReceiveContext
	// Peek returns the context at the head of the queue without removing
	// it, or nil when the queue is empty.
	Peek() *ReceiveContext
	// IsEmpty reports whether the mailbox currently has no messages.
	IsEmpty() bool
	// Len returns a snapshot of the number of queued messages.
	Len() int64
	// Dispose unblocks the consumer and rejects further producers.
	Dispose()
}
