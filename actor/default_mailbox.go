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
	"sync"

	gerrors "github.com/vincent212/actors/errors"
)

// DefaultMailboxCapacity is the ring capacity used when none is given.
const DefaultMailboxCapacity = 64

// DefaultMailbox is a blocking MPSC mailbox made of a bounded ring plus an
// unbounded overflow buffer, guarded by one mutex and one condition variable.
//
// The ring serves steady-state low-latency traffic; the overflow absorbs
// bursts without preallocating for the worst case. Producers only hold the
// lock to append and signal. The single consumer refills the ring from the
// overflow after every pop so the ring is the only place the hot path reads.
type DefaultMailbox struct {
	mu       sync.Mutex
	notEmpty *sync.Cond

	ring     []*ReceiveContext
	head     int
	count    int
	overflow []*ReceiveContext
	ohead    int

	closed bool
}

// enforce compilation error
var _ Mailbox = (*DefaultMailbox)(nil)

// NewDefaultMailbox creates a mailbox with the default ring capacity.
func NewDefaultMailbox() *DefaultMailbox {
	return NewDefaultMailboxWithCapacity(DefaultMailboxCapacity)
}

// NewDefaultMailboxWithCapacity creates a mailbox whose ring holds capacity
// elements before spilling to the overflow buffer. Capacity must be positive.
func NewDefaultMailboxWithCapacity(capacity int) *DefaultMailbox {
	if capacity <= 0 {
		panic("mailbox capacity must be positive")
	}
	m := &DefaultMailbox{
		ring: make([]*ReceiveContext, capacity),
	}
	m.notEmpty = sync.NewCond(&m.mu)
	return m
}

// Enqueue appends the context to the ring when it has space, otherwise to the
// overflow buffer, and signals the consumer. It never blocks the producer
// beyond the critical section.
func (m *DefaultMailbox) Enqueue(rctx *ReceiveContext) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return gerrors.ErrMailboxClosed
	}
	if m.count < len(m.ring) {
		m.ring[(m.head+m.count)%len(m.ring)] = rctx
		m.count++
	} else {
		m.overflow = append(m.overflow, rctx)
	}
	m.notEmpty.Signal()
	m.mu.Unlock()
	return nil
}

// Dequeue blocks until the mailbox is non-empty, pops the head element,
// refills the ring from the overflow, and stamps last=true iff the queue is
// empty after the pop. It returns nil once the mailbox has been disposed and
// drained of nothing (disposal discards queued contexts).
func (m *DefaultMailbox) Dequeue() *ReceiveContext {
	m.mu.Lock()
	for m.count == 0 && m.overflowLen() == 0 {
		if m.closed {
			m.mu.Unlock()
			return nil
		}
		m.notEmpty.Wait()
	}

	var rctx *ReceiveContext
	if m.count > 0 {
		rctx = m.ring[m.head]
		m.ring[m.head] = nil
		m.head = (m.head + 1) % len(m.ring)
		m.count--
	} else {
		rctx = m.popOverflow()
	}

	// draw from overflow to keep the ring the only hot-path storage
	for m.count < len(m.ring) && m.overflowLen() > 0 {
		m.ring[(m.head+m.count)%len(m.ring)] = m.popOverflow()
		m.count++
	}

	rctx.last = m.count == 0 && m.overflowLen() == 0
	m.mu.Unlock()
	return rctx
}

// Peek returns the head of the queue without removing it, or nil when empty.
func (m *DefaultMailbox) Peek() *ReceiveContext {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.count > 0 {
		return m.ring[m.head]
	}
	if m.overflowLen() > 0 {
		return m.overflow[m.ohead]
	}
	return nil
}

// IsEmpty reports whether both the ring and the overflow are empty.
func (m *DefaultMailbox) IsEmpty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count == 0 && m.overflowLen() == 0
}

// Len returns the number of queued messages across ring and overflow.
func (m *DefaultMailbox) Len() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(m.count + m.overflowLen())
}

// Dispose unblocks the consumer and rejects further producers. Contexts still
// queued are released back to the pool.
func (m *DefaultMailbox) Dispose() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	for m.count > 0 {
		releaseContext(m.ring[m.head])
		m.ring[m.head] = nil
		m.head = (m.head + 1) % len(m.ring)
		m.count--
	}
	for m.overflowLen() > 0 {
		releaseContext(m.popOverflow())
	}
	m.notEmpty.Broadcast()
	m.mu.Unlock()
}

func (m *DefaultMailbox) overflowLen() int {
	return len(m.overflow) - m.ohead
}

func (m *DefaultMailbox) popOverflow() *ReceiveContext {
	rctx := m.overflow[m.ohead]
	m.overflow[m.ohead] = nil
	m.ohead++
	if m.ohead == len(m.overflow) {
		m.overflow = m.overflow[:0]
		m.ohead = 0
	}
	return rctx
}
