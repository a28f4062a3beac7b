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

	"github.com/vincent212/actors/log"
)

// contextPool recycles ReceiveContext values across deliveries.
var contextPool = sync.Pool{New: func() any { return new(ReceiveContext) }}

// ReceiveContext is the mailbox slot that owns a message in flight. It
// carries the routing metadata the runtime stamps on delivery: the sender
// reference used by Reply and the last tombstone stamped by the mailbox.
//
// A ReceiveContext is only valid within the scope of handling one message.
// Handlers must not retain it; the worker returns it to the pool after
// dispatch.
type ReceiveContext struct {
	message Message
	sender  ActorRef
	self    *Base
	last    bool
}

// contextFromPool builds a pooled ReceiveContext for a delivery.
func contextFromPool(message Message, sender ActorRef, self *Base) *ReceiveContext {
	rctx := contextPool.Get().(*ReceiveContext)
	rctx.message = message
	rctx.sender = sender
	rctx.self = self
	rctx.last = false
	return rctx
}

// releaseContext resets the context and returns it to the pool.
func releaseContext(rctx *ReceiveContext) {
	rctx.message = nil
	rctx.sender = nil
	rctx.self = nil
	rctx.last = false
	contextPool.Put(rctx)
}

// Message returns the message being handled.
func (rctx *ReceiveContext) Message() Message {
	return rctx.message
}

// Sender returns the reference of the message sender. It is nil when the
// message was sent without a sender.
func (rctx *ReceiveContext) Sender() ActorRef {
	return rctx.sender
}

// Self returns the reference of the actor handling the message.
func (rctx *ReceiveContext) Self() ActorRef {
	return rctx.self.Ref()
}

// Last reports whether this message left its mailbox empty. The runtime uses
// it to coalesce work and to mark shutdown-drain boundaries.
func (rctx *ReceiveContext) Last() bool {
	return rctx.last
}

// Logger returns the logger of the actor handling the message.
func (rctx *ReceiveContext) Logger() log.Logger {
	return rctx.self.Logger()
}

// Reply forwards m to the sender of the message being handled. When the
// sender is unset the message is dropped and the actor's dropped-reply
// counter is incremented; that is not an error. The sender of the forwarded
// message is the replying actor.
func (rctx *ReceiveContext) Reply(m Message) {
	if rctx.sender == nil {
		rctx.self.droppedReplies.Add(1)
		return
	}
	rctx.sender.Send(m, rctx.self.Ref())
}
