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
	"sync/atomic"

	"github.com/vincent212/actors/internal/osutil"
	"github.com/vincent212/actors/log"
)

// Actor is the contract satisfied by embedding Base in a user type.
//
// A concrete actor registers its handlers at construction time with
// Base.Handle and is then handed to a Manager. The embedded Base supplies
// the runtime plumbing plus default Unhandled and PostStop implementations,
// both of which the user type may shadow.
//
//	type Ping struct {
//	    actor.Base
//	    count int
//	}
//
//	func NewPing() *Ping {
//	    p := &Ping{}
//	    p.Handle(new(Pong), p.onPong)
//	    return p
//	}
type Actor interface {
	// base exposes the embedded runtime state to the package.
	base() *Base
	// Unhandled is the fallback invoked when no handler matches the
	// message. The default is a no-op.
	Unhandled(rctx *ReceiveContext)
	// PostStop runs on the worker thread after the actor terminates.
	PostStop()
}

// Base carries the runtime state of one actor: its mailbox, its dispatch
// table, its name and its termination flag. Embed it as the first field of a
// concrete actor type.
type Base struct {
	name           string
	mailbox        Mailbox
	dispatcher     *Dispatcher
	terminated     atomic.Bool
	logger         log.Logger
	mgr            *Manager
	ref            *LocalRef
	droppedReplies atomic.Uint64

	// thread binding hints recorded by Manage
	affinity []int
	priority int
	policy   osutil.Policy
}

// enforce compilation error: Base alone satisfies Actor
var _ Actor = (*Base)(nil)

func (b *Base) base() *Base { return b }

// Unhandled is the default fallback: the message is dropped.
func (b *Base) Unhandled(rctx *ReceiveContext) {
	if b.logger != nil {
		b.logger.Debugf("actor=(%s) dropped unhandled message id=(%d)", b.name, rctx.Message().ID())
	}
}

// PostStop is the default termination hook. Shadow it to release resources
// on the worker thread after the last message.
func (b *Base) PostStop() {}

// Handle registers handler for the concrete type of prototype. Call it from
// the actor constructor, before the actor is managed; registration is not
// safe once the worker has started.
func (b *Base) Handle(prototype Message, handler Handler) {
	if b.dispatcher == nil {
		b.dispatcher = NewDispatcher()
	}
	b.dispatcher.Register(prototype, handler)
}

// Name returns the actor name, unique within its Manager.
func (b *Base) Name() string { return b.name }

// Logger returns the actor logger. Before the actor is managed it returns
// the default logger.
func (b *Base) Logger() log.Logger {
	if b.logger == nil {
		return log.DefaultLogger
	}
	return b.logger
}

// Ref returns the local reference of this actor.
func (b *Base) Ref() ActorRef {
	return b.ref
}

// Manager returns the Manager this actor belongs to, or nil before Manage.
func (b *Base) Manager() *Manager { return b.mgr }

// Terminated reports whether the actor has terminated or is terminating.
func (b *Base) Terminated() bool { return b.terminated.Load() }

// FastTerminate cooperatively stops the actor: the flag is set and the
// mailbox is disposed so a blocked worker wakes immediately. Queued messages
// are discarded. Posting a Shutdown message is the orderly alternative.
func (b *Base) FastTerminate() {
	b.terminated.Store(true)
	if b.mailbox != nil {
		b.mailbox.Dispose()
	}
}

// DroppedReplies returns how many Reply calls were dropped because the
// message being handled carried no sender.
func (b *Base) DroppedReplies() uint64 {
	return b.droppedReplies.Load()
}

// Mailbox returns the actor's mailbox. It is nil before Manage.
func (b *Base) Mailbox() Mailbox { return b.mailbox }

// run is the worker loop. Start is delivered first, bypassing the mailbox,
// then messages are consumed one at a time until the actor terminates.
func (b *Base) run(a Actor, from ActorRef) {
	defer b.mailbox.Dispose()

	b.invoke(a, contextFromPool(new(Start), from, b))
	for !b.terminated.Load() {
		rctx := b.mailbox.Dequeue()
		if rctx == nil {
			break
		}
		b.invoke(a, rctx)
	}
	a.PostStop()
}

// invoke dispatches one context, falls back to Unhandled, contains handler
// panics to this actor, and releases the context.
func (b *Base) invoke(a Actor, rctx *ReceiveContext) {
	message := rctx.Message()
	func() {
		defer func() {
			if r := recover(); r != nil {
				b.Logger().Errorf("actor=(%s) handler panic on message id=(%d): %v", b.name, message.ID(), r)
			}
		}()
		if !b.dispatcher.Dispatch(rctx) {
			a.Unhandled(rctx)
		}
	}()
	if _, ok := message.(*Shutdown); ok {
		b.terminated.Store(true)
	}
	releaseContext(rctx)
}
