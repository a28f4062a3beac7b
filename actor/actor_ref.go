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
	"github.com/vincent212/actors/log"
)

// ActorRef is an address-like handle that delivers messages to an actor
// whose location may be local, remote or foreign. Send transfers ownership
// of the message and never raises: delivery failures on non-local targets
// are logged, fire-and-forget.
type ActorRef interface {
	// Name returns the target actor name.
	Name() string
	// Send delivers m to the target. from identifies the sender for reply
	// routing and may be nil.
	Send(m Message, from ActorRef)
}

// EndpointSender multiplexes outbound messages onto cached transport
// connections, one per remote endpoint. The remote package provides the
// production implementation.
type EndpointSender interface {
	// SendTo encodes m into a wire envelope addressed to the named receiver
	// at endpoint. from, when non-nil, is recorded in the envelope so the
	// remote side can construct a reverse reference.
	SendTo(endpoint, receiver string, m Message, from ActorRef) error
	// LocalEndpoint returns the endpoint where this process receives
	// messages, or an empty string when no receiver is bound.
	LocalEndpoint() string
}

// LocalRef points at an in-process actor and enqueues directly into its
// mailbox.
type LocalRef struct {
	target *Base
}

// enforce compilation error
var _ ActorRef = (*LocalRef)(nil)

// Name returns the target actor name.
func (ref *LocalRef) Name() string { return ref.target.name }

// Send stamps the routing metadata and transfers m into the target mailbox.
// Messages to a terminated actor are dropped and logged.
func (ref *LocalRef) Send(m Message, from ActorRef) {
	rctx := contextFromPool(m, from, ref.target)
	if err := ref.target.mailbox.Enqueue(rctx); err != nil {
		releaseContext(rctx)
		ref.target.Logger().Debugf("dropped message id=(%d) to actor=(%s): %v", m.ID(), ref.target.name, err)
	}
}

// RemoteRef addresses an actor reachable through a transport endpoint. It is
// constructed from a successful registry lookup or synthesized by the
// receiver bridge from an inbound envelope.
type RemoteRef struct {
	name     string
	endpoint string
	sender   EndpointSender
	logger   log.Logger
}

// enforce compilation error
var _ ActorRef = (*RemoteRef)(nil)

// NewRemoteRef creates a reference to the named actor at endpoint,
// transmitting through sender.
func NewRemoteRef(name, endpoint string, sender EndpointSender) *RemoteRef {
	return &RemoteRef{
		name:     name,
		endpoint: endpoint,
		sender:   sender,
		logger:   log.DefaultLogger,
	}
}

// Name returns the target actor name.
func (ref *RemoteRef) Name() string { return ref.name }

// Endpoint returns the transport endpoint of the target.
func (ref *RemoteRef) Endpoint() string { return ref.endpoint }

// Send encodes m into an envelope and transmits it. Transport failures are
// logged, not surfaced: remote sends are fire-and-forget.
func (ref *RemoteRef) Send(m Message, from ActorRef) {
	if err := ref.sender.SendTo(ref.endpoint, ref.name, m, from); err != nil {
		ref.logger.Errorf("remote send to actor=(%s) endpoint=(%s) failed: %v", ref.name, ref.endpoint, err)
	}
}

// ForeignSend is the callback invoked by a ForeignRef. Cross-language
// bridges register one per foreign runtime; it receives the target name, the
// sender name, the numeric message id and the message itself.
type ForeignSend func(target, sender string, id int, m Message) error

// ForeignRef addresses an actor living in a foreign language runtime inside
// the same process. Only the handle is defined here; the bridges that
// produce the callback are external.
type ForeignRef struct {
	name       string
	senderName string
	send       ForeignSend
	logger     log.Logger
}

// enforce compilation error
var _ ActorRef = (*ForeignRef)(nil)

// NewForeignRef creates a reference to the named foreign actor. senderName
// identifies the local side to the foreign runtime.
func NewForeignRef(name, senderName string, send ForeignSend) *ForeignRef {
	return &ForeignRef{
		name:       name,
		senderName: senderName,
		send:       send,
		logger:     log.DefaultLogger,
	}
}

// Name returns the target actor name.
func (ref *ForeignRef) Name() string { return ref.name }

// Send invokes the registered foreign callback. Failures are logged, not
// surfaced.
func (ref *ForeignRef) Send(m Message, from ActorRef) {
	sender := ref.senderName
	if from != nil {
		sender = from.Name()
	}
	if err := ref.send(ref.name, sender, m.ID(), m); err != nil {
		ref.logger.Errorf("foreign send to actor=(%s) failed: %v", ref.name, err)
	}
}
