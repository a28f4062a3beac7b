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

package remote

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/vincent212/actors/actor"
	gerrors "github.com/vincent212/actors/errors"
	"github.com/vincent212/actors/internal/syncmap"
)

// maxFrameSize bounds one inbound envelope line.
const maxFrameSize = 4 * 1024 * 1024

// Resolver resolves inbound receiver names to local actors. *actor.Manager
// satisfies it.
type Resolver interface {
	ResolveLocal(name string) (actor.ActorRef, bool)
}

// Receiver is the inbound half of the transport adapter. It is an actor:
// manage it alongside the application actors and it binds the local endpoint
// on Start. Each decoded envelope is resolved through the Manager and
// enqueued into the target mailbox, with the envelope's sender synthesized
// as a RemoteRef so handlers can Reply without knowing the message crossed a
// process boundary.
//
// Unknown receiver names and unknown message types are answered with a
// Reject to the envelope's sender endpoint when one is present, otherwise
// logged and dropped.
type Receiver struct {
	actor.Base

	bindEndpoint string
	resolver     Resolver
	sender       *Sender

	mu       sync.Mutex
	listener net.Listener
	conns    *syncmap.SyncMap[net.Conn, struct{}]
	wg       sync.WaitGroup
}

// NewReceiver creates a Receiver that binds bindEndpoint once started.
// resolver is normally the owning Manager; sender is the shared outbound
// Sender used to synthesize reverse references and to transmit Rejects.
func NewReceiver(bindEndpoint string, resolver Resolver, sender *Sender) *Receiver {
	r := &Receiver{
		bindEndpoint: bindEndpoint,
		resolver:     resolver,
		sender:       sender,
		conns:        syncmap.New[net.Conn, struct{}](),
	}
	r.Handle(new(actor.Start), r.onStart)
	return r
}

// Listen binds the local endpoint. It is called by the Start handler; call
// it earlier to surface bind failures synchronously. Listening twice is a
// no-op.
func (r *Receiver) Listen() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listener != nil {
		return nil
	}
	address, err := ParseEndpoint(r.bindEndpoint)
	if err != nil {
		return err
	}
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return gerrors.NewTransport(err)
	}
	r.listener = listener
	r.wg.Add(1)
	go r.acceptLoop(listener)
	r.Logger().Infof("receiver listening on %s", r.bindEndpoint)
	return nil
}

// PostStop closes the listener and every open connection, then joins the
// reader goroutines.
func (r *Receiver) PostStop() {
	r.mu.Lock()
	listener := r.listener
	r.listener = nil
	r.mu.Unlock()
	if listener != nil {
		_ = listener.Close()
	}
	r.conns.Range(func(conn net.Conn, _ struct{}) {
		_ = conn.Close()
	})
	r.wg.Wait()
}

func (r *Receiver) onStart(rctx *actor.ReceiveContext) {
	if err := r.Listen(); err != nil {
		rctx.Logger().Errorf("receiver could not bind %s: %v", r.bindEndpoint, err)
	}
}

func (r *Receiver) acceptLoop(listener net.Listener) {
	defer r.wg.Done()
	for {
		conn, err := listener.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				r.Logger().Errorf("receiver accept failed: %v", err)
			}
			return
		}
		r.conns.Set(conn, struct{}{})
		r.wg.Add(1)
		go r.readLoop(conn)
	}
}

func (r *Receiver) readLoop(conn net.Conn) {
	defer r.wg.Done()
	defer r.conns.Delete(conn)
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxFrameSize)
	for scanner.Scan() {
		r.handleFrame(scanner.Bytes())
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		r.Logger().Debugf("receiver connection closed: %v", err)
	}
}

// handleFrame decodes one envelope and routes it to the local target.
func (r *Receiver) handleFrame(frame []byte) {
	decoded, err := Decode(frame)
	if err != nil {
		if decoded != nil && errors.Is(err, gerrors.ErrUnknownMessageType) {
			r.Logger().Warnf("discarding inbound message of unregistered type %q", decoded.MessageType)
			r.reject(decoded, fmt.Sprintf("Unknown message type: %s", decoded.MessageType))
			return
		}
		r.Logger().Errorf("failed to decode inbound envelope: %v", err)
		return
	}

	target, ok := r.resolver.ResolveLocal(decoded.Receiver)
	if !ok {
		r.Logger().Warnf("no local actor %q for inbound %s", decoded.Receiver, decoded.MessageType)
		r.reject(decoded, fmt.Sprintf("Unknown actor: %s", decoded.Receiver))
		return
	}

	var sender actor.ActorRef
	if decoded.SenderActor != "" && decoded.SenderEndpoint != "" {
		sender = r.sender.RemoteRef(decoded.SenderActor, decoded.SenderEndpoint)
	}
	target.Send(decoded.Message, sender)
}

// reject answers the envelope's sender with a Reject, best effort.
func (r *Receiver) reject(decoded *Decoded, reason string) {
	if decoded.SenderActor == "" || decoded.SenderEndpoint == "" {
		return
	}
	reject := &actor.Reject{
		MessageType: decoded.MessageType,
		Reason:      reason,
		RejectedBy:  decoded.Receiver,
	}
	if err := r.sender.SendTo(decoded.SenderEndpoint, decoded.SenderActor, reject, nil); err != nil {
		r.Logger().Debugf("could not deliver Reject to %s: %v", decoded.SenderEndpoint, err)
	}
}
