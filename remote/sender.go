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
	"net"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/vincent212/actors/actor"
	gerrors "github.com/vincent212/actors/errors"
	"github.com/vincent212/actors/log"
)

const dialTimeout = 5 * time.Second

// endpointConn is one cached outbound connection. Writes are serialized by
// the connection mutex so concurrent actors can share the endpoint.
type endpointConn struct {
	mu   sync.Mutex
	conn net.Conn
}

// Sender multiplexes outbound messages onto a single long-lived connection
// per remote endpoint. Connections are created lazily on first send and
// cached by endpoint URI; a failed write discards the cached connection so
// the next send redials.
type Sender struct {
	mu            sync.Mutex
	conns         map[string]*endpointConn
	localEndpoint string
	logger        log.Logger
}

// enforce compilation error
var _ actor.EndpointSender = (*Sender)(nil)

// NewSender creates a Sender. localEndpoint, when non-empty, is stamped into
// outbound envelopes so remote receivers can route replies back; pass the
// endpoint the local Receiver is bound to, or an empty string for processes
// that only transmit.
func NewSender(localEndpoint string) *Sender {
	return &Sender{
		conns:         make(map[string]*endpointConn),
		localEndpoint: localEndpoint,
		logger:        log.DefaultLogger,
	}
}

// SetLocalEndpoint updates the endpoint stamped into outbound envelopes.
func (s *Sender) SetLocalEndpoint(endpoint string) {
	s.mu.Lock()
	s.localEndpoint = endpoint
	s.mu.Unlock()
}

// LocalEndpoint returns the endpoint stamped into outbound envelopes.
func (s *Sender) LocalEndpoint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.localEndpoint
}

// RemoteRef creates a reference to the named actor at endpoint transmitting
// through this sender.
func (s *Sender) RemoteRef(name, endpoint string) *actor.RemoteRef {
	return actor.NewRemoteRef(name, endpoint, s)
}

// SendTo encodes m into an envelope addressed to the named receiver and
// writes it on the cached connection for endpoint. The envelope carries the
// sender's name and reachable endpoint when available: a RemoteRef sender
// propagates its own endpoint, anything else the sender's local endpoint.
func (s *Sender) SendTo(endpoint, receiver string, m actor.Message, from actor.ActorRef) error {
	senderActor := ""
	senderEndpoint := ""
	if from != nil {
		senderActor = from.Name()
		if remoteFrom, ok := from.(*actor.RemoteRef); ok {
			senderEndpoint = remoteFrom.Endpoint()
		} else {
			senderEndpoint = s.LocalEndpoint()
		}
	}

	frame, err := Encode(receiver, m, senderActor, senderEndpoint)
	if err != nil {
		return err
	}

	ec, err := s.connFor(endpoint)
	if err != nil {
		return err
	}

	ec.mu.Lock()
	defer ec.mu.Unlock()
	if _, err := ec.conn.Write(append(frame, '\n')); err != nil {
		s.evict(endpoint, ec)
		return gerrors.NewTransport(err)
	}
	return nil
}

// Close closes every cached connection.
func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	for endpoint, ec := range s.conns {
		ec.mu.Lock()
		err = multierr.Append(err, ec.conn.Close())
		ec.mu.Unlock()
		delete(s.conns, endpoint)
	}
	return err
}

// connFor returns the cached connection for endpoint, dialing it lazily.
func (s *Sender) connFor(endpoint string) (*endpointConn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ec, ok := s.conns[endpoint]; ok {
		return ec, nil
	}
	address, err := ParseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialTimeout("tcp", address, dialTimeout)
	if err != nil {
		return nil, gerrors.NewTransport(err)
	}
	ec := &endpointConn{conn: conn}
	s.conns[endpoint] = ec
	return ec, nil
}

// evict discards a cached connection after a failed write so the next send
// redials.
func (s *Sender) evict(endpoint string, ec *endpointConn) {
	_ = ec.conn.Close()
	s.mu.Lock()
	if current, ok := s.conns[endpoint]; ok && current == ec {
		delete(s.conns, endpoint)
	}
	s.mu.Unlock()
}
