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

package registry

import (
	"bufio"
	"errors"
	"net"
	"sync"

	"github.com/vincent212/actors/actor"
	gerrors "github.com/vincent212/actors/errors"
	"github.com/vincent212/actors/internal/syncmap"
	"github.com/vincent212/actors/log"
	"github.com/vincent212/actors/remote"
)

// ServiceName is the name the GlobalRegistry actor is managed under.
const ServiceName = "GlobalRegistry"

// Server is the RPC front end of the GlobalRegistry. It binds the registry
// endpoint, decodes flat protocol frames, posts them to the service actor
// and writes the replies back on the same connection, preserving the strict
// request/reply alternation clients rely on.
type Server struct {
	endpoint string
	service  *GlobalRegistry
	mgr      *actor.Manager
	logger   log.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    *syncmap.SyncMap[net.Conn, struct{}]
	wg       sync.WaitGroup
}

// NewServer creates a Server for the given service actor, binding endpoint
// on Start.
func NewServer(endpoint string, service *GlobalRegistry, logger log.Logger) *Server {
	if logger == nil {
		logger = log.DefaultLogger
	}
	return &Server{
		endpoint: endpoint,
		service:  service,
		logger:   logger,
		conns:    syncmap.New[net.Conn, struct{}](),
	}
}

// Start binds the endpoint and starts the service actor under an internal
// Manager. A bind failure is returned before any actor runs so callers can
// exit nonzero.
func (s *Server) Start() error {
	address, err := remote.ParseEndpoint(s.endpoint)
	if err != nil {
		return err
	}
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return gerrors.NewTransport(err)
	}

	s.mgr = actor.NewManager(actor.WithManagerID(ServiceName), actor.WithLogger(s.logger))
	if err := s.mgr.Manage(s.service, actor.WithName(ServiceName)); err != nil {
		_ = listener.Close()
		return err
	}
	s.mgr.Init()

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	s.wg.Add(1)
	go s.acceptLoop(listener)

	s.logger.Infof("registry serving on %s", s.endpoint)
	return nil
}

// Stop closes the listener and every client connection, shuts the service
// actor down and joins everything.
func (s *Server) Stop() {
	s.mu.Lock()
	listener := s.listener
	s.listener = nil
	s.mu.Unlock()
	if listener != nil {
		_ = listener.Close()
	}
	s.conns.Range(func(conn net.Conn, _ struct{}) {
		_ = conn.Close()
	})
	s.wg.Wait()

	if s.mgr != nil {
		s.mgr.Ref().Send(new(actor.Shutdown), nil)
		s.mgr.End()
	}
	s.logger.Infof("registry stopped")
}

func (s *Server) acceptLoop(listener net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := listener.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				s.logger.Errorf("registry accept failed: %v", err)
			}
			return
		}
		s.conns.Set(conn, struct{}{})
		s.wg.Add(1)
		go s.serveConn(conn)
	}
}

// serveConn reads flat protocol frames off one client connection and feeds
// them to the service actor with a connection-backed reply reference.
func (s *Server) serveConn(conn net.Conn) {
	defer s.wg.Done()
	defer s.conns.Delete(conn)
	defer conn.Close()

	serviceRef, ok := s.mgr.ResolveLocal(ServiceName)
	if !ok {
		return
	}
	reply := &connRef{conn: conn, logger: s.logger}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		message, err := UnmarshalRPC(scanner.Bytes())
		if err != nil {
			s.logger.Warnf("registry dropped malformed request: %v", err)
			continue
		}
		serviceRef.Send(message, reply)
	}
}

// connRef delivers service replies back to the requesting connection. It is
// the ActorRef the service actor sees as the sender of each request.
type connRef struct {
	mu     sync.Mutex
	conn   net.Conn
	logger log.Logger
}

// enforce compilation error
var _ actor.ActorRef = (*connRef)(nil)

func (ref *connRef) Name() string { return "rpc-client" }

func (ref *connRef) Send(m actor.Message, from actor.ActorRef) {
	frame, err := MarshalRPC(m)
	if err != nil {
		ref.logger.Errorf("registry could not encode reply: %v", err)
		return
	}
	ref.mu.Lock()
	defer ref.mu.Unlock()
	if _, err := ref.conn.Write(append(frame, '\n')); err != nil {
		ref.logger.Debugf("registry reply write failed: %v", err)
	}
}
