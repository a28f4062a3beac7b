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
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/flowchartsman/retry"
	"go.uber.org/multierr"

	"github.com/vincent212/actors/actor"
	gerrors "github.com/vincent212/actors/errors"
	"github.com/vincent212/actors/log"
	"github.com/vincent212/actors/remote"
)

// Client timing defaults.
const (
	DefaultRPCTimeout        = 5 * time.Second
	DefaultHeartbeatInterval = 2 * time.Second
)

// Client talks to the GlobalRegistry on behalf of one Manager: synchronous
// register/lookup RPCs over a dedicated connection, and a background
// heartbeat loop reporting liveness every 2 s. It satisfies actor.Directory.
//
// The RPC connection is dialed lazily, serialized by a mutex, and discarded
// after any transport error so the next call redials. RPC expiry yields
// ErrRequestTimeout and does not cancel the in-flight remote side.
type Client struct {
	managerID        string
	registryEndpoint string

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader

	rpcTimeout        time.Duration
	heartbeatInterval time.Duration

	stopCh  chan struct{}
	running atomic.Bool
	wg      sync.WaitGroup

	logger log.Logger
}

// enforce compilation error
var _ actor.Directory = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRPCTimeout overrides the synchronous call timeout.
func WithRPCTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.rpcTimeout = timeout
	}
}

// WithHeartbeatInterval overrides the heartbeat period.
func WithHeartbeatInterval(interval time.Duration) ClientOption {
	return func(c *Client) {
		c.heartbeatInterval = interval
	}
}

// WithClientLogger sets the client logger.
func WithClientLogger(logger log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a registry client for the given manager id.
func NewClient(managerID, registryEndpoint string, opts ...ClientOption) *Client {
	c := &Client{
		managerID:         managerID,
		registryEndpoint:  registryEndpoint,
		rpcTimeout:        DefaultRPCTimeout,
		heartbeatInterval: DefaultHeartbeatInterval,
		stopCh:            make(chan struct{}),
		logger:            log.DefaultLogger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Attach wires a Manager to the registry: it builds a Client with the
// manager's id and hands it to SetRegistry, which also starts the heartbeat.
// Call it before Manage so actors are auto-registered.
func Attach(mgr *actor.Manager, registryEndpoint, localEndpoint string, sender actor.EndpointSender, opts ...ClientOption) *Client {
	client := NewClient(mgr.ID(), registryEndpoint, opts...)
	mgr.SetRegistry(client, localEndpoint, sender)
	return client
}

// ManagerID returns the manager id this client reports as.
func (c *Client) ManagerID() string { return c.managerID }

// Register maps name to endpoint in the directory. Transport errors are
// retried briefly; a rejection by the service surfaces immediately as
// ErrRegistrationFailed.
func (c *Client) Register(name, endpoint string) error {
	retrier := retry.NewRetrier(3, 100*time.Millisecond, time.Second)
	return retrier.Run(func() error {
		reply, err := c.roundTrip(&RegisterActor{
			ManagerID: c.managerID,
			ActorName: name,
			Endpoint:  endpoint,
		})
		if err != nil {
			return err
		}
		switch m := reply.(type) {
		case *RegistrationOk:
			return nil
		case *RegistrationFailed:
			return retry.Stop(gerrors.NewRegistrationFailed(m.ActorName, m.Reason))
		default:
			return retry.Stop(gerrors.ErrUnexpectedReply)
		}
	})
}

// Unregister removes name from the directory, fire-and-forget.
func (c *Client) Unregister(name string) error {
	return c.send(&UnregisterActor{ActorName: name})
}

// Lookup resolves name to an endpoint. An absent name yields
// ErrActorNotFound; a known name whose manager missed heartbeats yields
// ErrActorOffline.
func (c *Client) Lookup(name string) (string, error) {
	endpoint, online, err := c.LookupAllowOffline(name)
	if err != nil {
		return "", err
	}
	if !online {
		return "", gerrors.NewActorOffline(name)
	}
	return endpoint, nil
}

// LookupAllowOffline resolves name to its endpoint and online flag even when
// the owning manager is offline. Only an absent name is an error.
func (c *Client) LookupAllowOffline(name string) (string, bool, error) {
	reply, err := c.roundTrip(&LookupActor{ActorName: name})
	if err != nil {
		return "", false, err
	}
	result, ok := reply.(*LookupResult)
	if !ok {
		return "", false, gerrors.ErrUnexpectedReply
	}
	if result.Endpoint == nil {
		return "", false, gerrors.NewActorNotFound(name)
	}
	return *result.Endpoint, result.Online, nil
}

// StartHeartbeat starts the background loop posting Heartbeat every
// interval. Transport errors are logged and swallowed.
func (c *Client) StartHeartbeat() {
	if !c.running.CompareAndSwap(false, true) {
		return
	}
	stopCh := make(chan struct{})
	c.stopCh = stopCh
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		beat := time.NewTicker(c.heartbeatInterval)
		defer beat.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-beat.C:
				c.heartbeat()
			}
		}
	}()
}

// StopHeartbeat stops the background loop, joins it and closes the RPC
// connection.
func (c *Client) StopHeartbeat() {
	if !c.running.CompareAndSwap(true, false) {
		return
	}
	close(c.stopCh)
	c.wg.Wait()
	_ = c.Close()
}

// Close drops the RPC connection. The next call redials.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	if c.conn != nil {
		err = multierr.Append(err, c.conn.Close())
		c.conn = nil
		c.reader = nil
	}
	return err
}

// heartbeat performs one liveness round trip.
func (c *Client) heartbeat() {
	reply, err := c.roundTrip(&Heartbeat{
		ManagerID:   c.managerID,
		TimestampMS: time.Now().UnixMilli(),
	})
	if err != nil {
		c.logger.Warnf("manager=(%s) heartbeat failed: %v", c.managerID, err)
		return
	}
	if _, ok := reply.(*HeartbeatAck); !ok {
		c.logger.Warnf("manager=(%s) heartbeat got unexpected reply %T", c.managerID, reply)
	}
}

// roundTrip sends one request and waits for its correlated reply. Requests
// and replies alternate strictly on the dedicated connection, so the mutex
// is the correlation scheme.
func (c *Client) roundTrip(m actor.Message) (actor.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureConn(); err != nil {
		return nil, err
	}
	frame, err := MarshalRPC(m)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(c.rpcTimeout)
	_ = c.conn.SetDeadline(deadline)
	if _, err := c.conn.Write(append(frame, '\n')); err != nil {
		c.drop()
		return nil, c.mapNetError(err)
	}
	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		c.drop()
		return nil, c.mapNetError(err)
	}
	return UnmarshalRPC(line)
}

// send transmits one request without waiting for a reply.
func (c *Client) send(m actor.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureConn(); err != nil {
		return err
	}
	frame, err := MarshalRPC(m)
	if err != nil {
		return err
	}
	_ = c.conn.SetDeadline(time.Now().Add(c.rpcTimeout))
	if _, err := c.conn.Write(append(frame, '\n')); err != nil {
		c.drop()
		return c.mapNetError(err)
	}
	return nil
}

// ensureConn dials the registry lazily. Callers hold the mutex.
func (c *Client) ensureConn() error {
	if c.conn != nil {
		return nil
	}
	address, err := remote.ParseEndpoint(c.registryEndpoint)
	if err != nil {
		return err
	}
	conn, err := net.DialTimeout("tcp", address, c.rpcTimeout)
	if err != nil {
		return gerrors.NewTransport(err)
	}
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// drop discards the connection after a failure. Callers hold the mutex.
func (c *Client) drop() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
		c.reader = nil
	}
}

// mapNetError folds deadline expiry into the timeout error kind.
func (c *Client) mapNetError(err error) error {
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return gerrors.NewRequestTimeout("no response from registry")
	}
	return gerrors.NewTransport(err)
}
