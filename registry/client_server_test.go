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
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dynaport "github.com/travisjeffery/go-dynaport"

	gerrors "github.com/vincent212/actors/errors"
	"github.com/vincent212/actors/internal/lib"
	"github.com/vincent212/actors/log"
)

func startServer(t *testing.T, opts ...ServiceOption) (string, func()) {
	t.Helper()
	ports := dynaport.Get(1)
	endpoint := fmt.Sprintf("tcp://127.0.0.1:%d", ports[0])
	server := NewServer(endpoint, NewGlobalRegistry(opts...), log.DiscardLogger)
	require.NoError(t, server.Start())
	return endpoint, server.Stop
}

func TestClient_RegisterAndLookup(t *testing.T) {
	endpoint, stop := startServer(t)
	defer stop()

	client := NewClient("m1", endpoint, WithClientLogger(log.DiscardLogger))
	defer client.Close()

	require.NoError(t, client.Register("pong", "tcp://127.0.0.1:5001"))

	resolved, err := client.Lookup("pong")
	require.NoError(t, err)
	assert.Equal(t, "tcp://127.0.0.1:5001", resolved)
}

func TestClient_LookupUnknownName(t *testing.T) {
	endpoint, stop := startServer(t)
	defer stop()

	client := NewClient("m1", endpoint, WithClientLogger(log.DiscardLogger))
	defer client.Close()

	_, err := client.Lookup("nowhere")
	require.ErrorIs(t, err, gerrors.ErrActorNotFound)
}

func TestClient_DuplicateRegistrationAcrossManagers(t *testing.T) {
	endpoint, stop := startServer(t)
	defer stop()

	first := NewClient("mA", endpoint, WithClientLogger(log.DiscardLogger))
	defer first.Close()
	second := NewClient("mB", endpoint, WithClientLogger(log.DiscardLogger))
	defer second.Close()

	require.NoError(t, first.Register("pong", "tcp://127.0.0.1:5001"))
	err := second.Register("pong", "tcp://127.0.0.1:6001")
	require.ErrorIs(t, err, gerrors.ErrRegistrationFailed)

	// the first manager keeps serving
	resolved, err := first.Lookup("pong")
	require.NoError(t, err)
	assert.Equal(t, "tcp://127.0.0.1:5001", resolved)
}

func TestClient_OfflineThenRecovery(t *testing.T) {
	endpoint, stop := startServer(t,
		WithHeartbeatTimeout(200*time.Millisecond),
		WithHeartbeatCheckInterval(50*time.Millisecond))
	defer stop()

	owner := NewClient("m1", endpoint,
		WithClientLogger(log.DiscardLogger),
		WithHeartbeatInterval(50*time.Millisecond))
	defer owner.Close()
	other := NewClient("m2", endpoint, WithClientLogger(log.DiscardLogger))
	defer other.Close()

	require.NoError(t, owner.Register("pong", "tcp://127.0.0.1:5001"))
	owner.StartHeartbeat()

	resolved, err := other.Lookup("pong")
	require.NoError(t, err)
	assert.Equal(t, "tcp://127.0.0.1:5001", resolved)

	// the owner goes silent: lookups turn into ActorOffline
	owner.StopHeartbeat()
	lib.Pause(500 * time.Millisecond)
	_, err = other.Lookup("pong")
	require.ErrorIs(t, err, gerrors.ErrActorOffline)

	// offline lookups still expose the endpoint on request
	stale, online, err := other.LookupAllowOffline("pong")
	require.NoError(t, err)
	assert.Equal(t, "tcp://127.0.0.1:5001", stale)
	assert.False(t, online)

	// heartbeats resume with the same manager id: no re-registration needed
	owner.StartHeartbeat()
	lib.Pause(300 * time.Millisecond)
	resolved, err = other.Lookup("pong")
	require.NoError(t, err)
	assert.Equal(t, "tcp://127.0.0.1:5001", resolved)
	owner.StopHeartbeat()
}

func TestClient_Unregister(t *testing.T) {
	endpoint, stop := startServer(t)
	defer stop()

	client := NewClient("m1", endpoint, WithClientLogger(log.DiscardLogger))
	defer client.Close()

	require.NoError(t, client.Register("pong", "tcp://127.0.0.1:5001"))
	require.NoError(t, client.Unregister("pong"))
	lib.Pause(200 * time.Millisecond)

	_, err := client.Lookup("pong")
	require.ErrorIs(t, err, gerrors.ErrActorNotFound)
}

func TestClient_TransportErrorWhenRegistryDown(t *testing.T) {
	client := NewClient("m1", "tcp://127.0.0.1:1", WithClientLogger(log.DiscardLogger))
	defer client.Close()

	_, err := client.Lookup("pong")
	require.ErrorIs(t, err, gerrors.ErrTransport)
}

func TestClient_RPCTimeout(t *testing.T) {
	// a listener that accepts and never answers
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			// hold the connection open without ever answering
			_ = conn
		}
	}()

	client := NewClient("m1", fmt.Sprintf("tcp://%s", listener.Addr()),
		WithClientLogger(log.DiscardLogger),
		WithRPCTimeout(200*time.Millisecond))
	defer client.Close()

	_, err = client.Lookup("pong")
	require.ErrorIs(t, err, gerrors.ErrRequestTimeout)
}

func TestClient_StartHeartbeatIsIdempotent(t *testing.T) {
	endpoint, stop := startServer(t)
	defer stop()

	client := NewClient("m1", endpoint,
		WithClientLogger(log.DiscardLogger),
		WithHeartbeatInterval(50*time.Millisecond))
	client.StartHeartbeat()
	client.StartHeartbeat()
	lib.Pause(150 * time.Millisecond)
	client.StopHeartbeat()
	client.StopHeartbeat()
}
