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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vincent212/actors/actor"
	"github.com/vincent212/actors/internal/lib"
	"github.com/vincent212/actors/log"
)

// captureRef collects service replies for assertions.
type captureRef struct {
	name    string
	replies chan actor.Message
}

func newCaptureRef(name string) *captureRef {
	return &captureRef{name: name, replies: make(chan actor.Message, 16)}
}

func (ref *captureRef) Name() string { return ref.name }

func (ref *captureRef) Send(m actor.Message, from actor.ActorRef) {
	ref.replies <- m
}

func (ref *captureRef) await(t *testing.T) actor.Message {
	t.Helper()
	select {
	case m := <-ref.replies:
		return m
	case <-time.After(3 * time.Second):
		t.Fatal("no reply from the registry service")
		return nil
	}
}

// startService runs a GlobalRegistry under a throwaway manager.
func startService(t *testing.T, opts ...ServiceOption) (*GlobalRegistry, actor.ActorRef, func()) {
	t.Helper()
	service := NewGlobalRegistry(opts...)
	mgr := actor.NewManager(actor.WithLogger(log.DiscardLogger))
	require.NoError(t, mgr.Manage(service, actor.WithName(ServiceName)))
	mgr.Init()
	ref, ok := mgr.ResolveLocal(ServiceName)
	require.True(t, ok)
	stop := func() {
		mgr.Ref().Send(new(actor.Shutdown), nil)
		mgr.End()
	}
	return service, ref, stop
}

func TestService_RegisterThenLookup(t *testing.T) {
	_, ref, stop := startService(t)
	defer stop()
	client := newCaptureRef("m1")

	ref.Send(&RegisterActor{ManagerID: "m1", ActorName: "pong", Endpoint: "tcp://127.0.0.1:5001"}, client)
	reply := client.await(t)
	require.IsType(t, &RegistrationOk{}, reply)
	assert.Equal(t, "pong", reply.(*RegistrationOk).ActorName)

	ref.Send(&LookupActor{ActorName: "pong"}, client)
	result := client.await(t).(*LookupResult)
	require.NotNil(t, result.Endpoint)
	assert.Equal(t, "tcp://127.0.0.1:5001", *result.Endpoint)
	// registration counts as a heartbeat, so the manager is online
	assert.True(t, result.Online)
}

func TestService_LookupUnknownName(t *testing.T) {
	_, ref, stop := startService(t)
	defer stop()
	client := newCaptureRef("m1")

	ref.Send(&LookupActor{ActorName: "nowhere"}, client)
	result := client.await(t).(*LookupResult)
	assert.Nil(t, result.Endpoint)
	assert.False(t, result.Online)
}

func TestService_DuplicateNameAcrossManagers(t *testing.T) {
	_, ref, stop := startService(t)
	defer stop()
	first := newCaptureRef("m1")
	second := newCaptureRef("m2")

	ref.Send(&RegisterActor{ManagerID: "m1", ActorName: "pong", Endpoint: "tcp://127.0.0.1:5001"}, first)
	require.IsType(t, &RegistrationOk{}, first.await(t))

	ref.Send(&RegisterActor{ManagerID: "m2", ActorName: "pong", Endpoint: "tcp://127.0.0.1:6001"}, second)
	failed := second.await(t)
	require.IsType(t, &RegistrationFailed{}, failed)
	assert.Equal(t, "name taken", failed.(*RegistrationFailed).Reason)

	// the original registration keeps serving
	ref.Send(&LookupActor{ActorName: "pong"}, first)
	result := first.await(t).(*LookupResult)
	require.NotNil(t, result.Endpoint)
	assert.Equal(t, "tcp://127.0.0.1:5001", *result.Endpoint)
}

func TestService_ReRegistrationByOwnerReplacesEndpoint(t *testing.T) {
	_, ref, stop := startService(t)
	defer stop()
	client := newCaptureRef("m1")

	ref.Send(&RegisterActor{ManagerID: "m1", ActorName: "pong", Endpoint: "tcp://127.0.0.1:5001"}, client)
	require.IsType(t, &RegistrationOk{}, client.await(t))
	ref.Send(&RegisterActor{ManagerID: "m1", ActorName: "pong", Endpoint: "tcp://127.0.0.1:5009"}, client)
	require.IsType(t, &RegistrationOk{}, client.await(t))

	ref.Send(&LookupActor{ActorName: "pong"}, client)
	result := client.await(t).(*LookupResult)
	require.NotNil(t, result.Endpoint)
	assert.Equal(t, "tcp://127.0.0.1:5009", *result.Endpoint)
}

func TestService_HeartbeatAck(t *testing.T) {
	_, ref, stop := startService(t)
	defer stop()
	client := newCaptureRef("m1")

	ref.Send(&Heartbeat{ManagerID: "m1", TimestampMS: time.Now().UnixMilli()}, client)
	require.IsType(t, &HeartbeatAck{}, client.await(t))
}

func TestService_OfflineAfterMissedHeartbeatsThenRecovery(t *testing.T) {
	_, ref, stop := startService(t,
		WithHeartbeatTimeout(150*time.Millisecond),
		WithHeartbeatCheckInterval(25*time.Millisecond))
	defer stop()
	client := newCaptureRef("m1")

	ref.Send(&RegisterActor{ManagerID: "m1", ActorName: "pong", Endpoint: "tcp://127.0.0.1:5001"}, client)
	require.IsType(t, &RegistrationOk{}, client.await(t))

	// let the heartbeat lapse: the entry stays but reports offline
	lib.Pause(400 * time.Millisecond)
	ref.Send(&LookupActor{ActorName: "pong"}, client)
	result := client.await(t).(*LookupResult)
	require.NotNil(t, result.Endpoint)
	assert.False(t, result.Online)

	// heartbeats resume: online again without re-registration
	ref.Send(&Heartbeat{ManagerID: "m1", TimestampMS: time.Now().UnixMilli()}, client)
	require.IsType(t, &HeartbeatAck{}, client.await(t))
	ref.Send(&LookupActor{ActorName: "pong"}, client)
	result = client.await(t).(*LookupResult)
	require.NotNil(t, result.Endpoint)
	assert.True(t, result.Online)
}

func TestService_OfflineHookFiresOnce(t *testing.T) {
	hooked := make(chan string, 8)
	_, ref, stop := startService(t,
		WithHeartbeatTimeout(100*time.Millisecond),
		WithHeartbeatCheckInterval(20*time.Millisecond),
		WithOfflineHook(func(managerID string) { hooked <- managerID }))
	defer stop()
	client := newCaptureRef("m1")

	ref.Send(&RegisterActor{ManagerID: "m1", ActorName: "pong", Endpoint: "tcp://127.0.0.1:5001"}, client)
	require.IsType(t, &RegistrationOk{}, client.await(t))

	select {
	case managerID := <-hooked:
		assert.Equal(t, "m1", managerID)
	case <-time.After(3 * time.Second):
		t.Fatal("offline hook did not fire")
	}

	// the transition is logged and hooked once, not on every sweep
	lib.Pause(300 * time.Millisecond)
	assert.Empty(t, hooked)
}

func TestService_Unregister(t *testing.T) {
	_, ref, stop := startService(t)
	defer stop()
	client := newCaptureRef("m1")

	ref.Send(&RegisterActor{ManagerID: "m1", ActorName: "pong", Endpoint: "tcp://127.0.0.1:5001"}, client)
	require.IsType(t, &RegistrationOk{}, client.await(t))

	ref.Send(&UnregisterActor{ActorName: "pong"}, client)
	ref.Send(&LookupActor{ActorName: "pong"}, client)
	result := client.await(t).(*LookupResult)
	assert.Nil(t, result.Endpoint)

	// unregistering an absent name is not an error
	ref.Send(&UnregisterActor{ActorName: "pong"}, client)
	ref.Send(&LookupActor{ActorName: "pong"}, client)
	assert.Nil(t, client.await(t).(*LookupResult).Endpoint)
}
