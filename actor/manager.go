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
	"fmt"
	"reflect"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	gerrors "github.com/vincent212/actors/errors"
	"github.com/vincent212/actors/internal/osutil"
	"github.com/vincent212/actors/internal/syncmap"
	"github.com/vincent212/actors/log"
)

// Directory is the manager-side view of the registry: synchronous
// registration and lookup plus the background heartbeat. The registry
// package provides the production client.
type Directory interface {
	// Register maps the actor name to the endpoint where this process
	// receives messages. Name collisions surface as ErrRegistrationFailed.
	Register(name, endpoint string) error
	// Unregister removes the name from the directory. Absent names are not
	// an error.
	Unregister(name string) error
	// Lookup resolves the name to an endpoint. ErrActorNotFound when the
	// name is absent, ErrActorOffline when its manager missed heartbeats.
	Lookup(name string) (endpoint string, err error)
	// StartHeartbeat starts the background liveness reporting.
	StartHeartbeat()
	// StopHeartbeat stops the background liveness reporting and joins it.
	StopHeartbeat()
}

// Manager coordinates the lifecycle of a set of actors in one process:
// registration, worker startup with thread binding, name resolution and
// shutdown. The Manager is itself an actor; sending it Shutdown terminates
// every actor it manages.
//
//	mgr := actor.NewManager()
//	_ = mgr.Manage(NewPong())
//	_ = mgr.Manage(NewPing(), actor.WithAffinity(2), actor.WithPriority(50, actor.SchedFIFO))
//	mgr.Init()
//	mgr.End()
type Manager struct {
	Base

	id     string
	actors []Actor
	names  *syncmap.SyncMap[string, ActorRef]
	wg     sync.WaitGroup

	directory     Directory
	sender        EndpointSender
	localEndpoint string

	started atomic.Bool
}

// NewManager creates a Manager. It handles Shutdown by fast-terminating
// every managed actor, then itself; End joins the workers afterwards.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		id:    uuid.NewString(),
		names: syncmap.New[string, ActorRef](),
	}
	m.name = "Manager"
	m.logger = log.DefaultLogger
	m.mailbox = NewDefaultMailbox()
	m.ref = &LocalRef{target: &m.Base}

	for _, opt := range opts {
		opt(m)
	}

	m.Handle(new(Shutdown), m.onShutdown)
	return m
}

// ID returns the manager id reported to the registry.
func (m *Manager) ID() string { return m.id }

// Manage registers an actor with this Manager, binds it to a mailbox and
// records its thread binding hints. When a registry is attached the actor is
// registered synchronously; a registration failure is logged but does not
// prevent local management.
//
// Manage must be called before Init.
func (m *Manager) Manage(a Actor, opts ...ManageOption) error {
	config := &manageConfig{}
	for _, opt := range opts {
		opt(config)
	}

	name := config.name
	if name == "" {
		name = typeName(a)
	}

	b := a.base()
	b.name = name
	b.logger = m.logger
	b.mgr = m
	b.ref = &LocalRef{target: b}
	if b.dispatcher == nil {
		b.dispatcher = NewDispatcher()
	}
	b.mailbox = config.mailbox
	if b.mailbox == nil {
		b.mailbox = NewDefaultMailbox()
	}
	if config.affinity != nil {
		cpus := config.affinity.ToSlice()
		for _, cpu := range cpus {
			if cpu < 0 || cpu >= runtime.NumCPU() {
				return fmt.Errorf("cpu index %d out of range for actor %s", cpu, name)
			}
		}
		b.affinity = cpus
	}
	b.priority = config.priority
	b.policy = config.policy

	if _, loaded := m.names.GetOrSet(name, b.ref); loaded {
		return fmt.Errorf("%w: %s", gerrors.ErrActorAlreadyExists, name)
	}
	m.actors = append(m.actors, a)

	if m.directory != nil {
		if err := m.directory.Register(name, m.localEndpoint); err != nil {
			m.logger.Warnf("registry registration of actor=(%s) failed: %v", name, err)
		}
	}
	return nil
}

// Init starts one dedicated worker per managed actor plus the Manager's own
// worker. Each worker delivers Start first, then consumes its mailbox.
// Workers with an affinity set or a priority are locked to an OS thread and
// bound through the platform scheduler interfaces.
func (m *Manager) Init() {
	if !m.started.CompareAndSwap(false, true) {
		return
	}
	for _, a := range m.actors {
		m.spawn(a)
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.Base.run(m, nil)
	}()
	m.logger.Infof("manager=(%s) started %d actors", m.id, len(m.actors))
}

// End blocks until every worker has terminated, then stops the registry
// heartbeat. Workers are joined, never detached.
func (m *Manager) End() {
	m.wg.Wait()
	if m.directory != nil {
		m.directory.StopHeartbeat()
	}
	m.logger.Infof("manager=(%s) stopped", m.id)
}

// SetRegistry attaches a registry client for cross-process lookup and starts
// its heartbeat. localEndpoint is where this process receives messages;
// sender transmits to remote endpoints. Call it before Manage so actors are
// auto-registered.
func (m *Manager) SetRegistry(directory Directory, localEndpoint string, sender EndpointSender) {
	m.directory = directory
	m.localEndpoint = localEndpoint
	m.sender = sender
	directory.StartHeartbeat()
}

// ActorOf resolves a name to a reference: the local map first, then the
// registry when one is attached. A RemoteRef is only constructed from a
// successful lookup; failures surface as typed errors (ErrActorNotFound,
// ErrActorOffline, ErrRequestTimeout).
func (m *Manager) ActorOf(name string) (ActorRef, error) {
	if ref, ok := m.names.Get(name); ok {
		return ref, nil
	}
	if name == m.name {
		return m.Ref(), nil
	}
	if m.directory == nil {
		return nil, gerrors.NewActorNotFound(name)
	}
	endpoint, err := m.directory.Lookup(name)
	if err != nil {
		return nil, err
	}
	return NewRemoteRef(name, endpoint, m.sender), nil
}

// ResolveLocal resolves a name against the local map only. The remote
// receiver bridge uses it so inbound envelopes never trigger registry
// lookups.
func (m *Manager) ResolveLocal(name string) (ActorRef, bool) {
	return m.names.Get(name)
}

// Actors returns the managed actors in registration order.
func (m *Manager) Actors() []Actor {
	return m.actors
}

// onShutdown fast-terminates every managed actor. The Manager terminates
// itself right after because Shutdown is a termination message.
func (m *Manager) onShutdown(rctx *ReceiveContext) {
	m.logger.Infof("manager=(%s) shutting down %d actors", m.id, len(m.actors))
	for _, a := range m.actors {
		a.base().FastTerminate()
	}
}

// spawn launches the worker of one actor.
func (m *Manager) spawn(a Actor) {
	b := a.base()
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if len(b.affinity) > 0 || b.priority > 0 {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			m.bind(b)
		}
		b.run(a, m.Ref())
	}()
}

// bind applies the recorded affinity and scheduling hints to the calling
// thread. Failures are logged: missing privileges must not keep the actor
// from running.
func (m *Manager) bind(b *Base) {
	if len(b.affinity) > 0 {
		if err := osutil.SetAffinity(b.affinity); err != nil {
			m.logger.Warnf("could not pin actor=(%s) to cpus %v: %v", b.name, b.affinity, err)
		} else {
			m.logger.Infof("actor=(%s) pinned to cpus %v", b.name, b.affinity)
		}
	}
	if b.priority > 0 {
		if err := osutil.SetScheduler(b.policy, b.priority); err != nil {
			m.logger.Warnf("could not set %s priority %d for actor=(%s): %v", b.policy, b.priority, b.name, err)
		}
	}
}

// typeName derives the default actor name from the concrete type.
func typeName(a Actor) string {
	rtype := reflect.TypeOf(a)
	for rtype.Kind() == reflect.Ptr {
		rtype = rtype.Elem()
	}
	return rtype.Name()
}
