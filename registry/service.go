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
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/vincent212/actors/actor"
)

// Liveness defaults: managers heartbeat every 2 s and are considered offline
// after three missed beats.
const (
	DefaultHeartbeatTimeout       = 6 * time.Second
	DefaultHeartbeatCheckInterval = time.Second
)

// entry is one directory record.
type entry struct {
	endpoint  string
	managerID string
}

// GlobalRegistry is the central directory actor. All state mutations happen
// on its single worker, so no locks are needed. A periodic Timeout
// self-message drives the liveness sweep.
//
// Offline managers keep their directory entries: lookups report
// online=false until heartbeats resume, at which point the same entries
// answer online=true again without re-registration.
type GlobalRegistry struct {
	actor.Base

	registry      map[string]entry
	managerActors map[string]mapset.Set[string]
	heartbeats    map[string]time.Time
	offline       mapset.Set[string]

	heartbeatTimeout time.Duration
	checkInterval    time.Duration
	sweeping         bool
	stopCh           chan struct{}

	// onOffline, when set, runs once per manager liveness loss, off the
	// actor worker. The restart policy hooks in here.
	onOffline func(managerID string)
}

// ServiceOption configures the GlobalRegistry.
type ServiceOption func(*GlobalRegistry)

// WithHeartbeatTimeout overrides the liveness timeout.
func WithHeartbeatTimeout(timeout time.Duration) ServiceOption {
	return func(r *GlobalRegistry) {
		r.heartbeatTimeout = timeout
	}
}

// WithHeartbeatCheckInterval overrides the sweep interval.
func WithHeartbeatCheckInterval(interval time.Duration) ServiceOption {
	return func(r *GlobalRegistry) {
		r.checkInterval = interval
	}
}

// WithOfflineHook installs a callback invoked once each time a manager
// transitions to offline.
func WithOfflineHook(hook func(managerID string)) ServiceOption {
	return func(r *GlobalRegistry) {
		r.onOffline = hook
	}
}

// NewGlobalRegistry creates the directory actor.
func NewGlobalRegistry(opts ...ServiceOption) *GlobalRegistry {
	r := &GlobalRegistry{
		registry:         make(map[string]entry),
		managerActors:    make(map[string]mapset.Set[string]),
		heartbeats:       make(map[string]time.Time),
		offline:          mapset.NewSet[string](),
		heartbeatTimeout: DefaultHeartbeatTimeout,
		checkInterval:    DefaultHeartbeatCheckInterval,
		stopCh:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.Handle(new(actor.Start), r.onStart)
	r.Handle(new(actor.Timeout), r.onSweep)
	r.Handle(new(RegisterActor), r.onRegister)
	r.Handle(new(UnregisterActor), r.onUnregister)
	r.Handle(new(LookupActor), r.onLookup)
	r.Handle(new(Heartbeat), r.onHeartbeat)
	return r
}

// onStart launches the sweep loop. Every check interval it posts a Timeout
// to the service's own mailbox so the sweep runs on the worker like every
// other mutation; the mailbox absorbs ticks, so a long sweep delays the next
// one instead of stacking them.
func (r *GlobalRegistry) onStart(rctx *actor.ReceiveContext) {
	r.sweeping = true
	self := rctx.Self()
	go func() {
		interval := time.NewTicker(r.checkInterval)
		defer interval.Stop()
		for {
			select {
			case <-r.stopCh:
				return
			case <-interval.C:
				self.Send(new(actor.Timeout), nil)
			}
		}
	}()
	rctx.Logger().Infof("registry started, heartbeat timeout %s", r.heartbeatTimeout)
}

// PostStop stops the sweep loop.
func (r *GlobalRegistry) PostStop() {
	if r.sweeping {
		r.sweeping = false
		close(r.stopCh)
	}
}

func (r *GlobalRegistry) onRegister(rctx *actor.ReceiveContext) {
	msg := rctx.Message().(*RegisterActor)

	if existing, ok := r.registry[msg.ActorName]; ok && existing.managerID != msg.ManagerID {
		rctx.Logger().Warnf("registration of %q by manager=(%s) failed: name taken by manager=(%s)",
			msg.ActorName, msg.ManagerID, existing.managerID)
		rctx.Reply(&RegistrationFailed{ActorName: msg.ActorName, Reason: "name taken"})
		return
	}

	// re-registration by the same manager replaces the endpoint atomically
	r.registry[msg.ActorName] = entry{endpoint: msg.Endpoint, managerID: msg.ManagerID}
	names, ok := r.managerActors[msg.ManagerID]
	if !ok {
		names = mapset.NewSet[string]()
		r.managerActors[msg.ManagerID] = names
	}
	names.Add(msg.ActorName)

	// registration counts as a heartbeat
	r.touch(msg.ManagerID, rctx)

	rctx.Logger().Infof("registered %q at %s for manager=(%s)", msg.ActorName, msg.Endpoint, msg.ManagerID)
	rctx.Reply(&RegistrationOk{ActorName: msg.ActorName})
}

func (r *GlobalRegistry) onUnregister(rctx *actor.ReceiveContext) {
	msg := rctx.Message().(*UnregisterActor)
	existing, ok := r.registry[msg.ActorName]
	if !ok {
		return
	}
	delete(r.registry, msg.ActorName)
	if names, ok := r.managerActors[existing.managerID]; ok {
		names.Remove(msg.ActorName)
	}
	rctx.Logger().Infof("unregistered %q", msg.ActorName)
}

func (r *GlobalRegistry) onLookup(rctx *actor.ReceiveContext) {
	msg := rctx.Message().(*LookupActor)
	existing, ok := r.registry[msg.ActorName]
	if !ok {
		rctx.Reply(&LookupResult{ActorName: msg.ActorName})
		return
	}
	endpoint := existing.endpoint
	rctx.Reply(&LookupResult{
		ActorName: msg.ActorName,
		Endpoint:  &endpoint,
		Online:    r.isOnline(existing.managerID),
	})
}

func (r *GlobalRegistry) onHeartbeat(rctx *actor.ReceiveContext) {
	msg := rctx.Message().(*Heartbeat)
	r.touch(msg.ManagerID, rctx)
	rctx.Reply(new(HeartbeatAck))
}

// onSweep marks managers whose heartbeats lapsed. Entries stay in the
// directory; they answer online=false until heartbeats resume.
func (r *GlobalRegistry) onSweep(rctx *actor.ReceiveContext) {
	now := time.Now()
	for managerID, lastSeen := range r.heartbeats {
		if now.Sub(lastSeen) <= r.heartbeatTimeout || r.offline.Contains(managerID) {
			continue
		}
		r.offline.Add(managerID)
		count := 0
		if names, ok := r.managerActors[managerID]; ok {
			count = names.Cardinality()
		}
		rctx.Logger().Warnf("manager=(%s) missed heartbeats, %d actors now offline", managerID, count)
		if r.onOffline != nil {
			go r.onOffline(managerID)
		}
	}
}

// touch refreshes a manager heartbeat and clears its offline mark.
func (r *GlobalRegistry) touch(managerID string, rctx *actor.ReceiveContext) {
	r.heartbeats[managerID] = time.Now()
	if r.offline.Contains(managerID) {
		r.offline.Remove(managerID)
		rctx.Logger().Infof("manager=(%s) is back online", managerID)
	}
}

// isOnline reports whether the manager heartbeat is within the timeout.
func (r *GlobalRegistry) isOnline(managerID string) bool {
	lastSeen, ok := r.heartbeats[managerID]
	if !ok {
		return false
	}
	return time.Since(lastSeen) <= r.heartbeatTimeout
}

// Snapshot returns the registered actor names. Intended for diagnostics; it
// must only be called from the service worker or before Init.
func (r *GlobalRegistry) Snapshot() []string {
	names := make([]string, 0, len(r.registry))
	for name := range r.registry {
		names = append(names, name)
	}
	return names
}
