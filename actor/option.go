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
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/vincent212/actors/internal/osutil"
	"github.com/vincent212/actors/log"
)

// SchedPolicy selects the kernel scheduling policy for a worker thread.
type SchedPolicy = osutil.Policy

const (
	// SchedOther is the default time-sharing policy.
	SchedOther = osutil.PolicyOther
	// SchedFIFO is the real-time first-in first-out policy.
	SchedFIFO = osutil.PolicyFIFO
	// SchedRR is the real-time round-robin policy.
	SchedRR = osutil.PolicyRR
)

// ManageOption configures one actor at Manage time.
type ManageOption func(*manageConfig)

type manageConfig struct {
	name     string
	mailbox  Mailbox
	affinity mapset.Set[int]
	priority int
	policy   osutil.Policy
}

// WithName overrides the actor name. The default is the concrete type name.
func WithName(name string) ManageOption {
	return func(config *manageConfig) {
		config.name = name
	}
}

// WithMailbox replaces the actor's DefaultMailbox.
func WithMailbox(mailbox Mailbox) ManageOption {
	return func(config *manageConfig) {
		config.mailbox = mailbox
	}
}

// WithAffinity pins the actor's worker thread to the given CPU indices.
// Duplicates are collapsed. An empty set leaves OS scheduling intact.
func WithAffinity(cpus ...int) ManageOption {
	return func(config *manageConfig) {
		config.affinity = mapset.NewSet(cpus...)
	}
}

// WithPriority requests a real-time scheduling policy and priority for the
// actor's worker thread. Priority 0 keeps the default policy; priority > 0
// requires the privilege to use the requested policy.
func WithPriority(priority int, policy SchedPolicy) ManageOption {
	return func(config *manageConfig) {
		config.priority = priority
		config.policy = policy
	}
}

// ManagerOption configures a Manager at construction.
type ManagerOption func(*Manager)

// WithManagerID sets the manager id reported to the registry. The default is
// a random UUID.
func WithManagerID(id string) ManagerOption {
	return func(m *Manager) {
		m.id = id
	}
}

// WithManagerName sets the name under which the Manager itself receives
// messages. The default is "Manager".
func WithManagerName(name string) ManagerOption {
	return func(m *Manager) {
		m.name = name
	}
}

// WithLogger sets the logger inherited by every managed actor.
func WithLogger(logger log.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}
