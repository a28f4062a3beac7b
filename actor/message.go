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

// Package actor implements the in-process actor runtime: mailboxes, typed
// dispatch with a fixed-width fast path, per-actor worker threads with CPU
// pinning, actor references and the Manager lifecycle controller.
package actor

// Message is the base contract every message must satisfy.
//
// The numeric id must be stable for the lifetime of the type and is used as
// an index into the fixed-width dispatch caches. Application messages use ids
// in [0, 512); the registry protocol occupies [900, 999]. Routing metadata
// (sender, last) is not carried on the message itself but on the mailbox slot
// that owns it, see ReceiveContext.
//
// Ownership: a message belongs to whoever currently holds it and ownership
// transfers on enqueue. Senders must not touch a message after Send.
type Message interface {
	// ID returns the stable numeric id of the message type.
	ID() int
}

// Reserved id bands.
const (
	// MaxApplicationID is the exclusive upper bound of the application id
	// band, which is also the width of the dispatch caches.
	MaxApplicationID = 512

	// MinRegistryID and MaxRegistryID delimit the registry protocol band.
	MinRegistryID = 900
	MaxRegistryID = 999
)
