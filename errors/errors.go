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

// Package errors defines the error taxonomy shared by the actor runtime, the
// remote transport and the registry. All errors are sentinel values that can
// be tested with errors.Is; the wrapping constructors attach the actor name
// or failure detail while preserving the sentinel in the chain.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrActorNotFound is returned when a lookup target is absent, locally
	// and in the registry.
	ErrActorNotFound = errors.New("actor not found")

	// ErrActorOffline is returned when the lookup target exists but its
	// owning manager has missed heartbeats. Callers may retry.
	ErrActorOffline = errors.New("actor is offline")

	// ErrRegistrationFailed is returned when the registry rejects a
	// registration, typically because of a name collision.
	ErrRegistrationFailed = errors.New("registration failed")

	// ErrRequestTimeout indicates that a synchronous registry call did not
	// complete within its bound.
	ErrRequestTimeout = errors.New("request timed out")

	// ErrTransport indicates an I/O failure during encode, send, receive or
	// decode. Fire-and-forget sends log it instead of surfacing it.
	ErrTransport = errors.New("transport failure")

	// ErrUnknownMessageType is returned when an inbound envelope names a
	// message type that was never registered with the codec.
	ErrUnknownMessageType = errors.New("unknown message type")

	// ErrActorAlreadyExists is returned when managing an actor under a name
	// already taken within the same manager.
	ErrActorAlreadyExists = errors.New("actor already exists")

	// ErrMailboxClosed is returned by Enqueue after the mailbox has been
	// disposed.
	ErrMailboxClosed = errors.New("mailbox is closed")

	// ErrRemotingDisabled reports that remoting is not enabled. The runtime
	// does not return it: Manager.ActorOf reports ErrActorNotFound for a
	// non-local name when no registry is attached.
	ErrRemotingDisabled = errors.New("remoting is not enabled")

	// ErrInvalidEndpoint is returned when an endpoint URI cannot be parsed
	// into a scheme, host and port.
	ErrInvalidEndpoint = errors.New("invalid endpoint")

	// ErrUnexpectedReply is returned when a registry RPC receives a reply of
	// a type the protocol does not allow for the request.
	ErrUnexpectedReply = errors.New("unexpected reply")
)

// NewActorNotFound wraps ErrActorNotFound with the missing actor name.
func NewActorNotFound(name string) error {
	return fmt.Errorf("%w: %s", ErrActorNotFound, name)
}

// NewActorOffline wraps ErrActorOffline with the actor name.
func NewActorOffline(name string) error {
	return fmt.Errorf("%w: %s", ErrActorOffline, name)
}

// NewRegistrationFailed wraps ErrRegistrationFailed with the actor name and
// the reason reported by the registry.
func NewRegistrationFailed(name, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrRegistrationFailed, name, reason)
}

// NewRequestTimeout wraps ErrRequestTimeout with a detail string.
func NewRequestTimeout(detail string) error {
	return fmt.Errorf("%w: %s", ErrRequestTimeout, detail)
}

// NewTransport wraps ErrTransport around an underlying I/O error.
func NewTransport(err error) error {
	return fmt.Errorf("%w: %v", ErrTransport, err)
}

// NewUnknownMessageType wraps ErrUnknownMessageType with the offending type
// name.
func NewUnknownMessageType(messageType string) error {
	return fmt.Errorf("%w: %s", ErrUnknownMessageType, messageType)
}
