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

// Package remote carries messages between processes as JSON envelopes over
// long-lived TCP connections: a Sender that multiplexes outbound traffic onto
// one cached connection per endpoint, and a Receiver actor that binds the
// local endpoint and bridges inbound envelopes into local mailboxes.
package remote

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/vincent212/actors/actor"
	gerrors "github.com/vincent212/actors/errors"
)

// Envelope is the normative on-the-wire form of a message. Readers must
// ignore unknown extra keys for forward compatibility.
type Envelope struct {
	SenderActor    *string         `json:"sender_actor"`
	SenderEndpoint *string         `json:"sender_endpoint"`
	Receiver       string          `json:"receiver"`
	MessageType    string          `json:"message_type"`
	Message        json.RawMessage `json:"message"`
}

// Decoded is an inbound envelope with its payload materialized.
type Decoded struct {
	SenderActor    string
	SenderEndpoint string
	Receiver       string
	MessageType    string
	Message        actor.Message
}

// Factory produces a zero value of a registered message type for decoding.
type Factory func() actor.Message

// typeRegistry maps registered names to factories and concrete types back to
// names. It is written during the initialization phase only and frozen at
// the first decode.
var typeRegistry = struct {
	mu     sync.RWMutex
	byName map[string]Factory
	byType map[reflect.Type]string
	frozen atomic.Bool
}{
	byName: make(map[string]Factory),
	byType: make(map[reflect.Type]string),
}

func init() {
	// the Reject control message crosses the wire in every runtime
	RegisterMessage("Reject", func() actor.Message { return new(actor.Reject) })
}

// RegisterMessage binds a wire name to a message factory. All registrations
// must happen during initialization, before the first envelope is decoded;
// registering afterwards panics.
func RegisterMessage(name string, factory Factory) {
	if typeRegistry.frozen.Load() {
		panic(fmt.Sprintf("message type %q registered after the first decode", name))
	}
	rtype := reflect.TypeOf(factory())
	typeRegistry.mu.Lock()
	typeRegistry.byName[name] = factory
	typeRegistry.byType[rtype] = name
	typeRegistry.mu.Unlock()
}

// TypeName returns the registered wire name of m.
func TypeName(m actor.Message) (string, bool) {
	typeRegistry.mu.RLock()
	name, ok := typeRegistry.byType[reflect.TypeOf(m)]
	typeRegistry.mu.RUnlock()
	return name, ok
}

// Encode serializes m into an envelope addressed to receiver. senderActor
// and senderEndpoint may be empty; they travel as JSON null so the remote
// side knows no reverse route exists.
func Encode(receiver string, m actor.Message, senderActor, senderEndpoint string) ([]byte, error) {
	name, ok := TypeName(m)
	if !ok {
		return nil, gerrors.NewUnknownMessageType(reflect.TypeOf(m).String())
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	envelope := Envelope{
		Receiver:    receiver,
		MessageType: name,
		Message:     payload,
	}
	if senderActor != "" {
		envelope.SenderActor = &senderActor
	}
	if senderEndpoint != "" {
		envelope.SenderEndpoint = &senderEndpoint
	}
	return json.Marshal(&envelope)
}

// Decode parses an envelope and materializes its payload through the type
// registry. The registry freezes at the first call. An unregistered
// message_type yields ErrUnknownMessageType with the envelope header still
// populated so the caller can reject back to the sender.
func Decode(data []byte) (*Decoded, error) {
	typeRegistry.frozen.Store(true)

	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, gerrors.NewTransport(err)
	}

	decoded := &Decoded{
		Receiver:    envelope.Receiver,
		MessageType: envelope.MessageType,
	}
	if envelope.SenderActor != nil {
		decoded.SenderActor = *envelope.SenderActor
	}
	if envelope.SenderEndpoint != nil {
		decoded.SenderEndpoint = *envelope.SenderEndpoint
	}

	typeRegistry.mu.RLock()
	factory, ok := typeRegistry.byName[envelope.MessageType]
	typeRegistry.mu.RUnlock()
	if !ok {
		return decoded, gerrors.NewUnknownMessageType(envelope.MessageType)
	}

	message := factory()
	if err := json.Unmarshal(envelope.Message, message); err != nil {
		return decoded, gerrors.NewTransport(err)
	}
	decoded.Message = message
	return decoded, nil
}

// ParseEndpoint splits an endpoint URI of the form tcp://host:port into its
// dialable address.
func ParseEndpoint(endpoint string) (string, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: %s", gerrors.ErrInvalidEndpoint, endpoint)
	}
	if parsed.Scheme != "tcp" || parsed.Host == "" {
		return "", fmt.Errorf("%w: %s", gerrors.ErrInvalidEndpoint, endpoint)
	}
	return parsed.Host, nil
}
