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

// Package registry implements the central directory: the GlobalRegistry
// service actor, its RPC front end, and the manager-side client with
// background heartbeats.
package registry

import (
	"encoding/json"
	"fmt"

	"github.com/vincent212/actors/actor"
	gerrors "github.com/vincent212/actors/errors"
)

// Registry protocol message ids.
const (
	RegisterActorID      = 900
	UnregisterActorID    = 901
	RegistrationOkID     = 902
	RegistrationFailedID = 903
	LookupActorID        = 904
	LookupResultID       = 905
	HeartbeatID          = 906
	HeartbeatAckID       = 907
)

// RegisterActor maps an actor name to the endpoint of its manager.
// The service replies RegistrationOk or RegistrationFailed.
type RegisterActor struct {
	ManagerID string `json:"manager_id"`
	ActorName string `json:"actor_name"`
	Endpoint  string `json:"actor_endpoint"`
}

// ID returns the message id.
func (*RegisterActor) ID() int { return RegisterActorID }

// UnregisterActor removes an actor from the directory. No reply is sent;
// removing an absent name is not an error.
type UnregisterActor struct {
	ActorName string `json:"actor_name"`
}

// ID returns the message id.
func (*UnregisterActor) ID() int { return UnregisterActorID }

// RegistrationOk confirms a successful registration.
type RegistrationOk struct {
	ActorName string `json:"actor_name"`
}

// ID returns the message id.
func (*RegistrationOk) ID() int { return RegistrationOkID }

// RegistrationFailed reports a rejected registration, typically a name
// collision with another manager.
type RegistrationFailed struct {
	ActorName string `json:"actor_name"`
	Reason    string `json:"reason"`
}

// ID returns the message id.
func (*RegistrationFailed) ID() int { return RegistrationFailedID }

// LookupActor requests the endpoint of a named actor.
type LookupActor struct {
	ActorName string `json:"actor_name"`
}

// ID returns the message id.
func (*LookupActor) ID() int { return LookupActorID }

// LookupResult answers a LookupActor. A nil endpoint means the name is
// unknown; online=false means the owning manager has missed heartbeats.
type LookupResult struct {
	ActorName string  `json:"actor_name"`
	Endpoint  *string `json:"endpoint"`
	Online    bool    `json:"online"`
}

// ID returns the message id.
func (*LookupResult) ID() int { return LookupResultID }

// Heartbeat reports manager liveness. Managers send it every 2 seconds.
type Heartbeat struct {
	ManagerID   string `json:"manager_id"`
	TimestampMS int64  `json:"timestamp_ms"`
}

// ID returns the message id.
func (*Heartbeat) ID() int { return HeartbeatID }

// HeartbeatAck acknowledges a Heartbeat.
type HeartbeatAck struct{}

// ID returns the message id.
func (*HeartbeatAck) ID() int { return HeartbeatAckID }

// rpcFactories maps wire names to protocol message factories; rpcName maps
// messages back to their wire names. The RPC wire form is flat: the
// message_type key sits beside the payload fields, unlike the actor envelope.
var rpcFactories = map[string]func() actor.Message{
	"RegisterActor":      func() actor.Message { return new(RegisterActor) },
	"UnregisterActor":    func() actor.Message { return new(UnregisterActor) },
	"RegistrationOk":     func() actor.Message { return new(RegistrationOk) },
	"RegistrationFailed": func() actor.Message { return new(RegistrationFailed) },
	"LookupActor":        func() actor.Message { return new(LookupActor) },
	"LookupResult":       func() actor.Message { return new(LookupResult) },
	"Heartbeat":          func() actor.Message { return new(Heartbeat) },
	"HeartbeatAck":       func() actor.Message { return new(HeartbeatAck) },
}

// rpcName returns the wire name of a protocol message.
func rpcName(m actor.Message) (string, bool) {
	switch m.(type) {
	case *RegisterActor:
		return "RegisterActor", true
	case *UnregisterActor:
		return "UnregisterActor", true
	case *RegistrationOk:
		return "RegistrationOk", true
	case *RegistrationFailed:
		return "RegistrationFailed", true
	case *LookupActor:
		return "LookupActor", true
	case *LookupResult:
		return "LookupResult", true
	case *Heartbeat:
		return "Heartbeat", true
	case *HeartbeatAck:
		return "HeartbeatAck", true
	default:
		return "", false
	}
}

// MarshalRPC serializes a protocol message into its flat wire form:
// {"message_type": <name>, <payload fields>...}.
func MarshalRPC(m actor.Message) ([]byte, error) {
	name, ok := rpcName(m)
	if !ok {
		return nil, gerrors.NewUnknownMessageType(fmt.Sprintf("%T", m))
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = make(map[string]any)
	}
	fields["message_type"] = name
	return json.Marshal(fields)
}

// UnmarshalRPC parses a flat wire frame back into a protocol message.
// Unknown extra keys are ignored.
func UnmarshalRPC(data []byte) (actor.Message, error) {
	var head struct {
		MessageType string `json:"message_type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, gerrors.NewTransport(err)
	}
	factory, ok := rpcFactories[head.MessageType]
	if !ok {
		return nil, gerrors.NewUnknownMessageType(head.MessageType)
	}
	message := factory()
	if err := json.Unmarshal(data, message); err != nil {
		return nil, gerrors.NewTransport(err)
	}
	return message, nil
}
