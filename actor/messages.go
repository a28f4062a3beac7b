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

// Built-in control message ids. These are fixed across all language runtimes
// that speak the wire protocol.
const (
	ContinueID  = 1
	ShutdownID  = 5
	StartID     = 6
	SubscribeID = 7
	TimeoutID   = 8
	RejectID    = 9
)

// Start is delivered to every managed actor before its worker consumes the
// mailbox. Actors register a handler for it to perform startup work.
type Start struct{}

// ID returns the message id.
func (*Start) ID() int { return StartID }

// Shutdown requests an orderly termination. An actor that processes Shutdown
// terminates after its handler (if any) has run. Sending Shutdown to a
// Manager terminates every actor it manages.
type Shutdown struct{}

// ID returns the message id.
func (*Shutdown) ID() int { return ShutdownID }

// Continue is a generic wake-up used by application actors to resume
// suspended work.
type Continue struct{}

// ID returns the message id.
func (*Continue) ID() int { return ContinueID }

// Subscribe registers interest in a stream of updates from the target actor.
type Subscribe struct{}

// ID returns the message id.
func (*Subscribe) ID() int { return SubscribeID }

// Timeout signals an elapsed interval. The registry service sends it to
// itself to drive the liveness sweep.
type Timeout struct{}

// ID returns the message id.
func (*Timeout) ID() int { return TimeoutID }

// Reject is sent by a receiver-side bridge when an inbound message cannot be
// delivered to the named actor. It travels on the wire as type "Reject".
type Reject struct {
	MessageType string `json:"message_type"`
	Reason      string `json:"reason"`
	RejectedBy  string `json:"rejected_by"`
}

// ID returns the message id.
func (*Reject) ID() int { return RejectID }
