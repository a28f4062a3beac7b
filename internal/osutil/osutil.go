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

// Package osutil wraps the platform CPU-set and scheduler interfaces used to
// bind actor workers to cores and real-time priorities.
package osutil

import "errors"

// Policy selects the kernel scheduling policy for a worker thread.
type Policy uint32

const (
	// PolicyOther is the default time-sharing policy.
	PolicyOther Policy = 0
	// PolicyFIFO is the real-time first-in first-out policy.
	PolicyFIFO Policy = 1
	// PolicyRR is the real-time round-robin policy.
	PolicyRR Policy = 2
)

// ErrUnsupported is returned on platforms without thread pinning support.
var ErrUnsupported = errors.New("thread scheduling control is not supported on this platform")

// String returns the policy name as used in scheduler(7).
func (p Policy) String() string {
	switch p {
	case PolicyFIFO:
		return "SCHED_FIFO"
	case PolicyRR:
		return "SCHED_RR"
	default:
		return "SCHED_OTHER"
	}
}
