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
)

// Handler processes one delivered message.
type Handler func(rctx *ReceiveContext)

// Dispatcher routes messages to handlers by concrete type, with a dense
// fixed-width cache indexed by numeric message id for the application band.
//
// Handlers are registered at construction time, before the actor's worker
// starts; registration is not safe once dispatch has begun. The cache and the
// negative bitmap are filled lazily by the single worker goroutine that
// performs dispatch, so no synchronization is needed on the hot path.
//
// Ids outside [0, MaxApplicationID) — the registry protocol band — always
// take the type-map path; the dense arrays cover application ids only.
type Dispatcher struct {
	handlers map[reflect.Type]Handler
	cache    [MaxApplicationID]Handler
	negative [MaxApplicationID / 64]uint64
	slotType [MaxApplicationID]reflect.Type
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[reflect.Type]Handler),
	}
}

// Register binds the concrete type of prototype to handler. Registering two
// different types that share an id in the application band panics: the id is
// the cache index and must identify exactly one handler per actor.
func (d *Dispatcher) Register(prototype Message, handler Handler) {
	rtype := reflect.TypeOf(prototype)
	id := prototype.ID()
	if id >= 0 && id < MaxApplicationID {
		if existing := d.slotType[id]; existing != nil && existing != rtype {
			panic(fmt.Sprintf("message id %d registered for both %s and %s", id, existing, rtype))
		}
		d.slotType[id] = rtype
	}
	d.handlers[rtype] = handler
}

// Handles reports whether a handler is registered for the concrete type of
// prototype.
func (d *Dispatcher) Handles(prototype Message) bool {
	_, ok := d.handlers[reflect.TypeOf(prototype)]
	return ok
}

// Dispatch routes the context's message to its handler and reports whether
// it was handled.
//
// For application ids the path is: cache hit → invoke; negative hit →
// unhandled; otherwise one type lookup that warms the cache or the negative
// bitmap. cache[i] and negative[i] are never both set, and once cache[i] is
// set it never changes.
func (d *Dispatcher) Dispatch(rctx *ReceiveContext) bool {
	message := rctx.Message()
	id := message.ID()

	if id < 0 || id >= MaxApplicationID {
		handler, ok := d.handlers[reflect.TypeOf(message)]
		if !ok {
			return false
		}
		handler(rctx)
		return true
	}

	if handler := d.cache[id]; handler != nil {
		handler(rctx)
		return true
	}
	if d.negative[id>>6]&(1<<(uint(id)&63)) != 0 {
		return false
	}

	handler, ok := d.handlers[reflect.TypeOf(message)]
	if !ok {
		d.negative[id>>6] |= 1 << (uint(id) & 63)
		return false
	}
	d.cache[id] = handler
	handler(rctx)
	return true
}

// cached reports whether the dense cache slot for id is warm. Used by tests.
func (d *Dispatcher) cached(id int) bool {
	return id >= 0 && id < MaxApplicationID && d.cache[id] != nil
}

// negativeSet reports whether id is known to have no handler. Used by tests.
func (d *Dispatcher) negativeSet(id int) bool {
	return id >= 0 && id < MaxApplicationID && d.negative[id>>6]&(1<<(uint(id)&63)) != 0
}
