// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package actor

import (
	"reflect"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/atomic"

	"github.com/tochemey/refkit/address"
	"github.com/tochemey/refkit/internal/refcount"
	"github.com/tochemey/refkit/internal/xsync"
	"github.com/tochemey/refkit/log"
)

// processing states of a cell
const (
	// idle means there are no messages to process
	idle int32 = iota
	// busy means a goroutine is processing messages
	busy
)

// cell is the unit allocated per actor in the system slab: the control block
// followed by the actor instance and its runtime state. Handles point at the
// cell and reach the counters through the embedded block.
//
// The cell is zeroed and recycled once the weak count drops to zero, so no
// field may be touched after the last weak claim is released.
type cell struct {
	block refcount.Block

	system     *actorSystem
	actor      Actor
	mailbox    Mailbox
	signatures mapset.Set[reflect.Type]
	logger     log.Logger

	processing    atomic.Int32
	stopRequested atomic.Bool
	reason        atomic.Error
	done          chan struct{}

	// weak handles to the actors watching this one, keyed by their identity
	watchers *xsync.Map[address.Address, *WeakRef]
}

// enforce compilation error
var _ refcount.Finalizer = (*cell)(nil)

// init prepares a freshly allocated cell. The caller owns the first strong claim.
func (c *cell) init(system *actorSystem, index uint32, identity address.Address, actor Actor, mailbox Mailbox) {
	c.system = system
	c.actor = actor
	c.mailbox = mailbox
	c.logger = system.logger
	c.done = make(chan struct{})
	c.watchers = xsync.NewMap[address.Address, *WeakRef]()
	if typed, ok := actor.(Typed); ok {
		c.signatures = mapset.NewSet[reflect.Type](typed.Signatures()...)
	}
	c.processing.Store(idle)
	c.block.Init(identity, index, c)
}

// Teardown runs on the goroutine that released the last strong claim. The
// actor goroutine finishes the job: it drains the mailbox, terminates the actor
// if needed and drops the instance.
func (c *cell) Teardown(b *refcount.Block) {
	c.system.teardowns.Inc()
	b.Mark(refcount.Unreachable)
	c.logger.Debugf("Actor %s is no longer referenced", b.Identity())
	c.schedule()
}

// Reclaim runs once no handle refers to the cell anymore
func (c *cell) Reclaim(b *refcount.Block) {
	system := c.system
	index := b.Index()
	identity := b.Identity()

	c.mailbox.Dispose()
	system.reclaim(index)
	system.logger.Debugf("Actor %s control block reclaimed", identity)
}

// supports reports whether the actor accepts every given message type
func (c *cell) supports(required ...reflect.Type) bool {
	if c.signatures == nil {
		return true
	}
	for _, kind := range required {
		if !c.accepts(kind) {
			return false
		}
	}
	return true
}

func (c *cell) accepts(kind reflect.Type) bool {
	if c.signatures.Contains(kind) {
		return true
	}
	found := false
	c.signatures.Each(func(signature reflect.Type) bool {
		found = signature.Kind() == reflect.Interface && kind.Implements(signature)
		return found
	})
	return found
}

func (c *cell) acceptsMessage(message any) bool {
	if c.signatures == nil || isSystemMessage(message) {
		return true
	}
	return c.accepts(reflect.TypeOf(message))
}
