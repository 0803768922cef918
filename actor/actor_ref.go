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
	"context"
	"time"

	"github.com/tochemey/refkit/address"
	gerrors "github.com/tochemey/refkit/errors"
	"github.com/tochemey/refkit/internal/locker"
	"github.com/tochemey/refkit/internal/refcount"
)

// ActorRef is the untyped strong handle with messaging. It is what Spawn
// returns. Calling Tell, Ask or Stop on an empty ActorRef panics with
// errors.ErrEmptyHandle.
type ActorRef struct {
	_    locker.NoCopy
	cell *cell
}

// enforce compilation error
var _ Handle = (*ActorRef)(nil)

// Address returns the identity of the referenced actor
func (x *ActorRef) Address() address.Address {
	if x == nil {
		return address.NoSender()
	}
	return identityOf(x.cell)
}

// IsEmpty reports whether the handle refers to nothing
func (x *ActorRef) IsEmpty() bool {
	return x == nil || x.cell == nil
}

// IsValid reports whether the handle refers to a running actor
func (x *ActorRef) IsValid() bool {
	return !x.IsEmpty() && x.cell.block.Is(refcount.Running)
}

// Equals reports whether both handles refer to the same actor
func (x *ActorRef) Equals(other Handle) bool {
	return other != nil && x.Address().Equals(other.Address())
}

// Tell sends an asynchronous message to the actor.
// It returns errors.ErrDead when the actor is no longer running.
func (x *ActorRef) Tell(ctx context.Context, message any) error {
	return x.mustCell().tell(ctx, message, nil, nil)
}

// Ask sends a message and waits for the reply for at most timeout.
// A zero timeout uses the actor system default.
func (x *ActorRef) Ask(ctx context.Context, message any, timeout time.Duration) (any, error) {
	return x.mustCell().ask(ctx, message, timeout)
}

// Stop terminates the actor once its current message is handled and waits
// until its termination hooks have returned. Stopping a terminated actor is a
// no-op. An actor must not call Stop on its own handle from Receive; it uses
// ReceiveContext.Shutdown instead.
func (x *ActorRef) Stop(ctx context.Context) error {
	return x.mustCell().stop(ctx)
}

// Clone returns a new handle to the same actor
func (x *ActorRef) Clone() *ActorRef {
	if x.IsEmpty() {
		return new(ActorRef)
	}
	x.cell.block.AcquireStrong()
	return &ActorRef{cell: x.cell}
}

// Move transfers the claim to a new handle and leaves x empty
func (x *ActorRef) Move() *ActorRef {
	out := new(ActorRef)
	if x != nil {
		out.cell, x.cell = x.cell, nil
	}
	return out
}

// Release drops the claim. Releasing an empty handle is a no-op.
func (x *ActorRef) Release() {
	if x.IsEmpty() {
		return
	}
	c := x.cell
	x.cell = nil
	c.block.ReleaseStrong()
}

// Assign makes x refer to the actor of other, releasing its previous referent first
func (x *ActorRef) Assign(other *ActorRef) {
	var next *cell
	if !other.IsEmpty() {
		next = other.cell
	}
	if x.cell == next {
		return
	}
	x.Release()
	if next != nil {
		next.block.AcquireStrong()
		x.cell = next
	}
}

// String returns a debug representation of the handle
func (x *ActorRef) String() string {
	if x == nil {
		return describe("ActorRef", nil)
	}
	return describe("ActorRef", x.cell)
}

func (x *ActorRef) mustCell() *cell {
	if x.IsEmpty() {
		panic(gerrors.ErrEmptyHandle)
	}
	return x.cell
}

func (x *ActorRef) target() (*cell, bool) {
	if x == nil {
		return nil, true
	}
	return x.cell, true
}

func (x *ActorRef) adopt(c *cell, strong bool) bool {
	if !acquireStrong(c, strong) {
		return false
	}
	x.cell = c
	return true
}
