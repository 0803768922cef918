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
	"reflect"
	"time"

	"github.com/tochemey/refkit/address"
	gerrors "github.com/tochemey/refkit/errors"
	"github.com/tochemey/refkit/internal/locker"
	"github.com/tochemey/refkit/internal/refcount"
)

// TypedRef is the statically typed strong handle. It only sends messages of
// type M and can only be obtained, through Cast, for an actor accepting M.
type TypedRef[M any] struct {
	_    locker.NoCopy
	cell *cell
}

// Address returns the identity of the referenced actor
func (x *TypedRef[M]) Address() address.Address {
	if x == nil {
		return address.NoSender()
	}
	return identityOf(x.cell)
}

// IsEmpty reports whether the handle refers to nothing
func (x *TypedRef[M]) IsEmpty() bool {
	return x == nil || x.cell == nil
}

// IsValid reports whether the handle refers to a running actor
func (x *TypedRef[M]) IsValid() bool {
	return !x.IsEmpty() && x.cell.block.Is(refcount.Running)
}

// Tell sends an asynchronous message to the actor
func (x *TypedRef[M]) Tell(ctx context.Context, message M) error {
	return x.mustCell().tell(ctx, message, nil, nil)
}

// Ask sends a message and waits for the reply for at most timeout.
// A zero timeout uses the actor system default.
func (x *TypedRef[M]) Ask(ctx context.Context, message M, timeout time.Duration) (any, error) {
	return x.mustCell().ask(ctx, message, timeout)
}

// Clone returns a new handle to the same actor
func (x *TypedRef[M]) Clone() *TypedRef[M] {
	if x.IsEmpty() {
		return new(TypedRef[M])
	}
	x.cell.block.AcquireStrong()
	return &TypedRef[M]{cell: x.cell}
}

// Move transfers the claim to a new handle and leaves x empty
func (x *TypedRef[M]) Move() *TypedRef[M] {
	out := new(TypedRef[M])
	if x != nil {
		out.cell, x.cell = x.cell, nil
	}
	return out
}

// Release drops the claim. Releasing an empty handle is a no-op.
func (x *TypedRef[M]) Release() {
	if x.IsEmpty() {
		return
	}
	c := x.cell
	x.cell = nil
	c.block.ReleaseStrong()
}

// Assign makes x refer to the actor of other, releasing its previous referent first
func (x *TypedRef[M]) Assign(other *TypedRef[M]) {
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
func (x *TypedRef[M]) String() string {
	kind := "TypedRef[" + reflect.TypeFor[M]().String() + "]"
	if x == nil {
		return describe(kind, nil)
	}
	return describe(kind, x.cell)
}

func (x *TypedRef[M]) mustCell() *cell {
	if x.IsEmpty() {
		panic(gerrors.ErrEmptyHandle)
	}
	return x.cell
}

func (x *TypedRef[M]) target() (*cell, bool) {
	if x == nil {
		return nil, true
	}
	return x.cell, true
}

func (x *TypedRef[M]) adopt(c *cell, strong bool) bool {
	if !acquireStrong(c, strong, reflect.TypeFor[M]()) {
		return false
	}
	x.cell = c
	return true
}

// SpawnTyped spawns an actor and returns a TypedRef[M] to it. It fails with
// errors.ErrCapabilityMismatch when the actor does not accept M, in which case
// the actor is released right away and never becomes reachable.
func SpawnTyped[M any](ctx context.Context, system ActorSystem, actor Actor, opts ...SpawnOption) (*TypedRef[M], error) {
	ref, err := system.Spawn(ctx, actor, opts...)
	if err != nil {
		return nil, err
	}
	defer ref.Release()

	typed := Cast[TypedRef[M]](ref)
	if typed.IsEmpty() {
		return nil, gerrors.NewErrCapabilityMismatch(reflect.TypeFor[M]().String())
	}
	return typed, nil
}
