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
	"github.com/tochemey/refkit/address"
	"github.com/tochemey/refkit/internal/locker"
	"github.com/tochemey/refkit/internal/refcount"
)

// WeakRef keeps the control block of an actor alive without keeping the actor
// instance alive. The identity stays readable after the actor is gone. Cast a
// WeakRef to a strong flavor to use the actor.
type WeakRef struct {
	_    locker.NoCopy
	cell *cell
}

// enforce compilation error
var _ Handle = (*WeakRef)(nil)

// Address returns the identity of the referenced actor. It stays available
// after the actor has terminated.
func (x *WeakRef) Address() address.Address {
	if x == nil {
		return address.NoSender()
	}
	return identityOf(x.cell)
}

// IsEmpty reports whether the handle refers to nothing
func (x *WeakRef) IsEmpty() bool {
	return x == nil || x.cell == nil
}

// Expired reports whether an upgrade of x would fail: the last strong handle
// is gone or the actor no longer runs. A false result can be outdated by the
// time the caller acts on it.
func (x *WeakRef) Expired() bool {
	return x.IsEmpty() || x.cell.block.StrongCount() == 0 || !x.cell.block.Is(refcount.Running)
}

// Clone returns a new handle to the same control block
func (x *WeakRef) Clone() *WeakRef {
	if x.IsEmpty() {
		return new(WeakRef)
	}
	x.cell.block.AcquireWeak()
	return &WeakRef{cell: x.cell}
}

// Move transfers the claim to a new handle and leaves x empty
func (x *WeakRef) Move() *WeakRef {
	out := new(WeakRef)
	if x != nil {
		out.cell, x.cell = x.cell, nil
	}
	return out
}

// Release drops the claim. Releasing an empty handle is a no-op.
func (x *WeakRef) Release() {
	if x.IsEmpty() {
		return
	}
	c := x.cell
	x.cell = nil
	c.block.ReleaseWeak()
}

// Assign makes x refer to the control block of other, releasing its previous referent first
func (x *WeakRef) Assign(other *WeakRef) {
	var next *cell
	if !other.IsEmpty() {
		next = other.cell
	}
	if x.cell == next {
		return
	}
	x.Release()
	if next != nil {
		next.block.AcquireWeak()
		x.cell = next
	}
}

// String returns a debug representation of the handle
func (x *WeakRef) String() string {
	if x == nil {
		return describe("WeakRef", nil)
	}
	return describe("WeakRef", x.cell)
}

func (x *WeakRef) target() (*cell, bool) {
	if x == nil {
		return nil, false
	}
	return x.cell, false
}

func (x *WeakRef) adopt(c *cell, _ bool) bool {
	c.block.AcquireWeak()
	x.cell = c
	return true
}
