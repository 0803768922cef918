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

// StrongRef is the plain strong handle. It keeps the actor instance alive
// but exposes no messaging; cast it to ActorRef or TypedRef to send.
type StrongRef struct {
	_    locker.NoCopy
	cell *cell
}

// enforce compilation error
var _ Handle = (*StrongRef)(nil)

// Address returns the identity of the referenced actor
func (x *StrongRef) Address() address.Address {
	if x == nil {
		return address.NoSender()
	}
	return identityOf(x.cell)
}

// IsEmpty reports whether the handle refers to nothing
func (x *StrongRef) IsEmpty() bool {
	return x == nil || x.cell == nil
}

// IsValid reports whether the handle refers to a running actor
func (x *StrongRef) IsValid() bool {
	return !x.IsEmpty() && x.cell.block.Is(refcount.Running)
}

// Clone returns a new handle to the same actor
func (x *StrongRef) Clone() *StrongRef {
	if x.IsEmpty() {
		return new(StrongRef)
	}
	x.cell.block.AcquireStrong()
	return &StrongRef{cell: x.cell}
}

// Move transfers the claim to a new handle and leaves x empty
func (x *StrongRef) Move() *StrongRef {
	out := new(StrongRef)
	if x != nil {
		out.cell, x.cell = x.cell, nil
	}
	return out
}

// Release drops the claim. Releasing an empty handle is a no-op.
func (x *StrongRef) Release() {
	if x.IsEmpty() {
		return
	}
	c := x.cell
	x.cell = nil
	c.block.ReleaseStrong()
}

// Assign makes x refer to the actor of other, releasing its previous referent first
func (x *StrongRef) Assign(other *StrongRef) {
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
func (x *StrongRef) String() string {
	if x == nil {
		return describe("StrongRef", nil)
	}
	return describe("StrongRef", x.cell)
}

func (x *StrongRef) target() (*cell, bool) {
	if x == nil {
		return nil, true
	}
	return x.cell, true
}

func (x *StrongRef) adopt(c *cell, strong bool) bool {
	if !acquireStrong(c, strong) {
		return false
	}
	x.cell = c
	return true
}
