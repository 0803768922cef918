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

	"github.com/tochemey/refkit/address"
	"github.com/tochemey/refkit/internal/refcount"
)

// Handle is implemented by every reference type of the package
type Handle interface {
	// Address returns the identity of the referenced actor, or NoSender when empty.
	Address() address.Address
	// IsEmpty reports whether the handle refers to nothing
	IsEmpty() bool
	// target returns the referenced cell and whether the handle holds a strong claim
	target() (*cell, bool)
}

// castable is the set of handles Cast can produce
type castable[T any] interface {
	*T
	Handle
	// adopt takes a claim on c. strong tells whether the source holds a strong claim.
	adopt(c *cell, strong bool) bool
}

// Cast converts between handle flavors. It never allocates a control block:
// the result refers to the same actor as source, with its own claim.
//
//   - To WeakRef: always succeeds.
//   - From a strong handle to a strong flavor: succeeds unless the target flavor
//     requires message types the actor does not accept.
//   - From a WeakRef to a strong flavor (upgrade): also fails when the strong count
//     already reached zero or the actor no longer runs. An upgrade never waits.
//
// A failed cast returns an empty, non-nil handle. The caller owns the result
// and must release it.
//
//	weak := actor.Cast[actor.WeakRef](ref)
//	defer weak.Release()
//	if strong := actor.Cast[actor.ActorRef](weak); strong.IsValid() {
//		defer strong.Release()
//		_ = strong.Tell(ctx, msg)
//	}
func Cast[T any, PT castable[T]](source Handle) PT {
	result := PT(new(T))
	if source == nil {
		return result
	}
	if c, strong := source.target(); c != nil {
		result.adopt(c, strong)
	}
	return result
}

// acquireStrong takes a strong claim for a strong handle requiring the given message types
func acquireStrong(c *cell, fromStrong bool, required ...reflect.Type) bool {
	if !c.supports(required...) {
		return false
	}
	if fromStrong {
		c.block.AcquireStrong()
		return true
	}
	if !c.block.TryAcquireStrong() {
		return false
	}
	if !c.block.Is(refcount.Running) {
		c.block.ReleaseStrong()
		return false
	}
	return true
}

// identityOf returns the identity of the cell or NoSender
func identityOf(c *cell) address.Address {
	if c == nil {
		return address.NoSender()
	}
	return c.block.Identity()
}

func describe(kind string, c *cell) string {
	if c == nil {
		return kind + "(<empty>)"
	}
	return kind + "(" + c.block.Identity().String() + ")"
}
