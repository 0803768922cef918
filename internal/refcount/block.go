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

// Package refcount implements the control block shared by every handle to an
// actor instance.
//
// A Block owns the identity of the actor and two lock-free counters:
//
//   - strong: number of strong claims. The actor instance is torn down when it
//     drops from one to zero.
//   - weak: number of weak claims, plus one implicit claim held collectively by
//     the strong side. The block itself is reclaimed when it drops to zero.
//
// Hence weak >= 1 whenever strong >= 1, and weak reaches zero only after
// strong did. Decrementing either counter below zero is a double release and
// panics with errors.ErrRefCountUnderflow.
package refcount

import (
	"fmt"

	"go.uber.org/atomic"

	"github.com/tochemey/refkit/address"
	gerrors "github.com/tochemey/refkit/errors"
	"github.com/tochemey/refkit/internal/locker"
)

// Finalizer receives the two end-of-life events of a Block.
type Finalizer interface {
	// Teardown is called exactly once, on the goroutine that released the last
	// strong claim. The implicit weak claim of the strong side is released right
	// after it returns, so an implementation that finishes asynchronously must
	// take its own weak claim first.
	Teardown(b *Block)
	// Reclaim is called exactly once, when the last weak claim is released.
	// No handle refers to the block anymore and its storage may be recycled.
	Reclaim(b *Block)
}

// Block is the fixed-size control block colocated with an actor instance.
// The zero value is not usable; call Init.
type Block struct {
	_         locker.NoCopy
	strong    atomic.Uint32
	weak      atomic.Uint32
	state     atomic.Uint32
	index     uint32
	identity  address.Address
	finalizer Finalizer
}

// Init sets the identity, the slab index and the finalizer of the block and
// hands out the first strong claim (strong=1, weak=1) in the running state.
// It must be called before the block is shared.
func (b *Block) Init(identity address.Address, index uint32, finalizer Finalizer) {
	b.identity = identity
	b.index = index
	b.finalizer = finalizer
	b.state.Store(uint32(Running))
	b.weak.Store(1)
	b.strong.Store(1)
}

// Identity returns the identity of the actor. It remains available after
// teardown, for as long as a weak claim keeps the block alive.
func (b *Block) Identity() address.Address {
	return b.identity
}

// Index returns the slab index of the cell holding the block
func (b *Block) Index() uint32 {
	return b.index
}

// StrongCount returns a snapshot of the strong counter
func (b *Block) StrongCount() uint32 {
	return b.strong.Load()
}

// WeakCount returns a snapshot of the weak counter
func (b *Block) WeakCount() uint32 {
	return b.weak.Load()
}

// AcquireStrong adds a strong claim. The caller must already hold one.
func (b *Block) AcquireStrong() {
	if b.strong.Inc() == 1 {
		panic(fmt.Errorf("%w: strong claim acquired on torn down actor %s", gerrors.ErrRefCountUnderflow, b.identity))
	}
}

// TryAcquireStrong adds a strong claim only when at least one is still held.
// It returns false once the strong count has reached zero; a torn down actor
// never comes back.
func (b *Block) TryAcquireStrong() bool {
	for {
		current := b.strong.Load()
		if current == 0 {
			return false
		}
		if b.strong.CompareAndSwap(current, current+1) {
			return true
		}
	}
}

// ReleaseStrong drops a strong claim. The caller that takes the count from
// one to zero runs the teardown and then releases the implicit weak claim.
func (b *Block) ReleaseStrong() {
	for {
		current := b.strong.Load()
		if current == 0 {
			panic(fmt.Errorf("%w: strong release on %s", gerrors.ErrRefCountUnderflow, b.identity))
		}
		if !b.strong.CompareAndSwap(current, current-1) {
			continue
		}
		if current == 1 {
			if b.finalizer != nil {
				b.finalizer.Teardown(b)
			}
			b.ReleaseWeak()
		}
		return
	}
}

// AcquireWeak adds a weak claim. The caller must already hold a strong or weak claim.
func (b *Block) AcquireWeak() {
	if b.weak.Inc() == 1 {
		panic(fmt.Errorf("%w: weak claim acquired on reclaimed block %s", gerrors.ErrRefCountUnderflow, b.identity))
	}
}

// ReleaseWeak drops a weak claim and reclaims the block on the last one.
func (b *Block) ReleaseWeak() {
	for {
		current := b.weak.Load()
		if current == 0 {
			panic(fmt.Errorf("%w: weak release on %s", gerrors.ErrRefCountUnderflow, b.identity))
		}
		if !b.weak.CompareAndSwap(current, current-1) {
			continue
		}
		if current == 1 && b.finalizer != nil {
			b.finalizer.Reclaim(b)
		}
		return
	}
}

// String returns a debug representation of the block
func (b *Block) String() string {
	return fmt.Sprintf("%s(strong=%d, weak=%d, state=%s)", b.identity, b.StrongCount(), b.WeakCount(), b.State())
}
