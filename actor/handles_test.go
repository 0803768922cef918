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
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/refkit/address"
	gerrors "github.com/tochemey/refkit/errors"
)

func TestActorRef(t *testing.T) {
	ctx := context.Background()

	t.Run("With clone, move, assign and release", func(t *testing.T) {
		system := startSystem(t)
		ref, err := system.Spawn(ctx, newTestActor())
		require.NoError(t, err)
		other, err := system.Spawn(ctx, newTestActor())
		require.NoError(t, err)
		block := &ref.cell.block

		clone := ref.Clone()
		assert.EqualValues(t, 2, block.StrongCount())
		assert.True(t, clone.Equals(ref))

		moved := clone.Move()
		assert.True(t, clone.IsEmpty())
		assert.False(t, moved.IsEmpty())
		assert.EqualValues(t, 2, block.StrongCount())

		// assigning the same referent is a no-op
		moved.Assign(ref)
		assert.EqualValues(t, 2, block.StrongCount())

		moved.Assign(other)
		assert.EqualValues(t, 1, block.StrongCount())
		assert.EqualValues(t, 2, other.cell.block.StrongCount())
		assert.True(t, moved.Equals(other))

		// a released handle can be reassigned
		moved.Release()
		moved.Release()
		assert.True(t, moved.IsEmpty())
		moved.Assign(ref)
		assert.EqualValues(t, 2, block.StrongCount())
		moved.Assign(nil)
		assert.True(t, moved.IsEmpty())
		assert.EqualValues(t, 1, block.StrongCount())

		clone.Release()
		ref.Release()
		other.Release()
		require.Eventually(t, reclaimed(system), time.Second, 5*time.Millisecond)
	})
	t.Run("With empty handles", func(t *testing.T) {
		var ref *ActorRef
		assert.True(t, ref.IsEmpty())
		assert.False(t, ref.IsValid())
		assert.True(t, ref.Address().IsZero())
		assert.Equal(t, "ActorRef(<empty>)", ref.String())
		assert.True(t, ref.Clone().IsEmpty())
		assert.True(t, ref.Move().IsEmpty())
		ref.Release()

		empty := new(ActorRef)
		assert.PanicsWithValue(t, gerrors.ErrEmptyHandle, func() {
			_ = empty.Tell(ctx, new(testPing))
		})
		assert.PanicsWithValue(t, gerrors.ErrEmptyHandle, func() {
			_, _ = empty.Ask(ctx, new(testPing), time.Second)
		})
		assert.PanicsWithValue(t, gerrors.ErrEmptyHandle, func() {
			_ = empty.Stop(ctx)
		})
	})
	t.Run("With concurrent clone and release", func(t *testing.T) {
		system := startSystem(t)
		ref, err := system.Spawn(ctx, newTestActor())
		require.NoError(t, err)
		block := &ref.cell.block

		var wg sync.WaitGroup
		for w := range 16 {
			wg.Add(1)
			seed := ref.Clone()
			go func() {
				defer wg.Done()
				rnd := rand.New(rand.NewPCG(uint64(w), 7))
				held := []*ActorRef{seed}
				weak := []*WeakRef{}
				for range 1000 {
					switch rnd.IntN(5) {
					case 0:
						held = append(held, held[rnd.IntN(len(held))].Clone())
					case 1:
						if len(held) > 1 {
							last := len(held) - 1
							held[last].Release()
							held = held[:last]
						}
					case 2:
						weak = append(weak, Cast[WeakRef](held[0]))
					case 3:
						if len(weak) > 0 {
							upgraded := Cast[ActorRef](weak[0])
							if upgraded.IsEmpty() {
								t.Error("upgrade failed while strong handles were held")
							}
							upgraded.Release()
						}
					case 4:
						if len(weak) > 0 {
							last := len(weak) - 1
							weak[last].Release()
							weak = weak[:last]
						}
					}
				}
				for _, h := range held {
					h.Release()
				}
				for _, h := range weak {
					h.Release()
				}
			}()
		}
		wg.Wait()

		assert.EqualValues(t, 1, block.StrongCount())
		// the implicit claim of the strong side plus the registry entry
		assert.EqualValues(t, 2, block.WeakCount())
		assert.Zero(t, system.Stats().Teardowns)

		ref.Release()
		require.Eventually(t, reclaimed(system), time.Second, 5*time.Millisecond)
		stats := system.Stats()
		assert.EqualValues(t, 1, stats.Teardowns)
		assert.EqualValues(t, 1, stats.Reclaims)
	})
}

func TestCast(t *testing.T) {
	ctx := context.Background()

	t.Run("With downgrade and upgrade", func(t *testing.T) {
		system := startSystem(t)
		ref, err := system.Spawn(ctx, newTestActor())
		require.NoError(t, err)
		block := &ref.cell.block

		weak := Cast[WeakRef](ref)
		assert.EqualValues(t, 1, block.StrongCount())
		assert.EqualValues(t, 3, block.WeakCount())
		assert.True(t, weak.Address().Equals(ref.Address()))
		assert.False(t, weak.Expired())

		strong := Cast[StrongRef](weak)
		require.True(t, strong.IsValid())
		assert.EqualValues(t, 2, block.StrongCount())
		assert.Same(t, ref.cell, strong.cell)

		untyped := Cast[ActorRef](strong)
		require.True(t, untyped.IsValid())
		assert.EqualValues(t, 3, block.StrongCount())

		weakClone := Cast[WeakRef](weak)
		assert.EqualValues(t, 4, block.WeakCount())

		strong.Release()
		untyped.Release()
		weakClone.Release()
		ref.Release()

		upgraded := Cast[ActorRef](weak)
		require.NotNil(t, upgraded)
		assert.True(t, upgraded.IsEmpty())
		assert.False(t, upgraded.IsValid())
		assert.True(t, weak.Expired())

		weak.Release()
		require.Eventually(t, reclaimed(system), time.Second, 5*time.Millisecond)
	})
	t.Run("With empty sources", func(t *testing.T) {
		assert.True(t, Cast[WeakRef](nil).IsEmpty())
		assert.True(t, Cast[ActorRef](new(WeakRef)).IsEmpty())
		var ref *ActorRef
		assert.True(t, Cast[StrongRef](ref).IsEmpty())
		assert.True(t, Cast[TypedRef[*testGreet]](ref).IsEmpty())
	})
	t.Run("With capabilities", func(t *testing.T) {
		system := startSystem(t)
		ref, err := system.Spawn(ctx, newTypedActor())
		require.NoError(t, err)

		greeter := Cast[TypedRef[*testGreet]](ref)
		require.True(t, greeter.IsValid())
		assert.True(t, greeter.Address().Equals(ref.Address()))
		reply, err := greeter.Ask(ctx, &testGreet{name: "refkit"}, time.Second)
		require.NoError(t, err)
		assert.Equal(t, "hello refkit", reply)

		byInterface := Cast[TypedRef[testGreeter]](greeter)
		require.True(t, byInterface.IsValid())
		require.NoError(t, byInterface.Tell(ctx, &testGreet{name: "again"}))

		mismatch := Cast[TypedRef[*testPing]](ref)
		require.NotNil(t, mismatch)
		assert.True(t, mismatch.IsEmpty())
		assert.EqualValues(t, 3, ref.cell.block.StrongCount())

		err = ref.Tell(ctx, new(testPing))
		require.ErrorIs(t, err, gerrors.ErrUnsupportedMessage)
		assert.Contains(t, err.Error(), "*actor.testPing")

		greeter.Release()
		byInterface.Release()
		ref.Release()
		require.Eventually(t, reclaimed(system), time.Second, 5*time.Millisecond)
	})
	t.Run("With SpawnTyped", func(t *testing.T) {
		system := startSystem(t)
		greeter, err := SpawnTyped[*testGreet](ctx, system, newTypedActor())
		require.NoError(t, err)
		require.True(t, greeter.IsValid())
		assert.EqualValues(t, 1, greeter.cell.block.StrongCount())

		reply, err := greeter.Ask(ctx, &testGreet{name: "typed"}, time.Second)
		require.NoError(t, err)
		assert.Equal(t, "hello typed", reply)

		pinger, err := SpawnTyped[*testPing](ctx, system, newTypedActor())
		require.ErrorIs(t, err, gerrors.ErrCapabilityMismatch)
		assert.Contains(t, err.Error(), "*actor.testPing")
		assert.Nil(t, pinger)

		greeter.Release()
		require.Eventually(t, reclaimed(system), time.Second, 5*time.Millisecond)
		stats := system.Stats()
		assert.EqualValues(t, 2, stats.Spawned)
		assert.EqualValues(t, 2, stats.Teardowns)
	})
	t.Run("With a dynamically typed actor", func(t *testing.T) {
		system := startSystem(t)
		ref, err := system.Spawn(ctx, newTestActor())
		require.NoError(t, err)

		typed := Cast[TypedRef[*testPing]](ref)
		require.True(t, typed.IsValid())
		reply, err := typed.Ask(ctx, new(testPing), time.Second)
		require.NoError(t, err)
		assert.IsType(t, new(testPong), reply)

		typed.Release()
		ref.Release()
		require.Eventually(t, reclaimed(system), time.Second, 5*time.Millisecond)
	})
	t.Run("With a stopped actor", func(t *testing.T) {
		system := startSystem(t)
		ref, err := system.Spawn(ctx, newTestActor())
		require.NoError(t, err)
		weak := Cast[WeakRef](ref)
		assert.False(t, weak.Expired())

		require.NoError(t, ref.Stop(ctx))
		require.NoError(t, ref.Stop(ctx))
		assert.False(t, ref.IsValid())
		assert.True(t, weak.Expired())
		assert.EqualValues(t, 1, ref.cell.block.StrongCount())

		// the strong count is still positive but the actor no longer runs
		assert.True(t, Cast[ActorRef](weak).IsEmpty())
		assert.True(t, system.Lookup(ref.Address()).IsEmpty())

		// a strong source always yields a handle
		strong := Cast[StrongRef](ref)
		assert.False(t, strong.IsEmpty())
		assert.False(t, strong.IsValid())
		strong.Release()

		ref.Release()
		require.Eventually(t, func() bool { return system.Stats().LiveActors == 0 }, time.Second, 5*time.Millisecond)

		// the identity outlives the actor
		assert.Equal(t, address.New("test-node", 1), weak.Address())
		weak.Release()
		require.Eventually(t, reclaimed(system), time.Second, 5*time.Millisecond)
	})
}
