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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/refkit/errors"
)

func TestMessaging(t *testing.T) {
	ctx := context.Background()

	t.Run("With sender replies", func(t *testing.T) {
		system := startSystem(t)
		actorA := newTestActor()
		actorB := newTestActor()
		refA, err := system.Spawn(ctx, actorA)
		require.NoError(t, err)
		refB, err := system.Spawn(ctx, actorB)
		require.NoError(t, err)

		// A pings B with itself as sender, B answers with a pong to A
		require.NoError(t, refA.Tell(ctx, &testForward{to: refB}))
		require.Eventually(t, func() bool { return actorA.received.Load() == 2 }, time.Second, 5*time.Millisecond)
		assert.EqualValues(t, 1, actorB.received.Load())

		// the sender handles were released once handled
		require.Eventually(t, func() bool {
			return refA.cell.block.StrongCount() == 1 && refB.cell.block.StrongCount() == 1
		}, time.Second, 5*time.Millisecond)

		refA.Release()
		refB.Release()
		require.Eventually(t, reclaimed(system), time.Second, 5*time.Millisecond)
	})
	t.Run("With invalid messages and timeouts", func(t *testing.T) {
		system := startSystem(t, WithAskTimeout(50*time.Millisecond))
		ref, err := system.Spawn(ctx, newTestActor())
		require.NoError(t, err)

		require.ErrorIs(t, ref.Tell(ctx, nil), gerrors.ErrInvalidMessage)

		_, err = ref.Ask(ctx, new(testPing), -time.Second)
		require.ErrorIs(t, err, gerrors.ErrInvalidTimeout)

		// testPong is not answered
		_, err = ref.Ask(ctx, new(testPong), 0)
		require.ErrorIs(t, err, gerrors.ErrRequestTimeout)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err = ref.Ask(cancelled, new(testPong), time.Second)
		require.ErrorIs(t, err, context.Canceled)

		ref.Release()
		require.Eventually(t, reclaimed(system), time.Second, 5*time.Millisecond)
	})
	t.Run("With poison pill", func(t *testing.T) {
		system := startSystem(t)
		actor := newTestActor()
		ref, err := system.Spawn(ctx, actor)
		require.NoError(t, err)

		require.NoError(t, ref.Tell(ctx, new(testBlock)))
		<-actor.started
		require.NoError(t, ref.Tell(ctx, new(testPing)))
		require.NoError(t, ref.Tell(ctx, new(PoisonPill)))
		require.NoError(t, ref.Tell(ctx, new(testPing)))
		close(actor.release)

		require.NoError(t, <-actor.terminated)
		assert.True(t, actor.stopped.Load())
		assert.EqualValues(t, 2, actor.received.Load())
		require.Eventually(t, func() bool { return system.Stats().DeadLetters == 1 }, time.Second, 5*time.Millisecond)

		require.ErrorIs(t, ref.Tell(ctx, new(testPing)), gerrors.ErrDead)
		_, err = ref.Ask(ctx, new(testPing), time.Second)
		require.ErrorIs(t, err, gerrors.ErrDead)

		ref.Release()
		require.Eventually(t, reclaimed(system), time.Second, 5*time.Millisecond)
	})
	t.Run("With a pending ask on a stopping actor", func(t *testing.T) {
		system := startSystem(t)
		actor := newTestActor()
		ref, err := system.Spawn(ctx, actor)
		require.NoError(t, err)

		require.NoError(t, ref.Tell(ctx, new(testBlock)))
		<-actor.started

		errc := make(chan error, 1)
		go func() {
			_, err := ref.Ask(ctx, new(testPing), time.Second)
			errc <- err
		}()
		require.Eventually(t, func() bool { return ref.cell.mailbox.Len() == 1 }, time.Second, time.Millisecond)

		stopped := make(chan error, 1)
		go func() { stopped <- ref.Stop(ctx) }()
		require.Eventually(t, ref.cell.stopRequested.Load, time.Second, time.Millisecond)
		close(actor.release)

		require.NoError(t, <-stopped)
		require.ErrorIs(t, <-errc, gerrors.ErrDead)

		ref.Release()
		require.Eventually(t, reclaimed(system), time.Second, 5*time.Millisecond)
	})
	t.Run("With a fault", func(t *testing.T) {
		system := startSystem(t)
		actor := newTestActor()
		ref, err := system.Spawn(ctx, actor)
		require.NoError(t, err)

		_, err = ref.Ask(ctx, new(testPanic), time.Second)
		var panicErr *gerrors.PanicError
		require.ErrorAs(t, err, &panicErr)
		assert.Contains(t, err.Error(), "boom")

		reason := <-actor.terminated
		require.ErrorAs(t, reason, &panicErr)
		assert.True(t, actor.stopped.Load())
		assert.False(t, ref.IsValid())

		ref.Release()
		require.Eventually(t, reclaimed(system), time.Second, 5*time.Millisecond)
	})
	t.Run("With a bounded mailbox", func(t *testing.T) {
		system := startSystem(t)
		actor := newTestActor()
		ref, err := system.Spawn(ctx, actor, WithBoundedMailbox(1))
		require.NoError(t, err)

		require.NoError(t, ref.Tell(ctx, new(testBlock)))
		<-actor.started
		require.NoError(t, ref.Tell(ctx, new(testPing)))
		require.ErrorIs(t, ref.Tell(ctx, new(testPing)), gerrors.ErrMailboxFull)
		close(actor.release)

		require.Eventually(t, func() bool { return actor.received.Load() == 2 }, time.Second, 5*time.Millisecond)
		ref.Release()
		require.Eventually(t, reclaimed(system), time.Second, 5*time.Millisecond)
	})
	t.Run("With self handles", func(t *testing.T) {
		system := startSystem(t)
		ref, err := system.Spawn(ctx, new(selfActor))
		require.NoError(t, err)

		reply, err := ref.Ask(ctx, new(testPing), time.Second)
		require.NoError(t, err)
		assert.Equal(t, ref.Address(), reply)

		// the actor stops itself
		require.NoError(t, ref.Tell(ctx, new(PoisonPill)))
		require.Eventually(t, func() bool { return !ref.IsValid() }, time.Second, 5*time.Millisecond)

		ref.Release()
		require.Eventually(t, reclaimed(system), time.Second, 5*time.Millisecond)
	})
}

func TestDeathWatch(t *testing.T) {
	ctx := context.Background()

	t.Run("With a stopped actor", func(t *testing.T) {
		system := startSystem(t)
		watcher := newWatcherActor()
		refW, err := system.Spawn(ctx, watcher)
		require.NoError(t, err)
		target, err := system.Spawn(ctx, newTestActor())
		require.NoError(t, err)

		_, err = refW.Ask(ctx, &testWatch{ref: target}, time.Second)
		require.NoError(t, err)
		assert.Equal(t, 1, target.cell.watchers.Len())

		require.NoError(t, target.Stop(ctx))
		terminated := <-watcher.terminated
		assert.True(t, terminated.Address().Equals(target.Address()))
		assert.NoError(t, terminated.Reason())
		assert.Zero(t, target.cell.watchers.Len())

		target.Release()
		refW.Release()
		require.Eventually(t, reclaimed(system), time.Second, 5*time.Millisecond)
	})
	t.Run("With an unreachable actor", func(t *testing.T) {
		system := startSystem(t)
		watcher := newWatcherActor()
		refW, err := system.Spawn(ctx, watcher)
		require.NoError(t, err)
		target, err := system.Spawn(ctx, newTestActor())
		require.NoError(t, err)

		_, err = refW.Ask(ctx, &testWatch{ref: target}, time.Second)
		require.NoError(t, err)
		identity := target.Address()
		target.Release()

		terminated := <-watcher.terminated
		assert.True(t, terminated.Address().Equals(identity))
		assert.ErrorIs(t, terminated.Reason(), gerrors.ErrUnreachable)

		refW.Release()
		require.Eventually(t, reclaimed(system), time.Second, 5*time.Millisecond)
	})
	t.Run("With an already terminated actor", func(t *testing.T) {
		system := startSystem(t)
		watcher := newWatcherActor()
		refW, err := system.Spawn(ctx, watcher)
		require.NoError(t, err)
		target, err := system.Spawn(ctx, newTestActor())
		require.NoError(t, err)
		require.NoError(t, target.Stop(ctx))

		_, err = refW.Ask(ctx, &testWatch{ref: target}, time.Second)
		require.NoError(t, err)
		terminated := <-watcher.terminated
		assert.True(t, terminated.Address().Equals(target.Address()))

		target.Release()
		refW.Release()
		require.Eventually(t, reclaimed(system), time.Second, 5*time.Millisecond)
	})
	t.Run("With UnWatch", func(t *testing.T) {
		system := startSystem(t)
		watcher := newWatcherActor()
		refW, err := system.Spawn(ctx, watcher)
		require.NoError(t, err)
		target, err := system.Spawn(ctx, newTestActor())
		require.NoError(t, err)

		_, err = refW.Ask(ctx, &testWatch{ref: target}, time.Second)
		require.NoError(t, err)
		_, err = refW.Ask(ctx, &testUnWatch{ref: target}, time.Second)
		require.NoError(t, err)
		assert.Zero(t, target.cell.watchers.Len())

		require.NoError(t, target.Stop(ctx))
		assert.Never(t, func() bool { return len(watcher.terminated) > 0 }, 100*time.Millisecond, 10*time.Millisecond)

		target.Release()
		refW.Release()
		require.Eventually(t, reclaimed(system), time.Second, 5*time.Millisecond)
	})
	t.Run("With Stop and Shutdown from Receive", func(t *testing.T) {
		system := startSystem(t)
		watcher := newWatcherActor()
		refW, err := system.Spawn(ctx, watcher)
		require.NoError(t, err)
		target, err := system.Spawn(ctx, newTestActor())
		require.NoError(t, err)

		_, err = refW.Ask(ctx, &testWatch{ref: target}, time.Second)
		require.NoError(t, err)
		require.NoError(t, refW.Tell(ctx, &testStop{ref: target}))
		terminated := <-watcher.terminated
		assert.True(t, terminated.Address().Equals(target.Address()))
		assert.False(t, target.IsValid())

		require.NoError(t, refW.Tell(ctx, new(testShutdown)))
		require.Eventually(t, func() bool { return !refW.IsValid() }, time.Second, 5*time.Millisecond)
		require.ErrorIs(t, refW.Tell(ctx, new(testPing)), gerrors.ErrDead)

		target.Release()
		refW.Release()
		require.Eventually(t, reclaimed(system), time.Second, 5*time.Millisecond)
	})
	t.Run("With a watcher gone first", func(t *testing.T) {
		system := startSystem(t)
		refW, err := system.Spawn(ctx, newWatcherActor())
		require.NoError(t, err)
		target, err := system.Spawn(ctx, newTestActor())
		require.NoError(t, err)

		_, err = refW.Ask(ctx, &testWatch{ref: target}, time.Second)
		require.NoError(t, err)

		// the watched actor only holds a weak handle to its watcher
		refW.Release()
		require.Eventually(t, func() bool { return system.Stats().LiveActors == 1 }, time.Second, 5*time.Millisecond)

		target.Release()
		require.Eventually(t, reclaimed(system), time.Second, 5*time.Millisecond)
	})
}

// selfActor answers with its own identity
type selfActor struct{}

func (x *selfActor) PreStart(context.Context) error { return nil }

func (x *selfActor) Receive(ctx *ReceiveContext) {
	switch ctx.Message().(type) {
	case *testPing:
		self := ctx.Self()
		defer self.Release()
		ctx.Response(self.Address())
	}
}

func (x *selfActor) PostStop(context.Context) error { return nil }
