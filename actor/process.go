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
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/flowchartsman/retry"

	gerrors "github.com/tochemey/refkit/errors"
	"github.com/tochemey/refkit/internal/refcount"
	"github.com/tochemey/refkit/log"
)

// start runs PreStart with retries. On failure the actor is marked terminated
// without running its termination hooks.
func (c *cell) start(ctx context.Context) error {
	system := c.system
	identity := c.block.Identity()
	c.logger.Debugf("Initialization process started for Actor %s ...", identity)

	cctx, cancel := context.WithTimeout(ctx, system.initTimeout)
	defer cancel()

	retrier := retry.NewRetrier(system.initMaxRetries, time.Millisecond, system.initTimeout)
	if err := retrier.RunContext(cctx, func(ctx context.Context) error {
		return c.guard(func() error { return c.actor.PreStart(ctx) })
	}); err != nil {
		c.logger.Errorf("Failed to initialize Actor %s: %v", identity, err)
		c.reason.Store(err)
		c.block.Transition(refcount.Running, refcount.Terminated)
		close(c.done)
		return gerrors.NewErrInitFailure(err)
	}

	c.logger.Debugf("Actor %s initialization is successful.", identity)
	return nil
}

// tell enqueues a message and takes ownership of sender
func (c *cell) tell(ctx context.Context, message any, sender *ActorRef, reply chan *response) error {
	switch {
	case message == nil:
		sender.Release()
		return gerrors.ErrInvalidMessage
	case !c.block.Is(refcount.Running):
		sender.Release()
		return gerrors.ErrDead
	case !c.acceptsMessage(message):
		sender.Release()
		return gerrors.NewErrUnsupportedMessage(fmt.Sprintf("%T", message))
	}

	received := newReceiveContext(ctx, c, message, sender, reply)
	if err := c.mailbox.Enqueue(received); err != nil {
		c.logger.Warn(err)
		received.release()
		return err
	}
	c.schedule()
	return nil
}

// ask sends a message and waits for the reply
func (c *cell) ask(ctx context.Context, message any, timeout time.Duration) (any, error) {
	switch {
	case timeout < 0:
		return nil, gerrors.ErrInvalidTimeout
	case timeout == 0:
		timeout = c.system.askTimeout
	}

	reply := make(chan *response, 1)
	if err := c.tell(ctx, message, nil, reply); err != nil {
		return nil, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp := <-reply:
		return resp.message, resp.err
	case <-timer.C:
		return nil, gerrors.ErrRequestTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// stop requests termination and waits for it
func (c *cell) stop(ctx context.Context) error {
	c.requestStop()
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// requestStop makes the actor terminate before its next message
func (c *cell) requestStop() {
	c.stopRequested.Store(true)
	c.schedule()
}

// schedule starts a processing goroutine unless one is already running.
// The goroutine holds a weak claim so that the cell outlives it.
func (c *cell) schedule() {
	if c.processing.CompareAndSwap(idle, busy) {
		c.block.AcquireWeak()
		go c.run()
	}
}

// pending reports whether the processing goroutine has work left
func (c *cell) pending() bool {
	switch {
	case !c.mailbox.IsEmpty():
		return true
	case c.stopRequested.Load() && c.block.Is(refcount.Running):
		return true
	default:
		return c.block.Is(refcount.Unreachable) && !c.block.Is(refcount.Destroyed)
	}
}

// run processes the mailbox until there is nothing left to do
func (c *cell) run() {
	ctx := context.Background()
	for {
		if c.stopRequested.Load() && c.block.Is(refcount.Running) {
			c.terminate(ctx, nil)
		}

		if received := c.mailbox.Dequeue(); received != nil {
			c.handle(received)
			continue
		}

		if c.block.Is(refcount.Unreachable) && !c.block.Is(refcount.Destroyed) {
			c.destroy(ctx)
		}

		c.processing.Store(idle)
		if c.pending() && c.processing.CompareAndSwap(idle, busy) {
			continue
		}

		// the cell can be reclaimed from here on
		c.block.ReleaseWeak()
		return
	}
}

// handle dispatches a single message
func (c *cell) handle(received *ReceiveContext) {
	defer received.release()

	if !c.block.Is(refcount.Running) {
		c.deadLetter(received)
		return
	}

	switch received.Message().(type) {
	case *PoisonPill:
		c.terminate(context.WithoutCancel(received.Context()), nil)
	default:
		c.receive(received)
	}
}

func (c *cell) receive(received *ReceiveContext) {
	defer c.recovery(received)
	c.actor.Receive(received)
}

// recovery turns a panic in Receive into a fault that terminates the actor
func (c *cell) recovery(received *ReceiveContext) {
	r := recover()
	if r == nil {
		return
	}

	var fault error
	switch err, ok := r.(error); {
	case ok:
		var pe *gerrors.PanicError
		if errors.As(err, &pe) {
			fault = pe
			break
		}
		pc, fn, line, _ := runtime.Caller(2)
		fault = gerrors.NewPanicError(fmt.Errorf("%w at %s[%s:%d]", err, runtime.FuncForPC(pc).Name(), fn, line))
	default:
		pc, fn, line, _ := runtime.Caller(2)
		fault = gerrors.NewPanicError(fmt.Errorf("%#v at %s[%s:%d]", r, runtime.FuncForPC(pc).Name(), fn, line))
	}

	c.logger.Errorf("Actor %s failed to handle %T: %v", c.block.Identity(), received.Message(), fault)
	received.fail(fault)
	c.terminate(context.WithoutCancel(received.Context()), fault)
}

// guard runs a lifecycle hook and converts a panic into an error
func (c *cell) guard(hook func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = gerrors.NewPanicError(e)
				return
			}
			err = gerrors.NewPanicError(fmt.Errorf("%#v", r))
		}
	}()
	return hook()
}

// terminate moves the actor from running to terminated. It runs on the
// processing goroutine only.
func (c *cell) terminate(ctx context.Context, reason error) {
	if !c.block.Transition(refcount.Running, refcount.Terminating) {
		return
	}

	identity := c.block.Identity()
	if reason != nil {
		c.logger.Infof("Actor %s is terminating: %v", identity, reason)
	} else {
		c.logger.Debugf("Actor %s is terminating", identity)
	}

	if terminator, ok := c.actor.(Terminator); ok {
		if err := c.guard(func() error {
			terminator.OnTerminate(ctx, reason)
			return nil
		}); err != nil {
			c.logger.Errorf("Actor %s OnTerminate failed: %v", identity, err)
		}
	}

	if err := c.guard(func() error { return c.actor.PostStop(ctx) }); err != nil {
		c.logger.Errorf("Actor %s PostStop failed: %v", identity, err)
	}

	c.reason.Store(reason)
	c.block.Transition(refcount.Terminating, refcount.Terminated)
	close(c.done)

	c.system.deregister(identity)
	for _, watcher := range c.watchers.Drain() {
		c.notify(watcher, reason)
	}
	c.logger.Debugf("Actor %s terminated", identity)
}

// destroy drops the actor instance once the last strong claim is gone
func (c *cell) destroy(ctx context.Context) {
	if c.block.Is(refcount.Running) {
		c.terminate(ctx, gerrors.ErrUnreachable)
	}
	c.actor = nil
	c.block.Mark(refcount.Destroyed)
	c.system.liveActors.Dec()
	c.logger.Debugf("Actor %s instance destroyed", c.block.Identity())
}

// notify sends Terminated to a watcher and releases the watcher handle
func (c *cell) notify(watcher *WeakRef, reason error) {
	defer watcher.Release()

	ref := Cast[ActorRef](watcher)
	defer ref.Release()
	if ref.IsEmpty() {
		return
	}

	terminated := &Terminated{address: c.block.Identity(), reason: reason}
	if err := ref.cell.tell(context.Background(), terminated, nil, nil); err != nil {
		c.logger.Debugf("Actor %s could not notify watcher %s: %v", c.block.Identity(), ref.Address(), err)
	}
}

// deadLetter drops a message sent to an actor that is no longer running
func (c *cell) deadLetter(received *ReceiveContext) {
	c.system.deadLetters.Inc()
	if c.logger.Enabled(log.DebugLevel) {
		c.logger.Debugf("Actor %s dropped message %T: %v", c.block.Identity(), received.Message(), gerrors.ErrDead)
	}
	received.fail(gerrors.ErrDead)
}
