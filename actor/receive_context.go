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

	"github.com/tochemey/refkit/address"
	"github.com/tochemey/refkit/internal/refcount"
	"github.com/tochemey/refkit/log"
)

// response carries the reply of an Ask
type response struct {
	message any
	err     error
}

// ReceiveContext is the context of a message being handled by an actor.
// It must not be retained after Receive returns.
type ReceiveContext struct {
	ctx     context.Context
	message any
	sender  *ActorRef
	self    *cell
	reply   chan *response
}

// newReceiveContext takes ownership of sender
func newReceiveContext(ctx context.Context, self *cell, message any, sender *ActorRef, reply chan *response) *ReceiveContext {
	return &ReceiveContext{
		ctx:     ctx,
		message: message,
		sender:  sender,
		self:    self,
		reply:   reply,
	}
}

// Context returns the context of the message
func (rctx *ReceiveContext) Context() context.Context {
	return rctx.ctx
}

// Message returns the message being handled
func (rctx *ReceiveContext) Message() any {
	return rctx.message
}

// Sender returns the handle of the sending actor, or nil when the message was
// sent from outside an actor. The handle belongs to the context and is released
// after Receive returns; Clone it to keep it.
func (rctx *ReceiveContext) Sender() *ActorRef {
	return rctx.sender
}

// Address returns the identity of the receiving actor
func (rctx *ReceiveContext) Address() address.Address {
	return rctx.self.block.Identity()
}

// Self returns a new strong handle to the receiving actor, owned by the caller.
// It is empty once the last strong handle to the actor has been released.
func (rctx *ReceiveContext) Self() *ActorRef {
	ref := new(ActorRef)
	if rctx.self.block.TryAcquireStrong() {
		ref.cell = rctx.self
	}
	return ref
}

// Logger returns the logger of the actor
func (rctx *ReceiveContext) Logger() log.Logger {
	return rctx.self.logger
}

// Tell sends a message to the given actor with the receiving actor as sender
func (rctx *ReceiveContext) Tell(to *ActorRef, message any) error {
	sender := rctx.Self()
	if sender.IsEmpty() {
		sender = nil
	}
	return to.mustCell().tell(rctx.ctx, message, sender, nil)
}

// Response replies to an Ask. Only the first response is delivered.
func (rctx *ReceiveContext) Response(message any) {
	rctx.respond(&response{message: message})
}

// Spawn creates a new actor in the actor system of the receiving actor
func (rctx *ReceiveContext) Spawn(actor Actor, opts ...SpawnOption) (*ActorRef, error) {
	return rctx.self.system.Spawn(rctx.ctx, actor, opts...)
}

// Stop asks the given actor to terminate without waiting for it
func (rctx *ReceiveContext) Stop(ref *ActorRef) {
	ref.mustCell().requestStop()
}

// Shutdown terminates the receiving actor once Receive returns
func (rctx *ReceiveContext) Shutdown() {
	rctx.self.stopRequested.Store(true)
}

// Watch subscribes the receiving actor to the termination of the given actor.
// The watched actor only holds a weak handle to the watcher, hence watching
// never creates a reference cycle. A Terminated message is delivered right away
// when the actor has already terminated.
func (rctx *ReceiveContext) Watch(ref *ActorRef) {
	watched := ref.mustCell()
	self := rctx.self
	if watched == self {
		return
	}

	identity := self.block.Identity()
	self.block.AcquireWeak()
	watcher := &WeakRef{cell: self}
	if !watched.watchers.SetIfAbsent(identity, watcher) {
		watcher.Release()
		return
	}

	// the watched actor may have drained its watchers already
	if watched.block.Is(refcount.Terminated) {
		if late, ok := watched.watchers.LoadAndDelete(identity); ok {
			watched.notify(late, watched.reason.Load())
		}
	}
}

// UnWatch cancels a previous Watch
func (rctx *ReceiveContext) UnWatch(ref *ActorRef) {
	watched := ref.mustCell()
	if watcher, ok := watched.watchers.LoadAndDelete(rctx.self.block.Identity()); ok {
		watcher.Release()
	}
}

func (rctx *ReceiveContext) respond(resp *response) {
	if rctx.reply == nil {
		return
	}
	select {
	case rctx.reply <- resp:
	default:
	}
	rctx.reply = nil
}

// fail answers a pending Ask with an error
func (rctx *ReceiveContext) fail(err error) {
	rctx.respond(&response{err: err})
}

// release drops the sender handle once the message is handled
func (rctx *ReceiveContext) release() {
	rctx.sender.Release()
	rctx.sender = nil
	rctx.message = nil
	rctx.reply = nil
}
