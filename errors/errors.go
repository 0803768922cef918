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

// Package errors defines the sentinel errors returned by refkit.
//
// Recoverable outcomes, such as a failed upgrade or a capability mismatch,
// surface either as empty handles or as one of the values below. Contract
// violations, such as a counter underflow, panic with ErrRefCountUnderflow
// or ErrEmptyHandle and are never returned.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrDead indicates that the actor is no longer alive or has been terminated.
	ErrDead = errors.New("actor is not alive")

	// ErrUnreachable is the termination reason of an actor whose last strong reference was released
	// while it was still running.
	ErrUnreachable = errors.New("actor is unreachable")

	// ErrCapabilityMismatch indicates a cast requested capabilities the referenced actor does not provide.
	ErrCapabilityMismatch = errors.New("actor does not provide the requested capabilities")

	// ErrUnsupportedMessage is returned when a statically typed actor receives a message outside its signatures.
	ErrUnsupportedMessage = errors.New("message is not supported by the actor")

	// ErrInitFailure is returned when the actor's PreStart hook fails during initialization.
	ErrInitFailure = errors.New("preStart failed")

	// ErrRequestTimeout indicates that an Ask message timed out while waiting for a response.
	ErrRequestTimeout = errors.New("request timed out")

	// ErrActorSystemNotStarted indicates that an actor system has not been started before use.
	ErrActorSystemNotStarted = errors.New("actor system is not running")

	// ErrNameRequired is returned when an actor system name is required but not provided.
	ErrNameRequired = errors.New("actor system is required")

	// ErrUndefinedActor is returned when a nil actor is given to Spawn.
	ErrUndefinedActor = errors.New("actor is not defined")

	// ErrInvalidMessage indicates that a message is structurally or semantically invalid.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrInvalidTimeout is returned when a timeout value is less than or equal to zero.
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrMailboxFull is returned when a bounded mailbox cannot accept more messages.
	ErrMailboxFull = errors.New("mailbox is full")

	// ErrSlabExhausted is returned when the actor slab has no free slot left.
	ErrSlabExhausted = errors.New("actor slab capacity exhausted")

	// ErrShutdownLeak is returned by the actor system Stop when some actors could not be reclaimed,
	// typically because a handle was never released or a strong reference cycle was never broken.
	ErrShutdownLeak = errors.New("actors were not reclaimed at shutdown")

	// ErrRefCountUnderflow is the panic value raised when a reference counter is decremented below zero.
	// It always denotes a double release by the caller.
	ErrRefCountUnderflow = errors.New("reference count underflow")

	// ErrEmptyHandle is the panic value raised when an operation requiring a referent is invoked on an empty handle.
	ErrEmptyHandle = errors.New("use of an empty handle")
)

// NewErrInitFailure wraps a base error with ErrInitFailure to indicate a startup failure.
func NewErrInitFailure(err error) error {
	return errors.Join(ErrInitFailure, err)
}

// NewErrUnsupportedMessage formats an ErrUnsupportedMessage with the given message type name.
func NewErrUnsupportedMessage(typeName string) error {
	return fmt.Errorf("message=(%s) %w", typeName, ErrUnsupportedMessage)
}

// NewErrCapabilityMismatch formats an ErrCapabilityMismatch with the missing message type name.
func NewErrCapabilityMismatch(typeName string) error {
	return fmt.Errorf("capability=(%s) %w", typeName, ErrCapabilityMismatch)
}

// NewErrShutdownLeak formats an ErrShutdownLeak with the number of actors left behind.
func NewErrShutdownLeak(count int, err error) error {
	return errors.Join(fmt.Errorf("(leaked=%d) %w", count, ErrShutdownLeak), err)
}

// PanicError defines the panic error
// wrapping the underlying error
type PanicError struct {
	err error
}

// enforce compilation error
var _ error = (*PanicError)(nil)

// NewPanicError creates an instance of PanicError
func NewPanicError(err error) *PanicError {
	return &PanicError{err}
}

// Error implements the standard error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.err)
}

func (e *PanicError) Unwrap() error {
	return e.err
}
