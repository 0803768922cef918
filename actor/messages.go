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

import "github.com/tochemey/refkit/address"

// PoisonPill stops the receiving actor once every message enqueued before it
// has been processed
type PoisonPill struct{}

// Terminated is delivered to the watchers of an actor once it has terminated
type Terminated struct {
	address address.Address
	reason  error
}

// Address returns the identity of the terminated actor
func (x *Terminated) Address() address.Address {
	return x.address
}

// Reason returns why the actor terminated. It is nil on a graceful stop.
func (x *Terminated) Reason() error {
	return x.reason
}

// isSystemMessage reports the messages every actor accepts
func isSystemMessage(message any) bool {
	switch message.(type) {
	case *PoisonPill, *Terminated:
		return true
	default:
		return false
	}
}
