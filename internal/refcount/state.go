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

package refcount

import "strings"

// State models the lifecycle bits of a Block. Instead of spreading several
// atomic booleans over the block, the bits share a single atomic word and are
// flipped with CAS loops.
//
//   - Running:     the actor processes messages.
//   - Terminating: termination started; peer handles are being released.
//   - Terminated:  the termination hooks returned; no message is processed anymore.
//   - Unreachable: the last strong claim was released.
//   - Destroyed:   the actor instance has been dropped from its cell.
type State uint32

const (
	Running State = 1 << iota
	Terminating
	Terminated
	Unreachable
	Destroyed
)

var stateNames = []struct {
	state State
	name  string
}{
	{Running, "running"},
	{Terminating, "terminating"},
	{Terminated, "terminated"},
	{Unreachable, "unreachable"},
	{Destroyed, "destroyed"},
}

// String returns the set bits joined by '|'
func (s State) String() string {
	var names []string
	for _, entry := range stateNames {
		if s&entry.state != 0 {
			names = append(names, entry.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// State returns a snapshot of the lifecycle bits
func (b *Block) State() State {
	return State(b.state.Load())
}

// Is reports whether every given bit is set
func (b *Block) Is(state State) bool {
	return b.state.Load()&uint32(state) == uint32(state)
}

// Mark sets the given bits. It returns false when they were all already set,
// which makes it usable as a one-shot guard.
func (b *Block) Mark(state State) bool {
	for {
		current := b.state.Load()
		desired := current | uint32(state)
		if desired == current {
			return false
		}
		if b.state.CompareAndSwap(current, desired) {
			return true
		}
	}
}

// Transition replaces the from bit by the to bit when from is currently set.
// Exactly one of several concurrent callers wins.
func (b *Block) Transition(from, to State) bool {
	for {
		current := b.state.Load()
		if current&uint32(from) == 0 {
			return false
		}
		desired := current&^uint32(from) | uint32(to)
		if b.state.CompareAndSwap(current, desired) {
			return true
		}
	}
}
