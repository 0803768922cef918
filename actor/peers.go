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
	"sort"

	"github.com/tochemey/refkit/internal/locker"
)

// Peers is a keyed set of strong handles kept by an actor as part of its state.
// Actors that hold peers must call ReleaseAll when they terminate, typically from
// Terminator.OnTerminate, otherwise two actors holding each other are never
// reclaimed.
//
// Peers is owned by a single actor and is not safe for concurrent use.
// The zero value is ready to use.
type Peers struct {
	_    locker.NoCopy
	refs map[string]*ActorRef
}

// Set stores ref under key and takes ownership of it. The handle previously
// stored under key, if any, is released. Storing the handle already held
// under key changes nothing.
func (x *Peers) Set(key string, ref *ActorRef) {
	if x.refs == nil {
		x.refs = make(map[string]*ActorRef)
	}
	if previous, ok := x.refs[key]; ok {
		if previous == ref {
			return
		}
		previous.Release()
	}
	x.refs[key] = ref
}

// Get returns the handle stored under key, or nil. The handle still belongs to
// Peers; Clone it to keep it beyond the next change of Peers.
func (x *Peers) Get(key string) *ActorRef {
	return x.refs[key]
}

// Remove releases and forgets the handle stored under key.
// It returns false when key is unknown.
func (x *Peers) Remove(key string) bool {
	ref, ok := x.refs[key]
	if !ok {
		return false
	}
	delete(x.refs, key)
	ref.Release()
	return true
}

// Len returns the number of stored handles
func (x *Peers) Len() int {
	return len(x.refs)
}

// Keys returns the sorted keys
func (x *Peers) Keys() []string {
	keys := make([]string, 0, len(x.refs))
	for key := range x.refs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ReleaseAll releases every stored handle and empties the set
func (x *Peers) ReleaseAll() {
	for key, ref := range x.refs {
		delete(x.refs, key)
		ref.Release()
	}
}
