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

// Package registry implements the routing table that maps actor addresses to
// the references held by the actor system.
package registry

import (
	"github.com/tochemey/refkit/address"
	"github.com/tochemey/refkit/internal/xsync"
)

// shardCount must be a power of two
const shardCount = 32

// Table is a concurrency-safe map keyed by actor address. Entries are spread
// across shards by the address hash so that spawns and lookups of unrelated
// actors rarely contend on the same lock.
type Table[V any] struct {
	shards [shardCount]*xsync.Map[address.Address, V]
}

// New creates an empty Table
func New[V any]() *Table[V] {
	table := &Table[V]{}
	for i := range table.shards {
		table.shards[i] = xsync.NewMap[address.Address, V]()
	}
	return table
}

func (x *Table[V]) shard(addr address.Address) *xsync.Map[address.Address, V] {
	return x.shards[addr.Hash()&(shardCount-1)]
}

// Register stores the value under the given address unless one is already there.
// It returns false when the address is taken.
func (x *Table[V]) Register(addr address.Address, value V) bool {
	return x.shard(addr).SetIfAbsent(addr, value)
}

// Visit calls f with the value registered under the given address. Deregister
// of that address blocks until f returns. It returns false when nothing is
// registered.
func (x *Table[V]) Visit(addr address.Address, f func(V)) bool {
	return x.shard(addr).GetFunc(addr, f)
}

// Range calls f on every entry, one shard at a time. f must not call back
// into the Table.
func (x *Table[V]) Range(f func(address.Address, V)) {
	for _, shard := range x.shards {
		shard.Range(f)
	}
}

// Deregister removes the address and returns the value it held
func (x *Table[V]) Deregister(addr address.Address) (V, bool) {
	return x.shard(addr).LoadAndDelete(addr)
}

// Len returns the number of registered addresses
func (x *Table[V]) Len() int {
	total := 0
	for _, shard := range x.shards {
		total += shard.Len()
	}
	return total
}
