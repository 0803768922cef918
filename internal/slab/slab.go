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

// Package slab provides a paged arena of fixed-size slots.
//
// Every slot has a stable address for its whole allocation: pages are never
// moved or shrunk, only appended. Freed slots are zeroed, which drops any
// reference they held so that the garbage collector can reclaim it, and are
// recycled by later allocations.
package slab

import (
	"fmt"
	"sync"

	"go.uber.org/atomic"

	gerrors "github.com/tochemey/refkit/errors"
)

const (
	// DefaultPageSize is the number of slots of a page
	DefaultPageSize = 256
	// DefaultCapacity is the maximum number of slots of a slab
	DefaultCapacity = 1 << 20
)

type slot[T any] struct {
	value T
	used  bool
}

// Slab is a concurrency-safe arena of T values addressed by a uint32 index.
// Alloc and Free take a mutex; the returned pointers can be used without it.
type Slab[T any] struct {
	mu       sync.Mutex
	pageSize uint32
	capacity uint32
	pages    [][]slot[T]
	free     []uint32
	next     uint32
	live     atomic.Int64
}

// New creates a Slab. Non-positive values fall back to the defaults and the
// capacity is rounded up to a whole number of pages, which must not exceed
// math.MaxUint32.
func New[T any](pageSize, capacity int) *Slab[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	pages := (capacity + pageSize - 1) / pageSize
	return &Slab[T]{
		pageSize: uint32(pageSize),
		capacity: uint32(pages * pageSize),
	}
}

// Alloc reserves a zeroed slot and returns its index and address.
// It returns ErrSlabExhausted when every slot is in use.
func (s *Slab[T]) Alloc() (uint32, *T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var index uint32
	switch {
	case len(s.free) > 0:
		index = s.free[len(s.free)-1]
		s.free = s.free[:len(s.free)-1]
	case s.next < s.capacity:
		index = s.next
		s.next++
		if int(index/s.pageSize) == len(s.pages) {
			s.pages = append(s.pages, make([]slot[T], s.pageSize))
		}
	default:
		return 0, nil, gerrors.ErrSlabExhausted
	}

	sl := s.slot(index)
	sl.used = true
	s.live.Inc()
	return index, &sl.value, nil
}

// Free zeroes the slot and makes it available again.
// Freeing a slot twice is a programming error and panics.
func (s *Slab[T]) Free(index uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index >= s.next {
		panic(fmt.Errorf("slab: free of unallocated slot %d", index))
	}
	sl := s.slot(index)
	if !sl.used {
		panic(fmt.Errorf("slab: double free of slot %d", index))
	}

	var zero T
	sl.value = zero
	sl.used = false
	s.free = append(s.free, index)
	s.live.Dec()
}

// Range calls f on every allocated slot. f must not call back into the Slab.
func (s *Slab[T]) Range(f func(index uint32, value *T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for index := uint32(0); index < s.next; index++ {
		if sl := s.slot(index); sl.used {
			f(index, &sl.value)
		}
	}
}

// Len returns the number of allocated slots
func (s *Slab[T]) Len() int {
	return int(s.live.Load())
}

func (s *Slab[T]) slot(index uint32) *slot[T] {
	return &s.pages[index/s.pageSize][index%s.pageSize]
}
