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

package xsync

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	t.Run("With basic operations", func(t *testing.T) {
		m := NewMap[string, int]()
		require.True(t, m.SetIfAbsent("a", 1))
		require.False(t, m.SetIfAbsent("a", 2))
		require.True(t, m.SetIfAbsent("b", 2))
		assert.Equal(t, 2, m.Len())

		val, ok := m.LoadAndDelete("a")
		require.True(t, ok)
		assert.Equal(t, 1, val)
		_, ok = m.LoadAndDelete("a")
		require.False(t, ok)

		_, ok = m.LoadAndDelete("b")
		require.True(t, ok)
		assert.Zero(t, m.Len())
	})
	t.Run("With Range and Drain", func(t *testing.T) {
		m := NewMap[int, int]()
		for i := range 5 {
			m.SetIfAbsent(i, i*i)
		}
		sum := 0
		m.Range(func(_ int, v int) { sum += v })
		assert.Equal(t, 30, sum)

		drained := m.Drain()
		assert.Len(t, drained, 5)
		assert.Zero(t, m.Len())
	})
	t.Run("With GetFunc", func(t *testing.T) {
		m := NewMap[string, int]()
		m.SetIfAbsent("a", 7)
		got := 0
		require.True(t, m.GetFunc("a", func(v int) { got = v }))
		assert.Equal(t, 7, got)
		require.False(t, m.GetFunc("b", func(int) { got = -1 }))
		assert.Equal(t, 7, got)
	})
	t.Run("With concurrent writers", func(t *testing.T) {
		m := NewMap[int, int]()
		var wg sync.WaitGroup
		for i := range 64 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				m.SetIfAbsent(i, i)
				m.GetFunc(i, func(int) {})
			}()
		}
		wg.Wait()
		assert.Equal(t, 64, m.Len())
	})
}
