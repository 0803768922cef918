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

import (
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/goleak"

	"github.com/tochemey/refkit/address"
	gerrors "github.com/tochemey/refkit/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	teardowns atomic.Int32
	reclaims  atomic.Int32
	// strongAtReclaim records the strong count seen by Reclaim
	strongAtReclaim atomic.Uint32
	// teardownFirst is set when Reclaim observed a prior teardown
	teardownFirst atomic.Bool
}

func (r *recorder) Teardown(b *Block) {
	r.teardowns.Inc()
	b.Mark(Unreachable)
}

func (r *recorder) Reclaim(b *Block) {
	r.reclaims.Inc()
	r.strongAtReclaim.Store(b.StrongCount())
	r.teardownFirst.Store(r.teardowns.Load() == 1)
}

func newBlock(r *recorder) *Block {
	b := new(Block)
	b.Init(address.New("node", 1), 3, r)
	return b
}

func TestBlock(t *testing.T) {
	t.Run("With initial claims", func(t *testing.T) {
		b := newBlock(&recorder{})
		assert.EqualValues(t, 1, b.StrongCount())
		assert.EqualValues(t, 1, b.WeakCount())
		assert.EqualValues(t, 3, b.Index())
		assert.Equal(t, address.New("node", 1), b.Identity())
		assert.True(t, b.Is(Running))
	})
	t.Run("With teardown then reclaim", func(t *testing.T) {
		r := &recorder{}
		b := newBlock(r)

		b.AcquireStrong()
		b.AcquireWeak()
		assert.EqualValues(t, 2, b.StrongCount())
		assert.EqualValues(t, 2, b.WeakCount())

		b.ReleaseStrong()
		assert.Zero(t, r.teardowns.Load())

		b.ReleaseStrong()
		assert.EqualValues(t, 1, r.teardowns.Load())
		assert.Zero(t, r.reclaims.Load())
		assert.Zero(t, b.StrongCount())
		assert.EqualValues(t, 1, b.WeakCount())
		assert.True(t, b.Is(Unreachable))

		// identity survives the teardown while a weak claim is held
		assert.Equal(t, address.New("node", 1), b.Identity())
		assert.False(t, b.TryAcquireStrong())

		b.ReleaseWeak()
		assert.EqualValues(t, 1, r.reclaims.Load())
		assert.True(t, r.teardownFirst.Load())
		assert.Zero(t, r.strongAtReclaim.Load())
	})
	t.Run("With TryAcquireStrong while alive", func(t *testing.T) {
		r := &recorder{}
		b := newBlock(r)
		require.True(t, b.TryAcquireStrong())
		assert.EqualValues(t, 2, b.StrongCount())
		b.ReleaseStrong()
		b.ReleaseStrong()
		assert.EqualValues(t, 1, r.teardowns.Load())
		assert.EqualValues(t, 1, r.reclaims.Load())
	})
	t.Run("With underflow", func(t *testing.T) {
		b := new(Block)
		b.Init(address.New("node", 1), 0, nil)
		b.ReleaseStrong()
		assert.Zero(t, b.WeakCount())

		assert.PanicsWithError(t, "reference count underflow: strong release on refkit://node/1", func() {
			b.ReleaseStrong()
		})
		var recovered any
		func() {
			defer func() { recovered = recover() }()
			b.ReleaseWeak()
		}()
		require.NotNil(t, recovered)
		require.ErrorIs(t, recovered.(error), gerrors.ErrRefCountUnderflow)
	})
	t.Run("With acquire after teardown", func(t *testing.T) {
		b := newBlock(&recorder{})
		b.AcquireWeak()
		b.ReleaseStrong()
		assert.Panics(t, func() { b.AcquireStrong() })
	})
	t.Run("With a nil finalizer", func(t *testing.T) {
		b := new(Block)
		b.Init(address.New("node", 9), 0, nil)
		b.ReleaseStrong()
		assert.Zero(t, b.StrongCount())
		assert.Zero(t, b.WeakCount())
	})
}

func TestBlockConcurrency(t *testing.T) {
	t.Run("With concurrent last releases", func(t *testing.T) {
		for range 50 {
			r := &recorder{}
			b := newBlock(r)
			const holders = 32
			for range holders - 1 {
				b.AcquireStrong()
			}

			start := make(chan struct{})
			var wg sync.WaitGroup
			for range holders {
				wg.Add(1)
				go func() {
					defer wg.Done()
					<-start
					b.ReleaseStrong()
				}()
			}
			close(start)
			wg.Wait()

			require.EqualValues(t, 1, r.teardowns.Load())
			require.EqualValues(t, 1, r.reclaims.Load())
		}
	})
	t.Run("With randomized clone and drop", func(t *testing.T) {
		r := &recorder{}
		b := newBlock(r)
		const workers = 16

		// every worker starts with one strong and one weak claim
		for range workers {
			b.AcquireStrong()
			b.AcquireWeak()
		}
		b.ReleaseStrong()

		var wg sync.WaitGroup
		for w := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				rnd := rand.New(rand.NewPCG(uint64(w), 42))
				strong, weak := 1, 1
				for range 2000 {
					switch rnd.IntN(4) {
					case 0:
						b.AcquireStrong()
						strong++
					case 1:
						if strong > 1 {
							b.ReleaseStrong()
							strong--
						}
					case 2:
						b.AcquireWeak()
						weak++
					case 3:
						if weak > 1 {
							b.ReleaseWeak()
							weak--
						}
					}
					if b.StrongCount() == 0 || b.WeakCount() == 0 {
						t.Error("counter reached zero while claims were held")
						return
					}
				}
				for ; strong > 0; strong-- {
					b.ReleaseStrong()
				}
				for ; weak > 0; weak-- {
					b.ReleaseWeak()
				}
			}()
		}
		wg.Wait()

		assert.EqualValues(t, 1, r.teardowns.Load())
		assert.EqualValues(t, 1, r.reclaims.Load())
		assert.True(t, r.teardownFirst.Load())
	})
	t.Run("With upgrades racing the last release", func(t *testing.T) {
		for range 100 {
			r := &recorder{}
			b := newBlock(r)
			b.AcquireWeak()

			var upgraded atomic.Int32
			var wg sync.WaitGroup
			for range 8 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if b.TryAcquireStrong() {
						upgraded.Inc()
						if b.Is(Unreachable) {
							t.Error("upgrade succeeded after teardown")
						}
						b.ReleaseStrong()
					}
				}()
			}
			b.ReleaseStrong()
			wg.Wait()

			require.EqualValues(t, 1, r.teardowns.Load())
			require.False(t, b.TryAcquireStrong())
			b.ReleaseWeak()
			require.EqualValues(t, 1, r.reclaims.Load())
		}
	})
}

func TestBlockState(t *testing.T) {
	b := newBlock(&recorder{})
	assert.Equal(t, "running", b.State().String())

	require.True(t, b.Transition(Running, Terminating))
	require.False(t, b.Transition(Running, Terminating))
	assert.True(t, b.Is(Terminating))
	assert.False(t, b.Is(Running))

	require.True(t, b.Mark(Unreachable))
	require.False(t, b.Mark(Unreachable))
	require.True(t, b.Transition(Terminating, Terminated))
	assert.True(t, b.Is(Terminated|Unreachable))
	assert.Equal(t, "terminated|unreachable", b.State().String())
	assert.Equal(t, "none", State(0).String())
	assert.Contains(t, b.String(), "refkit://node/1(strong=1, weak=1")
}
