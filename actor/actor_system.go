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
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	otelmetric "go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/refkit/address"
	gerrors "github.com/tochemey/refkit/errors"
	"github.com/tochemey/refkit/internal/metric"
	"github.com/tochemey/refkit/internal/registry"
	"github.com/tochemey/refkit/internal/slab"
	"github.com/tochemey/refkit/internal/validation"
	"github.com/tochemey/refkit/log"
)

// ActorSystem hosts actors and hands out the first strong handle to each of them
type ActorSystem interface {
	// Name returns the actor system name
	Name() string
	// Node returns the node identifier stamped on every actor identity
	Node() string
	// Start starts the actor system
	Start(ctx context.Context) error
	// Stop stops every actor still registered and waits until every control block
	// has been reclaimed. It returns errors.ErrShutdownLeak when some remain, which
	// means that handles were never released or that actors form a reference cycle.
	Stop(ctx context.Context) error
	// Running reports whether the actor system has started
	Running() bool
	// Spawn creates an actor and returns the first strong handle to it.
	// The caller owns the handle and must release it.
	Spawn(ctx context.Context, actor Actor, opts ...SpawnOption) (*ActorRef, error)
	// Lookup returns a new strong handle to the running actor with the given
	// identity. The handle is empty when no such actor runs.
	Lookup(addr address.Address) *ActorRef
	// Stats returns a snapshot of the ownership counters
	Stats() Stats
	// Logger returns the logger sets when creating the actor system
	Logger() log.Logger
}

// Stats is a snapshot of the ownership counters of an actor system
type Stats struct {
	// Spawned is the number of actors spawned since start
	Spawned int64
	// LiveActors is the number of actor instances not yet destroyed
	LiveActors int64
	// LiveBlocks is the number of control blocks not yet reclaimed
	LiveBlocks int64
	// Teardowns is the number of times a strong count reached zero
	Teardowns int64
	// Reclaims is the number of reclaimed control blocks
	Reclaims int64
	// DeadLetters is the number of messages dropped after termination
	DeadLetters int64
	// Registered is the number of running actors reachable by Lookup
	Registered int64
}

// actorSystem represents the actor system
type actorSystem struct {
	name            string
	node            string
	logger          log.Logger
	askTimeout      time.Duration
	initMaxRetries  int
	initTimeout     time.Duration
	shutdownTimeout time.Duration
	slabPageSize    int
	slabCapacity    int
	meterProvider   otelmetric.MeterProvider

	cells    *slab.Slab[cell]
	registry *registry.Table[*WeakRef]
	sequence atomic.Uint64
	started  atomic.Bool

	spawned     atomic.Int64
	liveActors  atomic.Int64
	teardowns   atomic.Int64
	reclaims    atomic.Int64
	deadLetters atomic.Int64

	registration otelmetric.Registration
}

// enforce compilation error
var _ ActorSystem = (*actorSystem)(nil)

// NewActorSystem creates an instance of ActorSystem
func NewActorSystem(name string, opts ...Option) (ActorSystem, error) {
	if strings.TrimSpace(name) == "" {
		return nil, gerrors.ErrNameRequired
	}

	system := &actorSystem{
		name:            name,
		node:            uuid.NewString(),
		logger:          log.DefaultLogger,
		askTimeout:      DefaultAskTimeout,
		initMaxRetries:  DefaultInitMaxRetries,
		initTimeout:     DefaultInitTimeout,
		shutdownTimeout: DefaultShutdownTimeout,
		slabPageSize:    DefaultSlabPageSize,
		slabCapacity:    DefaultSlabCapacity,
	}

	for _, opt := range opts {
		opt.Apply(system)
	}

	if err := validation.New(validation.AllErrors()).
		AddValidator(validation.NewEmptyStringValidator("node", system.node)).
		AddValidator(address.New(system.node, 1)).
		AddAssertion(system.askTimeout > 0, "ask timeout must be positive").
		AddAssertion(system.initMaxRetries > 0, "init max retries must be positive").
		AddAssertion(system.initTimeout > 0, "init timeout must be positive").
		AddAssertion(system.shutdownTimeout > 0, "shutdown timeout must be positive").
		AddAssertion(system.slabPageSize > 0, "slab page size must be positive").
		AddAssertion(system.slabCapacity >= system.slabPageSize, "slab capacity must hold at least one page").
		AddAssertion(slabFits(system.slabPageSize, system.slabCapacity), "slab capacity exceeds the maximum of 4294967295 actors").
		Validate(); err != nil {
		return nil, err
	}

	system.cells = slab.New[cell](system.slabPageSize, system.slabCapacity)
	system.registry = registry.New[*WeakRef]()
	system.logger = system.logger.With("system", name)
	return system, nil
}

// slabFits reports whether the slab capacity, rounded up to whole pages, can be
// addressed with a uint32 index
func slabFits(pageSize, capacity int) bool {
	if pageSize <= 0 || capacity <= 0 {
		return true
	}
	pages := (uint64(capacity) + uint64(pageSize) - 1) / uint64(pageSize)
	return pages*uint64(pageSize) <= math.MaxUint32
}

// Name returns the actor system name
func (x *actorSystem) Name() string {
	return x.name
}

// Node returns the node identifier of the actor system
func (x *actorSystem) Node() string {
	return x.node
}

// Logger returns the logger sets when creating the actor system
func (x *actorSystem) Logger() log.Logger {
	return x.logger
}

// Running reports whether the actor system has started
func (x *actorSystem) Running() bool {
	return x.started.Load()
}

// Start starts the actor system
func (x *actorSystem) Start(context.Context) error {
	if x.started.Load() {
		return nil
	}

	if x.meterProvider != nil {
		if err := x.registerMetrics(); err != nil {
			x.logger.Errorf("Failed to register actor system %s metrics: %v", x.name, err)
			return err
		}
	}

	x.started.Store(true)
	x.logger.Infof("Actor system %s started on node %s", x.name, x.node)
	return nil
}

// Spawn creates an actor and returns the first strong handle to it
func (x *actorSystem) Spawn(ctx context.Context, actor Actor, opts ...SpawnOption) (*ActorRef, error) {
	if !x.started.Load() {
		return nil, gerrors.ErrActorSystemNotStarted
	}
	if actor == nil {
		return nil, gerrors.ErrUndefinedActor
	}

	config := newSpawnConfig(opts...)
	index, c, err := x.cells.Alloc()
	if err != nil {
		x.logger.Error(err)
		return nil, err
	}

	identity := address.New(x.node, x.sequence.Inc())
	c.init(x, index, identity, actor, config.mailbox)
	x.spawned.Inc()
	x.liveActors.Inc()

	ref := &ActorRef{cell: c}
	if err := c.start(ctx); err != nil {
		ref.Release()
		return nil, err
	}

	x.registry.Register(identity, Cast[WeakRef](ref))
	x.logger.Debugf("Actor %s spawned", identity)
	return ref, nil
}

// Lookup returns a new strong handle to the running actor with the given identity
func (x *actorSystem) Lookup(addr address.Address) *ActorRef {
	ref := new(ActorRef)
	x.registry.Visit(addr, func(weak *WeakRef) {
		ref = Cast[ActorRef](weak)
	})
	return ref
}

// Stats returns a snapshot of the ownership counters
func (x *actorSystem) Stats() Stats {
	return Stats{
		Spawned:     x.spawned.Load(),
		LiveActors:  x.liveActors.Load(),
		LiveBlocks:  int64(x.cells.Len()),
		Teardowns:   x.teardowns.Load(),
		Reclaims:    x.reclaims.Load(),
		DeadLetters: x.deadLetters.Load(),
		Registered:  int64(x.registry.Len()),
	}
}

// Stop stops the actor system
func (x *actorSystem) Stop(ctx context.Context) error {
	if !x.started.CompareAndSwap(true, false) {
		return gerrors.ErrActorSystemNotStarted
	}

	x.logger.Infof("Actor system %s is shutting down...", x.name)
	defer func() { _ = x.logger.Flush() }()

	ctx, cancel := context.WithTimeout(ctx, x.shutdownTimeout)
	defer cancel()

	var refs []*ActorRef
	x.registry.Range(func(_ address.Address, weak *WeakRef) {
		if ref := Cast[ActorRef](weak); !ref.IsEmpty() {
			refs = append(refs, ref)
		}
	})

	var (
		mu      sync.Mutex
		stopErr error
	)

	eg, egCtx := errgroup.WithContext(ctx)
	for _, ref := range refs {
		eg.Go(func() error {
			defer ref.Release()
			if err := ref.Stop(egCtx); err != nil {
				mu.Lock()
				stopErr = multierr.Append(stopErr, fmt.Errorf("failed to stop actor %s: %w", ref.Address(), err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = eg.Wait()

	ticker := time.NewTicker(shutdownPollInterval)
	defer ticker.Stop()
	for x.cells.Len() > 0 {
		select {
		case <-ctx.Done():
			leaked := x.leaked()
			x.logger.Errorf("Actor system %s left %d actors unreclaimed: %v", x.name, len(leaked), leaked)
			x.unregisterMetrics()
			return gerrors.NewErrShutdownLeak(len(leaked), stopErr)
		case <-ticker.C:
		}
	}

	x.unregisterMetrics()
	if stopErr != nil {
		x.logger.Errorf("Actor system %s shut down with errors: %v", x.name, stopErr)
		return stopErr
	}
	x.logger.Infof("Actor system %s successfully shutdown", x.name)
	return nil
}

// deregister drops the routing entry of a terminated actor
func (x *actorSystem) deregister(identity address.Address) {
	if weak, ok := x.registry.Deregister(identity); ok {
		weak.Release()
	}
}

// reclaim frees the slab slot of a cell
func (x *actorSystem) reclaim(index uint32) {
	x.cells.Free(index)
	x.reclaims.Inc()
}

// leaked returns the identities of the cells not yet reclaimed
func (x *actorSystem) leaked() []address.Address {
	var out []address.Address
	x.cells.Range(func(_ uint32, c *cell) {
		out = append(out, c.block.Identity())
	})
	return out
}

func (x *actorSystem) registerMetrics() error {
	provider := metric.NewProvider(x.meterProvider)
	instruments, err := metric.NewSystemMetric(provider.Meter())
	if err != nil {
		return err
	}

	registration, err := instruments.Register(provider.Meter(), func() metric.Stats {
		stats := x.Stats()
		return metric.Stats{
			Spawned:     stats.Spawned,
			LiveActors:  stats.LiveActors,
			LiveBlocks:  stats.LiveBlocks,
			Teardowns:   stats.Teardowns,
			Reclaims:    stats.Reclaims,
			DeadLetters: stats.DeadLetters,
			Registered:  stats.Registered,
		}
	})
	if err != nil {
		return err
	}
	x.registration = registration
	return nil
}

func (x *actorSystem) unregisterMetrics() {
	if x.registration == nil {
		return
	}
	if err := x.registration.Unregister(); err != nil {
		x.logger.Warnf("Failed to unregister actor system %s metrics: %v", x.name, err)
	}
	x.registration = nil
}
