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
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/tochemey/refkit/log"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(sys *actorSystem)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*actorSystem)

func (f OptionFunc) Apply(c *actorSystem) {
	f(c)
}

// WithLogger sets the actor system custom log
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(a *actorSystem) {
		a.logger = logger
	})
}

// WithNode sets the node identifier stamped on every actor identity.
// A random identifier is used when not set.
func WithNode(node string) Option {
	return OptionFunc(func(a *actorSystem) {
		a.node = node
	})
}

// WithAskTimeout sets the default time an Ask waits for a reply
func WithAskTimeout(timeout time.Duration) Option {
	return OptionFunc(func(a *actorSystem) {
		a.askTimeout = timeout
	})
}

// WithInitMaxRetries sets the number of times to retry an actor PreStart
func WithInitMaxRetries(max int) Option {
	return OptionFunc(func(a *actorSystem) {
		a.initMaxRetries = max
	})
}

// WithInitTimeout sets how long the PreStart retries of an actor may take
func WithInitTimeout(timeout time.Duration) Option {
	return OptionFunc(func(a *actorSystem) {
		a.initTimeout = timeout
	})
}

// WithSlabPageSize sets the number of actor cells allocated at once
func WithSlabPageSize(size int) Option {
	return OptionFunc(func(a *actorSystem) {
		a.slabPageSize = size
	})
}

// WithSlabCapacity sets the maximum number of actors whose control block is alive at once.
// Rounded up to whole pages, it cannot exceed math.MaxUint32.
func WithSlabCapacity(capacity int) Option {
	return OptionFunc(func(a *actorSystem) {
		a.slabCapacity = capacity
	})
}

// WithMeterProvider enables the OpenTelemetry instruments of the actor system
// on the given provider
func WithMeterProvider(provider metric.MeterProvider) Option {
	return OptionFunc(func(a *actorSystem) {
		a.meterProvider = provider
	})
}

// WithShutdownTimeout sets how long Stop waits for the actors to be reclaimed
func WithShutdownTimeout(timeout time.Duration) Option {
	return OptionFunc(func(a *actorSystem) {
		a.shutdownTimeout = timeout
	})
}
