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

package metric

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// Stats is a snapshot of the ownership counters of an actor system
type Stats struct {
	Spawned     int64
	LiveActors  int64
	LiveBlocks  int64
	Teardowns   int64
	Reclaims    int64
	DeadLetters int64
	Registered  int64
}

// SystemMetric groups the OpenTelemetry instruments describing the
// ownership state of an actor system.
//
// Instruments:
//   - refkit.actors.spawned     (Int64ObservableCounter)
//   - refkit.actors.live        (Int64ObservableUpDownCounter)
//   - refkit.blocks.live        (Int64ObservableUpDownCounter)
//   - refkit.teardowns.count    (Int64ObservableCounter)
//   - refkit.reclaims.count     (Int64ObservableCounter)
//   - refkit.deadletters.count  (Int64ObservableCounter)
//   - refkit.actors.registered  (Int64ObservableUpDownCounter)
type SystemMetric struct {
	spawned     metric.Int64ObservableCounter
	liveActors  metric.Int64ObservableUpDownCounter
	liveBlocks  metric.Int64ObservableUpDownCounter
	teardowns   metric.Int64ObservableCounter
	reclaims    metric.Int64ObservableCounter
	deadletters metric.Int64ObservableCounter
	registered  metric.Int64ObservableUpDownCounter
}

// NewSystemMetric creates the instruments using the provided Meter.
// It returns an error if any instrument cannot be created so telemetry
// initialization failures are surfaced early.
func NewSystemMetric(meter metric.Meter) (*SystemMetric, error) {
	var instruments SystemMetric
	var err error

	if instruments.spawned, err = meter.Int64ObservableCounter(
		"refkit.actors.spawned",
		metric.WithDescription("Total number of actors spawned"),
	); err != nil {
		return nil, err
	}

	if instruments.liveActors, err = meter.Int64ObservableUpDownCounter(
		"refkit.actors.live",
		metric.WithDescription("Number of actor instances not yet destroyed"),
	); err != nil {
		return nil, err
	}

	if instruments.liveBlocks, err = meter.Int64ObservableUpDownCounter(
		"refkit.blocks.live",
		metric.WithDescription("Number of control blocks not yet reclaimed"),
	); err != nil {
		return nil, err
	}

	if instruments.teardowns, err = meter.Int64ObservableCounter(
		"refkit.teardowns.count",
		metric.WithDescription("Total number of strong counts that reached zero"),
	); err != nil {
		return nil, err
	}

	if instruments.reclaims, err = meter.Int64ObservableCounter(
		"refkit.reclaims.count",
		metric.WithDescription("Total number of control blocks reclaimed"),
	); err != nil {
		return nil, err
	}

	if instruments.deadletters, err = meter.Int64ObservableCounter(
		"refkit.deadletters.count",
		metric.WithDescription("Total number of messages dropped after termination"),
	); err != nil {
		return nil, err
	}

	if instruments.registered, err = meter.Int64ObservableUpDownCounter(
		"refkit.actors.registered",
		metric.WithDescription("Number of running actors reachable by Lookup"),
	); err != nil {
		return nil, err
	}

	return &instruments, nil
}

// Register observes the given stats source on every collection cycle.
// The returned registration must be unregistered when the system stops.
func (x *SystemMetric) Register(meter metric.Meter, source func() Stats) (metric.Registration, error) {
	return meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		stats := source()
		observer.ObserveInt64(x.spawned, stats.Spawned)
		observer.ObserveInt64(x.liveActors, stats.LiveActors)
		observer.ObserveInt64(x.liveBlocks, stats.LiveBlocks)
		observer.ObserveInt64(x.teardowns, stats.Teardowns)
		observer.ObserveInt64(x.reclaims, stats.Reclaims)
		observer.ObserveInt64(x.deadletters, stats.DeadLetters)
		observer.ObserveInt64(x.registered, stats.Registered)
		return nil
	}, x.spawned, x.liveActors, x.liveBlocks, x.teardowns, x.reclaims, x.deadletters, x.registered)
}
