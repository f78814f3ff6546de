// Package observe provides OpenTelemetry metric instruments for the drum
// machine and the Prometheus bridge used to scrape them.
//
// Components take a *Metrics through their options. Tests should build one
// with NewMetrics over an sdkmetric.ManualReader; everything else falls back
// to DefaultMetrics, which is bound to the global meter provider.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope for all instruments.
const meterName = "github.com/lixenwraith/beat-buddy"

// Trigger sources.
const (
	SourcePad       = "pad"
	SourceSequencer = "sequencer"
)

// Metrics holds all instruments. Safe for concurrent use.
type Metrics struct {
	// Ticks counts transport clock ticks that advanced the step cursor.
	Ticks metric.Int64Counter

	// TickDuration is the time spent inside one tick, lock included.
	TickDuration metric.Float64Histogram

	// VoiceTriggers counts triggers. Attributes: voice, source.
	VoiceTriggers metric.Int64Counter

	// VoiceTriggerErrors counts triggers the engine rejected. Attribute: voice.
	VoiceTriggerErrors metric.Int64Counter

	PatternsSaved  metric.Int64Counter
	PatternsLoaded metric.Int64Counter
}

// tickBuckets in seconds; a tick is expected to finish well under a millisecond.
var tickBuckets = []float64{
	0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05,
}

// NewMetrics creates every instrument from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Ticks, err = m.Int64Counter("beatbuddy.transport.ticks",
		metric.WithDescription("Transport clock ticks."),
	); err != nil {
		return nil, err
	}
	if met.TickDuration, err = m.Float64Histogram("beatbuddy.transport.tick.duration",
		metric.WithDescription("Time spent processing one tick."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(tickBuckets...),
	); err != nil {
		return nil, err
	}
	if met.VoiceTriggers, err = m.Int64Counter("beatbuddy.voice.triggers",
		metric.WithDescription("Voice triggers by voice and source."),
	); err != nil {
		return nil, err
	}
	if met.VoiceTriggerErrors, err = m.Int64Counter("beatbuddy.voice.trigger_errors",
		metric.WithDescription("Rejected voice triggers by voice."),
	); err != nil {
		return nil, err
	}
	if met.PatternsSaved, err = m.Int64Counter("beatbuddy.patterns.saved",
		metric.WithDescription("Pattern snapshots saved."),
	); err != nil {
		return nil, err
	}
	if met.PatternsLoaded, err = m.Int64Counter("beatbuddy.patterns.loaded",
		metric.WithDescription("Pattern snapshots and presets loaded."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level instance built from
// otel.GetMeterProvider on first call. Panics if instrument creation fails.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordTrigger counts one trigger of voice from source.
func (m *Metrics) RecordTrigger(ctx context.Context, voice, source string) {
	m.VoiceTriggers.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("voice", voice),
			attribute.String("source", source),
		),
	)
}

// RecordTriggerError counts one rejected trigger of voice.
func (m *Metrics) RecordTriggerError(ctx context.Context, voice string) {
	m.VoiceTriggerErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("voice", voice)),
	)
}

// RecordTick counts one tick and its processing time in seconds.
func (m *Metrics) RecordTick(ctx context.Context, seconds float64) {
	m.Ticks.Add(ctx, 1)
	m.TickDuration.Record(ctx, seconds)
}
