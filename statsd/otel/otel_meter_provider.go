package otel

import (
	"context"
	"errors"
	"sync/atomic"

	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/embedded"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/instrumentation"
)

// ErrNoClient is returned by NewMeterProvider without WithClient.
var ErrNoClient = errors.New("otel: a statsd client is required")

// MeterProvider creates meters whose instruments report through a statsd client.
type MeterProvider struct {
	embedded.MeterProvider

	cfg     Config
	stopped atomic.Bool
	meters  cache[instrumentation.Scope, *meter]
}

var _ otelmetric.MeterProvider = (*MeterProvider)(nil)

func NewMeterProvider(options ...OTELOption) (*MeterProvider, error) {
	cfg := newConfig(options...)
	if cfg.client == nil {
		return nil, ErrNoClient
	}
	return &MeterProvider{cfg: cfg}, nil
}

func (mp *MeterProvider) Meter(name string, opts ...otelmetric.MeterOption) otelmetric.Meter {
	if name == "" {
		mp.cfg.logger.WithField("name", name).Warn("Invalid Meter name.")
	}

	if mp.stopped.Load() {
		return noop.Meter{}
	}

	c := otelmetric.NewMeterConfig(opts...)

	s := instrumentation.Scope{
		Name:      name,
		Version:   c.InstrumentationVersion(),
		SchemaURL: c.SchemaURL(),
	}

	return mp.meters.Lookup(s, func() *meter {
		return newMeter(s, mp.cfg)
	})
}

// Shutdown stops the observable callbacks of every meter. Meters requested
// afterwards are no-ops.
func (mp *MeterProvider) Shutdown(context.Context) error {
	if mp.stopped.Swap(true) {
		return nil
	}
	mp.meters.Range(func(m *meter) { m.stop() })
	return nil
}
