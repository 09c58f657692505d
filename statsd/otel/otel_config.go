// Package otel exposes a statsd.Client as an OpenTelemetry MeterProvider.
package otel

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/statsd-instrument/instrument/statsd"
)

const (
	defaultObserverCollectionInterval = 10 * time.Second
	defaultObserverCollectionTimeout  = 2 * time.Second
)

type Config struct {
	client                     statsd.ClientInterface
	builder                    *statsd.Builder
	logger                     logrus.FieldLogger
	res                        *resource.Resource
	errHandler                 func(error)
	ctx                        context.Context
	observerCollectionInterval time.Duration
	observerCollectionTimeout  time.Duration
}

// OTELOption applies a configuration option to the MeterProvider.
type OTELOption func(Config) Config

func newConfig(options ...OTELOption) Config {
	cfg := Config{
		ctx:                        context.Background(),
		observerCollectionInterval: defaultObserverCollectionInterval,
		observerCollectionTimeout:  defaultObserverCollectionTimeout,
	}

	for _, option := range options {
		cfg = option(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = logrus.StandardLogger()
	}
	if cfg.res == nil {
		cfg.res = resource.Empty()
	}
	if cfg.errHandler == nil {
		logger := cfg.logger
		cfg.errHandler = func(err error) {
			logger.WithError(err).Warn("OpenTelemetry bridge error")
		}
	}
	return cfg
}

// WithClient sets the client instruments report to. The client's builder
// decides how histograms are rendered.
func WithClient(client *statsd.Client) OTELOption {
	return func(cfg Config) Config {
		cfg.client = client
		cfg.builder = client.Builder()
		return cfg
	}
}

func WithLogger(logger logrus.FieldLogger) OTELOption {
	return func(cfg Config) Config {
		cfg.logger = logger
		return cfg
	}
}

// WithResource adds the resource attributes as tags of every metric.
func WithResource(res *resource.Resource) OTELOption {
	return func(cfg Config) Config {
		cfg.res = res
		return cfg
	}
}

func WithErrorHandler(f func(error)) OTELOption {
	return func(cfg Config) Config {
		cfg.errHandler = f
		return cfg
	}
}

// WithObserverCollectionInterval sets how often observable instrument
// callbacks run.
func WithObserverCollectionInterval(interval time.Duration) OTELOption {
	return func(cfg Config) Config {
		cfg.observerCollectionInterval = interval
		return cfg
	}
}

// WithObserverCollectionTimeout bounds one run of the callbacks.
func WithObserverCollectionTimeout(timeout time.Duration) OTELOption {
	return func(cfg Config) Config {
		cfg.observerCollectionTimeout = timeout
		return cfg
	}
}

// WithContext sets the context the collection ticker reads its clock from.
func WithContext(ctx context.Context) OTELOption {
	return func(cfg Config) Config {
		cfg.ctx = ctx
		return cfg
	}
}
