package statsd

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// DefaultImplementation is the default value for the Implementation option
	DefaultImplementation = "datadog"
	// DefaultPrefix is the default value for the Prefix option
	DefaultPrefix = ""
	// DefaultSampleRate is the default value for the DefaultSampleRate option
	DefaultSampleRate = 1.0
)

// ErrorHandler is called with every error a Client method returns.
type ErrorHandler func(err error)

// Options contains the configuration options for a client.
type Options struct {
	// Sink receives the datagrams. Defaults to a NullSink.
	Sink Sink
	// Implementation selects the wire dialect, see NewBuilder.
	Implementation string
	// Builder overrides Implementation, Prefix and DefaultTags.
	Builder *Builder
	// Prefix is prepended, followed by a dot, to every metric name.
	Prefix string
	// DefaultTags are added to every metric, event and service check.
	DefaultTags []string
	// DefaultSampleRate is used by calls that don't set a rate.
	DefaultSampleRate float64
	// Aggregation enables client side aggregation of counters, gauges and timings.
	Aggregation bool
	// AggregationInterval is the interval between two flushes of the aggregator.
	AggregationInterval time.Duration
	// AggregationMaxValues bounds the samples a timing bucket holds before
	// the aggregator flushes.
	AggregationMaxValues int
	// Logger is used by the client and its aggregator.
	Logger logrus.FieldLogger
	// ErrorHandler, when set, sees every error a method returns.
	ErrorHandler ErrorHandler
	// Context carries the clock, see github.com/tilinna/clock.
	Context context.Context
}

func resolveOptions(options []Option) (*Options, error) {
	o := &Options{
		Implementation:       DefaultImplementation,
		Prefix:               DefaultPrefix,
		DefaultSampleRate:    DefaultSampleRate,
		AggregationInterval:  DefaultAggregationInterval,
		AggregationMaxValues: DefaultAggregationMaxValues,
		Context:              context.Background(),
	}

	for _, option := range options {
		err := option(o)
		if err != nil {
			return nil, err
		}
	}
	if o.Sink == nil {
		o.Sink = NullSink{}
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	return o, nil
}

// Option is a client option. Can return an error if validation fails.
type Option func(*Options) error

// WithSink sets the Sink option.
func WithSink(sink Sink) Option {
	return func(o *Options) error {
		o.Sink = sink
		return nil
	}
}

// WithImplementation sets the Implementation option.
func WithImplementation(implementation string) Option {
	return func(o *Options) error {
		if _, err := dialectFor(implementation); err != nil {
			return err
		}
		o.Implementation = implementation
		o.Builder = nil
		return nil
	}
}

// WithBuilder sets the Builder option.
func WithBuilder(builder *Builder) Option {
	return func(o *Options) error {
		o.Builder = builder
		return nil
	}
}

// WithPrefix sets the Prefix option.
func WithPrefix(prefix string) Option {
	return func(o *Options) error {
		o.Prefix = prefix
		return nil
	}
}

// WithDefaultTags sets the DefaultTags option.
func WithDefaultTags(tags ...string) Option {
	return func(o *Options) error {
		o.DefaultTags = tags
		return nil
	}
}

// WithDefaultSampleRate sets the DefaultSampleRate option.
func WithDefaultSampleRate(rate float64) Option {
	return func(o *Options) error {
		if rate <= 0 || rate > 1 {
			return fmt.Errorf("%w, got %v", ErrInvalidSampleRate, rate)
		}
		o.DefaultSampleRate = rate
		return nil
	}
}

// WithAggregation enables aggregation, flushing every interval. A zero
// interval keeps the current one.
func WithAggregation(interval time.Duration) Option {
	return func(o *Options) error {
		if interval < 0 {
			return fmt.Errorf("aggregation interval must not be negative, got %s", interval)
		}
		o.Aggregation = true
		if interval > 0 {
			o.AggregationInterval = interval
		}
		return nil
	}
}

// WithoutAggregation disables aggregation.
func WithoutAggregation() Option {
	return func(o *Options) error {
		o.Aggregation = false
		return nil
	}
}

// WithAggregationMaxValues sets the AggregationMaxValues option.
func WithAggregationMaxValues(maxValues int) Option {
	return func(o *Options) error {
		if maxValues < 1 {
			return fmt.Errorf("aggregation max values must be a positive number, got %d", maxValues)
		}
		o.AggregationMaxValues = maxValues
		return nil
	}
}

// WithLogger sets the Logger option.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *Options) error {
		o.Logger = logger
		return nil
	}
}

// WithErrorHandler sets the ErrorHandler option.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(o *Options) error {
		o.ErrorHandler = handler
		return nil
	}
}

// WithContext sets the context the client reads its clock from.
func WithContext(ctx context.Context) Option {
	return func(o *Options) error {
		o.Context = ctx
		return nil
	}
}
