/*
Package statsd provides a client side StatsD library: a Client that renders
metrics, events and service checks in the wire dialect of the chosen
implementation (DogStatsD, classic StatsD, Statsite, Graphite, InfluxDB,
OpenTSDB or MessagePack), optionally aggregates them, and hands them to a Sink.

Sinks decide where datagrams go: a ConnectionSink writes to UDP, Unix
datagram sockets or Windows named pipes, a BatchedSink packs datagrams into
packets from a background goroutine, a LogSink logs them, a CaptureSink
records them for tests and a NullSink drops them.

	sink, err := statsd.BatchedSinkForAddr("127.0.0.1:8125")
	client, err := statsd.New(statsd.WithSink(sink), statsd.WithPrefix("app"))
	client.Increment("requests", 1, statsd.Tags("route:home"))
*/
package statsd

//go:generate mockgen -source=statsd.go -destination=mocks/statsd.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tilinna/clock"
	"go.uber.org/multierr"
)

// ErrNoClient is returned if statsd reporting methods are invoked on
// a nil client.
var ErrNoClient = errors.New("statsd client is nil")

// ClientInterface exposes the reporting methods of a Client so callers can
// substitute a mock.
type ClientInterface interface {
	// Increment adds value to a counter.
	Increment(name string, value float64, options ...MetricOption) error
	// Measure records a timing in milliseconds.
	Measure(name string, value float64, options ...MetricOption) error
	// MeasureFunc records how long fn takes as a timing.
	MeasureFunc(name string, fn func() error, options ...MetricOption) error
	// Timing records d as a timing.
	Timing(name string, d time.Duration, options ...MetricOption) error
	// Gauge records the current value of something.
	Gauge(name string, value float64, options ...MetricOption) error
	// Set counts unique members.
	Set(name string, member string, options ...MetricOption) error
	// Distribution records a value of a globally computed distribution.
	Distribution(name string, value float64, options ...MetricOption) error
	// DistributionFunc records how long fn takes as a distribution.
	DistributionFunc(name string, fn func() error, options ...MetricOption) error
	// Histogram records a value of a host local distribution.
	Histogram(name string, value float64, options ...MetricOption) error
	// KeyValue records a Statsite key/value sample.
	KeyValue(name string, value float64, options ...MetricOption) error
	// Latency records how long fn takes as a metric of type t.
	Latency(name string, t MetricType, fn func() error, options ...MetricOption) error
	// Event sends the provided Event.
	Event(e *Event, options ...MetricOption) error
	// SimpleEvent sends an event with the provided title and text.
	SimpleEvent(title, text string) error
	// ServiceCheck sends the provided ServiceCheck.
	ServiceCheck(sc *ServiceCheck, options ...MetricOption) error
	// SimpleServiceCheck sends a service check with the provided name and status.
	SimpleServiceCheck(name string, status ServiceCheckStatus) error
	// ForceFlush sends everything aggregated or buffered.
	ForceFlush()
	// Close flushes the client and closes its sink.
	Close() error
}

// A Client is a handle for sending metrics. It is safe to use one Client
// from multiple goroutines simultaneously.
type Client struct {
	options           Options
	ctx               context.Context
	builder           *Builder
	noPrefixBuilder   *Builder
	defaultSampleRate float64
	aggregator        *aggregator
	logger            logrus.FieldLogger
	errorHandler      ErrorHandler

	sinkMu sync.RWMutex
	sink   Sink

	closeOnce sync.Once
}

// Verify that Client implements the ClientInterface.
var _ ClientInterface = &Client{}

// New returns a client configured by options. Without WithSink, datagrams
// are dropped.
func New(options ...Option) (*Client, error) {
	o, err := resolveOptions(options)
	if err != nil {
		return nil, err
	}
	return newWithOptions(o)
}

func newWithOptions(o *Options) (*Client, error) {
	builder := o.Builder
	if builder == nil {
		var err error
		if builder, err = NewBuilder(o.Implementation, o.Prefix, o.DefaultTags); err != nil {
			return nil, err
		}
	}
	noPrefixBuilder := builder
	if builder.Prefix() != "" {
		var err error
		if noPrefixBuilder, err = NewBuilder(builder.Implementation(), "", builder.DefaultTags()); err != nil {
			return nil, err
		}
	}

	c := &Client{
		options:           *o,
		ctx:               o.Context,
		builder:           builder,
		noPrefixBuilder:   noPrefixBuilder,
		defaultSampleRate: o.DefaultSampleRate,
		logger:            o.Logger.WithField("component", "client"),
		errorHandler:      o.ErrorHandler,
		sink:              o.Sink,
	}
	if o.Aggregation {
		c.aggregator = newAggregator(o.Context, c.emit, c.builderFor, o.AggregationInterval, o.AggregationMaxValues, o.Logger)
	}
	return c, nil
}

// Clone returns a client sharing the sink of c, with options applied on top
// of the ones c was built with.
func (c *Client) Clone(options ...Option) (*Client, error) {
	if c == nil {
		return nil, ErrNoClient
	}
	o := c.options
	o.Sink = c.Sink()
	for _, option := range options {
		if err := option(&o); err != nil {
			return nil, err
		}
	}
	return newWithOptions(&o)
}

// Sink returns the sink the client currently emits to.
func (c *Client) Sink() Sink {
	c.sinkMu.RLock()
	defer c.sinkMu.RUnlock()
	return c.sink
}

// Builder returns the builder of prefixed datagrams.
func (c *Client) Builder() *Builder { return c.builder }

func (c *Client) builderFor(noPrefix bool) *Builder {
	if noPrefix {
		return c.noPrefixBuilder
	}
	return c.builder
}

func (c *Client) emit(datagram string) {
	c.Sink().Emit(datagram)
}

func (c *Client) sample(rate float64) bool {
	return c.Sink().Sample(rate)
}

func (c *Client) handle(err error) error {
	if err != nil && c.errorHandler != nil {
		c.errorHandler(err)
	}
	return err
}

func checkRate(rate float64) error {
	if rate <= 0 || rate > 1 {
		return fmt.Errorf("%w, got %v", ErrInvalidSampleRate, rate)
	}
	return nil
}

// send renders and emits one sample that is neither aggregated nor sampled yet.
func (c *Client) send(t MetricType, name string, value float64, o metricOptions) error {
	if err := checkRate(o.rate); err != nil {
		return c.handle(err)
	}
	if !c.sample(o.rate) {
		return nil
	}
	return c.handle(c.record(t, name, value, o))
}

// record emits, or aggregates, a sample that passed sampling.
func (c *Client) record(t MetricType, name string, value float64, o metricOptions) error {
	if c.aggregator != nil && t.isTiming() {
		if err := c.builderFor(o.noPrefix).check(t, o.tags); err != nil {
			return err
		}
		return c.aggregator.aggregateTiming(t, name, value, o.rate, o.tags, o.noPrefix)
	}
	datagram, err := c.builderFor(o.noPrefix).Build(t, name, value, o.rate, o.tags)
	if err != nil {
		return err
	}
	c.emit(datagram)
	return nil
}

// Increment adds value to a counter. With aggregation enabled, counters are
// summed locally and not sampled.
func (c *Client) Increment(name string, value float64, options ...MetricOption) error {
	if c == nil {
		return ErrNoClient
	}
	o := c.resolveMetricOptions(options)
	if c.aggregator != nil {
		if err := c.builderFor(o.noPrefix).check(Count, o.tags); err != nil {
			return c.handle(err)
		}
		return c.handle(c.aggregator.increment(name, value, o.tags, o.noPrefix))
	}
	return c.send(Count, name, value, o)
}

// Measure records a timing in milliseconds.
func (c *Client) Measure(name string, value float64, options ...MetricOption) error {
	if c == nil {
		return ErrNoClient
	}
	return c.send(Timing, name, value, c.resolveMetricOptions(options))
}

// MeasureFunc runs fn and records its duration as a timing. fn always runs;
// its error is returned and its panic propagates once the duration is recorded.
func (c *Client) MeasureFunc(name string, fn func() error, options ...MetricOption) error {
	return c.Latency(name, Timing, fn, options...)
}

// Timing records d as a timing in milliseconds.
func (c *Client) Timing(name string, d time.Duration, options ...MetricOption) error {
	return c.Measure(name, float64(d)/float64(time.Millisecond), options...)
}

// Gauge records the current value of something. With aggregation enabled,
// the last value of the interval wins and gauges are not sampled.
func (c *Client) Gauge(name string, value float64, options ...MetricOption) error {
	if c == nil {
		return ErrNoClient
	}
	o := c.resolveMetricOptions(options)
	if c.aggregator != nil {
		if err := c.builderFor(o.noPrefix).check(Gauge, o.tags); err != nil {
			return c.handle(err)
		}
		return c.handle(c.aggregator.gauge(name, value, o.tags, o.noPrefix))
	}
	return c.send(Gauge, name, value, o)
}

// Set counts unique members.
func (c *Client) Set(name string, member string, options ...MetricOption) error {
	if c == nil {
		return ErrNoClient
	}
	o := c.resolveMetricOptions(options)
	if err := checkRate(o.rate); err != nil {
		return c.handle(err)
	}
	if !c.sample(o.rate) {
		return nil
	}
	datagram, err := c.builderFor(o.noPrefix).BuildSet(name, member, o.rate, o.tags)
	if err != nil {
		return c.handle(err)
	}
	c.emit(datagram)
	return nil
}

// Distribution records a value of a distribution.
func (c *Client) Distribution(name string, value float64, options ...MetricOption) error {
	if c == nil {
		return ErrNoClient
	}
	return c.send(Distribution, name, value, c.resolveMetricOptions(options))
}

// DistributionFunc runs fn and records its duration as a distribution.
func (c *Client) DistributionFunc(name string, fn func() error, options ...MetricOption) error {
	return c.Latency(name, Distribution, fn, options...)
}

// Histogram records a value of a histogram.
func (c *Client) Histogram(name string, value float64, options ...MetricOption) error {
	if c == nil {
		return ErrNoClient
	}
	return c.send(Histogram, name, value, c.resolveMetricOptions(options))
}

// KeyValue records a Statsite key/value sample.
func (c *Client) KeyValue(name string, value float64, options ...MetricOption) error {
	if c == nil {
		return ErrNoClient
	}
	return c.send(KeyValue, name, value, c.resolveMetricOptions(options))
}

// Latency runs fn and records its wall clock duration in milliseconds as a
// metric of type t, or of the builder's latency type when t is empty.
// Sampling is decided before fn runs; fn runs either way.
func (c *Client) Latency(name string, t MetricType, fn func() error, options ...MetricOption) (err error) {
	if c == nil {
		return ErrNoClient
	}
	o := c.resolveMetricOptions(options)
	if t == "" {
		t = c.builderFor(o.noPrefix).LatencyType()
	}
	if rateErr := checkRate(o.rate); rateErr != nil {
		c.handle(rateErr)
		return fn()
	}
	if !c.sample(o.rate) {
		return fn()
	}

	clk := clock.FromContext(c.ctx)
	start := clk.Now()
	defer func() {
		elapsed := float64(clk.Now().Sub(start)) / float64(time.Millisecond)
		if recordErr := c.handle(c.record(t, name, elapsed, o)); recordErr != nil && err == nil {
			err = recordErr
		}
	}()
	return fn()
}

// Event sends the provided Event. Tags options are added to the event's tags.
func (c *Client) Event(e *Event, options ...MetricOption) error {
	if c == nil {
		return ErrNoClient
	}
	o := c.resolveMetricOptions(options)
	if len(o.tags) != 0 {
		copied := *e
		copied.Tags = concatTags(e.Tags, o.tags)
		e = &copied
	}
	datagram, err := c.builderFor(o.noPrefix).Event(e)
	if err != nil {
		return c.handle(err)
	}
	c.emit(datagram)
	return nil
}

// SimpleEvent sends an event with the provided title and text.
func (c *Client) SimpleEvent(title, text string) error {
	return c.Event(NewEvent(title, text))
}

// ServiceCheck sends the provided ServiceCheck.
func (c *Client) ServiceCheck(sc *ServiceCheck, options ...MetricOption) error {
	if c == nil {
		return ErrNoClient
	}
	o := c.resolveMetricOptions(options)
	if len(o.tags) != 0 {
		copied := *sc
		copied.Tags = concatTags(sc.Tags, o.tags)
		sc = &copied
	}
	datagram, err := c.builderFor(o.noPrefix).ServiceCheck(sc)
	if err != nil {
		return c.handle(err)
	}
	c.emit(datagram)
	return nil
}

// SimpleServiceCheck sends a service check with the provided name and status.
func (c *Client) SimpleServiceCheck(name string, status ServiceCheckStatus) error {
	return c.ServiceCheck(NewServiceCheck(name, status))
}

// ForceFlush flushes the aggregator, then asks the sink to send what it buffers.
func (c *Client) ForceFlush() {
	if c == nil {
		return
	}
	if c.aggregator != nil {
		c.aggregator.flush()
	}
	c.Sink().Flush(false)
}

// Capture records the datagrams emitted while fn runs, on this client and
// its aggregator. They are still forwarded to the sink.
func (c *Client) Capture(fn func()) []*Datagram {
	c.sinkMu.Lock()
	parent := c.sink
	capture := NewCaptureSink(parent, c.builder)
	c.sink = capture
	c.sinkMu.Unlock()

	defer func() {
		c.sinkMu.Lock()
		c.sink = parent
		c.sinkMu.Unlock()
	}()
	fn()
	if c.aggregator != nil {
		c.aggregator.flush()
	}
	return capture.Datagrams()
}

// Close flushes the aggregator and the sink, then closes the sink when it is
// an io.Closer. Metrics sent afterwards are emitted without aggregation.
func (c *Client) Close() error {
	if c == nil {
		return ErrNoClient
	}
	var err error
	c.closeOnce.Do(func() {
		if c.aggregator != nil {
			c.aggregator.close()
		}
		sink := c.Sink()
		sink.Flush(false)
		if closer, ok := sink.(io.Closer); ok {
			err = multierr.Append(err, closer.Close())
		}
		if err != nil {
			c.logger.WithError(err).Warn("Could not close the sink")
		}
	})
	return err
}
