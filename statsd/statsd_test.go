package statsd_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tilinna/clock"

	"github.com/statsd-instrument/instrument/statsd"
)

func sources(datagrams []*statsd.Datagram) []string {
	out := make([]string, 0, len(datagrams))
	for _, d := range datagrams {
		out = append(out, d.Source())
	}
	return out
}

func newCapturingClient(t *testing.T, options ...statsd.Option) (*statsd.Client, *statsd.CaptureSink) {
	capture := statsd.NewCaptureSink(nil, nil)
	client, err := statsd.New(append([]statsd.Option{statsd.WithSink(capture)}, options...)...)
	require.NoError(t, err)
	return client, capture
}

func TestClientMetricTypes(t *testing.T) {
	client, err := statsd.New(statsd.WithDefaultTags("env:prod"))
	require.NoError(t, err)

	datagrams := client.Capture(func() {
		client.Increment("hits", 1)
		client.Measure("query", 12.5, statsd.Tags("db:main"))
		client.Timing("render", 1500*time.Microsecond)
		client.Gauge("queue", 42)
		client.Set("users", "alice")
		client.Distribution("latency", 3)
		client.Histogram("size", 512)
	})

	assert.Equal(t, []string{
		"hits:1|c|#env:prod",
		"query:12.5|ms|#env:prod,db:main",
		"render:1.5|ms|#env:prod",
		"queue:42|g|#env:prod",
		"users:alice|s|#env:prod",
		"latency:3|d|#env:prod",
		"size:512|h|#env:prod",
	}, sources(datagrams))
}

func TestClientPrefix(t *testing.T) {
	client, capture := newCapturingClient(t, statsd.WithPrefix("app"))

	require.NoError(t, client.Increment("hits", 1))
	require.NoError(t, client.Increment("hits", 1, statsd.NoPrefix()))
	require.NoError(t, client.Gauge("mem", 2, statsd.TagMap(map[string]string{"b": "2", "a": "1"})))

	assert.Equal(t, []string{"app.hits:1|c", "hits:1|c", "app.mem:2|g|#a:1,b:2"}, sources(capture.Datagrams()))
}

func TestClientSampleRate(t *testing.T) {
	client, capture := newCapturingClient(t, statsd.WithDefaultSampleRate(0.5))

	require.NoError(t, client.Increment("a", 1))
	require.NoError(t, client.Increment("b", 1, statsd.SampleRate(1)))
	require.NoError(t, client.Increment("c", 1, statsd.SampleRate(0.25)))

	assert.Equal(t, []string{"a:1|c|@0.5", "b:1|c", "c:1|c|@0.25"}, sources(capture.Datagrams()))
}

func TestClientInvalidSampleRate(t *testing.T) {
	var handled []error
	client, capture := newCapturingClient(t, statsd.WithErrorHandler(func(err error) {
		handled = append(handled, err)
	}))

	err := client.Increment("a", 1, statsd.SampleRate(2))
	assert.ErrorIs(t, err, statsd.ErrInvalidSampleRate)
	err = client.Set("s", "x", statsd.SampleRate(0))
	assert.ErrorIs(t, err, statsd.ErrInvalidSampleRate)
	assert.Len(t, handled, 2)
	assert.Empty(t, capture.Datagrams())

	_, err = statsd.New(statsd.WithDefaultSampleRate(1.5))
	assert.ErrorIs(t, err, statsd.ErrInvalidSampleRate)
}

func TestClientUnsupportedByImplementation(t *testing.T) {
	client, capture := newCapturingClient(t, statsd.WithImplementation("statsd"))

	assert.ErrorIs(t, client.Distribution("d", 1), statsd.ErrUnsupportedType)
	assert.ErrorIs(t, client.Increment("c", 1, statsd.Tags("a:b")), statsd.ErrTagsNotSupported)
	assert.ErrorIs(t, client.SimpleEvent("title", "text"), statsd.ErrUnsupportedType)
	require.NoError(t, client.Increment("c", 1))
	assert.Equal(t, []string{"c:1|c"}, sources(capture.Datagrams()))

	_, err := statsd.New(statsd.WithImplementation("statsd"), statsd.WithDefaultTags("a:b"))
	assert.ErrorIs(t, err, statsd.ErrTagsNotSupported)
	_, err = statsd.New(statsd.WithImplementation("carbon"))
	assert.ErrorIs(t, err, statsd.ErrUnknownImplementation)
}

func TestClientKeyValue(t *testing.T) {
	client, capture := newCapturingClient(t, statsd.WithImplementation("statsite"))
	require.NoError(t, client.KeyValue("kv", 3))
	assert.Equal(t, []string{"kv:3|kv"}, sources(capture.Datagrams()))
}

func TestClientLatency(t *testing.T) {
	mock := clock.NewMock(time.Unix(1700000000, 0))
	ctx := clock.Context(context.Background(), mock)
	client, capture := newCapturingClient(t, statsd.WithContext(ctx))

	work := func() error {
		mock.Add(25 * time.Millisecond)
		return nil
	}
	require.NoError(t, client.Latency("default", "", work))
	require.NoError(t, client.MeasureFunc("timing", work))
	require.NoError(t, client.DistributionFunc("dist", work))
	require.NoError(t, client.Latency("hist", statsd.Histogram, work))

	assert.Equal(t, []string{"default:25|d", "timing:25|ms", "dist:25|d", "hist:25|h"}, sources(capture.Datagrams()))
}

func TestClientLatencyUsesTheDialectLatencyType(t *testing.T) {
	mock := clock.NewMock(time.Unix(1700000000, 0))
	client, capture := newCapturingClient(t,
		statsd.WithImplementation("statsd"),
		statsd.WithContext(clock.Context(context.Background(), mock)))

	require.NoError(t, client.Latency("slow", "", func() error {
		mock.Add(time.Second)
		return nil
	}))
	assert.Equal(t, []string{"slow:1000|ms"}, sources(capture.Datagrams()))
}

func TestClientLatencyReturnsTheFunctionError(t *testing.T) {
	client, capture := newCapturingClient(t)
	boom := errors.New("boom")

	err := client.MeasureFunc("failing", func() error { return boom })
	assert.Same(t, boom, err)
	require.Len(t, capture.Datagrams(), 1)
	assert.Equal(t, "failing", capture.Datagrams()[0].Name())
}

func TestClientLatencyRecordsOnPanic(t *testing.T) {
	client, capture := newCapturingClient(t)

	assert.PanicsWithValue(t, "boom", func() {
		client.DistributionFunc("panicking", func() error { panic("boom") })
	})
	require.Len(t, capture.Datagrams(), 1)
	assert.Equal(t, statsd.Distribution, capture.Datagrams()[0].Type())
}

func TestClientEventsAndServiceChecks(t *testing.T) {
	client, capture := newCapturingClient(t, statsd.WithDefaultTags("env:prod"))

	require.NoError(t, client.Event(statsd.NewEvent("deploy", "done"), statsd.Tags("v:1")))
	require.NoError(t, client.SimpleServiceCheck("db", statsd.Ok))
	assert.ErrorContains(t, client.Event(&statsd.Event{}), "title")

	assert.Equal(t, []string{
		"_e{6,4}:deploy|done|#env:prod,v:1",
		"_sc|db|0|#env:prod",
	}, sources(capture.Datagrams()))
}

func TestClientAggregation(t *testing.T) {
	client, capture := newCapturingClient(t, statsd.WithAggregation(time.Hour))
	defer client.Close()

	for i := 1; i <= 3; i++ {
		require.NoError(t, client.Increment("hits", 1, statsd.Tags("b", "a")))
		require.NoError(t, client.Gauge("queue", float64(i)))
		require.NoError(t, client.Distribution("latency", float64(i)))
	}
	require.NoError(t, client.Histogram("size", 1, statsd.SampleRate(0.5)))
	assert.Empty(t, capture.Datagrams())

	client.ForceFlush()
	assert.ElementsMatch(t, []string{
		"hits:3|c|#a,b",
		"queue:3|g",
		"latency:1:2:3|d",
		"size:1|h|@0.5",
	}, sources(capture.Datagrams()))
}

func TestClientAggregationMergesTagMapAndTags(t *testing.T) {
	client, capture := newCapturingClient(t, statsd.WithAggregation(time.Hour))
	defer client.Close()

	require.NoError(t, client.Increment("hits", 1, statsd.TagMap(map[string]string{"b": "2", "a": "1"})))
	require.NoError(t, client.Increment("hits", 2, statsd.Tags("b:2", "a:1")))
	require.NoError(t, client.Distribution("latency", 1, statsd.Tags("a:1", "b:2")))
	require.NoError(t, client.Distribution("latency", 2, statsd.TagMap(map[string]string{"a": "1", "b": "2"})))

	client.ForceFlush()
	assert.ElementsMatch(t, []string{
		"hits:3|c|#a:1,b:2",
		"latency:1:2|d|#a:1,b:2",
	}, sources(capture.Datagrams()))
}

func TestClientCaptureFlushesTheAggregator(t *testing.T) {
	client, err := statsd.New(statsd.WithAggregation(time.Hour))
	require.NoError(t, err)
	defer client.Close()

	datagrams := client.Capture(func() {
		client.Increment("hits", 2)
		client.Increment("hits", 3)
	})
	assert.Equal(t, []string{"hits:5|c"}, sources(datagrams))
}

func TestClientClone(t *testing.T) {
	client, capture := newCapturingClient(t, statsd.WithDefaultTags("env:prod"))
	clone, err := client.Clone(statsd.WithPrefix("worker"))
	require.NoError(t, err)

	require.NoError(t, clone.Increment("jobs", 1))
	require.NoError(t, client.Increment("jobs", 1))
	assert.Same(t, client.Sink(), clone.Sink())
	assert.Equal(t, []string{"worker.jobs:1|c|#env:prod", "jobs:1|c|#env:prod"}, sources(capture.Datagrams()))
}

func TestClientClose(t *testing.T) {
	client, capture := newCapturingClient(t, statsd.WithAggregation(time.Hour))

	require.NoError(t, client.Increment("hits", 1))
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
	assert.Equal(t, []string{"hits:1|c"}, sources(capture.Datagrams()))

	require.NoError(t, client.Increment("late", 1))
	assert.Equal(t, []string{"hits:1|c", "late:1|c"}, sources(capture.Datagrams()))
}

func TestClientCloseLogsSinkErrors(t *testing.T) {
	logger, hook := test.NewNullLogger()
	client, err := statsd.New(statsd.WithSink(failingSink{}), statsd.WithLogger(logger))
	require.NoError(t, err)

	assert.EqualError(t, client.Close(), "close failed")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Could not close the sink", hook.LastEntry().Message)
}

type failingSink struct{ statsd.NullSink }

func (failingSink) Close() error { return errors.New("close failed") }

func TestNilClient(t *testing.T) {
	var client *statsd.Client
	assert.Equal(t, statsd.ErrNoClient, client.Increment("a", 1))
	assert.Equal(t, statsd.ErrNoClient, client.Gauge("a", 1))
	assert.Equal(t, statsd.ErrNoClient, client.Set("a", "b"))
	assert.Equal(t, statsd.ErrNoClient, client.Latency("a", "", func() error { return nil }))
	assert.Equal(t, statsd.ErrNoClient, client.SimpleEvent("a", "b"))
	assert.Equal(t, statsd.ErrNoClient, client.Close())
	_, err := client.Clone()
	assert.Equal(t, statsd.ErrNoClient, err)
	assert.NotPanics(t, client.ForceFlush)
}

func TestClientWithoutSinkDropsEverything(t *testing.T) {
	client, err := statsd.New()
	require.NoError(t, err)
	assert.IsType(t, statsd.NullSink{}, client.Sink())
	assert.NoError(t, client.Increment("a", 1))
	assert.NoError(t, client.Close())
}
