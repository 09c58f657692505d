package statsd_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statsd-instrument/instrument/statsd"
	"github.com/statsd-instrument/instrument/statsd/mocks"
)

type repository struct{}

func TestCountCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClientInterface(ctrl)
	client.EXPECT().Increment("lookup.calls", float64(1)).Times(2)

	lookup := statsd.CountCalls(client, "lookup.calls", func() (int, error) { return 42, nil })
	result, err := lookup()
	require.NoError(t, err)
	assert.Equal(t, 42, result)

	failing := statsd.CountCalls(client, "lookup.calls", func() (int, error) { panic("boom") })
	assert.Panics(t, func() { failing() })
}

func TestCountSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClientInterface(ctrl)
	gomock.InOrder(
		client.EXPECT().Increment("save.success", float64(1)),
		client.EXPECT().Increment("save.failure", float64(1)),
		client.EXPECT().Increment("save.failure", float64(1)),
		client.EXPECT().Increment("save.failure", float64(1)),
	)

	positive := func(n int) bool { return n > 0 }
	_, err := statsd.CountSuccess(client, "save", func() (int, error) { return 1, nil }, positive)()
	require.NoError(t, err)
	_, err = statsd.CountSuccess(client, "save", func() (int, error) { return 0, nil }, positive)()
	require.NoError(t, err)
	boom := errors.New("boom")
	_, err = statsd.CountSuccess(client, "save", func() (int, error) { return 1, boom }, nil)()
	assert.Same(t, boom, err)
	assert.Panics(t, func() {
		statsd.CountSuccess(client, "save", func() (int, error) { panic("boom") }, nil)()
	})
}

func TestCountIf(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClientInterface(ctrl)
	client.EXPECT().Increment("cache.hit", float64(1), gomock.Any()).Times(1)

	found := func(v string) bool { return v != "" }
	get := func(v string, err error) statsd.Func[string] {
		return statsd.CountIf(client, "cache.hit", func() (string, error) { return v, err }, found, statsd.Tags("cache:l1"))
	}
	_, _ = get("value", nil)()
	_, _ = get("", nil)()
	_, _ = get("value", errors.New("timeout"))()
}

func TestMeasureCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClientInterface(ctrl)
	client.EXPECT().MeasureFunc("render", gomock.Any()).DoAndReturn(
		func(_ string, fn func() error, _ ...statsd.MetricOption) error { return fn() })
	client.EXPECT().DistributionFunc("render.dist", gomock.Any()).DoAndReturn(
		func(_ string, fn func() error, _ ...statsd.MetricOption) error { return fn() })

	render := func() (string, error) { return "<html>", nil }
	result, err := statsd.MeasureCalls(client, "render", render)()
	require.NoError(t, err)
	assert.Equal(t, "<html>", result)

	result, err = statsd.DistributionCalls(client, "render.dist", render)()
	require.NoError(t, err)
	assert.Equal(t, "<html>", result)
}

func TestMeasureCallsWithClient(t *testing.T) {
	client, err := statsd.New()
	require.NoError(t, err)
	boom := errors.New("boom")

	datagrams := client.Capture(func() {
		_, err = statsd.MeasureCalls[int](client, "work", func() (int, error) { return 0, boom })()
	})
	assert.Same(t, boom, err)
	require.Len(t, datagrams, 1)
	assert.Equal(t, statsd.Timing, datagrams[0].Type())
	assert.Equal(t, "work", datagrams[0].Name())
}

func TestMetricName(t *testing.T) {
	assert.Equal(t, "statsd_test.repository.Find", statsd.MetricName("statsd_test.repository", "Find"))
	assert.Equal(t, "statsd_test.repository.Find", statsd.MetricName(reflect.TypeOf(repository{}), "Find"))
	assert.Equal(t, "shard.3", statsd.MetricName("shard", 3))
}
