package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statsd-instrument/instrument/statsd"
)

func TestSendMetrics(t *testing.T) {
	client, err := statsd.New(
		statsd.WithSink(statsd.NullSink{}),
		statsd.WithDefaultTags("env:prod", "service:myservice"),
	)
	require.NoError(t, err)
	defer client.Close()

	datagrams := client.Capture(func() {
		require.NoError(t, sendMetrics(client))
	})
	require.Len(t, datagrams, 4)

	assert.Equal(t, "my.metrics:21|h|#env:prod,service:myservice,tag1,tag2:value", datagrams[0].Source())
	assert.Equal(t, "my.request", datagrams[1].Name())
	assert.Equal(t, statsd.Distribution, datagrams[1].Type())
	assert.Equal(t, "my.lookup.success:1|c|#env:prod,service:myservice", datagrams[2].Source())
	assert.Equal(t, "deploy", datagrams[3].Name())
}

func TestAggregatingClient(t *testing.T) {
	client, err := newAggregatingClient(statsd.NullSink{})
	require.NoError(t, err)
	defer client.Close()

	datagrams := client.Capture(func() {
		require.NoError(t, sampleDistribution(client))
	})
	require.Len(t, datagrams, 1)
	assert.Equal(t, "my.metrics:21:22:23|d|#env:prod,service:myservice,tag1,tag2:value", datagrams[0].Source())
}
