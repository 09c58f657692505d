package main

import (
	"github.com/statsd-instrument/instrument/statsd"
)

// newAggregatingClient folds counters, gauges and timings in memory and
// sends them every two seconds as packed datagrams.
func newAggregatingClient(sink statsd.Sink) (*statsd.Client, error) {
	return statsd.New(
		statsd.WithSink(sink),
		statsd.WithDefaultTags("env:prod", "service:myservice"),
		statsd.WithAggregation(statsd.DefaultAggregationInterval),
	)
}

func sampleDistribution(client *statsd.Client) error {
	for _, v := range []float64{21, 22, 23} {
		if err := client.Distribution("my.metrics", v, statsd.Tags("tag1", "tag2:value")); err != nil {
			return err
		}
	}
	return nil
}
