// Package promstats exports the counters of a statsd.BatchedSink to Prometheus.
package promstats

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/statsd-instrument/instrument/statsd"
)

// StatsSource is implemented by statsd.BatchedSink.
type StatsSource interface {
	Stats() statsd.SinkStats
}

type sinkStatsCollector struct {
	source StatsSource

	synchronousSends *prometheus.Desc
	batchedSends     *prometheus.Desc
	queueLength      *prometheus.Desc
	queueCapacity    *prometheus.Desc
}

// NewCollector returns a collector reading source on every scrape. name
// becomes the sink label.
func NewCollector(source StatsSource, name string) prometheus.Collector {
	fqName := func(name string) string {
		return "statsd_sink_" + name
	}
	labels := prometheus.Labels{"sink": name}
	return &sinkStatsCollector{
		source: source,
		synchronousSends: prometheus.NewDesc(
			fqName("synchronous_sends_total"),
			"Datagrams sent on the caller's goroutine because the queue was full or the worker unavailable.",
			nil, labels,
		),
		batchedSends: prometheus.NewDesc(
			fqName("batched_sends_total"),
			"Packets sent by the background worker.",
			nil, labels,
		),
		queueLength: prometheus.NewDesc(
			fqName("queue_length"),
			"Datagrams waiting in the queue.",
			nil, labels,
		),
		queueCapacity: prometheus.NewDesc(
			fqName("queue_capacity"),
			"Capacity of the queue.",
			nil, labels,
		),
	}
}

// Describe implements Collector.
func (c *sinkStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.synchronousSends
	ch <- c.batchedSends
	ch <- c.queueLength
	ch <- c.queueCapacity
}

// Collect implements Collector.
func (c *sinkStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.source.Stats()
	ch <- prometheus.MustNewConstMetric(c.synchronousSends, prometheus.CounterValue, float64(stats.SynchronousSends))
	ch <- prometheus.MustNewConstMetric(c.batchedSends, prometheus.CounterValue, float64(stats.BatchedSends))
	ch <- prometheus.MustNewConstMetric(c.queueLength, prometheus.GaugeValue, float64(stats.QueueLength))
	ch <- prometheus.MustNewConstMetric(c.queueCapacity, prometheus.GaugeValue, float64(stats.QueueCapacity))
}
