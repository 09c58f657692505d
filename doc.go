/*
Package instrument is a client-side StatsD instrumentation library. The
library itself lives in the statsd package; this package only documents it.

Metrics are formatted for the dialect of the receiving server (StatsD, DogStatsD,
Graphite, Statsite, InfluxDB, OpenTSDB or MessagePack) and shipped over UDP, a
Unix datagram socket or a Windows named pipe, optionally through a batching
sink and a client-side aggregator.

Example Usage:

	// Configure the client from STATSD_* environment variables
	c, err := statsd.NewFromEnvironment(statsd.NewEnvironment(),
	    statsd.WithPrefix("flubber"),
	    statsd.WithDefaultTags("region:us-east-1a"),
	)
	if err != nil {
	    log.Fatal(err)
	}
	defer c.Close()

	err = c.Gauge("request.duration", 1.2, statsd.Tags("route:home"))

The OpenTelemetry bridge lives in statsd/otel, the Prometheus collector for
the batching sink in statsd/promstats.
*/
package instrument
