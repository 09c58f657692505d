package main

import (
	"log"
	"time"

	"github.com/statsd-instrument/instrument/statsd"
)

func runExample() error {
	sink, err := statsd.BatchedSinkForAddr("127.0.0.1:8125")
	if err != nil {
		return err
	}
	client, err := statsd.New(
		statsd.WithSink(sink),
		statsd.WithDefaultTags("env:prod", "service:myservice"),
	)
	if err != nil {
		return err
	}
	if err := sendMetrics(client); err != nil {
		log.Printf("Error: %v", err)
	}
	return client.Close()
}

func sendMetrics(client *statsd.Client) error {
	if err := client.Histogram("my.metrics", 21, statsd.Tags("tag1", "tag2:value")); err != nil {
		return err
	}
	if err := client.Latency("my.request", "", func() error {
		time.Sleep(time.Millisecond)
		return nil
	}); err != nil {
		return err
	}
	lookup := statsd.CountSuccess(client, "my.lookup", func() (int, error) {
		return 42, nil
	}, func(n int) bool { return n > 0 })
	if _, err := lookup(); err != nil {
		return err
	}
	return client.SimpleEvent("deploy", "version 1.2.3")
}

func main() {
	if err := runExample(); err != nil {
		log.Fatal(err)
	}
}
